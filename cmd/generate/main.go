// Package main provides a one-shot batch generation tool.
//
// It runs the same pipeline the daily scheduler runs, for a single date,
// then prints the summary and exits. Useful for backfills and for testing
// a course setup without waiting for the scheduled hour.
//
// Usage:
//
//	go run ./cmd/generate                    # generate for today (UTC)
//	go run ./cmd/generate --date 2025-03-10  # generate for a specific date
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/samber/do/v2"

	"github.com/knodemy/lecture-server/internal/di"
	"github.com/knodemy/lecture-server/internal/logger"
	"github.com/knodemy/lecture-server/internal/service"
)

var runDate = flag.String("date", "", "Target date in YYYY-MM-DD form (default: today UTC)")

func main() {
	// The container's config provider calls flag.Parse, which also parses
	// the date flag declared above.
	injector := di.NewContainer()
	log := do.MustInvoke[*logger.Logger](injector)

	targetDate := *runDate
	if targetDate == "" {
		targetDate = service.Today()
	}
	if _, err := time.Parse(service.DateFormat, targetDate); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid date %q: expected YYYY-MM-DD\n", targetDate)
		os.Exit(1)
	}

	batch := do.MustInvoke[*service.Batch](injector)

	summary, err := batch.GenerateForDate(context.Background(), targetDate)
	if err != nil {
		log.Error("Batch generation failed", "date", targetDate, "error", err)
		os.Exit(1)
	}

	fmt.Printf("Run %s for %s\n", summary.RunID, summary.TargetDate)
	fmt.Printf("  courses:  %d found, %d processed, %d skipped\n",
		summary.TotalCoursesFound, summary.ProcessedCourses, summary.SkippedCourses)
	fmt.Printf("  lessons:  %d processed\n", summary.TotalLessonsProcessed)
	fmt.Printf("  scripts:  %d ok, %d failed\n",
		summary.SuccessfulScriptGenerations, summary.FailedScriptGenerations)
	fmt.Printf("  audio:    %d ok, %d failed\n",
		summary.SuccessfulAudioGenerations, summary.FailedAudioGenerations)
	fmt.Printf("  duration: %.1fs\n", summary.DurationSeconds)

	for _, genErr := range summary.Errors {
		fmt.Printf("  error [%s] course=%s lesson=%s: %s\n",
			genErr.Stage, genErr.CourseID, genErr.LessonID, genErr.Error)
	}

	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}
}
