package service

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/knodemy/lecture-server/internal/domain"
	"github.com/knodemy/lecture-server/internal/id"
	"github.com/knodemy/lecture-server/internal/storage"
	"github.com/knodemy/lecture-server/internal/store"
)

// Generator is the per-lesson pipeline the batch orchestrator drives.
type Generator interface {
	GenerateScript(ctx context.Context, req ScriptRequest) (*domain.ScriptPack, error)
	GenerateTimedAudio(ctx context.Context, scr *domain.LectureScript) (*domain.LectureAudio, error)
}

// BatchOptions configures artifact placement and the audio toggle.
type BatchOptions struct {
	ScriptsBucket string
	AudioBucket   string
	GenerateAudio bool
	SignURLs      bool
	SignExpiry    time.Duration
}

// Batch walks every course scheduled for a target date and generates
// lecture artifacts for its lessons.
//
// Failures are isolated at three levels: a PDF that fails any stage is
// recorded and skipped, a lesson error never aborts its course, and a
// course error never aborts the run. The summary carries every error.
type Batch struct {
	gen     Generator
	objects storage.Store
	db      store.Store
	logger  *slog.Logger
	opts    BatchOptions
}

// NewBatch creates the batch orchestrator.
func NewBatch(gen Generator, objects storage.Store, db store.Store, logger *slog.Logger, opts BatchOptions) *Batch {
	if opts.ScriptsBucket == "" {
		opts.ScriptsBucket = "lecture-scripts"
	}
	if opts.AudioBucket == "" {
		opts.AudioBucket = "lecture-audios"
	}
	if opts.SignExpiry <= 0 {
		opts.SignExpiry = 24 * time.Hour
	}
	return &Batch{gen: gen, objects: objects, db: db, logger: logger, opts: opts}
}

// GenerateForDate processes every course that needs generation on the
// target date (YYYY-MM-DD) and returns the run summary. The summary is also
// persisted as a generation log.
func (b *Batch) GenerateForDate(ctx context.Context, targetDate string) (*domain.BatchSummary, error) {
	started := time.Now().UTC()
	summary := &domain.BatchSummary{
		RunID:      uuid.New().String(),
		TargetDate: targetDate,
		StartedAt:  started,
	}

	b.logger.Info("starting lecture generation run",
		slog.String("run_id", summary.RunID),
		slog.String("target_date", targetDate))

	courses, err := b.db.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	summary.TotalCoursesFound = len(courses)

	for _, course := range courses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		summary.Merge(b.processCourse(ctx, course, targetDate))
	}

	summary.CompletedAt = time.Now().UTC()
	summary.DurationSeconds = summary.CompletedAt.Sub(started).Seconds()

	b.recordRun(ctx, summary)

	b.logger.Info("lecture generation run complete",
		slog.String("run_id", summary.RunID),
		slog.Int("courses_processed", summary.ProcessedCourses),
		slog.Int("scripts_ok", summary.SuccessfulScriptGenerations),
		slog.Int("scripts_failed", summary.FailedScriptGenerations),
		slog.Int("audio_ok", summary.SuccessfulAudioGenerations),
		slog.Int("audio_failed", summary.FailedAudioGenerations),
		slog.Float64("duration_seconds", summary.DurationSeconds))

	return summary, nil
}

// CoursePreview describes why a course would (or would not) be processed on
// a date.
type CoursePreview struct {
	CourseID string `json:"course_id"`
	Title    string `json:"title"`
	Reason   string `json:"reason"`
}

// PreviewForDate lists the courses a run on the target date would process,
// without generating anything.
func (b *Batch) PreviewForDate(ctx context.Context, targetDate string) ([]CoursePreview, error) {
	courses, err := b.db.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}

	var previews []CoursePreview
	for _, course := range courses {
		if needs, reason := course.NeedsGenerationOn(targetDate); needs {
			previews = append(previews, CoursePreview{
				CourseID: course.ID,
				Title:    course.Title,
				Reason:   reason,
			})
		}
	}
	return previews, nil
}

func (b *Batch) processCourse(ctx context.Context, course *domain.Course, targetDate string) *domain.GenerationResult {
	result := &domain.GenerationResult{
		CourseID:    course.ID,
		TeacherID:   course.TeacherID,
		CourseTitle: course.Title,
		TargetDate:  targetDate,
	}

	needs, reason := course.NeedsGenerationOn(targetDate)
	if !needs {
		result.SkippedReason = "not_scheduled"
		return result
	}

	b.logger.Info("processing course",
		slog.String("course_id", course.ID),
		slog.String("course", course.Title),
		slog.String("reason", reason))

	speaker := ""
	if teacher, err := b.db.GetTeacher(ctx, course.TeacherID); err == nil {
		speaker = teacher.Name
	} else {
		b.logger.Warn("could not load teacher, generating without speaker name",
			slog.String("course_id", course.ID),
			slog.String("teacher_id", course.TeacherID),
			slog.String("error", err.Error()))
	}

	lessons, err := b.db.LessonsForCourse(ctx, course.ID)
	if err != nil {
		result.Errors = append(result.Errors, domain.GenerationError{
			CourseID: course.ID,
			Stage:    domain.StageCourseProcessing,
			Error:    fmt.Sprintf("listing lessons: %v", err),
		})
		return result
	}

	for _, lesson := range lessons {
		b.processLesson(ctx, course, lesson, speaker, targetDate, result)
	}
	return result
}

func (b *Batch) processLesson(ctx context.Context, course *domain.Course, lesson *domain.Lesson, speaker, targetDate string, result *domain.GenerationResult) {
	result.LessonsProcessed++

	if len(lesson.PDFURLs) == 0 {
		b.logger.Warn("lesson has no PDF resources",
			slog.String("lesson_id", lesson.ID),
			slog.String("lesson", lesson.Title))
		return
	}

	for i, pdfURL := range lesson.PDFURLs {
		if err := ctx.Err(); err != nil {
			return
		}
		b.processPDF(ctx, course, lesson, speaker, targetDate, i, pdfURL, result)
	}
}

func (b *Batch) processPDF(ctx context.Context, course *domain.Course, lesson *domain.Lesson, speaker, targetDate string, index int, pdfURL string, result *domain.GenerationResult) {
	pack, err := b.gen.GenerateScript(ctx, ScriptRequest{
		LessonTitle: lesson.Title,
		PDFURL:      pdfURL,
		SpeakerName: speaker,
	})
	if err != nil {
		result.FailedScripts++
		result.Errors = append(result.Errors, domain.GenerationError{
			CourseID: course.ID,
			LessonID: lesson.ID,
			PDFIndex: index,
			Stage:    domain.StageScriptGeneration,
			Error:    err.Error(),
		})
		b.logger.Error("script generation failed",
			slog.String("lesson_id", lesson.ID),
			slog.Int("pdf_index", index),
			slog.String("error", err.Error()))
		return
	}
	result.SuccessfulScripts++

	scriptKey := storage.ObjectKey(course.TeacherID, course.ID, targetDate, artifactName(lesson.ID, index, "script.pdf"))
	scriptURL, err := b.upload(ctx, b.opts.ScriptsBucket, scriptKey, pack.RenderBytes, "application/pdf")
	if err != nil {
		result.Errors = append(result.Errors, domain.GenerationError{
			CourseID: course.ID,
			LessonID: lesson.ID,
			PDFIndex: index,
			Stage:    domain.StageLessonProcessing,
			Error:    fmt.Sprintf("uploading script: %v", err),
		})
		return
	}

	audioURL := ""
	if b.opts.GenerateAudio {
		la, err := b.gen.GenerateTimedAudio(ctx, &pack.Script)
		if err != nil {
			result.FailedAudio++
			result.Errors = append(result.Errors, domain.GenerationError{
				CourseID: course.ID,
				LessonID: lesson.ID,
				PDFIndex: index,
				Stage:    domain.StageAudioGeneration,
				Error:    err.Error(),
			})
			b.logger.Error("audio generation failed",
				slog.String("lesson_id", lesson.ID),
				slog.Int("pdf_index", index),
				slog.String("error", err.Error()))
		} else {
			audioKey := storage.ObjectKey(course.TeacherID, course.ID, targetDate, artifactName(lesson.ID, index, "lecture.wav"))
			audioURL, err = b.upload(ctx, b.opts.AudioBucket, audioKey, la.Data, "audio/wav")
			if err != nil {
				result.FailedAudio++
				result.Errors = append(result.Errors, domain.GenerationError{
					CourseID: course.ID,
					LessonID: lesson.ID,
					PDFIndex: index,
					Stage:    domain.StageAudioGeneration,
					Error:    fmt.Sprintf("uploading audio: %v", err),
				})
			} else {
				result.SuccessfulAudio++
			}
		}
	}

	prepared := &domain.PreparedLesson{
		ID:        id.MustGenerate("prep"),
		LessonID:  lesson.ID,
		TeacherID: course.TeacherID,
		URL:       scriptURL,
		AudioURL:  audioURL,
		CreatedAt: time.Now().UTC(),
	}
	if err := b.db.CreatePreparedLesson(ctx, prepared); err != nil {
		result.Errors = append(result.Errors, domain.GenerationError{
			CourseID: course.ID,
			LessonID: lesson.ID,
			PDFIndex: index,
			Stage:    domain.StageLessonProcessing,
			Error:    fmt.Sprintf("recording prepared lesson: %v", err),
		})
	}
}

// upload stores an artifact and returns the URL to record, signed when
// configured.
func (b *Batch) upload(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	url, err := b.objects.Upload(ctx, bucket, key, data, contentType)
	if err != nil {
		return "", err
	}
	if b.opts.SignURLs {
		if signed, err := b.objects.SignedURL(bucket, key, b.opts.SignExpiry); err == nil {
			return signed, nil
		}
	}
	return url, nil
}

// recordRun persists the summary; failures are logged, never fatal to the
// run that already completed.
func (b *Batch) recordRun(ctx context.Context, summary *domain.BatchSummary) {
	encoded, err := json.Marshal(summary)
	if err != nil {
		b.logger.Error("could not encode run summary", slog.String("error", err.Error()))
		return
	}
	log := &domain.GenerationLog{
		ID:         id.MustGenerate("log"),
		RunID:      summary.RunID,
		TargetDate: summary.TargetDate,
		Summary:    string(encoded),
		CreatedAt:  time.Now().UTC(),
	}
	if err := b.db.CreateGenerationLog(ctx, log); err != nil {
		b.logger.Error("could not persist run summary",
			slog.String("run_id", summary.RunID),
			slog.String("error", err.Error()))
	}
}

// artifactName builds the per-PDF artifact file name. The index suffix only
// appears when a lesson carries more than one source document.
func artifactName(lessonID string, index int, suffix string) string {
	if index == 0 {
		return fmt.Sprintf("%s_%s", lessonID, suffix)
	}
	return fmt.Sprintf("%s_%d_%s", lessonID, index+1, suffix)
}
