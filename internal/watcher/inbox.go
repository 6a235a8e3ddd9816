package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/knodemy/lecture-server/internal/domain"
	"github.com/knodemy/lecture-server/internal/id"
	"github.com/knodemy/lecture-server/internal/store"
)

// Inbox turns settled PDFs in the drop directory into lessons on a
// configured course. Generation then picks them up on the course's next
// scheduled run, same as lessons registered through the API.
type Inbox struct {
	watcher  *Watcher
	db       store.Store
	courseID string
	logger   *slog.Logger
}

// NewInbox wires a watcher to the store. The target course must exist.
func NewInbox(ctx context.Context, w *Watcher, db store.Store, courseID string, logger *slog.Logger) (*Inbox, error) {
	if courseID == "" {
		return nil, fmt.Errorf("inbox requires a target course")
	}
	if _, err := db.GetCourse(ctx, courseID); err != nil {
		return nil, fmt.Errorf("inbox course %s: %w", courseID, err)
	}

	return &Inbox{
		watcher:  w,
		db:       db,
		courseID: courseID,
		logger:   logger,
	}, nil
}

// Run consumes watcher events until the context is cancelled. Registration
// failures are logged and never stop the loop.
func (i *Inbox) Run(ctx context.Context) error {
	go func() {
		if err := i.watcher.Start(ctx); err != nil {
			i.logger.Error("inbox watcher stopped", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-i.watcher.Events():
			if !ok {
				return nil
			}
			if err := i.register(ctx, event); err != nil {
				i.logger.Error("failed to register inbox lesson",
					slog.String("path", event.Path),
					slog.Any("error", err))
			}
		case err, ok := <-i.watcher.Errors():
			if !ok {
				return nil
			}
			i.logger.Warn("inbox watch error", slog.Any("error", err))
		}
	}
}

// register creates a lesson for a settled PDF.
func (i *Inbox) register(ctx context.Context, event Event) error {
	abs, err := filepath.Abs(event.Path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", event.Path, err)
	}

	lesson := &domain.Lesson{
		ID:       id.MustGenerate("lesson"),
		CourseID: i.courseID,
		Title:    lessonTitle(abs),
		PDFURLs:  []string{"file://" + abs},
	}
	if err := i.db.CreateLesson(ctx, lesson); err != nil {
		return err
	}

	i.logger.Info("registered inbox lesson",
		slog.String("lesson_id", lesson.ID),
		slog.String("course_id", i.courseID),
		slog.String("title", lesson.Title))
	return nil
}

// lessonTitle derives a readable title from the dropped file's name.
// "photosynthesis_week-3.pdf" becomes "photosynthesis week 3".
func lessonTitle(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return strings.Join(strings.Fields(base), " ")
}
