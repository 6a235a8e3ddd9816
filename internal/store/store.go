// Package store defines the persistence interface for courses, lessons,
// and generation history.
package store

import (
	"context"
	"errors"

	"github.com/knodemy/lecture-server/internal/domain"
)

// Sentinel errors returned by store implementations.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Store is the persistence layer behind the lecture pipeline.
type Store interface {
	// Teachers.
	CreateTeacher(ctx context.Context, t *domain.Teacher) error
	GetTeacher(ctx context.Context, id string) (*domain.Teacher, error)

	// Courses.
	CreateCourse(ctx context.Context, c *domain.Course) error
	GetCourse(ctx context.Context, id string) (*domain.Course, error)
	ListCourses(ctx context.Context) ([]*domain.Course, error)

	// Lessons.
	CreateLesson(ctx context.Context, l *domain.Lesson) error
	GetLesson(ctx context.Context, id string) (*domain.Lesson, error)
	LessonsForCourse(ctx context.Context, courseID string) ([]*domain.Lesson, error)

	// Prepared lessons.
	CreatePreparedLesson(ctx context.Context, p *domain.PreparedLesson) error
	PreparedLessonsForLesson(ctx context.Context, lessonID string) ([]*domain.PreparedLesson, error)

	// Generation logs.
	CreateGenerationLog(ctx context.Context, g *domain.GenerationLog) error
	GetGenerationLog(ctx context.Context, runID string) (*domain.GenerationLog, error)
	RecentGenerationLogs(ctx context.Context, limit int) ([]*domain.GenerationLog, error)

	Close() error
}
