package sqlite

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/knodemy/lecture-server/internal/domain"
	"github.com/knodemy/lecture-server/internal/store"
)

// lessonColumns is the ordered list of columns selected in lesson queries.
// Must match the scan order in scanLesson.
const lessonColumns = `id, course_id, title, pdf_urls, created_at`

func scanLesson(scanner interface{ Scan(dest ...any) error }) (*domain.Lesson, error) {
	var (
		l         domain.Lesson
		pdfURLs   string
		createdAt string
	)

	if err := scanner.Scan(&l.ID, &l.CourseID, &l.Title, &pdfURLs, &createdAt); err != nil {
		return nil, err
	}

	var err error
	l.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(pdfURLs), &l.PDFURLs); err != nil {
		return nil, fmt.Errorf("decode pdf_urls: %w", err)
	}

	return &l, nil
}

// CreateLesson inserts a lesson. PDF URLs are stored as a JSON array.
// Returns store.ErrAlreadyExists if the ID is taken.
func (s *Store) CreateLesson(ctx context.Context, l *domain.Lesson) error {
	urls := l.PDFURLs
	if urls == nil {
		urls = []string{}
	}
	encoded, err := json.Marshal(urls)
	if err != nil {
		return fmt.Errorf("encode pdf_urls: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO lessons (id, course_id, title, pdf_urls, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		l.ID, l.CourseID, l.Title, string(encoded), formatTime(l.CreatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert lesson: %w", err)
	}
	return nil
}

// GetLesson fetches a lesson by ID.
// Returns store.ErrNotFound if no lesson exists.
func (s *Store) GetLesson(ctx context.Context, id string) (*domain.Lesson, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+lessonColumns+` FROM lessons WHERE id = ?`, id)

	l, err := scanLesson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lesson %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get lesson: %w", err)
	}
	return l, nil
}

// LessonsForCourse returns a course's lessons, oldest first.
func (s *Store) LessonsForCourse(ctx context.Context, courseID string) ([]*domain.Lesson, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+lessonColumns+` FROM lessons WHERE course_id = ? ORDER BY created_at`, courseID)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	var lessons []*domain.Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

// preparedColumns is the ordered list of columns selected in prepared
// lesson queries. Must match the scan order in scanPrepared.
const preparedColumns = `id, lesson_id, teacher_id, url, audio_url, created_at`

func scanPrepared(scanner interface{ Scan(dest ...any) error }) (*domain.PreparedLesson, error) {
	var (
		p         domain.PreparedLesson
		audioURL  sql.NullString
		createdAt string
	)

	if err := scanner.Scan(&p.ID, &p.LessonID, &p.TeacherID, &p.URL, &audioURL, &createdAt); err != nil {
		return nil, err
	}

	var err error
	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	if audioURL.Valid {
		p.AudioURL = audioURL.String
	}

	return &p, nil
}

// CreatePreparedLesson records an uploaded script/audio pair for a lesson.
func (s *Store) CreatePreparedLesson(ctx context.Context, p *domain.PreparedLesson) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prepared_lessons (id, lesson_id, teacher_id, url, audio_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.LessonID, p.TeacherID, p.URL, nullString(p.AudioURL), formatTime(p.CreatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert prepared lesson: %w", err)
	}
	return nil
}

// PreparedLessonsForLesson returns prepared artifacts for a lesson, newest
// first.
func (s *Store) PreparedLessonsForLesson(ctx context.Context, lessonID string) ([]*domain.PreparedLesson, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+preparedColumns+` FROM prepared_lessons WHERE lesson_id = ? ORDER BY created_at DESC`, lessonID)
	if err != nil {
		return nil, fmt.Errorf("list prepared lessons: %w", err)
	}
	defer rows.Close()

	var prepared []*domain.PreparedLesson
	for rows.Next() {
		p, err := scanPrepared(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prepared lesson: %w", err)
		}
		prepared = append(prepared, p)
	}
	return prepared, rows.Err()
}
