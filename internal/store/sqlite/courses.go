package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/knodemy/lecture-server/internal/domain"
	"github.com/knodemy/lecture-server/internal/store"
)

// teacherColumns is the ordered list of columns selected in teacher queries.
// Must match the scan order in scanTeacher.
const teacherColumns = `id, name, school_id`

func scanTeacher(scanner interface{ Scan(dest ...any) error }) (*domain.Teacher, error) {
	var (
		t        domain.Teacher
		schoolID sql.NullString
	)
	if err := scanner.Scan(&t.ID, &t.Name, &schoolID); err != nil {
		return nil, err
	}
	if schoolID.Valid {
		t.SchoolID = schoolID.String
	}
	return &t, nil
}

// CreateTeacher inserts a teacher.
// Returns store.ErrAlreadyExists if the ID is taken.
func (s *Store) CreateTeacher(ctx context.Context, t *domain.Teacher) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO teachers (id, name, school_id) VALUES (?, ?, ?)`,
		t.ID, t.Name, nullString(t.SchoolID),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert teacher: %w", err)
	}
	return nil
}

// GetTeacher fetches a teacher by ID.
// Returns store.ErrNotFound if no teacher exists.
func (s *Store) GetTeacher(ctx context.Context, id string) (*domain.Teacher, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+teacherColumns+` FROM teachers WHERE id = ?`, id)

	t, err := scanTeacher(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("teacher %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get teacher: %w", err)
	}
	return t, nil
}

// courseColumns is the ordered list of columns selected in course queries.
// Must match the scan order in scanCourse.
const courseColumns = `id, title, teacher_id, start_date, next_session, start_time, end_time, created_at`

func scanCourse(scanner interface{ Scan(dest ...any) error }) (*domain.Course, error) {
	var (
		c           domain.Course
		startDate   sql.NullString
		nextSession sql.NullString
		startTime   sql.NullString
		endTime     sql.NullString
		createdAt   string
	)

	err := scanner.Scan(
		&c.ID,
		&c.Title,
		&c.TeacherID,
		&startDate,
		&nextSession,
		&startTime,
		&endTime,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	if startDate.Valid {
		c.StartDate = startDate.String
	}
	if nextSession.Valid {
		c.NextSession = nextSession.String
	}
	if startTime.Valid {
		c.StartTime = startTime.String
	}
	if endTime.Valid {
		c.EndTime = endTime.String
	}

	return &c, nil
}

// CreateCourse inserts a course.
// Returns store.ErrAlreadyExists if the ID is taken.
func (s *Store) CreateCourse(ctx context.Context, c *domain.Course) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO courses (
			id, title, teacher_id, start_date, next_session, start_time, end_time, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.Title,
		c.TeacherID,
		nullString(c.StartDate),
		nullString(c.NextSession),
		nullString(c.StartTime),
		nullString(c.EndTime),
		formatTime(c.CreatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert course: %w", err)
	}
	return nil
}

// GetCourse fetches a course by ID.
// Returns store.ErrNotFound if no course exists.
func (s *Store) GetCourse(ctx context.Context, id string) (*domain.Course, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = ?`, id)

	c, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("course %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	return c, nil
}

// ListCourses returns every course, oldest first.
func (s *Store) ListCourses(ctx context.Context) ([]*domain.Course, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+courseColumns+` FROM courses ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var courses []*domain.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}
