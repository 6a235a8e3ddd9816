package domain

import "time"

// Course is a scheduled course owned by a teacher. A course needs lecture
// generation on a date when it either starts that day or has its next
// session that day.
type Course struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	TeacherID   string `json:"teacher_id"`
	StartDate   string `json:"start_date,omitempty"`  // YYYY-MM-DD
	NextSession string `json:"nextsession,omitempty"` // YYYY-MM-DD
	StartTime   string `json:"start_time,omitempty"`
	EndTime     string `json:"end_time,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NeedsGenerationOn reports whether the course should be processed for the
// given date, and why.
func (c *Course) NeedsGenerationOn(date string) (bool, string) {
	if c.StartDate == date {
		return true, "new_course"
	}
	if c.NextSession == date {
		return true, "next_session"
	}
	return false, ""
}

// Teacher is the voice/name source for generated lectures.
type Teacher struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SchoolID string `json:"school_id,omitempty"`
}

// Lesson belongs to a course and may carry PDF resources to lecture from.
type Lesson struct {
	ID       string   `json:"id"`
	CourseID string   `json:"course_id"`
	Title    string   `json:"title"`
	PDFURLs  []string `json:"pdf_urls"`

	CreatedAt time.Time `json:"created_at"`
}

// PreparedLesson records an uploaded script (and optionally audio) for a
// lesson, ready for unattended playback.
type PreparedLesson struct {
	ID        string    `json:"id"`
	LessonID  string    `json:"lesson_id"`
	TeacherID string    `json:"teacher_id"`
	URL       string    `json:"url"`
	AudioURL  string    `json:"audio_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// GenerationLog persists one batch summary for tracking.
type GenerationLog struct {
	ID         string    `json:"id"`
	RunID      string    `json:"run_id"`
	TargetDate string    `json:"target_date"`
	Summary    string    `json:"summary"` // JSON-encoded BatchSummary
	CreatedAt  time.Time `json:"created_at"`
}
