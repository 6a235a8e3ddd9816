package domain

import "time"

// GenerationStage names the pipeline stage a batch error was recorded at.
type GenerationStage string

const (
	StageScriptGeneration GenerationStage = "script_generation"
	StageAudioGeneration  GenerationStage = "audio_generation"
	StageLessonProcessing GenerationStage = "lesson_processing"
	StageCourseProcessing GenerationStage = "course_processing"
)

// GenerationError is one structured failure entry in a batch summary.
type GenerationError struct {
	CourseID string          `json:"course_id,omitempty"`
	LessonID string          `json:"lesson_id,omitempty"`
	PDFIndex int             `json:"pdf_index,omitempty"`
	Stage    GenerationStage `json:"stage"`
	Error    string          `json:"error"`
}

// GenerationResult tracks the outcome of processing one course for a target
// date. Script and audio outcomes are counted independently: audio is only
// attempted for lessons whose script succeeded.
type GenerationResult struct {
	CourseID    string `json:"course_id"`
	TeacherID   string `json:"teacher_id"`
	CourseTitle string `json:"course_title"`
	TargetDate  string `json:"target_date"`

	LessonsProcessed  int               `json:"lessons_processed"`
	SuccessfulScripts int               `json:"successful_generations"`
	FailedScripts     int               `json:"failed_generations"`
	SuccessfulAudio   int               `json:"successful_audio_generations"`
	FailedAudio       int               `json:"failed_audio_generations"`
	Errors            []GenerationError `json:"errors"`
	SkippedReason     string            `json:"skipped_reason,omitempty"`
}

// Skipped reports whether the course was skipped without processing.
func (r *GenerationResult) Skipped() bool {
	return r.SkippedReason != ""
}

// BatchSummary aggregates per-course generation results for one run date.
type BatchSummary struct {
	RunID      string `json:"run_id"`
	TargetDate string `json:"target_date"`

	TotalCoursesFound int `json:"total_courses_found"`
	SkippedCourses    int `json:"skipped_courses"`
	ProcessedCourses  int `json:"processed_courses"`

	TotalLessonsProcessed       int `json:"total_lessons_processed"`
	SuccessfulScriptGenerations int `json:"successful_script_generations"`
	FailedScriptGenerations     int `json:"failed_script_generations"`
	SuccessfulAudioGenerations  int `json:"successful_audio_generations"`
	FailedAudioGenerations      int `json:"failed_audio_generations"`

	DurationSeconds float64           `json:"duration_seconds"`
	Errors          []GenerationError `json:"errors"`
	StartedAt       time.Time         `json:"started_at"`
	CompletedAt     time.Time         `json:"completed_at"`
}

// Merge folds one course result into the summary.
func (s *BatchSummary) Merge(r *GenerationResult) {
	if r.Skipped() {
		s.SkippedCourses++
		return
	}
	s.ProcessedCourses++
	s.TotalLessonsProcessed += r.LessonsProcessed
	s.SuccessfulScriptGenerations += r.SuccessfulScripts
	s.FailedScriptGenerations += r.FailedScripts
	s.SuccessfulAudioGenerations += r.SuccessfulAudio
	s.FailedAudioGenerations += r.FailedAudio
	s.Errors = append(s.Errors, r.Errors...)
}
