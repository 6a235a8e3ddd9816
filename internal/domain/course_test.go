package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCourse_NeedsGenerationOn(t *testing.T) {
	tests := []struct {
		name       string
		course     Course
		date       string
		want       bool
		wantReason string
	}{
		{
			name:       "new course starting on date",
			course:     Course{StartDate: "2025-03-10"},
			date:       "2025-03-10",
			want:       true,
			wantReason: "new_course",
		},
		{
			name:       "continuing course with next session",
			course:     Course{StartDate: "2025-01-06", NextSession: "2025-03-10"},
			date:       "2025-03-10",
			want:       true,
			wantReason: "next_session",
		},
		{
			name:   "no session on date",
			course: Course{StartDate: "2025-01-06", NextSession: "2025-03-12"},
			date:   "2025-03-10",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := tt.course.NeedsGenerationOn(tt.date)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestVoice_Valid(t *testing.T) {
	for _, v := range Voices {
		assert.True(t, v.Valid(), "voice %s should be valid", v)
	}
	assert.False(t, Voice("hal9000").Valid())
	assert.False(t, Voice("").Valid())
}

func TestBatchSummary_Merge(t *testing.T) {
	summary := &BatchSummary{}

	summary.Merge(&GenerationResult{
		LessonsProcessed:  2,
		SuccessfulScripts: 2,
		SuccessfulAudio:   1,
		FailedAudio:       1,
		Errors: []GenerationError{
			{LessonID: "les-1", Stage: StageAudioGeneration, Error: "tts unavailable"},
		},
	})
	summary.Merge(&GenerationResult{SkippedReason: "no lessons with PDF resources"})

	assert.Equal(t, 1, summary.ProcessedCourses)
	assert.Equal(t, 1, summary.SkippedCourses)
	assert.Equal(t, 2, summary.TotalLessonsProcessed)
	assert.Equal(t, 2, summary.SuccessfulScriptGenerations)
	assert.Equal(t, 1, summary.FailedAudioGenerations)
	assert.Len(t, summary.Errors, 1)
}

func TestScriptSegment_MinSeconds(t *testing.T) {
	three := 3
	seg := ScriptSegment{DurationMin: &three}
	assert.InDelta(t, 180.0, seg.MinSeconds(), 0.001)

	unbounded := ScriptSegment{}
	assert.Zero(t, unbounded.MinSeconds())
}
