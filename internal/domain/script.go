package domain

import "time"

// SegmentType classifies a script segment by its pedagogical role.
type SegmentType string

const (
	SegmentTypeHook       SegmentType = "hook"
	SegmentTypeObjectives SegmentType = "objectives"
	SegmentTypeContent    SegmentType = "content"
	SegmentTypePractice   SegmentType = "practice"
	SegmentTypeRecap      SegmentType = "recap"
)

// LectureScript is the rewritten, structured script produced from a source
// document. Immutable once generated; the segment parser consumes it.
type LectureScript struct {
	Text        string    `json:"text"`
	LessonTitle string    `json:"lesson_title"`
	SpeakerName string    `json:"speaker_name"`
	Audience    string    `json:"audience"`
	Language    string    `json:"language"`
	SourceURL   string    `json:"source_url,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ScriptSegment is one titled, ordered, optionally duration-bounded slice of
// a lecture script. Order is dense starting at 0, in the sequence the timing
// markers appeared. Segments partition the cleaned script text; the marker
// lines themselves are discarded.
type ScriptSegment struct {
	Order       int         `json:"order"`
	Title       string      `json:"title"`
	Content     string      `json:"content"`
	DurationMin *int        `json:"duration_min,omitempty"` // minutes, nil when the marker carried no bounds
	DurationMax *int        `json:"duration_max,omitempty"` // minutes
	Type        SegmentType `json:"type"`
}

// MinSeconds returns the declared minimum duration in seconds, or 0 when the
// segment has no declared bounds.
func (s *ScriptSegment) MinSeconds() float64 {
	if s.DurationMin == nil {
		return 0
	}
	return float64(*s.DurationMin) * 60
}

// ScriptPack bundles the raw script text with its cosmetic printable
// rendering and generation metadata. The rendering is for human delivery
// only; audio generation works from Text.
type ScriptPack struct {
	Script      LectureScript `json:"script"`
	RenderBytes []byte        `json:"-"`
}
