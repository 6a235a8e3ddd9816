package domain

// Voice identifies a TTS voice from the fixed supported set.
type Voice string

const (
	VoiceAlloy   Voice = "alloy"
	VoiceEcho    Voice = "echo"
	VoiceFable   Voice = "fable"
	VoiceOnyx    Voice = "onyx"
	VoiceNova    Voice = "nova"
	VoiceShimmer Voice = "shimmer"
)

// Voices is the enumerated set of voices accepted for lecture audio.
var Voices = []Voice{VoiceAlloy, VoiceEcho, VoiceFable, VoiceOnyx, VoiceNova, VoiceShimmer}

// Valid reports whether v is one of the supported voices.
func (v Voice) Valid() bool {
	for _, known := range Voices {
		if v == known {
			return true
		}
	}
	return false
}

// AssemblyPolicy selects how segment audio is joined into one recording.
type AssemblyPolicy string

const (
	// AssemblyPadded pads each segment up to its declared minimum duration
	// with silence and joins segments back-to-back.
	AssemblyPadded AssemblyPolicy = "padded"
	// AssemblyGapped skips per-segment padding and inserts a fixed-length
	// silence gap between adjacent segments that produced audio.
	AssemblyGapped AssemblyPolicy = "gapped"
)

// Valid reports whether p is a known assembly policy.
func (p AssemblyPolicy) Valid() bool {
	return p == AssemblyPadded || p == AssemblyGapped
}

// SegmentAudio is the manifest record for one assembled segment.
type SegmentAudio struct {
	Order                 int         `json:"order"`
	Title                 string      `json:"title"`
	Type                  SegmentType `json:"type"`
	DeclaredMinSeconds    float64     `json:"declared_duration_min_seconds"`
	SpeechDurationSeconds float64     `json:"speech_duration_seconds"`
	SilenceAddedSeconds   float64     `json:"silence_added_seconds"`
	FinalDurationSeconds  float64     `json:"final_duration_seconds"`
	ContentCharCount      int         `json:"content_char_count"`
	ChunksSynthesized     int         `json:"chunks_synthesized"`
	ChunksFailed          int         `json:"chunks_failed,omitempty"`
}

// LectureAudio is the final assembled recording plus its composition manifest.
type LectureAudio struct {
	Data []byte `json:"-"`

	SectionsCount         int            `json:"sections_count"`
	TotalDurationSeconds  float64        `json:"total_duration_seconds"`
	SpeechDurationSeconds float64        `json:"speech_duration_seconds"`
	GapDurationSeconds    float64        `json:"gap_duration_seconds"`
	GapsAdded             int            `json:"gaps_added"`
	SampleRate            int            `json:"sample_rate"`
	Policy                AssemblyPolicy `json:"policy"`
	Playlist              []SegmentAudio `json:"playlist"`
}
