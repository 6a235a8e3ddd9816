package audio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knodemy/lecture-server/internal/domain"
	domainerrors "github.com/knodemy/lecture-server/internal/errors"
	"github.com/knodemy/lecture-server/internal/ratelimit"
	"github.com/knodemy/lecture-server/internal/retry"
	"github.com/knodemy/lecture-server/internal/segment"
)

// testRate keeps fixture audio tiny while exercising real WAV encode/decode.
const testRate = 100

// fakeSynth renders a fixed duration of non-zero samples per chunk, failing
// when the chunk text matches failOn.
type fakeSynth struct {
	mu              sync.Mutex
	secondsPerChunk float64
	failOn          string
	calls           []string
}

func (f *fakeSynth) Synthesize(_ context.Context, text string, _ domain.Voice) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()

	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return nil, errors.New("synthesis unavailable")
	}

	samples := make([]int, int(f.secondsPerChunk*testRate))
	for i := range samples {
		samples[i] = 1000
	}
	return Encode(Clip{Samples: samples, Rate: testRate})
}

func newTestAssembler(t *testing.T, synth *fakeSynth, opts AssemblerOptions) *Assembler {
	t.Helper()
	return NewAssembler(
		synth,
		segment.NewChunker(4000, 1),
		ratelimit.New(10000, 10000),
		retry.Policy{MaxAttempts: 1},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		opts,
	)
}

func minutes(m int) *int { return &m }

func testSegments() []domain.ScriptSegment {
	return []domain.ScriptSegment{
		{Order: 0, Title: "Opening Hook", Type: domain.SegmentTypeHook, Content: "Welcome to today's lesson on photosynthesis.", DurationMin: minutes(1), DurationMax: minutes(2)},
		{Order: 1, Title: "Main Content", Type: domain.SegmentTypeContent, Content: "Plants convert light into chemical energy inside chloroplasts.", DurationMin: minutes(2), DurationMax: minutes(3)},
		{Order: 2, Title: "Recap", Type: domain.SegmentTypeRecap, Content: "Remember that sunlight powers the whole process.", DurationMin: minutes(1), DurationMax: minutes(1)},
	}
}

func TestAssemble_PadsToDeclaredMinimum(t *testing.T) {
	synth := &fakeSynth{secondsPerChunk: 15}
	a := newTestAssembler(t, synth, AssemblerOptions{Policy: domain.AssemblyPadded})

	la, err := a.Assemble(context.Background(), testSegments()[:1], domain.VoiceAlloy)
	require.NoError(t, err)

	require.Len(t, la.Playlist, 1)
	entry := la.Playlist[0]
	assert.InDelta(t, 60.0, entry.DeclaredMinSeconds, 1e-9)
	assert.InDelta(t, 15.0, entry.SpeechDurationSeconds, 0.02)
	assert.InDelta(t, 45.0, entry.SilenceAddedSeconds, 0.02)
	assert.InDelta(t, 60.0, entry.FinalDurationSeconds, 0.02)
	assert.InDelta(t, 60.0, la.TotalDurationSeconds, 0.02)
	assert.Equal(t, testRate, la.SampleRate)
	assert.Equal(t, domain.AssemblyPadded, la.Policy)
	assert.Zero(t, la.GapsAdded)

	// The padding is real trailing silence in the recording.
	clip, err := Decode(la.Data)
	require.NoError(t, err)
	assert.Zero(t, clip.Samples[len(clip.Samples)-1])
	assert.NotZero(t, clip.Samples[0])
}

func TestAssemble_NoPaddingWhenSpeechMeetsMinimum(t *testing.T) {
	synth := &fakeSynth{secondsPerChunk: 70}
	a := newTestAssembler(t, synth, AssemblerOptions{Policy: domain.AssemblyPadded})

	la, err := a.Assemble(context.Background(), testSegments()[:1], domain.VoiceAlloy)
	require.NoError(t, err)

	entry := la.Playlist[0]
	assert.Zero(t, entry.SilenceAddedSeconds)
	assert.InDelta(t, 70.0, entry.FinalDurationSeconds, 0.02)
}

func TestAssemble_GappedPolicyInsertsGapsBetweenSegments(t *testing.T) {
	synth := &fakeSynth{secondsPerChunk: 10}
	a := newTestAssembler(t, synth, AssemblerOptions{Policy: domain.AssemblyGapped, GapSeconds: 30})

	la, err := a.Assemble(context.Background(), testSegments(), domain.VoiceAlloy)
	require.NoError(t, err)

	assert.Equal(t, 3, la.SectionsCount)
	assert.Equal(t, 2, la.GapsAdded)
	assert.InDelta(t, 60.0, la.GapDurationSeconds, 1e-9)
	// 3 segments of 10s speech, no padding, plus two 30s gaps.
	assert.InDelta(t, 90.0, la.TotalDurationSeconds, 0.05)
	assert.InDelta(t, 30.0, la.SpeechDurationSeconds, 0.05)

	// No segment gets padded under the gapped policy.
	for _, entry := range la.Playlist {
		assert.Zero(t, entry.SilenceAddedSeconds)
	}

	// Never a gap before the first or after the last segment.
	clip, err := Decode(la.Data)
	require.NoError(t, err)
	assert.NotZero(t, clip.Samples[0])
	assert.NotZero(t, clip.Samples[len(clip.Samples)-1])
}

func TestAssemble_SingleSegmentGappedHasNoGaps(t *testing.T) {
	synth := &fakeSynth{secondsPerChunk: 5}
	a := newTestAssembler(t, synth, AssemblerOptions{Policy: domain.AssemblyGapped, GapSeconds: 30})

	la, err := a.Assemble(context.Background(), testSegments()[:1], domain.VoiceAlloy)
	require.NoError(t, err)
	assert.Zero(t, la.GapsAdded)
	assert.InDelta(t, 5.0, la.TotalDurationSeconds, 0.02)
}

func TestAssemble_SkipsSegmentWhoseChunksAllFail(t *testing.T) {
	synth := &fakeSynth{secondsPerChunk: 5, failOn: "chloroplasts"}
	a := newTestAssembler(t, synth, AssemblerOptions{Policy: domain.AssemblyPadded})

	segs := testSegments()
	// Kill padding so durations stay small.
	for i := range segs {
		segs[i].DurationMin = nil
	}

	la, err := a.Assemble(context.Background(), segs, domain.VoiceAlloy)
	require.NoError(t, err)

	assert.Equal(t, 2, la.SectionsCount)
	require.Len(t, la.Playlist, 2)
	assert.Equal(t, 0, la.Playlist[0].Order)
	assert.Equal(t, 2, la.Playlist[1].Order)
}

func TestAssemble_FailsWhenNothingSynthesizes(t *testing.T) {
	synth := &fakeSynth{secondsPerChunk: 5, failOn: " "} // every chunk fails
	a := newTestAssembler(t, synth, AssemblerOptions{Policy: domain.AssemblyPadded})

	_, err := a.Assemble(context.Background(), testSegments(), domain.VoiceAlloy)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNoAudioGenerated))
}

func TestAssemble_SkipsSegmentWithNoSpeakableContent(t *testing.T) {
	synth := &fakeSynth{secondsPerChunk: 5}
	a := newTestAssembler(t, synth, AssemblerOptions{Policy: domain.AssemblyPadded})

	segs := []domain.ScriptSegment{
		{Order: 0, Title: "Notes", Content: "[only a teaching note]", Type: domain.SegmentTypeContent},
		{Order: 1, Title: "Recap", Content: "Actual spoken recap content.", Type: domain.SegmentTypeRecap},
	}

	la, err := a.Assemble(context.Background(), segs, domain.VoiceAlloy)
	require.NoError(t, err)
	assert.Equal(t, 1, la.SectionsCount)
	assert.Equal(t, "Recap", la.Playlist[0].Title)
}

func TestAssemble_DropsFailedChunksKeepsRest(t *testing.T) {
	synth := &fakeSynth{secondsPerChunk: 5, failOn: "beta"}
	a := NewAssembler(
		synth,
		segment.NewChunker(40, 1), // force multiple chunks
		ratelimit.New(10000, 10000),
		retry.Policy{MaxAttempts: 1},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		AssemblerOptions{Policy: domain.AssemblyPadded},
	)

	segs := []domain.ScriptSegment{{
		Order:   0,
		Title:   "Content",
		Type:    domain.SegmentTypeContent,
		Content: "Alpha sentence that is long enough here. Another beta sentence that will break. Gamma sentence closing the section now.",
	}}

	la, err := a.Assemble(context.Background(), segs, domain.VoiceAlloy)
	require.NoError(t, err)

	entry := la.Playlist[0]
	assert.Equal(t, 1, entry.ChunksFailed)
	assert.Equal(t, 2, entry.ChunksSynthesized)
	assert.InDelta(t, 10.0, entry.SpeechDurationSeconds, 0.02)
}

// driftingRateSynth returns one second of audio per chunk, each call at the
// next rate in the list.
type driftingRateSynth struct {
	mu    sync.Mutex
	rates []int
	call  int
}

func (d *driftingRateSynth) Synthesize(_ context.Context, _ string, _ domain.Voice) ([]byte, error) {
	d.mu.Lock()
	rate := d.rates[d.call%len(d.rates)]
	d.call++
	d.mu.Unlock()

	samples := make([]int, rate)
	for i := range samples {
		samples[i] = 1000
	}
	return Encode(Clip{Samples: samples, Rate: rate})
}

func TestAssemble_WarnsOnSampleRateMismatch(t *testing.T) {
	var logs bytes.Buffer
	synth := &driftingRateSynth{rates: []int{testRate, 2 * testRate}}

	// A small budget forces the segment into two chunks, one per rate.
	a := NewAssembler(
		synth,
		segment.NewChunker(40, 1),
		ratelimit.New(10000, 10000),
		retry.Policy{MaxAttempts: 1},
		slog.New(slog.NewTextHandler(&logs, nil)),
		AssemblerOptions{Policy: domain.AssemblyPadded},
	)

	segs := []domain.ScriptSegment{{
		Order:   0,
		Title:   "Main Content",
		Type:    domain.SegmentTypeContent,
		Content: "First sentence about photosynthesis here. Second sentence about chloroplasts here.",
	}}

	la, err := a.Assemble(context.Background(), segs, domain.VoiceAlloy)
	require.NoError(t, err)
	require.Equal(t, 2, synth.call, "content must split into two chunks")

	assert.Contains(t, logs.String(), "sample rate mismatch")
	// The first chunk's rate wins for the whole recording.
	assert.Equal(t, testRate, la.SampleRate)
	// Both chunks' samples are kept: 100 + 200 samples at 100 Hz is 3s.
	assert.InDelta(t, 3.0, la.TotalDurationSeconds, 0.02)
	assert.Equal(t, 2, la.Playlist[0].ChunksSynthesized)
}

func TestAssemble_RetriesTransientChunkFailures(t *testing.T) {
	synth := &flakySynth{failures: 2}
	a := NewAssembler(
		synth,
		segment.NewChunker(4000, 1),
		ratelimit.New(10000, 10000),
		retry.Policy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		AssemblerOptions{Policy: domain.AssemblyPadded},
	)

	segs := testSegments()[:1]
	segs[0].DurationMin = nil

	la, err := a.Assemble(context.Background(), segs, domain.VoiceAlloy)
	require.NoError(t, err)
	assert.Equal(t, 1, la.SectionsCount)
	assert.Equal(t, 3, synth.attempts)
}

func TestAssemble_ContextCancellation(t *testing.T) {
	synth := &fakeSynth{secondsPerChunk: 5}
	a := newTestAssembler(t, synth, AssemblerOptions{Policy: domain.AssemblyPadded})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Assemble(ctx, testSegments(), domain.VoiceAlloy)
	require.ErrorIs(t, err, context.Canceled)
}

// flakySynth fails the first failures attempts, then succeeds.
type flakySynth struct {
	mu       sync.Mutex
	failures int
	attempts int
}

func (f *flakySynth) Synthesize(_ context.Context, _ string, _ domain.Voice) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.attempts++
	if f.attempts <= f.failures {
		return nil, errors.New("temporarily unavailable")
	}

	samples := make([]int, 5*testRate)
	for i := range samples {
		samples[i] = 1000
	}
	return Encode(Clip{Samples: samples, Rate: testRate})
}
