package audio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/knodemy/lecture-server/internal/domain"
	domainerrors "github.com/knodemy/lecture-server/internal/errors"
	"github.com/knodemy/lecture-server/internal/ratelimit"
	"github.com/knodemy/lecture-server/internal/retry"
	"github.com/knodemy/lecture-server/internal/segment"
	"github.com/knodemy/lecture-server/internal/tts"
)

// limiterKey paces all synthesis requests through one bucket regardless of
// which provider backs them.
const limiterKey = "tts"

// DefaultGapSeconds is the silence inserted between segments under the
// gapped assembly policy.
const DefaultGapSeconds = 30.0

// AssemblerOptions configures lecture assembly.
type AssemblerOptions struct {
	// Policy selects padded or gapped joining.
	Policy domain.AssemblyPolicy
	// GapSeconds is the inter-segment gap length for the gapped policy;
	// non-positive values fall back to DefaultGapSeconds.
	GapSeconds float64
}

// Assembler turns parsed script segments into one timed lecture recording.
//
// Failure isolation is per chunk and per segment: a chunk that fails
// synthesis after retries is dropped with a warning, a segment whose chunks
// all fail is skipped, and only a lecture where every segment is skipped
// fails outright.
type Assembler struct {
	synth   tts.Synthesizer
	chunker *segment.Chunker
	limiter *ratelimit.KeyedRateLimiter
	retry   retry.Policy
	logger  *slog.Logger
	opts    AssemblerOptions
}

// NewAssembler creates an assembler.
func NewAssembler(
	synth tts.Synthesizer,
	chunker *segment.Chunker,
	limiter *ratelimit.KeyedRateLimiter,
	retryPolicy retry.Policy,
	logger *slog.Logger,
	opts AssemblerOptions,
) *Assembler {
	if !opts.Policy.Valid() {
		opts.Policy = domain.AssemblyPadded
	}
	if opts.GapSeconds <= 0 {
		opts.GapSeconds = DefaultGapSeconds
	}
	return &Assembler{
		synth:   synth,
		chunker: chunker,
		limiter: limiter,
		retry:   retryPolicy,
		logger:  logger,
		opts:    opts,
	}
}

// builtSegment is a segment's synthesized audio before joining.
type builtSegment struct {
	clip     Clip
	manifest domain.SegmentAudio
}

// Assemble synthesizes each segment's content and joins the results.
//
// Under the padded policy, each segment whose speech runs shorter than its
// declared minimum is extended with trailing silence before joining. Under
// the gapped policy, segments are joined with fixed-length gaps between
// adjacent segments; there is never a gap before the first or after the
// last.
func (a *Assembler) Assemble(ctx context.Context, segments []domain.ScriptSegment, voice domain.Voice) (*domain.LectureAudio, error) {
	var built []builtSegment

	for _, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		bs, ok := a.buildSegment(ctx, seg, voice)
		if !ok {
			continue
		}
		built = append(built, bs)
	}

	if len(built) == 0 {
		return nil, domainerrors.NoAudioGenerated(fmt.Sprintf(
			"none of the %d segments produced audio", len(segments)))
	}

	return a.join(built)
}

// buildSegment cleans, chunks, and synthesizes one segment. The second
// return value reports whether the segment produced any audio.
func (a *Assembler) buildSegment(ctx context.Context, seg domain.ScriptSegment, voice domain.Voice) (builtSegment, bool) {
	cleaned := segment.CheckContent(a.logger, seg.Title, segment.Clean(seg.Content))
	if cleaned == "" {
		a.logger.Warn("skipping segment with no speakable content",
			slog.Int("order", seg.Order),
			slog.String("segment", seg.Title))
		return builtSegment{}, false
	}

	chunks := a.chunker.Split(cleaned)
	if len(chunks) == 0 {
		a.logger.Warn("skipping segment that chunked to nothing",
			slog.Int("order", seg.Order),
			slog.String("segment", seg.Title))
		return builtSegment{}, false
	}

	var (
		clip   Clip
		failed int
	)
	for i, chunk := range chunks {
		part, err := a.synthesizeChunk(ctx, chunk, voice)
		if err != nil {
			failed++
			a.logger.Warn("dropping chunk after failed synthesis",
				slog.Int("order", seg.Order),
				slog.String("segment", seg.Title),
				slog.Int("chunk", i),
				slog.String("error", err.Error()))
			continue
		}
		if clip.Rate == 0 {
			clip.Rate = part.Rate
		} else if part.Rate != clip.Rate {
			a.logger.Warn("sample rate mismatch between chunks",
				slog.String("segment", seg.Title),
				slog.Int("expected", clip.Rate),
				slog.Int("got", part.Rate))
		}
		clip.Samples = append(clip.Samples, part.Samples...)
	}

	if len(clip.Samples) == 0 {
		a.logger.Warn("skipping segment, all chunks failed synthesis",
			slog.Int("order", seg.Order),
			slog.String("segment", seg.Title),
			slog.Int("chunks", len(chunks)))
		return builtSegment{}, false
	}

	speech := clip.Seconds()
	declaredMin := seg.MinSeconds()

	var padded float64
	if a.opts.Policy == domain.AssemblyPadded && declaredMin > speech {
		padded = declaredMin - speech
		clip.Samples = append(clip.Samples, Silence(clip.Rate, padded)...)
	}

	return builtSegment{
		clip: clip,
		manifest: domain.SegmentAudio{
			Order:                 seg.Order,
			Title:                 seg.Title,
			Type:                  seg.Type,
			DeclaredMinSeconds:    declaredMin,
			SpeechDurationSeconds: speech,
			SilenceAddedSeconds:   padded,
			FinalDurationSeconds:  clip.Seconds(),
			ContentCharCount:      len(cleaned),
			ChunksSynthesized:     len(chunks) - failed,
			ChunksFailed:          failed,
		},
	}, true
}

// synthesizeChunk paces, retries, and decodes one synthesis request.
func (a *Assembler) synthesizeChunk(ctx context.Context, text string, voice domain.Voice) (Clip, error) {
	data, err := retry.DoValue(ctx, a.retry, func() ([]byte, error) {
		if err := a.limiter.Wait(ctx, limiterKey); err != nil {
			return nil, retry.Permanent(err)
		}
		return a.synth.Synthesize(ctx, text, voice)
	})
	if err != nil {
		return Clip{}, err
	}
	return Decode(data)
}

// join concatenates built segments per the assembly policy and encodes the
// final recording.
func (a *Assembler) join(built []builtSegment) (*domain.LectureAudio, error) {
	rate := built[0].clip.Rate

	var (
		combined []int
		playlist = make([]domain.SegmentAudio, 0, len(built))
		speech   float64
		gaps     int
	)
	for i, bs := range built {
		if a.opts.Policy == domain.AssemblyGapped && i > 0 {
			combined = append(combined, Silence(rate, a.opts.GapSeconds)...)
			gaps++
		}
		combined = append(combined, bs.clip.Samples...)
		playlist = append(playlist, bs.manifest)
		speech += bs.manifest.SpeechDurationSeconds
	}

	if len(combined) == 0 {
		return nil, domainerrors.AudioCombine("combined recording has no samples")
	}

	final := Clip{Samples: combined, Rate: rate}
	data, err := Encode(final)
	if err != nil {
		return nil, err
	}

	a.logger.Info("assembled lecture audio",
		slog.Int("sections", len(built)),
		slog.Int("gaps", gaps),
		slog.String("policy", string(a.opts.Policy)),
		slog.Float64("total_seconds", final.Seconds()))

	return &domain.LectureAudio{
		Data:                  data,
		SectionsCount:         len(built),
		TotalDurationSeconds:  final.Seconds(),
		SpeechDurationSeconds: speech,
		GapDurationSeconds:    float64(gaps) * a.opts.GapSeconds,
		GapsAdded:             gaps,
		SampleRate:            rate,
		Policy:                a.opts.Policy,
		Playlist:              playlist,
	}, nil
}
