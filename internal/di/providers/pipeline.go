package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/knodemy/lecture-server/internal/audio"
	"github.com/knodemy/lecture-server/internal/config"
	"github.com/knodemy/lecture-server/internal/llm"
	"github.com/knodemy/lecture-server/internal/logger"
	"github.com/knodemy/lecture-server/internal/ratelimit"
	"github.com/knodemy/lecture-server/internal/retry"
	"github.com/knodemy/lecture-server/internal/script"
	"github.com/knodemy/lecture-server/internal/segment"
	"github.com/knodemy/lecture-server/internal/source"
	"github.com/knodemy/lecture-server/internal/tts"
)

// ProvideFetcher provides the lesson PDF fetcher.
func ProvideFetcher(i do.Injector) (*source.Fetcher, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return source.NewFetcher(cfg.Source.FetchTimeout, cfg.Source.UserAgent, log.Logger), nil
}

// ProvideExtractor provides the PDF text extractor.
func ProvideExtractor(i do.Injector) (*source.Extractor, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return source.NewExtractor(cfg.Source.MinTextChars, log.Logger), nil
}

// ProvideLLMClient provides the chat completion client for script synthesis.
func ProvideLLMClient(i do.Injector) (llm.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return llm.NewOpenAIClient(llm.OpenAIOptions{
		APIKey:      cfg.Synthesis.APIKey,
		Model:       cfg.Synthesis.Model,
		MaxTokens:   cfg.Synthesis.MaxTokens,
		Temperature: cfg.Synthesis.Temperature,
	}), nil
}

// ProvideScriptSynthesizer provides the lecture script synthesizer.
func ProvideScriptSynthesizer(i do.Injector) (*script.Synthesizer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	client := do.MustInvoke[llm.Client](i)

	return script.NewSynthesizer(client, script.SynthesizerOptions{
		Audience:     cfg.Synthesis.Audience,
		Language:     cfg.Synthesis.Language,
		DurationLow:  cfg.Synthesis.DurationMinLow,
		DurationHigh: cfg.Synthesis.DurationMinHigh,
		ExcerptChars: cfg.Synthesis.ExcerptChars,
	}, log.Logger), nil
}

// ProvideRenderer provides the script PDF renderer.
func ProvideRenderer(i do.Injector) (*script.Renderer, error) {
	return script.NewRenderer(), nil
}

// ProvideParser provides the timing-marker segment parser.
func ProvideParser(i do.Injector) (*segment.Parser, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return segment.NewParser(log.Logger), nil
}

// ProvideChunker provides the TTS text chunker.
func ProvideChunker(i do.Injector) (*segment.Chunker, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return segment.NewChunker(cfg.Speech.ChunkChars, cfg.Speech.MinChunkChars), nil
}

// ProvideSpeechSynthesizer provides the configured TTS backend.
func ProvideSpeechSynthesizer(i do.Injector) (tts.Synthesizer, error) {
	cfg := do.MustInvoke[*config.Config](i)

	switch cfg.Speech.Provider {
	case "openai":
		return tts.NewOpenAISynthesizer(cfg.Speech.APIKey, cfg.Speech.Model), nil
	case "elevenlabs":
		return tts.NewElevenLabsSynthesizer(cfg.Speech.ElevenLabsAPIKey, cfg.Speech.ElevenLabsVoiceID, cfg.Speech.SampleRate), nil
	default:
		return nil, fmt.Errorf("unknown speech provider: %s", cfg.Speech.Provider)
	}
}

// ProvideAssembler provides the audio assembler.
func ProvideAssembler(i do.Injector) (*audio.Assembler, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	synth := do.MustInvoke[tts.Synthesizer](i)
	chunker := do.MustInvoke[*segment.Chunker](i)

	limiter := ratelimit.New(cfg.Speech.RequestsPerSecond, 1)
	policy := retry.Policy{
		MaxAttempts:     cfg.Retry.MaxAttempts,
		InitialInterval: cfg.Retry.InitialInterval,
		MaxInterval:     cfg.Retry.MaxInterval,
	}

	return audio.NewAssembler(synth, chunker, limiter, policy, log.Logger, audio.AssemblerOptions{
		Policy:     cfg.Speech.Policy,
		GapSeconds: cfg.Speech.GapSeconds,
	}), nil
}
