// Package script generates lecture scripts from lesson text and renders
// them as PDF documents.
package script

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/knodemy/lecture-server/internal/domain"
	domainerrors "github.com/knodemy/lecture-server/internal/errors"
	"github.com/knodemy/lecture-server/internal/llm"
)

// Defaults for script generation.
const (
	DefaultAudience     = "middle school (ages 11-14)"
	DefaultLanguage     = "English"
	DefaultExcerptChars = 8000
	DefaultDurationLow  = 20
	DefaultDurationHigh = 30
)

// SynthesizerOptions configures how scripts are requested from the model.
type SynthesizerOptions struct {
	Audience     string
	Language     string
	DurationLow  int // target total spoken minutes, lower bound
	DurationHigh int // target total spoken minutes, upper bound
	ExcerptChars int // how much source text goes into the prompt
}

// Synthesizer asks an LLM for a structured lecture script.
type Synthesizer struct {
	client llm.Client
	opts   SynthesizerOptions
	logger *slog.Logger
}

// NewSynthesizer creates a script synthesizer; zero option fields fall back
// to the defaults.
func NewSynthesizer(client llm.Client, opts SynthesizerOptions, logger *slog.Logger) *Synthesizer {
	if opts.Audience == "" {
		opts.Audience = DefaultAudience
	}
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if opts.DurationLow <= 0 {
		opts.DurationLow = DefaultDurationLow
	}
	if opts.DurationHigh <= 0 {
		opts.DurationHigh = DefaultDurationHigh
	}
	if opts.ExcerptChars <= 0 {
		opts.ExcerptChars = DefaultExcerptChars
	}
	return &Synthesizer{client: client, opts: opts, logger: logger}
}

// Request carries the inputs for one script generation.
type Request struct {
	LessonTitle string
	SourceText  string
	SourceURL   string
	SpeakerName string
}

// Generate produces a lecture script for the lesson text. The prompt pins
// the five-section layout with bracketed timing markers so the segment
// parser downstream has structure to work with.
func (s *Synthesizer) Generate(ctx context.Context, req Request) (*domain.LectureScript, error) {
	if strings.TrimSpace(req.SourceText) == "" {
		return nil, domainerrors.SynthesisEmpty("no source text to generate from")
	}

	text, err := s.client.Complete(ctx, s.systemPrompt(), s.userPrompt(req))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, domainerrors.SynthesisEmpty("model returned an empty script")
	}

	if s.logger != nil {
		s.logger.Info("generated lecture script",
			slog.String("lesson", req.LessonTitle),
			slog.Int("script_chars", len(text)))
	}

	return &domain.LectureScript{
		Text:        text,
		LessonTitle: req.LessonTitle,
		SpeakerName: req.SpeakerName,
		Audience:    s.opts.Audience,
		Language:    s.opts.Language,
		SourceURL:   req.SourceURL,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (s *Synthesizer) systemPrompt() string {
	return fmt.Sprintf(`You are an expert teacher. Create a highly understandable, engaging lecture script for %s students.
Must be in %s. Keep the tone warm, clear, and conversational. Avoid jargon unless you define it.
Structure the script as exactly five sections, each starting on its own line with a bracketed timing marker:
[Opening Hook: 2-3 minutes]
[Learning Objectives: 1-2 minutes]
[Main Content: 10-15 minutes]
[Practice Activity: 3-5 minutes]
[Recap: 1-2 minutes]
Requirements:
1) Open with a hook that grabs attention.
2) Use simple definitions, analogies, and real-life examples.
3) Add "check-in" questions every few minutes.
4) End the recap with 3-5 takeaways.
5) Total spoken duration should be about %d-%d minutes.
6) Write only words meant to be spoken aloud; no stage directions or visual-aid references.`,
		s.opts.Audience, s.opts.Language, s.opts.DurationLow, s.opts.DurationHigh)
}

func (s *Synthesizer) userPrompt(req Request) string {
	excerpt := req.SourceText
	if len(excerpt) > s.opts.ExcerptChars {
		excerpt = excerpt[:s.opts.ExcerptChars]
	}
	return fmt.Sprintf("Lesson Title: %q\n\nBase the script on this content (reorganize/simplify as needed):\n\n%s",
		req.LessonTitle, excerpt)
}
