// Package service orchestrates the lecture pipeline: document retrieval,
// script synthesis, audio assembly, artifact storage, and batch runs.
package service

import (
	"context"
	"log/slog"

	"github.com/knodemy/lecture-server/internal/audio"
	"github.com/knodemy/lecture-server/internal/domain"
	"github.com/knodemy/lecture-server/internal/script"
	"github.com/knodemy/lecture-server/internal/segment"
	"github.com/knodemy/lecture-server/internal/source"
)

// Lecture runs the end-to-end pipeline for a single lesson document.
type Lecture struct {
	fetcher     *source.Fetcher
	extractor   *source.Extractor
	synthesizer *script.Synthesizer
	renderer    *script.Renderer
	parser      *segment.Parser
	assembler   *audio.Assembler
	voice       domain.Voice
	logger      *slog.Logger
}

// NewLecture creates the lecture pipeline service.
func NewLecture(
	fetcher *source.Fetcher,
	extractor *source.Extractor,
	synthesizer *script.Synthesizer,
	renderer *script.Renderer,
	parser *segment.Parser,
	assembler *audio.Assembler,
	voice domain.Voice,
	logger *slog.Logger,
) *Lecture {
	if !voice.Valid() {
		voice = domain.VoiceAlloy
	}
	return &Lecture{
		fetcher:     fetcher,
		extractor:   extractor,
		synthesizer: synthesizer,
		renderer:    renderer,
		parser:      parser,
		assembler:   assembler,
		voice:       voice,
		logger:      logger,
	}
}

// ScriptRequest identifies one lesson document to turn into a script.
type ScriptRequest struct {
	LessonTitle string
	PDFURL      string
	SpeakerName string
}

// GenerateScript fetches the lesson PDF, extracts its text, synthesizes the
// lecture script, and renders the printable PDF.
func (l *Lecture) GenerateScript(ctx context.Context, req ScriptRequest) (*domain.ScriptPack, error) {
	data, err := l.fetcher.Fetch(ctx, req.PDFURL)
	if err != nil {
		return nil, err
	}

	text, err := l.extractor.Extract(data)
	if err != nil {
		return nil, err
	}

	scr, err := l.synthesizer.Generate(ctx, script.Request{
		LessonTitle: req.LessonTitle,
		SourceText:  text,
		SourceURL:   req.PDFURL,
		SpeakerName: req.SpeakerName,
	})
	if err != nil {
		return nil, err
	}

	rendered, err := l.renderer.Render(scr)
	if err != nil {
		return nil, err
	}

	l.logger.Info("generated lecture script",
		slog.String("lesson", req.LessonTitle),
		slog.Int("script_chars", len(scr.Text)),
		slog.Int("pdf_bytes", len(rendered)))

	return &domain.ScriptPack{Script: *scr, RenderBytes: rendered}, nil
}

// GenerateTimedAudio parses the script into segments and assembles the
// lecture recording.
func (l *Lecture) GenerateTimedAudio(ctx context.Context, scr *domain.LectureScript) (*domain.LectureAudio, error) {
	segments := l.parser.Parse(scr.Text)

	la, err := l.assembler.Assemble(ctx, segments, l.voice)
	if err != nil {
		return nil, err
	}

	l.logger.Info("generated lecture audio",
		slog.String("lesson", scr.LessonTitle),
		slog.Int("sections", la.SectionsCount),
		slog.Float64("total_seconds", la.TotalDurationSeconds))
	return la, nil
}
