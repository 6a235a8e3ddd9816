// Package tts synthesizes speech audio from text. Providers return WAV bytes
// regardless of what the upstream API serves, so downstream assembly only
// ever deals with one container format.
package tts

import (
	"context"

	"github.com/knodemy/lecture-server/internal/domain"
)

// Synthesizer converts a text chunk into WAV audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice domain.Voice) ([]byte, error)
}
