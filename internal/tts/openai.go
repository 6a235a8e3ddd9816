package tts

import (
	"context"
	"io"

	"github.com/sashabaranov/go-openai"

	"github.com/knodemy/lecture-server/internal/domain"
	domainerrors "github.com/knodemy/lecture-server/internal/errors"
)

// OpenAISynthesizer calls the OpenAI speech endpoint.
type OpenAISynthesizer struct {
	client *openai.Client
	model  openai.SpeechModel
}

// NewOpenAISynthesizer creates a speech client for the given model
// (for example "tts-1" or "tts-1-hd").
func NewOpenAISynthesizer(apiKey, model string) *OpenAISynthesizer {
	return &OpenAISynthesizer{
		client: openai.NewClient(apiKey),
		model:  openai.SpeechModel(model),
	}
}

// Synthesize requests WAV audio for the text chunk.
func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text string, voice domain.Voice) ([]byte, error) {
	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          s.model,
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatWav,
	})
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeNoAudioGenerated, "speech request failed")
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeNoAudioGenerated, "reading speech response")
	}
	if len(data) == 0 {
		return nil, domainerrors.NoAudioGenerated("speech response was empty")
	}
	return data, nil
}
