package tts

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/knodemy/lecture-server/internal/domain"
	domainerrors "github.com/knodemy/lecture-server/internal/errors"
)

const (
	// elevenLabsBaseURL is the ElevenLabs API base URL.
	elevenLabsBaseURL = "https://api.elevenlabs.io/v1"

	// DefaultElevenLabsVoiceID is the "Rachel" stock voice.
	DefaultElevenLabsVoiceID = "21m00Tcm4TlvDq8ikWAM"

	elevenLabsTimeout = 60 * time.Second
)

// elevenLabsVoiceSettings carries optional voice tuning parameters.
type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// elevenLabsRequest is the synthesis request body.
type elevenLabsRequest struct {
	Text          string                   `json:"text"`
	ModelID       string                   `json:"model_id,omitempty"`
	VoiceSettings *elevenLabsVoiceSettings `json:"voice_settings,omitempty"`
}

// ElevenLabsSynthesizer calls the ElevenLabs text-to-speech endpoint. The
// lecture voice catalog does not apply here; every request uses the
// configured ElevenLabs voice ID.
type ElevenLabsSynthesizer struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	voiceID    string
	sampleRate int
}

// NewElevenLabsSynthesizer creates an ElevenLabs speech client. An empty
// voiceID falls back to the default stock voice; the sample rate selects the
// PCM output format (ElevenLabs supports 16000, 22050, 24000, 44100).
func NewElevenLabsSynthesizer(apiKey, voiceID string, sampleRate int) *ElevenLabsSynthesizer {
	if voiceID == "" {
		voiceID = DefaultElevenLabsVoiceID
	}
	if sampleRate <= 0 {
		sampleRate = 24000
	}
	return &ElevenLabsSynthesizer{
		httpClient: &http.Client{Timeout: elevenLabsTimeout},
		apiKey:     apiKey,
		baseURL:    elevenLabsBaseURL,
		voiceID:    voiceID,
		sampleRate: sampleRate,
	}
}

// Synthesize requests PCM audio and returns it wrapped as WAV.
func (s *ElevenLabsSynthesizer) Synthesize(ctx context.Context, text string, _ domain.Voice) ([]byte, error) {
	if text == "" {
		return nil, domainerrors.NoAudioGenerated("no text to synthesize")
	}

	body, err := json.Marshal(elevenLabsRequest{
		Text: text,
		VoiceSettings: &elevenLabsVoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.5,
		},
	})
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "marshaling synthesis request")
	}

	url := fmt.Sprintf("%s/text-to-speech/%s?output_format=pcm_%d", s.baseURL, s.voiceID, s.sampleRate)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "building synthesis request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeNoAudioGenerated, "speech request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, domainerrors.NoAudioGenerated(fmt.Sprintf(
			"speech request failed with status %d: %s", resp.StatusCode, string(errBody)))
	}

	pcm, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeNoAudioGenerated, "reading speech response")
	}
	if len(pcm) == 0 {
		return nil, domainerrors.NoAudioGenerated("speech response was empty")
	}

	return wrapPCM16(pcm, s.sampleRate), nil
}

// wrapPCM16 prepends a RIFF/WAVE header to raw 16-bit little-endian mono
// PCM so the bytes parse like every other provider's output.
func wrapPCM16(pcm []byte, sampleRate int) []byte {
	const (
		channels      = 1
		bitsPerSample = 16
	)
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}
