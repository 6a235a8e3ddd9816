package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knodemy/lecture-server/internal/domain"
	domainerrors "github.com/knodemy/lecture-server/internal/errors"
)

func TestElevenLabsSynthesize(t *testing.T) {
	pcm := make([]byte, 2400) // 50ms of silence at 24kHz, 16-bit mono

	var (
		gotKey  string
		gotPath string
		gotBody elevenLabsRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("xi-api-key")
		gotPath = r.URL.Path
		assert.Equal(t, "pcm_24000", r.URL.Query().Get("output_format"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write(pcm)
	}))
	defer srv.Close()

	s := NewElevenLabsSynthesizer("secret-key", "voice-123", 24000)
	s.baseURL = srv.URL

	data, err := s.Synthesize(context.Background(), "Hello class", domain.VoiceAlloy)
	require.NoError(t, err)

	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "/text-to-speech/voice-123", gotPath)
	assert.Equal(t, "Hello class", gotBody.Text)
	require.NotNil(t, gotBody.VoiceSettings)
	assert.InDelta(t, 0.5, gotBody.VoiceSettings.Stability, 0.001)

	dec := wav.NewDecoder(bytes.NewReader(data))
	require.True(t, dec.IsValidFile())
	assert.Equal(t, uint32(24000), dec.SampleRate)
	assert.Equal(t, uint16(1), dec.NumChans)
}

func TestElevenLabsSynthesize_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewElevenLabsSynthesizer("key", "", 24000)
	s.baseURL = srv.URL

	_, err := s.Synthesize(context.Background(), "Hello", domain.VoiceAlloy)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNoAudioGenerated))
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestElevenLabsSynthesize_EmptyText(t *testing.T) {
	s := NewElevenLabsSynthesizer("key", "", 24000)

	_, err := s.Synthesize(context.Background(), "", domain.VoiceAlloy)
	require.Error(t, err)
}

func TestNewElevenLabsSynthesizer_Defaults(t *testing.T) {
	s := NewElevenLabsSynthesizer("key", "", 0)
	assert.Equal(t, DefaultElevenLabsVoiceID, s.voiceID)
	assert.Equal(t, 24000, s.sampleRate)
}

func TestWrapPCM16(t *testing.T) {
	pcm := []byte{0x01, 0x00, 0x02, 0x00}

	data := wrapPCM16(pcm, 16000)

	dec := wav.NewDecoder(bytes.NewReader(data))
	require.True(t, dec.IsValidFile())
	assert.Equal(t, uint32(16000), dec.SampleRate)
	assert.Equal(t, uint16(16), dec.BitDepth)

	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, buf.Data)
}
