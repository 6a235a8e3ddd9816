// Package audio decodes, pads, concatenates, and encodes lecture audio.
// Everything internal works on mono 16-bit PCM samples; WAV is only the
// container at the edges.
package audio

import (
	"bytes"
	"math"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	domainerrors "github.com/knodemy/lecture-server/internal/errors"
)

const bitDepth = 16

// Clip is decoded mono PCM audio.
type Clip struct {
	Samples []int
	Rate    int
}

// Seconds returns the clip duration.
func (c Clip) Seconds() float64 {
	if c.Rate <= 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.Rate)
}

// Decode parses WAV bytes into a mono clip. Multi-channel audio is coerced
// to mono by averaging the channels.
func Decode(data []byte) (Clip, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return Clip{}, domainerrors.AudioCombine("audio buffer is not a valid WAV file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Clip{}, domainerrors.Wrap(err, domainerrors.CodeAudioCombine, "decoding WAV samples")
	}
	if buf.Format == nil || buf.Format.SampleRate <= 0 {
		return Clip{}, domainerrors.AudioCombine("WAV file has no sample rate")
	}

	return Clip{
		Samples: toMono(buf.Data, buf.Format.NumChannels),
		Rate:    buf.Format.SampleRate,
	}, nil
}

// Encode writes a mono clip as a 16-bit WAV file. The encoder needs a
// seekable writer to patch chunk sizes after the fact, so encoding goes
// through a scratch file.
func Encode(clip Clip) ([]byte, error) {
	f, err := os.CreateTemp("", "lecture-*.wav")
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeAudioCombine, "creating scratch file")
	}
	name := f.Name()
	defer os.Remove(name)

	enc := wav.NewEncoder(f, clip.Rate, bitDepth, 1, 1)
	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: clip.Rate},
		Data:           clip.Samples,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		f.Close()
		return nil, domainerrors.Wrap(err, domainerrors.CodeAudioCombine, "writing WAV samples")
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return nil, domainerrors.Wrap(err, domainerrors.CodeAudioCombine, "finalizing WAV file")
	}
	if err := f.Close(); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeAudioCombine, "closing scratch file")
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeAudioCombine, "reading scratch file")
	}
	return data, nil
}

// Silence returns the requested duration of silence at the given rate. The
// sample count rounds to the nearest whole sample.
func Silence(rate int, seconds float64) []int {
	if rate <= 0 || seconds <= 0 {
		return nil
	}
	return make([]int, int(math.Round(float64(rate)*seconds)))
}

// toMono averages interleaved channels down to one.
func toMono(data []int, channels int) []int {
	if channels <= 1 {
		return data
	}
	frames := len(data) / channels
	mono := make([]int, frames)
	for i := range frames {
		sum := 0
		for ch := range channels {
			sum += data[i*channels+ch]
		}
		mono[i] = sum / channels
	}
	return mono
}
