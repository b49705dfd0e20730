package audio

import (
	"fmt"
	"io"
	"math"

	"github.com/youpy/go-wav"
)

const wavBitDepth = 16

// WriteWAV encodes mono samples as a 16 bit PCM wav file.
func WriteWAV(w io.Writer, samples []float32, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	const scale = 1<<(wavBitDepth-1) - 1
	out := make([]wav.Sample, len(samples))
	for i, s := range samples {
		v := clamp(float64(s), -1, 1)
		if math.IsNaN(v) {
			v = 0
		}
		out[i].Values[0] = int(math.Round(v * scale))
	}
	writer := wav.NewWriter(w, uint32(len(out)), 1, uint32(sampleRate), wavBitDepth)
	if err := writer.WriteSamples(out); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return nil
}

type wavSource interface {
	io.Reader
	io.ReaderAt
}

// ReadWAV decodes the first channel of a 16 bit PCM wav file.
func ReadWAV(r wavSource) ([]float32, int, error) {
	reader := wav.NewReader(r)
	format, err := reader.Format()
	if err != nil {
		return nil, 0, fmt.Errorf("read wav: %w", err)
	}
	if format.BitsPerSample != wavBitDepth {
		return nil, 0, fmt.Errorf("read wav: unsupported bit depth %d", format.BitsPerSample)
	}
	var out []float32
	for {
		samples, err := reader.ReadSamples()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read wav: %w", err)
		}
		for _, sample := range samples {
			out = append(out, float32(reader.IntValue(sample, 0))/(1<<(wavBitDepth-1)))
		}
	}
	return out, int(format.SampleRate), nil
}
