package audio

import (
	"bytes"
	"math"
	"testing"
)

func TestWAVRoundTrip(t *testing.T) {
	const sampleRate = 44100
	in := make([]float32, 1000)
	for i := range in {
		in[i] = float32(math.Sin(2 * math.Pi * float64(i) / 100))
	}
	in[10] = 3 // clipped

	var buf bytes.Buffer
	if err := WriteWAV(&buf, in, sampleRate); err != nil {
		t.Fatal(err)
	}

	out, rate, err := ReadWAV(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if want, got := sampleRate, rate; want != got {
		t.Errorf("wrong sample rate: want %v, got %v", want, got)
	}
	if want, got := len(in), len(out); want != got {
		t.Fatalf("wrong length: want %v, got %v", want, got)
	}
	for i := range in {
		want := clamp(float64(in[i]), -1, 1)
		if d := math.Abs(want - float64(out[i])); d > 1e-4 {
			t.Fatalf("sample %d: want %v, got %v", i, want, out[i])
		}
	}
}

func TestWriteWAVSampleRate(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWAV(&buf, []float32{0}, 0); err == nil {
		t.Error("expected error for zero sample rate")
	}
}
