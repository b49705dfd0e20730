package audio

import (
	"errors"
	"math"
	"testing"
)

func newTestEngine(t *testing.T) (*Engine, *Control) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.VisSize = 256
	e, c, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return e, c
}

func TestEngineConfig(t *testing.T) {
	tests := []Config{
		{SampleRate: 0, QueueSize: 64, VisSize: 64},
		{SampleRate: math.Inf(1), QueueSize: 64, VisSize: 64},
		{SampleRate: 48000, QueueSize: 48, VisSize: 64},
		{SampleRate: 48000, QueueSize: 0, VisSize: 64},
		{SampleRate: 48000, QueueSize: 64, VisSize: 0},
	}
	for _, cfg := range tests {
		if _, _, err := New(cfg); err == nil {
			t.Errorf("expected error for %+v", cfg)
		}
	}
}

func TestEngineNoteOn(t *testing.T) {
	e, c := newTestEngine(t)
	out := make([]float32, 128)

	e.Process(out)
	if n := nonSilent(out); n != 0 {
		t.Fatalf("silent engine produced %d samples", n)
	}

	c.NoteOn(60, 1)
	e.Process(out)
	if n := nonSilent(out); n == 0 {
		t.Fatal("no sound after note on")
	}
	if note, ok := e.Synth().Note(); !ok || note != 60 {
		t.Errorf("wrong note: %v %v", note, ok)
	}

	c.NoteOff(60)
	e.Process(out)
	if want, got := StageRelease, e.Synth().Stage(); want != got {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestEngineNoteOffOtherNote(t *testing.T) {
	e, c := newTestEngine(t)
	out := make([]float32, 64)

	c.NoteOn(60, 1)
	c.NoteOn(67, 1)
	c.NoteOff(60)
	e.Process(out)

	if note, ok := e.Synth().Note(); !ok || note != 67 {
		t.Errorf("wrong note: %v %v", note, ok)
	}
	if e.Synth().Stage() == StageRelease {
		t.Error("note off for a replaced note released the voice")
	}
}

func TestEngineParams(t *testing.T) {
	e, c := newTestEngine(t)
	out := make([]float32, 64)

	if err := c.Set(PropWave, "saw"); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(PropSustain, 0.25); err != nil {
		t.Fatal(err)
	}
	e.Process(out)
	if want, got := Saw, e.Synth().osc.Waveform(); want != got {
		t.Errorf("want %v, got %v", want, got)
	}
	if want, got := 0.25, e.Synth().env.sustain; want != got {
		t.Errorf("want %v, got %v", want, got)
	}

	v, err := c.Get(PropWave)
	if err != nil {
		t.Fatal(err)
	}
	if want, got := Saw, v; want != got {
		t.Errorf("want %v, got %v", want, got)
	}

	if err := c.Set(PropGain, 2.); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected out of range error, got %v", err)
	}
	if err := c.Set("cutoff", 1.); !errors.Is(err, ErrUnknownProperty) {
		t.Errorf("expected unknown property error, got %v", err)
	}
	if err := c.Set(PropWave, "noise"); !errors.Is(err, ErrUnknownWaveform) {
		t.Errorf("expected unknown waveform error, got %v", err)
	}
}

func TestEngineStats(t *testing.T) {
	cfg := DefaultConfig()
	cfg.QueueSize = 4
	cfg.VisSize = 100
	e, c, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	for n := 0; n < 6; n++ {
		c.NoteOn(uint8(60+n), 1)
	}
	out := make([]float32, 50)
	for n := 0; n < 4; n++ {
		e.Process(out)
	}

	want := Stats{Blocks: 4, Applied: 4, Dropped: 2, Swaps: 2}
	if got := c.Stats(); got != want {
		t.Errorf("wrong stats:\nwant: %+v\ngot:  %+v", want, got)
	}
}

func TestEngineScope(t *testing.T) {
	e, c := newTestEngine(t)
	c.NoteOn(69, 1)

	out := make([]float32, c.VisSize())
	e.Process(out)

	f := c.Scope()
	if want, got := uint64(1), f.Generation(); want != got {
		t.Fatalf("want generation %v, got %v", want, got)
	}
	for i := 0; i < f.Len(); i++ {
		if f.At(i) != out[i] {
			t.Fatalf("scope sample %d: want %v, got %v", i, out[i], f.At(i))
		}
	}

	dst := make([]float32, c.VisSize())
	if gen, ok := c.Snapshot(dst); !ok || gen != 1 {
		t.Errorf("snapshot: gen %v ok %v", gen, ok)
	}
}

func TestRender(t *testing.T) {
	_, live := newTestEngine(t)
	if err := live.LoadPreset("organ"); err != nil {
		t.Fatal(err)
	}

	e, c := newTestEngine(t)
	if err := c.CopyParams(live); err != nil {
		t.Fatal(err)
	}
	v, err := c.Get(PropWave)
	if err != nil {
		t.Fatal(err)
	}
	if want, got := Sine, v; want != got {
		t.Errorf("params not copied: want %v, got %v", want, got)
	}

	c.NoteOn(57, 1)
	out := Render(e, 1000, 256)
	if want, got := 1000, len(out); want != got {
		t.Fatalf("wrong length: want %v, got %v", want, got)
	}
	if want, got := uint64(4), c.Stats().Blocks; want != got {
		t.Errorf("wrong block count: want %v, got %v", want, got)
	}
	if nonSilent(out) == 0 {
		t.Error("render produced silence")
	}
	if Render(e, 0, 256) != nil {
		t.Error("expected nil for zero frames")
	}
}
