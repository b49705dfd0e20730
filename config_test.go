package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mrdg/mono/audio"
)

func TestParseConfig(t *testing.T) {
	input := `
sample_rate = 44100
backend = "oto"
midi = true
preset = "pad"

[synth]
wave = "saw"
release = 1.5
`
	cfg, err := parseConfig([]byte(input), "test.toml")
	if err != nil {
		t.Fatal(err)
	}
	if want, got := 44100, cfg.SampleRate; want != got {
		t.Errorf("want %v, got %v", want, got)
	}
	if want, got := backendOto, cfg.Backend; want != got {
		t.Errorf("want %v, got %v", want, got)
	}
	if !cfg.MIDI {
		t.Error("midi not enabled")
	}
	// defaults for missing keys
	if want, got := 256, cfg.BlockSize; want != got {
		t.Errorf("want %v, got %v", want, got)
	}
	if want, got := 64, cfg.QueueSize; want != got {
		t.Errorf("want %v, got %v", want, got)
	}
	if cfg.Synth.Gain != nil {
		t.Errorf("unset gain decoded as %v", *cfg.Synth.Gain)
	}

	_, c, err := audio.New(cfg.engineConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.apply(c); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		key  string
		want interface{}
	}{
		{audio.PropWave, audio.Saw}, // overrides the preset
		{audio.PropRelease, 1.5},    // overrides the preset
		{audio.PropAttack, 0.8},     // from the preset
		{audio.PropGain, 0.8},       // engine default
	}
	for _, test := range tests {
		got, err := c.Get(test.key)
		if err != nil {
			t.Fatal(err)
		}
		if got != test.want {
			t.Errorf("%s: want %v, got %v", test.key, test.want, got)
		}
	}
}

func TestParseConfigErrors(t *testing.T) {
	for _, input := range []string{
		`sample_rate = "fast"`,
		`queue_size = 100`,
		`block_size = 0`,
		`backend = "jack"`,
		`volume = 11`,
	} {
		if _, err := parseConfig([]byte(input), "test.toml"); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}

func TestConfigApplyErrors(t *testing.T) {
	_, c, err := audio.New(audio.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	gain := 3.
	for _, cfg := range []Config{
		{Preset: "theremin"},
		{Synth: SynthConfig{Wave: "noise"}},
		{Synth: SynthConfig{Gain: &gain}},
	} {
		if err := cfg.apply(c); err == nil {
			t.Errorf("expected error for %+v", cfg)
		}
	}
}

func TestParseFromFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "mono.toml")
	if err := os.WriteFile(file, []byte("vis_size = 512\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := ParseFromFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if want, got := 512, cfg.VisSize; want != got {
		t.Errorf("want %v, got %v", want, got)
	}
	if _, err := ParseFromFile(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}
