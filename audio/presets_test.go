package audio

import (
	"errors"
	"testing"
)

func TestLoadPreset(t *testing.T) {
	for _, name := range PresetNames() {
		_, c, err := New(DefaultConfig())
		if err != nil {
			t.Fatal(err)
		}
		if err := c.LoadPreset(name); err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		for key, want := range presets[name] {
			got, err := c.Get(key)
			if err != nil {
				t.Fatal(err)
			}
			if key == PropWave {
				wave, _ := ParseWaveform(want.(string))
				want = wave
			}
			if want != got {
				t.Errorf("%s.%s: want %v, got %v", name, key, want, got)
			}
		}
	}
}

func TestLoadUnknownPreset(t *testing.T) {
	_, c, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.LoadPreset("theremin"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected unknown preset error, got %v", err)
	}
}

func TestPresetNames(t *testing.T) {
	names := PresetNames()
	if want, got := len(presets), len(names); want != got {
		t.Fatalf("want %v names, got %v", want, got)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %v", names)
		}
	}
}
