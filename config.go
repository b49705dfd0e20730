package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/mrdg/mono/audio"
)

type Config struct {
	SampleRate int         `toml:"sample_rate"`
	BlockSize  int         `toml:"block_size"`
	QueueSize  int         `toml:"queue_size"`
	VisSize    int         `toml:"vis_size"`
	Backend    string      `toml:"backend"`
	MIDI       bool        `toml:"midi"`
	MIDIPort   string      `toml:"midi_port"`
	Preset     string      `toml:"preset"`
	Synth      SynthConfig `toml:"synth"`
}

// SynthConfig holds initial parameter values. Unset fields keep the engine
// defaults or the values of the configured preset.
type SynthConfig struct {
	Wave          string   `toml:"wave"`
	Gain          *float64 `toml:"gain"`
	Attack        *float64 `toml:"attack"`
	Decay         *float64 `toml:"decay"`
	Sustain       *float64 `toml:"sustain"`
	Release       *float64 `toml:"release"`
	VelocitySense *float64 `toml:"velocity_sense"`
}

const (
	backendPortAudio = "portaudio"
	backendOto       = "oto"
)

func DefaultConfig() Config {
	engine := audio.DefaultConfig()
	return Config{
		SampleRate: int(engine.SampleRate),
		BlockSize:  256,
		QueueSize:  engine.QueueSize,
		VisSize:    engine.VisSize,
		Backend:    backendPortAudio,
	}
}

// ParseFromFile reads a TOML config. Keys missing from the file keep their
// default values.
func ParseFromFile(file string) (Config, error) {
	bs, err := os.ReadFile(file)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read file at %q: %w", file, err)
	}
	return parseConfig(bs, file)
}

func parseConfig(bs []byte, file string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.Decode(string(bs), &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config from TOML file %q: %w", file, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown keys in %q: %v", file, undecoded)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid sample_rate: %d", c.SampleRate)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("invalid block_size: %d", c.BlockSize)
	}
	if c.QueueSize <= 0 || c.QueueSize&(c.QueueSize-1) != 0 {
		return fmt.Errorf("queue_size must be a power of 2: %d", c.QueueSize)
	}
	if c.VisSize <= 0 {
		return fmt.Errorf("invalid vis_size: %d", c.VisSize)
	}
	switch c.Backend {
	case backendPortAudio, backendOto:
	default:
		return fmt.Errorf("unknown backend: %q", c.Backend)
	}
	return nil
}

func (c Config) engineConfig() audio.Config {
	return audio.Config{
		SampleRate: float64(c.SampleRate),
		QueueSize:  c.QueueSize,
		VisSize:    c.VisSize,
	}
}

// apply loads the preset, then the individual synth values on top of it.
func (c Config) apply(d audio.Device) error {
	if c.Preset != "" {
		if err := audio.LoadPreset(c.Preset, d); err != nil {
			return err
		}
	}
	if c.Synth.Wave != "" {
		if err := d.Set(audio.PropWave, c.Synth.Wave); err != nil {
			return err
		}
	}
	for _, p := range []struct {
		key string
		v   *float64
	}{
		{audio.PropGain, c.Synth.Gain},
		{audio.PropAttack, c.Synth.Attack},
		{audio.PropDecay, c.Synth.Decay},
		{audio.PropSustain, c.Synth.Sustain},
		{audio.PropRelease, c.Synth.Release},
		{audio.PropVelSense, c.Synth.VelocitySense},
	} {
		if p.v == nil {
			continue
		}
		if err := d.Set(p.key, *p.v); err != nil {
			return err
		}
	}
	return nil
}
