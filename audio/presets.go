package audio

import (
	"fmt"
	"sort"
)

type Device interface {
	Set(key string, val interface{}) error
	Get(key string) (interface{}, error)
}

type preset map[string]interface{}

var presets = map[string]preset{
	"init": {
		PropWave:    "sine",
		PropGain:    0.8,
		PropAttack:  0.01,
		PropDecay:   0.1,
		PropSustain: 0.7,
		PropRelease: 0.3,
	},
	"lame-bass": {
		PropWave:    "saw",
		PropGain:    0.9,
		PropAttack:  0.002,
		PropDecay:   0.1,
		PropSustain: 0.,
		PropRelease: 0.05,
	},
	"pluck": {
		PropWave:    "square",
		PropAttack:  0.001,
		PropDecay:   0.25,
		PropSustain: 0.,
		PropRelease: 0.1,
	},
	"pad": {
		PropWave:    "triangle",
		PropAttack:  0.8,
		PropDecay:   0.5,
		PropSustain: 0.8,
		PropRelease: 2.,
	},
	"organ": {
		PropWave:    "sine",
		PropAttack:  0.005,
		PropDecay:   0.,
		PropSustain: 1.,
		PropRelease: 0.02,
	},
}

func LoadPreset(name string, d Device) error {
	p, ok := presets[name]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownPreset, name)
	}
	for k, v := range p {
		if err := d.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}

func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
