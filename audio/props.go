package audio

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync/atomic"
)

var (
	ErrUnknownProperty = errors.New("unknown property")
	ErrOutOfRange      = errors.New("value out of range")
	ErrUnknownWaveform = errors.New("unknown waveform")
	ErrUnknownPreset   = errors.New("unknown preset")
)

// Props stores engine parameters that can be updated without locks. Every
// parameter is a single float64 held as an atomic bit pattern, so the audio
// goroutine can load it without tearing. All properties should be registered
// before any reads take place.
type Props struct {
	properties map[string]*Param
}

func NewProps() *Props {
	return &Props{properties: make(map[string]*Param)}
}

// Param is a single registered property.
type Param struct {
	key  string
	bits atomic.Uint64
	set  setter
	get  getter
}

// Load returns the current value. Safe to call from any goroutine.
func (p *Param) Load() float64 {
	return math.Float64frombits(p.bits.Load())
}

func (p *Param) store(v float64) {
	p.bits.Store(math.Float64bits(v))
}

func (p *Param) Key() string { return p.key }

// Set updates the property with value. The key has to be registered first using Register.
func (p *Props) Set(key string, value interface{}) error {
	prop, ok := p.properties[key]
	if !ok {
		return fmt.Errorf("%w %s", ErrUnknownProperty, key)
	}
	f, err := prop.set(value)
	if err != nil {
		return fmt.Errorf("set property %s: %w", key, err)
	}
	prop.store(f)
	return nil
}

func (p *Props) Get(key string) (interface{}, error) {
	prop, ok := p.properties[key]
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrUnknownProperty, key)
	}
	return prop.get(prop.Load()), nil
}

// Keys returns the registered property names in sorted order.
func (p *Props) Keys() []string {
	keys := make([]string, 0, len(p.properties))
	for k := range p.properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Register adds a new property.
func (p *Props) Register(key string, set setter, init interface{}) (*Param, error) {
	prop := &Param{key: key, set: set, get: getFloat64}
	if _, ok := init.(Waveform); ok {
		prop.get = getWaveform
	}
	p.properties[key] = prop
	f, err := set(init)
	if err != nil {
		return prop, fmt.Errorf("register property %s: %w", key, err)
	}
	prop.store(f)
	return prop, nil
}

func (p *Props) MustRegister(key string, set setter, init interface{}) *Param {
	if prop, err := p.Register(key, set, init); err != nil {
		panic(err)
	} else {
		return prop
	}
}

type setter func(val interface{}) (float64, error)

type getter func(float64) interface{}

var (
	setEnvTime = setFloat64(0, 10)
	setUnit    = setFloat64(0, 1)
)

func setFloat64(min, max float64) setter {
	return func(v interface{}) (float64, error) {
		var f float64
		switch n := v.(type) {
		case float64:
			f = n
		case float32:
			f = float64(n)
		case int:
			f = float64(n)
		default:
			return 0, fmt.Errorf("value is not a float64: %v", v)
		}
		if math.IsNaN(f) || f < min || f > max {
			return 0, fmt.Errorf("%w %v - %v: %v", ErrOutOfRange, min, max, f)
		}
		return f, nil
	}
}

func setWaveform(v interface{}) (float64, error) {
	switch w := v.(type) {
	case Waveform:
		return float64(WaveformFromIndex(int(w))), nil
	case string:
		wave, err := ParseWaveform(w)
		if err != nil {
			return 0, err
		}
		return float64(wave), nil
	case int:
		return float64(WaveformFromIndex(w)), nil
	case float64:
		return float64(WaveformFromIndex(int(w))), nil
	default:
		return 0, fmt.Errorf("value is not a waveform: %v", v)
	}
}

func getFloat64(f float64) interface{} { return f }

func getWaveform(f float64) interface{} { return WaveformFromIndex(int(f)) }
