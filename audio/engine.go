package audio

import (
	"fmt"
	"math"
	"sync/atomic"
)

const (
	PropWave     = "wave"
	PropGain     = "gain"
	PropAttack   = "attack"
	PropDecay    = "decay"
	PropSustain  = "sustain"
	PropRelease  = "release"
	PropVelSense = "velsense"
)

// Source produces audio one block at a time. Process is called from the
// host's audio callback.
type Source interface {
	Process(out []float32)
}

type Config struct {
	SampleRate float64
	QueueSize  int // power of 2
	VisSize    int
}

func DefaultConfig() Config {
	return Config{
		SampleRate: 48000,
		QueueSize:  64,
		VisSize:    2048,
	}
}

// Stats are counters shared by the two halves of an engine.
type Stats struct {
	Blocks  uint64
	Applied uint64
	Dropped uint64
	Swaps   uint64
}

type counters struct {
	blocks  atomic.Uint64
	applied atomic.Uint64
}

// Engine is the audio goroutine's half: it owns the synth, the consuming end
// of the note queue and the writing end of the visualization buffer.
type Engine struct {
	synth  *Synth
	notes  *NoteConsumer
	vis    *VisWriter
	params engineParams
	stats  *counters
	apply  func(NoteEvent)

	// last values handed to the synth
	applied [numParams]float64
}

// Control is the control goroutine's half: it owns the producing end of the
// note queue, the reading end of the visualization buffer and the
// parameters.
type Control struct {
	props      *Props
	notes      *NoteProducer
	vis        *VisReader
	stats      *counters
	sampleRate float64
}

const (
	paramWave = iota
	paramGain
	paramAttack
	paramDecay
	paramSustain
	paramRelease
	paramVelSense
	numParams
)

type engineParams [numParams]*Param

func registerParams(props *Props) engineParams {
	var p engineParams
	p[paramWave] = props.MustRegister(PropWave, setWaveform, Sine)
	p[paramGain] = props.MustRegister(PropGain, setUnit, 0.8)
	p[paramAttack] = props.MustRegister(PropAttack, setEnvTime, 0.01)
	p[paramDecay] = props.MustRegister(PropDecay, setEnvTime, 0.1)
	p[paramSustain] = props.MustRegister(PropSustain, setUnit, 0.7)
	p[paramRelease] = props.MustRegister(PropRelease, setEnvTime, 0.3)
	p[paramVelSense] = props.MustRegister(PropVelSense, setUnit, 0.)
	return p
}

// New returns the two halves of an engine. The Engine goes to the audio
// callback, the Control stays with the code handling user input.
func New(cfg Config) (*Engine, *Control, error) {
	if !(cfg.SampleRate > 0) || math.IsInf(cfg.SampleRate, 0) {
		return nil, nil, fmt.Errorf("invalid sample rate: %v", cfg.SampleRate)
	}
	if cfg.QueueSize <= 0 || cfg.QueueSize&(cfg.QueueSize-1) != 0 {
		return nil, nil, fmt.Errorf("queue size must be a power of 2: %d", cfg.QueueSize)
	}
	if cfg.VisSize <= 0 {
		return nil, nil, fmt.Errorf("invalid visualization size: %d", cfg.VisSize)
	}
	props := NewProps()
	producer, consumer := NewNoteQueue(cfg.QueueSize)
	writer, reader := NewVisBuffer(cfg.VisSize)
	stats := &counters{}

	e := &Engine{
		synth:  NewSynth(),
		notes:  consumer,
		vis:    writer,
		params: registerParams(props),
		stats:  stats,
	}
	e.synth.Prepare(cfg.SampleRate)
	for i := range e.applied {
		e.applied[i] = math.NaN()
	}
	e.apply = e.applyEvent

	c := &Control{
		props:      props,
		notes:      producer,
		vis:        reader,
		stats:      stats,
		sampleRate: cfg.SampleRate,
	}
	return e, c, nil
}

// Process renders one block. Parameters and queued note events are applied
// before the first sample; events pushed while the block renders wait for
// the next one.
func (e *Engine) Process(out []float32) {
	e.applyParams()
	if n := e.notes.Drain(e.apply); n > 0 {
		e.stats.applied.Add(uint64(n))
	}
	e.synth.Process(out)
	e.vis.Write(out)
	e.stats.blocks.Add(1)
}

func (e *Engine) applyEvent(ev NoteEvent) {
	switch ev.Kind {
	case NoteOn:
		e.synth.NoteOn(ev.Note, ev.Velocity)
	case NoteOff:
		e.synth.ReleaseNote(ev.Note)
	}
}

func (e *Engine) applyParams() {
	for i, p := range e.params {
		v := p.Load()
		if v == e.applied[i] {
			continue
		}
		e.applied[i] = v
		switch i {
		case paramWave:
			e.synth.SetWaveform(WaveformFromIndex(int(v)))
		case paramGain:
			e.synth.SetGain(v)
		case paramAttack:
			e.synth.SetAttack(v)
		case paramDecay:
			e.synth.SetDecay(v)
		case paramSustain:
			e.synth.SetSustain(v)
		case paramRelease:
			e.synth.SetRelease(v)
		case paramVelSense:
			e.synth.SetVelocitySense(v)
		}
	}
}

// Synth exposes the voice for inspection. It must only be used from the
// goroutine calling Process.
func (e *Engine) Synth() *Synth { return e.synth }

// NoteOn queues a note-on. It returns false if the queue is full and the
// event was dropped.
func (c *Control) NoteOn(note uint8, velocity float32) bool {
	return c.notes.Push(NoteEvent{Kind: NoteOn, Note: note, Velocity: velocity})
}

// NoteOff queues a note-off for note.
func (c *Control) NoteOff(note uint8) bool {
	return c.notes.Push(NoteEvent{Kind: NoteOff, Note: note})
}

func (c *Control) Set(key string, value interface{}) error { return c.props.Set(key, value) }

func (c *Control) Get(key string) (interface{}, error) { return c.props.Get(key) }

func (c *Control) Keys() []string { return c.props.Keys() }

func (c *Control) LoadPreset(name string) error { return LoadPreset(name, c.props) }

// Scope returns a view of the latest completed visualization buffer.
func (c *Control) Scope() Frame { return c.vis.ReadFront() }

// Snapshot copies the latest visualization buffer into dst.
func (c *Control) Snapshot(dst []float32) (uint64, bool) { return c.vis.Snapshot(dst) }

func (c *Control) VisSize() int { return c.vis.Size() }

func (c *Control) SampleRate() float64 { return c.sampleRate }

func (c *Control) Stats() Stats {
	return Stats{
		Blocks:  c.stats.blocks.Load(),
		Applied: c.stats.applied.Load(),
		Dropped: c.notes.Dropped(),
		Swaps:   c.vis.Swaps(),
	}
}

// CopyParams copies every parameter value from src. It is used to give an
// offline engine the same sound as a live one.
func (c *Control) CopyParams(src *Control) error {
	for _, key := range src.Keys() {
		v, err := src.Get(key)
		if err != nil {
			return err
		}
		if err := c.Set(key, v); err != nil {
			return err
		}
	}
	return nil
}

// Render runs src for frames samples in blocks of blockSize, the way a host
// callback would, and returns the output.
func Render(src Source, frames, blockSize int) []float32 {
	if frames <= 0 {
		return nil
	}
	if blockSize <= 0 {
		blockSize = frames
	}
	out := make([]float32, frames)
	for n := 0; n < frames; n += blockSize {
		end := n + blockSize
		if end > frames {
			end = frames
		}
		src.Process(out[n:end])
	}
	return out
}
