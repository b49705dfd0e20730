package audio

import "math"

const defaultSampleRate = 44100

// Synth is a single voice: one oscillator shaped by one ADSR envelope. A new
// note always takes over the voice.
//
// None of its methods allocate or block, so Process can run inside a real
// time audio callback. A Synth is not safe for concurrent use; parameters
// set from another goroutine go through an Engine.
type Synth struct {
	osc Oscillator
	env *Envelope

	sampleRate float64
	gain       float64
	velSense   float64

	freq     float64
	velocity float64
	note     int // -1 when no note is held
}

func NewSynth() *Synth {
	return &Synth{
		env:        NewEnvelope(defaultSampleRate),
		sampleRate: defaultSampleRate,
		gain:       0.8,
		velocity:   1,
		note:       -1,
	}
}

// Prepare sets the sample rate. Non-positive rates are ignored.
func (s *Synth) Prepare(sampleRate float64) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return
	}
	s.sampleRate = sampleRate
	s.env.SetSampleRate(sampleRate)
}

func (s *Synth) SampleRate() float64 { return s.sampleRate }

func (s *Synth) SetWaveform(w Waveform) { s.osc.SetWaveform(w) }

func (s *Synth) SetGain(gain float64) { s.gain = clamp(nonNegative(gain), 0, 1) }

func (s *Synth) SetAttack(seconds float64) { s.env.SetAttack(seconds) }

func (s *Synth) SetDecay(seconds float64) { s.env.SetDecay(seconds) }

func (s *Synth) SetSustain(level float64) { s.env.SetSustain(level) }

func (s *Synth) SetRelease(seconds float64) { s.env.SetRelease(seconds) }

// SetVelocitySense sets how much note velocity scales the output: 0 ignores
// velocity, 1 makes amplitude proportional to it.
func (s *Synth) SetVelocitySense(amount float64) { s.velSense = clamp(nonNegative(amount), 0, 1) }

// NoteOn starts note at the given velocity, interrupting whatever was
// playing.
func (s *Synth) NoteOn(note uint8, velocity float32) {
	note &= 0x7f
	s.note = int(note)
	s.freq = midiToFreq(int(note))
	s.velocity = clamp(nonNegative(float64(velocity)), 0, 1)
	s.osc.ResetPhase()
	s.env.NoteOn()
}

// NoteOff releases the current note.
func (s *Synth) NoteOff() {
	s.env.NoteOff()
	s.note = -1
}

// ReleaseNote releases the voice only if note is the one sounding, so
// letting go of an earlier key does not cut off a later one.
func (s *Synth) ReleaseNote(note uint8) {
	if s.note == int(note&0x7f) {
		s.NoteOff()
	}
}

// Note returns the held note, if any.
func (s *Synth) Note() (uint8, bool) {
	if s.note < 0 {
		return 0, false
	}
	return uint8(s.note), true
}

// Active reports whether the envelope is producing sound.
func (s *Synth) Active() bool { return s.env.Active() }

func (s *Synth) Stage() Stage { return s.env.Stage() }

// Process fills out with the next len(out) samples.
func (s *Synth) Process(out []float32) {
	amp := s.gain * (1 - s.velSense*(1-s.velocity))
	for n := range out {
		if !s.env.Active() {
			out[n] = 0
			continue
		}
		osc := s.osc.Next(s.freq, s.sampleRate)
		env := s.env.Tick()
		out[n] = osc * float32(env*amp)
	}
}

func midiToFreq(note int) float64 {
	return math.Pow(2, float64(note-69)/12.0) * 440
}
