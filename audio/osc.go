package audio

import (
	"fmt"
	"math"
	"strings"
)

// Waveform selects the shape produced by an Oscillator.
type Waveform int

const (
	Sine Waveform = iota
	Triangle
	Square
	Saw
)

var waveformNames = []string{"sine", "triangle", "square", "saw"}

func (w Waveform) String() string {
	if w < 0 || int(w) >= len(waveformNames) {
		return fmt.Sprintf("Waveform(%d)", int(w))
	}
	return waveformNames[w]
}

// WaveformFromIndex maps an index to a waveform. Out of range indices are
// clamped to the nearest valid waveform.
func WaveformFromIndex(i int) Waveform {
	if i < 0 {
		return Sine
	}
	if i >= len(waveformNames) {
		return Saw
	}
	return Waveform(i)
}

func ParseWaveform(name string) (Waveform, error) {
	for i, n := range waveformNames {
		if strings.EqualFold(n, name) {
			return Waveform(i), nil
		}
	}
	return Sine, fmt.Errorf("%w: %q", ErrUnknownWaveform, name)
}

// triangleLeak is the per-sample leak of the integrator that turns a square
// into a triangle. The time constant is 1/(1-leak) = 2000 samples, about 45ms
// at 44.1kHz.
const triangleLeak = 0.9995

// Oscillator is a phase accumulator with PolyBLEP correction at the
// discontinuities of the square and saw shapes. The triangle is a leaky
// integration of the corrected square.
type Oscillator struct {
	wave  Waveform
	phase float64 // [0, 1)

	phaseDelta float64
	freq       float64
	sampleRate float64

	tri float64
}

func (o *Oscillator) SetWaveform(w Waveform) {
	if w == o.wave {
		return
	}
	o.wave = w
	if w == Triangle {
		o.tri = triangleAt(o.phase)
	}
}

func (o *Oscillator) Waveform() Waveform { return o.wave }

// ResetPhase restarts the waveform at phase zero.
func (o *Oscillator) ResetPhase() {
	o.phase = 0
	o.tri = triangleAt(0)
}

// Next returns one sample at the given frequency and advances the phase.
// A non-positive frequency or sample rate yields silence and leaves the
// phase untouched.
func (o *Oscillator) Next(freq, sampleRate float64) float32 {
	if freq != o.freq || sampleRate != o.sampleRate {
		o.freq = freq
		o.sampleRate = sampleRate
		o.phaseDelta = 0
		if freq > 0 && sampleRate > 0 {
			o.phaseDelta = freq / sampleRate
		}
	}
	dt := o.phaseDelta
	if !(dt > 0) || math.IsInf(dt, 0) {
		return 0
	}

	var v float64
	switch o.wave {
	case Sine:
		v = math.Sin(2 * math.Pi * o.phase)
	case Saw:
		v = saw(o.phase, dt)
	case Square:
		v = square(o.phase, dt)
	case Triangle:
		o.tri = triangleLeak*o.tri + 4*dt*square(o.phase, dt)
		v = clamp(o.tri, -1, 1)
	}

	o.phase += dt
	if o.phase >= 1 {
		o.phase -= 1
		if o.phase >= 1 {
			o.phase -= math.Floor(o.phase)
		}
	}
	return float32(v)
}

// triangleAt is the ideal triangle the integrator converges to: the trough
// at phase 0 and the peak at 0.5, where the square flips sign. Switching to
// the triangle seeds the integrator with it.
func triangleAt(phase float64) float64 {
	return 1 - 4*math.Abs(phase-0.5)
}

// saw rises from -1 to 1 with a downward step of height 2 at phase 0.
func saw(phase, dt float64) float64 {
	return 2*phase - 1 - polyBLEP(phase, dt)
}

// square is +1 for the first half of the period and -1 for the second,
// with corrected edges at phase 0 and 0.5.
func square(phase, dt float64) float64 {
	v := -1.0
	if phase < 0.5 {
		v = 1
	}
	v += polyBLEP(phase, dt)
	v -= polyBLEP(math.Mod(phase+0.5, 1), dt)
	return v
}

// polyBLEP returns the polynomial band-limited step residual for a unit
// discontinuity at t=0. t is the phase relative to the edge and dt the phase
// increment per sample.
func polyBLEP(t, dt float64) float64 {
	if t < dt {
		t /= dt
		return t + t - t*t - 1
	} else if t > 1-dt {
		t = (t - 1) / dt
		return t*t + t + t + 1
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
