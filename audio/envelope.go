package audio

// Stage is the state of an Envelope.
type Stage int

const (
	StageIdle Stage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	}
	return "unknown"
}

// levels closer than this to a stage target count as having reached it
const levelEpsilon = 1e-9

// Envelope is a linear ADSR gain generator. Times are in seconds, the
// sustain value is a level in [0, 1].
type Envelope struct {
	attack  float64
	decay   float64
	sustain float64
	release float64

	sampleRate float64

	attackRate  float64
	decayRate   float64
	releaseRate float64

	releaseFrom float64

	level float64
	stage Stage
}

func NewEnvelope(sampleRate float64) *Envelope {
	e := &Envelope{
		attack:     0.01,
		decay:      0.1,
		sustain:    0.7,
		release:    0.3,
		sampleRate: sampleRate,
	}
	e.calculateRates()
	return e
}

func (e *Envelope) SetSampleRate(sampleRate float64) {
	e.sampleRate = sampleRate
	e.calculateRates()
}

func (e *Envelope) SetAttack(seconds float64) {
	e.attack = nonNegative(seconds)
	e.calculateRates()
}

func (e *Envelope) SetDecay(seconds float64) {
	e.decay = nonNegative(seconds)
	e.calculateRates()
}

func (e *Envelope) SetSustain(level float64) {
	e.sustain = clamp(nonNegative(level), 0, 1)
	e.calculateRates()
}

func (e *Envelope) SetRelease(seconds float64) {
	e.release = nonNegative(seconds)
	e.calculateRates()
}

// NoteOn restarts the envelope from Attack. The level is kept so a retrigger
// during Release ramps up from where it was.
func (e *Envelope) NoteOn() {
	e.stage = StageAttack
}

// NoteOff moves any active envelope to Release. The release always takes the
// configured time, whatever level it starts from.
func (e *Envelope) NoteOff() {
	if e.stage == StageIdle {
		return
	}
	e.stage = StageRelease
	e.releaseFrom = e.level
	e.releaseRate = e.releaseFrom / e.samples(e.release)
}

// Reset silences the envelope immediately.
func (e *Envelope) Reset() {
	e.stage = StageIdle
	e.level = 0
}

func (e *Envelope) Active() bool { return e.stage != StageIdle }

func (e *Envelope) Stage() Stage { return e.stage }

func (e *Envelope) Level() float64 { return e.level }

// Tick advances the envelope by one sample and returns the new level.
func (e *Envelope) Tick() float64 {
	switch e.stage {
	case StageIdle:
		e.level = 0
	case StageAttack:
		e.level += e.attackRate
		if e.level >= 1-levelEpsilon {
			e.level = 1
			e.stage = StageDecay
		}
	case StageDecay:
		e.level -= e.decayRate
		if e.level <= e.sustain+levelEpsilon {
			e.level = e.sustain
			e.stage = StageSustain
		}
	case StageSustain:
		e.level = e.sustain
	case StageRelease:
		e.level -= e.releaseRate
		if e.level <= levelEpsilon {
			e.level = 0
			e.stage = StageIdle
		}
	}
	e.level = clamp(e.level, 0, 1)
	return e.level
}

func (e *Envelope) calculateRates() {
	e.attackRate = 1 / e.samples(e.attack)
	e.decayRate = (1 - e.sustain) / e.samples(e.decay)
	if e.stage == StageRelease {
		e.releaseRate = e.releaseFrom / e.samples(e.release)
	} else {
		e.releaseRate = e.sustain / e.samples(e.release)
	}
}

// samples converts a stage time to a sample count. Anything shorter than one
// sample completes in a single tick.
func (e *Envelope) samples(seconds float64) float64 {
	n := seconds * e.sampleRate
	if !(n >= 1) {
		return 1
	}
	return n
}

func nonNegative(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	return v
}
