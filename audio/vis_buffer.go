package audio

import (
	"math"
	"sync/atomic"
)

// visBuffer is a double buffer of samples handed from the audio goroutine to
// a display. The writer fills the back buffer and publishes it by flipping
// the front index. The state word holds the swap count shifted left by one
// with the front index in the low bit, so a reader can tell whether a swap
// happened while it was looking.
type visBuffer struct {
	bufs  [2][]atomic.Uint32 // float32 bits
	state atomic.Uint64
}

// VisWriter is the writing half of a visualization buffer. Only the audio
// goroutine may use it.
type VisWriter struct {
	b    *visBuffer
	pos  int
	busy atomic.Bool
}

// VisReader is the reading half of a visualization buffer. Only one
// goroutine at a time may use it.
type VisReader struct {
	b *visBuffer
}

// NewVisBuffer returns both ends of a double buffer of size samples each.
func NewVisBuffer(size int) (*VisWriter, *VisReader) {
	if size <= 0 {
		panic("vis buffer size must be positive")
	}
	b := &visBuffer{}
	b.bufs[0] = make([]atomic.Uint32, size)
	b.bufs[1] = make([]atomic.Uint32, size)
	return &VisWriter{b: b}, &VisReader{b: b}
}

// Write appends samples to the back buffer. Every time the back buffer fills
// up it becomes the front buffer and writing continues in the other one.
func (w *VisWriter) Write(samples []float32) {
	if !w.busy.CompareAndSwap(false, true) {
		panic("audio: concurrent use of VisWriter")
	}
	defer w.busy.Store(false)

	b := w.b
	state := b.state.Load()
	back := b.bufs[1-state&1]
	for _, s := range samples {
		back[w.pos].Store(math.Float32bits(s))
		w.pos++
		if w.pos == len(back) {
			w.pos = 0
			swaps := state>>1 + 1
			state = swaps<<1 | (1 - state&1)
			b.state.Store(state)
			back = b.bufs[1-state&1]
		}
	}
}

// Size returns the number of samples in each buffer.
func (w *VisWriter) Size() int { return len(w.b.bufs[0]) }

// Frame is a view of the front buffer. It stays intact until the writer's
// next swap, after which the writer reuses it; Stale reports when that may
// have happened.
type Frame struct {
	b     *visBuffer
	state uint64
}

func (f Frame) Len() int {
	if f.b == nil {
		return 0
	}
	return len(f.b.bufs[0])
}

func (f Frame) At(i int) float32 {
	return math.Float32frombits(f.b.bufs[f.state&1][i].Load())
}

// Generation is the number of swaps that had happened when the frame was
// taken. It changes every time a new buffer is published.
func (f Frame) Generation() uint64 { return f.state >> 1 }

// Stale reports whether the writer may have started overwriting the frame.
func (f Frame) Stale() bool {
	return f.b == nil || f.b.state.Load() != f.state
}

// CopyTo copies the frame into dst and returns the number of samples copied.
func (f Frame) CopyTo(dst []float32) int {
	n := f.Len()
	if len(dst) < n {
		n = len(dst)
	}
	buf := f.b.bufs[f.state&1]
	for i := 0; i < n; i++ {
		dst[i] = math.Float32frombits(buf[i].Load())
	}
	return n
}

// ReadFront returns a view of the most recently completed buffer.
func (r *VisReader) ReadFront() Frame {
	return Frame{b: r.b, state: r.b.state.Load()}
}

// Snapshot copies the front buffer into dst. ok is false if a swap happened
// during the copy, in which case dst may mix two buffers and should be
// discarded.
func (r *VisReader) Snapshot(dst []float32) (gen uint64, ok bool) {
	f := r.ReadFront()
	f.CopyTo(dst)
	return f.Generation(), !f.Stale()
}

// Swaps returns how many buffers the writer has published.
func (r *VisReader) Swaps() uint64 { return r.b.state.Load() >> 1 }

// Size returns the number of samples in each buffer.
func (r *VisReader) Size() int { return len(r.b.bufs[0]) }
