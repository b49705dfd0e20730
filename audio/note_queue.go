package audio

import (
	"fmt"
	"math"
	"sync/atomic"
)

type EventKind uint8

const (
	NoteOff EventKind = iota
	NoteOn
)

func (k EventKind) String() string {
	if k == NoteOn {
		return "on"
	}
	return "off"
}

// NoteEvent is a note-on or note-off for a MIDI note number. Velocity is in
// [0, 1] and travels through the queue with 7 bit resolution.
type NoteEvent struct {
	Kind     EventKind
	Note     uint8
	Velocity float32
}

func (ev NoteEvent) String() string {
	return fmt.Sprintf("%v %d %.2f", ev.Kind, ev.Note, ev.Velocity)
}

// pack encodes an event into one word: bits 0-6 note, bit 7 on/off,
// bits 8-14 velocity.
func (ev NoteEvent) pack() uint32 {
	vel := clamp(float64(ev.Velocity), 0, 1)
	if math.IsNaN(vel) {
		vel = 0
	}
	v := uint32(math.Round(vel * 127))
	w := uint32(ev.Note&0x7f) | v<<8
	if ev.Kind == NoteOn {
		w |= 0x80
	}
	return w
}

func unpackEvent(w uint32) NoteEvent {
	ev := NoteEvent{
		Note:     uint8(w & 0x7f),
		Velocity: float32((w>>8)&0x7f) / 127,
	}
	if w&0x80 != 0 {
		ev.Kind = NoteOn
	}
	return ev
}

// noteQueue is a lock-free spsc ring of packed note events. The cursors run
// freely and are reduced modulo the (power of 2) size on access.
type noteQueue struct {
	slots       []atomic.Uint32
	mask        uint64
	read, write atomic.Uint64
	dropped     atomic.Uint64
}

// NoteProducer is the sending half of a note queue. It must be owned by a
// single goroutine at a time.
type NoteProducer struct {
	q    *noteQueue
	busy atomic.Bool
}

// NoteConsumer is the receiving half of a note queue. It must be owned by a
// single goroutine at a time, normally the one running the audio callback.
type NoteConsumer struct {
	q    *noteQueue
	busy atomic.Bool
}

// NewNoteQueue returns both ends of a queue holding up to size events. size
// must be a power of 2.
func NewNoteQueue(size int) (*NoteProducer, *NoteConsumer) {
	if size <= 0 || size&(size-1) != 0 {
		panic("note queue size must be a power of 2")
	}
	q := &noteQueue{
		slots: make([]atomic.Uint32, size),
		mask:  uint64(size - 1),
	}
	return &NoteProducer{q: q}, &NoteConsumer{q: q}
}

// Push appends ev to the queue. If the queue is full the event is dropped,
// the drop counter is incremented and Push returns false. It never blocks.
func (p *NoteProducer) Push(ev NoteEvent) bool {
	if !p.busy.CompareAndSwap(false, true) {
		panic("audio: concurrent use of NoteProducer")
	}
	defer p.busy.Store(false)

	q := p.q
	write := q.write.Load()
	if write-q.read.Load() == uint64(len(q.slots)) {
		q.dropped.Add(1)
		return false
	}
	q.slots[write&q.mask].Store(ev.pack())
	q.write.Store(write + 1)
	return true
}

// Dropped returns the number of events discarded because the queue was full.
func (p *NoteProducer) Dropped() uint64 { return p.q.dropped.Load() }

// Cap returns the number of events the queue can hold.
func (p *NoteProducer) Cap() int { return len(p.q.slots) }

// Drain calls f for every pending event in push order and returns the number
// of events consumed. Events pushed while Drain runs may be left for the next
// call.
func (c *NoteConsumer) Drain(f func(NoteEvent)) int {
	if !c.busy.CompareAndSwap(false, true) {
		panic("audio: concurrent use of NoteConsumer")
	}
	defer c.busy.Store(false)

	q := c.q
	read := q.read.Load()
	write := q.write.Load()
	n := 0
	for ; read != write; read++ {
		f(unpackEvent(q.slots[read&q.mask].Load()))
		// release the slot only after it has been read
		q.read.Store(read + 1)
		n++
	}
	return n
}

// Len returns the number of events waiting to be drained.
func (c *NoteConsumer) Len() int {
	return int(c.q.write.Load() - c.q.read.Load())
}
