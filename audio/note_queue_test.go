package audio

import (
	"context"
	"reflect"
	"runtime"
	"testing"
)

func TestNoteQueueOrder(t *testing.T) {
	p, c := NewNoteQueue(8)
	var pushed []NoteEvent
	for n := 0; n < 8; n++ {
		ev := NoteEvent{Kind: EventKind(n % 2), Note: uint8(60 + n), Velocity: 1}
		if n%2 == 0 {
			ev.Velocity = 0
		}
		if !p.Push(ev) {
			t.Fatalf("push %d failed on a queue with room", n)
		}
		pushed = append(pushed, ev)
	}

	var events []NoteEvent
	n := c.Drain(func(ev NoteEvent) {
		events = append(events, ev)
	})
	if want, got := 8, n; want != got {
		t.Errorf("wrong drain count: want %v, got %v", want, got)
	}
	if !reflect.DeepEqual(pushed, events) {
		t.Errorf("wrong events:\nwant: %+v\ngot:  %+v", pushed, events)
	}
	if want, got := 0, c.Drain(func(NoteEvent) {}); want != got {
		t.Errorf("expected empty queue, drained %v", got)
	}
}

func TestNoteQueueOverflowDropsNewest(t *testing.T) {
	p, c := NewNoteQueue(4)
	for n := 0; n < 6; n++ {
		ok := p.Push(NoteEvent{Kind: NoteOn, Note: uint8(n), Velocity: 1})
		if want, got := n < 4, ok; want != got {
			t.Errorf("push %d: want %v, got %v", n, want, got)
		}
	}
	if want, got := uint64(2), p.Dropped(); want != got {
		t.Errorf("wrong drop count: want %v, got %v", want, got)
	}

	var notes []uint8
	c.Drain(func(ev NoteEvent) {
		notes = append(notes, ev.Note)
	})
	if want, got := []uint8{0, 1, 2, 3}, notes; !reflect.DeepEqual(want, got) {
		t.Errorf("wrong survivors: want %v, got %v", want, got)
	}

	// room again after draining
	if !p.Push(NoteEvent{Kind: NoteOff, Note: 9}) {
		t.Error("push failed after drain")
	}
}

func TestNoteEventPacking(t *testing.T) {
	tests := []struct {
		in   NoteEvent
		want NoteEvent
	}{
		{NoteEvent{Kind: NoteOn, Note: 127, Velocity: 1}, NoteEvent{Kind: NoteOn, Note: 127, Velocity: 1}},
		{NoteEvent{Kind: NoteOff, Note: 0}, NoteEvent{Kind: NoteOff, Note: 0}},
		{NoteEvent{Kind: NoteOn, Note: 200, Velocity: 2}, NoteEvent{Kind: NoteOn, Note: 200 & 0x7f, Velocity: 1}},
		{NoteEvent{Kind: NoteOn, Note: 60, Velocity: -1}, NoteEvent{Kind: NoteOn, Note: 60, Velocity: 0}},
	}
	for _, test := range tests {
		if got := unpackEvent(test.in.pack()); got != test.want {
			t.Errorf("pack(%v): want %v, got %v", test.in, test.want, got)
		}
	}
}

func TestNoteQueueConcurrent(t *testing.T) {
	p, c := NewNoteQueue(8)

	done := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())

	var events []NoteEvent
	go func() {
		for {
			select {
			case <-ctx.Done():
				c.Drain(func(ev NoteEvent) {
					events = append(events, ev)
				})
				done <- struct{}{}
				return
			default:
				n := c.Drain(func(ev NoteEvent) {
					events = append(events, ev)
				})
				if n == 0 {
					// let the producer run on a single CPU
					runtime.Gosched()
				}
			}
		}
	}()

	const numEvents = 200_000
	for n := 0; n < numEvents; n++ {
		ev := NoteEvent{Kind: EventKind(n % 2), Note: uint8(n % 128)}
		for !p.Push(ev) {
			runtime.Gosched()
		}
	}

	cancel()
	<-done

	if len(events) != numEvents {
		t.Fatalf("wrong number of events: want %v, got %v", numEvents, len(events))
	}

	for n, ev := range events {
		if want, got := uint8(n%128), ev.Note; want != got {
			t.Fatalf("discontinuous event at %d: want note %v, got %v", n, want, got)
		}
		if want, got := EventKind(n%2), ev.Kind; want != got {
			t.Fatalf("wrong kind at %d: want %v, got %v", n, want, got)
		}
	}
}

func TestNoteQueueSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for a size that is not a power of 2")
		}
	}()
	NewNoteQueue(6)
}

func BenchmarkNoteQueue(b *testing.B) {
	p, c := NewNoteQueue(64)
	ev := NoteEvent{Kind: NoteOn, Note: 60, Velocity: 1}
	f := func(NoteEvent) {}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p.Push(ev)
		c.Drain(f)
	}
}
