package main

import (
	"sync"

	"github.com/mrdg/mono/audio"
)

// session owns the control half of the engine. The REPL, MIDI input and
// scripts all run on their own goroutines; going through update keeps them
// a single producer for the note queue.
type session struct {
	mu      sync.Mutex
	control *audio.Control
	cfg     Config
}

func newSession(control *audio.Control, cfg Config) *session {
	return &session{control: control, cfg: cfg}
}

func (s *session) update(f func(*audio.Control) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return f(s.control)
}

func (s *session) noteOn(note uint8, velocity float32) bool {
	var ok bool
	s.update(func(c *audio.Control) error {
		ok = c.NoteOn(note, velocity)
		return nil
	})
	return ok
}

func (s *session) noteOff(note uint8) bool {
	var ok bool
	s.update(func(c *audio.Control) error {
		ok = c.NoteOff(note)
		return nil
	})
	return ok
}

func (s *session) set(key string, v interface{}) error {
	return s.update(func(c *audio.Control) error {
		return c.Set(key, v)
	})
}

func (s *session) get(key string) (interface{}, error) {
	var v interface{}
	err := s.update(func(c *audio.Control) error {
		var err error
		v, err = c.Get(key)
		return err
	})
	return v, err
}

func (s *session) loadPreset(name string) error {
	return s.update(func(c *audio.Control) error {
		return c.LoadPreset(name)
	})
}
