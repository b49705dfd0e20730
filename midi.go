package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang/glog"
	"github.com/mrdg/mono/audio"
	"gitlab.com/gomidi/midi"
	"gitlab.com/gomidi/rtmididrv"
)

const (
	midiNoteOff = 0x8
	midiNoteOn  = 0x9
)

// decodeMIDI turns a channel voice message into a note event. A note-on with
// velocity 0 is a note-off. Anything else is ignored.
func decodeMIDI(data []byte) (audio.NoteEvent, bool) {
	if len(data) < 3 {
		return audio.NoteEvent{}, false
	}
	status, note, velocity := data[0]>>4, data[1]&0x7f, data[2]&0x7f
	switch {
	case status == midiNoteOff || status == midiNoteOn && velocity == 0:
		return audio.NoteEvent{Kind: audio.NoteOff, Note: note}, true
	case status == midiNoteOn:
		return audio.NoteEvent{Kind: audio.NoteOn, Note: note, Velocity: float32(velocity) / 127}, true
	}
	return audio.NoteEvent{}, false
}

// handleMIDI pushes a decoded message through the session.
func handleMIDI(s *session, data []byte) {
	ev, ok := decodeMIDI(data)
	if !ok {
		return
	}
	var pushed bool
	switch ev.Kind {
	case audio.NoteOn:
		pushed = s.noteOn(ev.Note, ev.Velocity)
	case audio.NoteOff:
		pushed = s.noteOff(ev.Note)
	}
	if !pushed {
		glog.Warningf("midi: note queue full, dropped %v", data)
	} else if glog.V(2) {
		glog.Infof("midi: %v", data)
	}
}

// selectInput returns the first input whose name contains port, or the
// first input if port is empty.
func selectInput(ins []midi.In, port string) (midi.In, error) {
	if len(ins) == 0 {
		return nil, fmt.Errorf("no MIDI inputs found")
	}
	if port == "" {
		return ins[0], nil
	}
	for _, in := range ins {
		if strings.Contains(strings.ToLower(in.String()), strings.ToLower(port)) {
			return in, nil
		}
	}
	return nil, fmt.Errorf("no MIDI input matching %q", port)
}

// listenMIDI feeds note messages from a MIDI input into the session until
// ctx is cancelled. A missing device is logged, not fatal.
func listenMIDI(ctx context.Context, s *session, port string) error {
	drv, err := rtmididrv.New()
	if err != nil {
		return fmt.Errorf("failed to initialize MIDI driver: %w", err)
	}
	defer func() {
		if err := drv.Close(); err != nil {
			glog.Warningf("failed to close MIDI driver: %v", err)
		}
	}()
	ins, err := drv.Ins()
	if err != nil {
		return fmt.Errorf("failed to get MIDI inputs: %w", err)
	}
	glog.V(1).Infof("MIDI inputs: %v", ins)

	in, err := selectInput(ins, port)
	if err != nil {
		glog.Warning(err)
		return nil
	}
	if err := in.Open(); err != nil {
		return fmt.Errorf("failed to open MIDI input: %w", err)
	}
	defer func() {
		if err := in.Close(); err != nil {
			glog.Warningf("failed to close MIDI input: %v", err)
		}
	}()
	glog.Infof("listening to MIDI input %s", in.String())

	if err := in.SetListener(func(data []byte, deltaMicroseconds int64) {
		handleMIDI(s, data)
	}); err != nil {
		return fmt.Errorf("failed to set MIDI listener: %w", err)
	}
	defer func() {
		if err := in.StopListening(); err != nil {
			glog.Warningf("failed to stop listening: %v", err)
		}
	}()
	<-ctx.Done()
	return nil
}
