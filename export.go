package main

import (
	"fmt"
	"math"
	"os"

	"github.com/golang/glog"
	"github.com/mrdg/mono/audio"
)

// renderNote plays note for hold seconds on a private engine that shares the
// live engine's parameters, then renders the release tail.
func renderNote(s *session, note uint8, hold float64) ([]float32, error) {
	if !(hold > 0) || math.IsInf(hold, 0) {
		return nil, fmt.Errorf("invalid duration: %v", hold)
	}
	engine, control, err := audio.New(s.cfg.engineConfig())
	if err != nil {
		return nil, err
	}
	err = s.update(func(live *audio.Control) error {
		return control.CopyParams(live)
	})
	if err != nil {
		return nil, err
	}
	release, err := control.Get(audio.PropRelease)
	if err != nil {
		return nil, err
	}

	sampleRate := float64(s.cfg.SampleRate)
	holdFrames := int(hold * sampleRate)
	tailFrames := int(release.(float64)*sampleRate) + s.cfg.BlockSize

	control.NoteOn(note, 1)
	out := audio.Render(engine, holdFrames, s.cfg.BlockSize)
	control.NoteOff(note)
	out = append(out, audio.Render(engine, tailFrames, s.cfg.BlockSize)...)
	return out, nil
}

func exportWAV(file string, samples []float32, sampleRate int) (err error) {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := audio.WriteWAV(f, samples, sampleRate); err != nil {
		return err
	}
	glog.V(1).Infof("wrote %d samples to %s", len(samples), file)
	return nil
}
