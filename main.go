package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"
	"github.com/mrdg/mono/audio"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		configFile = flag.String("config", "", "path to a TOML config file")
		backend    = flag.String("backend", "", "audio backend: portaudio or oto")
		midi       = flag.Bool("midi", false, "play notes from the first MIDI input")
		script     = flag.String("run", "", "Lua script to run alongside the REPL")
	)
	flag.Parse()

	cfg := DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = ParseFromFile(*configFile); err != nil {
			glog.Exit(err)
		}
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *midi {
		cfg.MIDI = true
	}
	if err := cfg.validate(); err != nil {
		glog.Exit(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *script); err != nil {
		glog.Exitf("failed to run: %v", err)
	}
	glog.Flush()
}

func run(ctx context.Context, cfg Config, script string) error {
	engine, control, err := audio.New(cfg.engineConfig())
	if err != nil {
		return err
	}
	if err := cfg.apply(control); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	sink, err := newSink(cfg, engine)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			glog.Warningf("failed to close %s output: %v", cfg.Backend, err)
		}
	}()
	if err := sink.Start(); err != nil {
		return fmt.Errorf("failed to start %s output: %w", cfg.Backend, err)
	}
	glog.Infof("%s output at %d Hz, %d frames per buffer", cfg.Backend, cfg.SampleRate, cfg.BlockSize)

	s := newSession(control, cfg)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// leaving the REPL ends the program
		defer cancel()
		return repl(ctx, newEnv(ctx, s, os.Stdout))
	})
	if cfg.MIDI {
		g.Go(func() error {
			return listenMIDI(ctx, s, cfg.MIDIPort)
		})
	}
	if script != "" {
		g.Go(func() error {
			if err := runScript(ctx, s, script); err != nil {
				glog.Error(err)
			}
			return nil
		})
	}
	return g.Wait()
}

func newSink(cfg Config, src audio.Source) (audio.Sink, error) {
	switch cfg.Backend {
	case backendPortAudio:
		return audio.NewPortAudioSink(src, float64(cfg.SampleRate), cfg.BlockSize)
	case backendOto:
		return audio.NewOtoSink(src, cfg.SampleRate, cfg.BlockSize)
	}
	return nil, fmt.Errorf("unknown backend: %q", cfg.Backend)
}
