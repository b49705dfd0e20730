package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mrdg/mono/audio"
)

func writeScript(t *testing.T, src string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "test.lua")
	if err := os.WriteFile(file, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	return file
}

func newTestSession(t *testing.T) (*audio.Engine, *session) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.VisSize = 256
	engine, control, err := audio.New(cfg.engineConfig())
	if err != nil {
		t.Fatal(err)
	}
	return engine, newSession(control, cfg)
}

func TestRunScript(t *testing.T) {
	engine, s := newTestSession(t)
	file := writeScript(t, `
preset("pluck")
set("release", 0.5)
set("wave", "saw")
assert(get("wave") == "saw")
assert(get("release") == 0.5)
note_on(60)
note_on("e4", 0.5)
sleep(0.001)
note_off(64)
`)
	if err := runScript(context.Background(), s, file); err != nil {
		t.Fatal(err)
	}

	engine.Process(make([]float32, 64))
	if want, got := uint64(3), s.control.Stats().Applied; want != got {
		t.Errorf("want %v applied events, got %v", want, got)
	}
	if want, got := audio.StageRelease, engine.Synth().Stage(); want != got {
		t.Errorf("want %v, got %v", want, got)
	}
	v, err := s.get(audio.PropAttack)
	if err != nil {
		t.Fatal(err)
	}
	if want, got := 0.001, v; want != got {
		t.Errorf("preset not loaded: want %v, got %v", want, got)
	}
}

func TestRunScriptErrors(t *testing.T) {
	_, s := newTestSession(t)
	for _, src := range []string{
		`set("cutoff", 1)`,
		`set("gain", 2)`,
		`preset("theremin")`,
		`note_on(200)`,
		`note_on("h2")`,
		`note_on(60, 2)`,
		`sleep(-1)`,
		`this is not lua`,
	} {
		if err := runScript(context.Background(), s, writeScript(t, src)); err == nil {
			t.Errorf("expected error for %q", src)
		}
	}
	if err := runScript(context.Background(), s, filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRunScriptCancel(t *testing.T) {
	_, s := newTestSession(t)
	file := writeScript(t, `sleep(60)`)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	start := time.Now()
	if err := runScript(ctx, s, file); err != nil {
		t.Errorf("cancelled script should not fail: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("sleep not interrupted, took %v", elapsed)
	}
}
