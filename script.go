package main

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/mrdg/mono/audio"
	"github.com/mrdg/mono/dub"
	lua "github.com/yuin/gopher-lua"
)

// runScript executes a Lua file against the session. Scripts get note_on,
// note_off, set, get, preset and sleep; sleep returns early when ctx is
// cancelled.
func runScript(ctx context.Context, s *session, file string) error {
	L := newScriptState(ctx, s)
	defer L.Close()
	if err := L.DoFile(file); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("script %s: %w", file, err)
	}
	glog.V(1).Infof("script %s done", file)
	return nil
}

func newScriptState(ctx context.Context, s *session) *lua.LState {
	L := lua.NewState()
	L.SetContext(ctx)
	for name, f := range map[string]lua.LGFunction{
		"note_on":  scriptNoteOn(s),
		"note_off": scriptNoteOff(s),
		"set":      scriptSet(s),
		"get":      scriptGet(s),
		"preset":   scriptPreset(s),
		"sleep":    scriptSleep(ctx),
	} {
		L.SetGlobal(name, L.NewFunction(f))
	}
	return L
}

// checkNote accepts a MIDI note number or a note name such as "c4".
func checkNote(L *lua.LState, n int) uint8 {
	switch v := L.CheckAny(n).(type) {
	case lua.LNumber:
		if v < 0 || v > 127 {
			L.ArgError(n, "note out of range 0 - 127")
		}
		return uint8(v)
	case lua.LString:
		note, err := dub.ParseNote(string(v))
		if err != nil {
			L.ArgError(n, err.Error())
		}
		return uint8(note)
	}
	L.TypeError(n, lua.LTNumber)
	return 0
}

func scriptNoteOn(s *session) lua.LGFunction {
	return func(L *lua.LState) int {
		note := checkNote(L, 1)
		velocity := float64(L.OptNumber(2, 1))
		if velocity < 0 || velocity > 1 {
			L.ArgError(2, "velocity out of range 0 - 1")
		}
		L.Push(lua.LBool(s.noteOn(note, float32(velocity))))
		return 1
	}
}

func scriptNoteOff(s *session) lua.LGFunction {
	return func(L *lua.LState) int {
		L.Push(lua.LBool(s.noteOff(checkNote(L, 1))))
		return 1
	}
}

func scriptSet(s *session) lua.LGFunction {
	return func(L *lua.LState) int {
		key := L.CheckString(1)
		var v interface{}
		switch arg := L.CheckAny(2).(type) {
		case lua.LNumber:
			v = float64(arg)
		case lua.LString:
			v = string(arg)
		default:
			L.ArgError(2, "expected a number or string")
		}
		if err := s.set(key, v); err != nil {
			L.RaiseError("%v", err)
		}
		return 0
	}
}

func scriptGet(s *session) lua.LGFunction {
	return func(L *lua.LState) int {
		v, err := s.get(L.CheckString(1))
		if err != nil {
			L.RaiseError("%v", err)
		}
		switch v := v.(type) {
		case audio.Waveform:
			L.Push(lua.LString(v.String()))
		case float64:
			L.Push(lua.LNumber(v))
		default:
			L.Push(lua.LString(fmt.Sprint(v)))
		}
		return 1
	}
}

func scriptPreset(s *session) lua.LGFunction {
	return func(L *lua.LState) int {
		if err := s.loadPreset(L.CheckString(1)); err != nil {
			L.RaiseError("%v", err)
		}
		return 0
	}
}

func scriptSleep(ctx context.Context) lua.LGFunction {
	return func(L *lua.LState) int {
		seconds := float64(L.CheckNumber(1))
		if seconds < 0 {
			L.ArgError(1, "negative duration")
		}
		if err := sleep(ctx, time.Duration(seconds*float64(time.Second))); err != nil {
			L.RaiseError("%v", err)
		}
		return 0
	}
}
