package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/mrdg/mono/audio"
	"github.com/mrdg/mono/dub"
)

var errQueueFull = errors.New("note queue full, event dropped")

type command struct {
	name  string
	args  string
	help  string
	run   func(*env, []dub.Node) (string, error)
	arity int // -n means len(args) must be >= n
}

var commands = []command{
	{"on", "<note> [velocity]", "start a note", noteOnCommand, -1},
	{"off", "<note>", "release a note", noteOffCommand, 1},
	{"play", "<'notes> [step] [velocity]", "play a note list, one note per step", playCommand, -1},
	{"set", "<param> <value>", "set a parameter", setCommand, 2},
	{"get", "<param>", "show a parameter", getCommand, 1},
	{"wave", "<waveform>", "select sine, triangle, square or saw", waveCommand, 1},
	{"preset", "<name>", "load a preset", presetCommand, 1},
	{"presets", "", "list presets", presetsCommand, 0},
	{"params", "", "show all parameters", paramsCommand, 0},
	{"scope", "", "draw the latest output", scopeCommand, 0},
	{"stats", "", "show engine counters", statsCommand, 0},
	{"render", "<file> <note> [seconds]", "render a note to a wav file", renderCommand, -2},
	{"run", "<script>", "run a Lua script", runCommand, 1},
}

func init() {
	commands = append(commands, command{"help", "", "show this help", helpCommand, 0})
}

func noteOnCommand(env *env, args []dub.Node) (string, error) {
	var note uint8
	velocity := 1.
	if err := readArgs(args, &note, &velocity); err != nil {
		return "", err
	}
	if velocity < 0 || velocity > 1 {
		return "", fmt.Errorf("velocity out of range 0 - 1: %v", velocity)
	}
	if !env.session.noteOn(note, float32(velocity)) {
		return "", errQueueFull
	}
	return "", nil
}

func noteOffCommand(env *env, args []dub.Node) (string, error) {
	var note uint8
	if err := readArgs(args, &note); err != nil {
		return "", err
	}
	if !env.session.noteOff(note) {
		return "", errQueueFull
	}
	return "", nil
}

func playCommand(env *env, args []dub.Node) (string, error) {
	var notes dub.Notes
	step, velocity := 0.25, 1.
	if err := readArgs(args, &notes, &step, &velocity); err != nil {
		return "", err
	}
	if !(step > 0) || step > 10 {
		return "", fmt.Errorf("step out of range 0 - 10: %v", step)
	}
	return "", playNotes(env.ctx, env.session, notes, time.Duration(step*float64(time.Second)), float32(velocity))
}

// playNotes plays each note for one step. A full queue drops the note but
// does not stop the sequence.
func playNotes(ctx context.Context, s *session, notes []int, step time.Duration, velocity float32) error {
	for _, n := range notes {
		note := uint8(n)
		if !s.noteOn(note, velocity) {
			glog.Warningf("play: note %s dropped", dub.NoteName(n))
		}
		err := sleep(ctx, step)
		s.noteOff(note)
		if err != nil {
			return err
		}
	}
	return nil
}

func setCommand(env *env, args []dub.Node) (string, error) {
	var key string
	if err := readArgs(args[:1], &key); err != nil {
		return "", err
	}
	var v interface{}
	switch arg := args[1].(type) {
	case dub.Int:
		v = int(arg)
	case dub.Float:
		v = float64(arg)
	case dub.String:
		v = string(arg)
	case dub.Identifier:
		v = string(arg)
	default:
		return "", fmt.Errorf("unsupported property type: %v", arg)
	}
	return "", env.session.set(key, v)
}

func getCommand(env *env, args []dub.Node) (string, error) {
	var key string
	if err := readArgs(args, &key); err != nil {
		return "", err
	}
	v, err := env.session.get(key)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s = %v", key, v), nil
}

func waveCommand(env *env, args []dub.Node) (string, error) {
	var name string
	if err := readArgs(args, &name); err != nil {
		return "", err
	}
	return "", env.session.set(audio.PropWave, name)
}

func presetCommand(env *env, args []dub.Node) (string, error) {
	var name string
	if err := readArgs(args, &name); err != nil {
		return "", err
	}
	return "", env.session.loadPreset(name)
}

func presetsCommand(env *env, args []dub.Node) (string, error) {
	return strings.Join(audio.PresetNames(), "\n"), nil
}

func paramsCommand(env *env, args []dub.Node) (string, error) {
	var lines []string
	err := env.session.update(func(c *audio.Control) error {
		for _, key := range c.Keys() {
			v, err := c.Get(key)
			if err != nil {
				return err
			}
			lines = append(lines, fmt.Sprintf("%-9s %v", key, v))
		}
		return nil
	})
	return strings.Join(lines, "\n"), err
}

func scopeCommand(env *env, args []dub.Node) (string, error) {
	var (
		gen uint64
		ok  bool
	)
	env.session.update(func(c *audio.Control) error {
		if len(env.scopeBuf) != c.VisSize() {
			env.scopeBuf = make([]float32, c.VisSize())
		}
		gen, ok = c.Snapshot(env.scopeBuf)
		return nil
	})
	if gen == 0 {
		return "no output yet", nil
	}
	if !ok {
		return "", errors.New("output changed while copying, try again")
	}
	width, height := env.scopeSize()
	renderScope(env.out, env.scopeBuf, width, height)
	status := fmt.Sprintf("buffer %d", gen)
	if gen == env.lastScope {
		status += " (unchanged)"
	}
	env.lastScope = gen
	return status, nil
}

func statsCommand(env *env, args []dub.Node) (string, error) {
	var stats audio.Stats
	env.session.update(func(c *audio.Control) error {
		stats = c.Stats()
		return nil
	})
	return fmt.Sprintf("blocks %d, events applied %d, events dropped %d, scope buffers %d",
		stats.Blocks, stats.Applied, stats.Dropped, stats.Swaps), nil
}

func renderCommand(env *env, args []dub.Node) (string, error) {
	var (
		file string
		note uint8
	)
	seconds := 1.
	if err := readArgs(args, &file, &note, &seconds); err != nil {
		return "", err
	}
	samples, err := renderNote(env.session, note, seconds)
	if err != nil {
		return "", err
	}
	if err := exportWAV(file, samples, env.session.cfg.SampleRate); err != nil {
		return "", err
	}
	return fmt.Sprintf("wrote %s (%.2fs)", file, float64(len(samples))/float64(env.session.cfg.SampleRate)), nil
}

func runCommand(env *env, args []dub.Node) (string, error) {
	var file string
	if err := readArgs(args, &file); err != nil {
		return "", err
	}
	return "", runScript(env.ctx, env.session, file)
}

func helpCommand(env *env, args []dub.Node) (string, error) {
	var lines []string
	for _, cmd := range commands {
		usage := strings.TrimSpace(cmd.name + " " + cmd.args)
		lines = append(lines, fmt.Sprintf("%-36s %s", usage, cmd.help))
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n"), nil
}

// readArgs assigns args to slots in order. Slots past the end of args are
// optional and keep their values.
func readArgs(args []dub.Node, slots ...interface{}) error {
	if len(args) > len(slots) {
		return errors.New("too many arguments")
	}
	for n, arg := range args {
		dest := slots[n]
		switch p := dest.(type) {
		case *string:
			switch s := arg.(type) {
			case dub.String:
				*p = string(s)
			case dub.Identifier:
				*p = string(s)
			default:
				return fmt.Errorf("argument error: expected a string or identifier")
			}
		case *float64:
			switch n := arg.(type) {
			case dub.Int:
				*p = float64(n)
			case dub.Float:
				*p = float64(n)
			default:
				return fmt.Errorf("argument error: expected a number")
			}
		case *int:
			n, ok := arg.(dub.Int)
			if !ok {
				return fmt.Errorf("argument error: expected an integer")
			}
			*p = int(n)
		case *uint8:
			note, err := noteArg(arg)
			if err != nil {
				return err
			}
			*p = note
		case *dub.Notes:
			notes, ok := arg.(dub.Notes)
			if !ok {
				return fmt.Errorf("argument error: expected a note list")
			}
			*p = notes
		default:
			panic("readArgs: unhandled destination type: " + fmt.Sprint(p))
		}
	}
	return nil
}

func noteArg(arg dub.Node) (uint8, error) {
	switch v := arg.(type) {
	case dub.Int:
		if v < 0 || v > 127 {
			return 0, fmt.Errorf("argument error: note out of range 0 - 127: %d", v)
		}
		return uint8(v), nil
	case dub.Identifier:
		n, err := dub.ParseNote(string(v))
		if err != nil {
			return 0, fmt.Errorf("argument error: %w", err)
		}
		return uint8(n), nil
	}
	return 0, fmt.Errorf("argument error: expected a note")
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
