package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mrdg/mono/audio"
	"github.com/mrdg/mono/dub"
)

type env struct {
	ctx       context.Context
	session   *session
	out       io.Writer
	scopeSize func() (int, int)

	scopeBuf  []float32
	lastScope uint64
}

func newEnv(ctx context.Context, s *session, out io.Writer) *env {
	return &env{
		ctx:       ctx,
		session:   s,
		out:       out,
		scopeSize: scopeSize,
	}
}

func (e *env) eval(input string) (string, error) {
	command, err := dub.Parse(input)
	if err != nil {
		return "", err
	}
	name := string(command.Name)
	if name == "" {
		return "", nil
	}
	for _, cmd := range commands {
		if name != cmd.name {
			continue
		}
		if cmd.arity < 0 {
			arity := -cmd.arity
			if len(command.Args) < arity {
				return "", fmt.Errorf("%s: wrong number of arguments: need at least %v, got %v",
					cmd.name, arity, len(command.Args))
			}
		} else if len(command.Args) != cmd.arity {
			return "", fmt.Errorf("%s: wrong number of arguments: want %v, got %v",
				cmd.name, cmd.arity, len(command.Args))
		}
		result, err := cmd.run(e, command.Args)
		if err != nil {
			return result, fmt.Errorf("%s error: %w", cmd.name, err)
		}
		return result, nil
	}
	return "", fmt.Errorf("unknown command: %s", name)
}

func completer() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, cmd := range commands {
		var sub []readline.PrefixCompleterInterface
		switch cmd.name {
		case "preset":
			for _, name := range audio.PresetNames() {
				sub = append(sub, readline.PcItem(name))
			}
		case "set", "get":
			for _, key := range []string{
				audio.PropWave, audio.PropGain, audio.PropAttack, audio.PropDecay,
				audio.PropSustain, audio.PropRelease, audio.PropVelSense,
			} {
				sub = append(sub, readline.PcItem(key))
			}
		case "wave":
			for _, w := range []audio.Waveform{audio.Sine, audio.Triangle, audio.Square, audio.Saw} {
				sub = append(sub, readline.PcItem(w.String()))
			}
		}
		items = append(items, readline.PcItem(cmd.name, sub...))
	}
	return readline.NewPrefixCompleter(items...)
}

// repl reads commands until EOF, an interrupt or cancellation of ctx.
func repl(ctx context.Context, env *env) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "> ",
		AutoComplete: completer(),
		Stdout:       env.out,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			rl.Close()
		case <-done:
		}
	}()

	return readLoop(ctx, rl, env)
}

type lineReader interface {
	Readline() (string, error)
}

// readLoop evaluates lines from r. EOF, an interrupt or cancellation of ctx
// end the loop without error; any other read error is returned.
func readLoop(ctx context.Context, r lineReader, env *env) error {
	for {
		line, err := r.Readline()
		if ctx.Err() != nil {
			return nil
		}
		if err == io.EOF || errors.Is(err, readline.ErrInterrupt) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		if result, err := env.eval(line); err != nil {
			fmt.Fprintln(env.out, err)
		} else if result != "" {
			fmt.Fprintln(env.out, result)
		}
	}
}
