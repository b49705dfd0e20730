package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	defaultScopeWidth  = 80
	defaultScopeHeight = 15
	maxScopeHeight     = 25
)

// scopeSize picks a drawing area from the terminal size, falling back to a
// fixed size when stdout is not a terminal.
func scopeSize() (int, int) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultScopeWidth, defaultScopeHeight
	}
	w, h, err := term.GetSize(fd)
	if err != nil || w < 8 || h < 4 {
		return defaultScopeWidth, defaultScopeHeight
	}
	h = h/2 | 1 // odd, so there is a zero row
	if h > maxScopeHeight {
		h = maxScopeHeight
	}
	return w - 2, h
}

// renderScope draws samples as a width x height oscilloscope trace. Each
// column covers an equal slice of the buffer and shows its min and max.
func renderScope(w io.Writer, samples []float32, width, height int) {
	if width <= 0 || height <= 0 || len(samples) == 0 {
		return
	}
	grid := make([][]byte, height)
	mid := height / 2
	for y := range grid {
		fill := byte(' ')
		if y == mid {
			fill = '-'
		}
		grid[y] = []byte(strings.Repeat(string(fill), width))
	}

	row := func(v float32) int {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		y := int((1 - float64(v)) / 2 * float64(height-1))
		return y
	}

	for x := 0; x < width; x++ {
		start := x * len(samples) / width
		end := (x + 1) * len(samples) / width
		if end <= start {
			end = start + 1
		}
		lo, hi := samples[start], samples[start]
		for _, v := range samples[start:end] {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		for y := row(hi); y <= row(lo); y++ {
			grid[y][x] = '*'
		}
	}

	border := colorize("+"+strings.Repeat("-", width)+"+", colorMagenta)
	fmt.Fprintln(w, border)
	for _, line := range grid {
		trace := strings.ReplaceAll(string(line), "*", colorize("*", colorGreen))
		fmt.Fprintf(w, "%s%s%s\n", colorize("|", colorMagenta), trace, colorize("|", colorMagenta))
	}
	fmt.Fprintln(w, border)
}

const (
	colorBlack = iota + 30
	colorRed
	colorGreen
	colorYellow
	colorBlue
	colorMagenta
)

func colorize(text string, color int) string {
	return fmt.Sprintf("\033[%dm%s\033[0m", color, text)
}
