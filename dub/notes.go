package dub

import (
	"fmt"
	"strconv"
	"strings"
)

const maxNote = 127

type noteRange struct {
	start, end int
}

// expand lists every note from start to end inclusive, descending if end is
// below start.
func (r noteRange) expand() []int {
	step := 1
	if r.end < r.start {
		step = -1
	}
	var notes []int
	for n := r.start; n != r.end+step; n += step {
		notes = append(notes, n)
	}
	return notes
}

var pitchClasses = map[byte]int{
	'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11,
}

var noteNames = []string{"c", "c#", "d", "d#", "e", "f", "f#", "g", "g#", "a", "a#", "b"}

// ParseNote converts a note name such as c4, f#3 or eb-1 to a MIDI note
// number. Middle C is c4 (60).
func ParseNote(name string) (int, error) {
	s := strings.ToLower(name)
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid note name: %q", name)
	}
	pc, ok := pitchClasses[s[0]]
	if !ok {
		return 0, fmt.Errorf("invalid note name: %q", name)
	}
	s = s[1:]
	switch s[0] {
	case '#':
		pc++
		s = s[1:]
	case 'b':
		pc--
		s = s[1:]
	}
	octave, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid note name: %q", name)
	}
	n := (octave+1)*12 + pc
	if n < 0 || n > maxNote {
		return 0, fmt.Errorf("note out of range: %q", name)
	}
	return n, nil
}

// NoteName is the inverse of ParseNote, using sharps.
func NoteName(note int) string {
	if note < 0 || note > maxNote {
		return strconv.Itoa(note)
	}
	return fmt.Sprintf("%s%d", noteNames[note%12], note/12-1)
}
