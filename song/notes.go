package song

import (
	"fmt"
	"strings"
)

// Octave is the number of notes in an octave.
const Octave = 12

var noteNames = [Octave]string{"C-", "C#", "D-", "D#", "E-", "F-", "F#", "G-", "G#", "A-", "A#", "B-"}

var noteBase = map[byte]int{
	'C': 0,
	'D': 2,
	'E': 4,
	'F': 5,
	'G': 7,
	'A': 9,
	'B': 11,
}

// NoteName formats a note number (0-119) as a three character tracker name, e.g. "C#4".
func NoteName(note uint8) string {
	if note >= NumNotes {
		return "???"
	}
	return fmt.Sprintf("%s%d", noteNames[note%Octave], note/Octave)
}

/*
isValidNoteName returns true if s is a valid note name.

A note name is always 3 characters:

- a letter in the range A-G (either case),

- '#' if the note is sharp or '-' if it is natural,

- a digit '0'..'9' giving the octave.
*/
func isValidNoteName(s string) bool {
	if len(s) != 3 {
		return false
	}
	upper := strings.ToUpper(s)
	if _, ok := noteBase[upper[0]]; !ok {
		return false
	}
	if upper[1] != '#' && upper[1] != '-' {
		return false
	}
	return upper[2] >= '0' && upper[2] <= '9'
}

// ParseNoteName parses a note name as produced by NoteName.
func ParseNoteName(s string) (uint8, error) {
	if !isValidNoteName(s) {
		return 0, fmt.Errorf("invalid note name '%s'", s)
	}
	upper := strings.ToUpper(s)

	note := int(upper[2]-'0')*Octave + noteBase[upper[0]]
	if upper[1] == '#' {
		note++
	}
	if note >= NumNotes {
		return 0, fmt.Errorf("note '%s' out of range", s)
	}
	return uint8(note), nil
}
