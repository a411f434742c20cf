// SPDX-License-Identifier: MIT
/*
Package tuner implements the tuning pipeline around the spectral
analysis: sliding-window frame assembly, cents evaluation against a
target note, temporal smoothing, and the Session orchestrator that the
audio engine and UI talk to.
*/
package tuner

import (
	"fmt"
	"strings"
)

// Note is one of the six standard-tuning guitar pitches.
type Note int

const (
	E2 Note = iota
	A2
	D3
	G3
	B3
	E4
)

// Canonical equal-tempered reference frequencies (A4 = 440 Hz).
var noteTable = [...]struct {
	name string
	freq float64
}{
	E2: {"E2", 82.41},
	A2: {"A2", 110.00},
	D3: {"D3", 146.83},
	G3: {"G3", 196.00},
	B3: {"B3", 246.94},
	E4: {"E4", 329.63},
}

// Notes returns the six target notes in string order, low E first.
func Notes() []Note {
	return []Note{E2, A2, D3, G3, B3, E4}
}

func (n Note) String() string {
	if n < 0 || int(n) >= len(noteTable) {
		return "unknown"
	}
	return noteTable[n].name
}

// Frequency returns the note's reference frequency in Hz.
func (n Note) Frequency() float64 {
	if n < 0 || int(n) >= len(noteTable) {
		return 0
	}
	return noteTable[n].freq
}

// ParseNote converts a note name like "E2" or "b3" (case-insensitive) to
// a Note.
func ParseNote(name string) (Note, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, entry := range noteTable {
		if entry.name == upper {
			return Note(i), nil
		}
	}
	return E2, fmt.Errorf("unknown target note %q (want one of E2 A2 D3 G3 B3 E4)", name)
}
