package qtercon

import (
	"iter"
	"strings"
)

// ColorMarker is the in-band escape byte that introduces a color change in
// server-emitted text.
const ColorMarker = '^'

// ColorNone marks a Run that has no preceding color escape; it inherits
// whatever default the renderer uses.
const ColorNone = -1

// Run is a stretch of text carrying a single color. Color is an index in
// [0, 9], or ColorNone. A run never spans a color change.
type Run struct {
	Text  string
	Color int
}

// Runs decodes the color escapes embedded in raw into a sequence of styled
// runs, in a single left-to-right scan. The sequence is lazy, finite, and may
// be ranged over any number of times with identical results.
//
// A marker byte followed by an ASCII digit starts a new run with that color.
// A marker followed by any other byte is dropped and the following byte is
// emitted unchanged; a marker at end of input is emitted as a literal marker.
// Segments left empty by back-to-back escapes produce no run.
func Runs(raw []byte) iter.Seq[Run] {
	return func(yield func(Run) bool) {
		current := ColorNone
		var text []byte

		flush := func() bool {
			if len(text) == 0 {
				return true
			}
			ok := yield(Run{Text: string(text), Color: current})
			text = text[:0]
			return ok
		}

		for i := 0; i < len(raw); i++ {
			b := raw[i]
			if b != ColorMarker {
				text = append(text, b)
				continue
			}
			if i+1 >= len(raw) {
				// Trailing marker with no selector stays literal.
				text = append(text, b)
				continue
			}

			next := raw[i+1]
			i++
			if next < '0' || next > '9' {
				// Invalid selector: drop the marker, keep the byte.
				text = append(text, next)
				continue
			}

			if !flush() {
				return
			}
			current = int(next - '0')
		}

		flush()
	}
}

// RemoveColors returns raw with every marker+digit pair stripped. It is
// defined as the concatenation of Run.Text over Runs, so the two entry points
// cannot disagree.
func RemoveColors(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))
	for run := range Runs(raw) {
		b.WriteString(run.Text)
	}
	return b.String()
}
