package app

import (
	"strconv"
	"strings"
)

// inputField is the keyboard side of the brush: it picks which endpoint
// the arrow keys move and collects a typed number.
type inputField struct {
	// active is 0 for the start and 1 for the end of the interval.
	active int

	typing bool
	buf    []rune
}

// endpoint returns the index being edited. Point brushes only have one.
func (f *inputField) endpoint(ranged bool) int {
	if !ranged {
		return 0
	}
	return f.active
}

func (f *inputField) toggle(ranged bool) {
	if !ranged {
		f.active = 0
		return
	}
	f.active = 1 - f.active
}

// begin starts typing when r can start a number.
func (f *inputField) begin(r rune) {
	if !numeric(r) {
		return
	}
	f.typing = true
	f.buf = append(f.buf[:0], r)
}

func (f *inputField) put(r rune) {
	if numeric(r) {
		f.buf = append(f.buf, r)
	}
}

func (f *inputField) backspace() {
	if len(f.buf) > 0 {
		f.buf = f.buf[:len(f.buf)-1]
	}
	if len(f.buf) == 0 {
		f.typing = false
	}
}

func (f *inputField) cancel() {
	f.typing = false
	f.buf = f.buf[:0]
}

func (f *inputField) text() string {
	return string(f.buf)
}

func (f *inputField) value() (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(f.text()), 64)
}

func numeric(r rune) bool {
	return (r >= '0' && r <= '9') || r == '.' || r == '-'
}
