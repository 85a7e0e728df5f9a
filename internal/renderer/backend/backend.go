// Package backend abstracts the terminal the range brush is drawn on.
//
// Terminal wraps a tcell screen; NullBackend keeps cells in memory so the
// track and the application can be driven from tests.
package backend

import "github.com/dshills/rangebrush/internal/renderer/core"

// EventType tags an Event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventMouse
	EventResize
)

// Event is a keyboard, pointer or resize notification from the terminal.
// Only the fields that belong to Type are set.
type Event struct {
	Type EventType

	Key  Key
	Rune rune
	Mod  ModMask

	MouseX, MouseY int
	MouseButton    MouseButton

	Width, Height int
}

// Key is a named key. Printable input arrives as KeyRune with Event.Rune set.
type Key int

const (
	KeyNone Key = iota
	KeyRune
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyCtrlC
)

// ModMask is a set of held modifiers.
type ModMask int

const (
	ModNone  ModMask = 0
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
)

// Has reports whether mod is held.
func (m ModMask) Has(mod ModMask) bool {
	return m&mod != 0
}

// MouseButton is the button held during a mouse event. MouseNone means
// the pointer moved or was released.
type MouseButton int

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseMiddle
	MouseRight
)

// Canvas receives cells. Out-of-bounds writes are dropped.
type Canvas interface {
	SetCell(x, y int, cell core.Cell)
	Fill(rect core.ScreenRect, cell core.Cell)
}

// Backend is a Canvas that also owns the terminal lifecycle and its
// event stream.
type Backend interface {
	Canvas

	// Init takes over the terminal. Other methods require it.
	Init() error
	// Shutdown restores the terminal and unblocks PollEvent.
	Shutdown()

	Size() (width, height int)
	Clear()
	// Show flushes pending cells to the display.
	Show()

	// PollEvent blocks for the next event and returns EventNone after
	// Shutdown.
	PollEvent() Event
	PostEvent(event Event)
}
