package brush

// Selection is an ordered pixel-space pair.
type Selection struct {
	P0 float64
	P1 float64
}

// Empty reports whether the selection has zero extent.
func (s Selection) Empty() bool {
	return s.P0 == s.P1
}

// Ordered returns the selection with P0 <= P1.
func (s Selection) Ordered() Selection {
	if s.P1 < s.P0 {
		return Selection{P0: s.P1, P1: s.P0}
	}
	return s
}

// Origin tags where a gesture event came from.
type Origin uint8

const (
	// OriginPointer is real pointer input.
	OriginPointer Origin = iota
	// OriginBrush is the echo of a render command issued to the Surface.
	OriginBrush
	// OriginClick is a click replayed as a zero-distance drag.
	OriginClick
)

// String returns the origin name.
func (o Origin) String() string {
	switch o {
	case OriginPointer:
		return "pointer"
	case OriginBrush:
		return "brush"
	case OriginClick:
		return "click"
	default:
		return "unknown"
	}
}

// GestureEvent is a single start, move or end notification.
// A nil Selection means the gesture carries no selection.
type GestureEvent struct {
	Selection *Selection
	Origin    Origin
}

// GestureHandler receives gesture notifications.
type GestureHandler interface {
	GestureStart(ev GestureEvent)
	GestureMove(ev GestureEvent)
	GestureEnd(ev GestureEvent)
}

// GestureSource recognizes drag gestures on a Surface.
//
// Bind attaches the source to the surface and routes events to h.
// Calling Bind again replaces the previous binding; the controller does
// this whenever the pixel width changes.
type GestureSource interface {
	Bind(s Surface, h GestureHandler)
}

// Surface is the render sink.
//
// Move positions the selection at the given pixel interval. It may call
// back into the bound GestureHandler with a GestureMove tagged OriginBrush
// before returning. It must not emit start or end events while a user
// gesture is in progress.
type Surface interface {
	Move(sel Selection)
}

// Mode is the controller's interaction state.
type Mode uint8

const (
	// ModeIdle means no interaction cycle is in flight.
	ModeIdle Mode = iota
	// ModeGesturing means a user gesture is producing selection updates.
	ModeGesturing
	// ModeProgrammatic means the controller is repositioning the surface.
	ModeProgrammatic
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeGesturing:
		return "gesturing"
	case ModeProgrammatic:
		return "programmatic"
	default:
		return "unknown"
	}
}

// Cause says what kind of gesture produced a Change.
type Cause uint8

const (
	// CauseDrag is a drag with a selection.
	CauseDrag Cause = iota
	// CauseClick is a gesture that started and ended without a selection.
	CauseClick
)

// String returns the cause name.
func (c Cause) String() string {
	if c == CauseClick {
		return "click"
	}
	return "drag"
}

// Change is an emitted value change.
// In point mode V0 and V1 are equal.
type Change struct {
	V0    float64
	V1    float64
	Cause Cause
}
