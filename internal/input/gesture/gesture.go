package gesture

import "github.com/dshills/rangebrush/internal/brush"

// Surface is what the recognizer needs from the render sink.
type Surface interface {
	brush.Surface

	// Selection returns the current selection, if any.
	Selection() (brush.Selection, bool)

	// SetSelection stores a selection produced by the pointer.
	SetSelection(sel brush.Selection)

	// ClearSelection removes the selection.
	ClearSelection()

	// Extent returns the surface width in pixels.
	Extent() float64
}

// echoer is implemented by surfaces that report their render commands.
type echoer interface {
	Listen(fn func(brush.Selection))
}

// dragMode says what a press grabbed.
type dragMode uint8

const (
	modeNone dragMode = iota
	modeOverlay
	modeMove
	modeResizeW
	modeResizeE
)

// String returns the mode name.
func (m dragMode) String() string {
	switch m {
	case modeOverlay:
		return "overlay"
	case modeMove:
		return "move"
	case modeResizeW:
		return "resize-w"
	case modeResizeE:
		return "resize-e"
	default:
		return "none"
	}
}

// Config configures the recognizer.
type Config struct {
	// HandleSize is the hit width of each edge handle in pixels.
	HandleSize float64
}

// DefaultConfig returns a one pixel handle, which is one terminal cell.
func DefaultConfig() Config {
	return Config{HandleSize: 1}
}

// Recognizer turns pointer samples into brush gesture events.
// It implements brush.GestureSource.
type Recognizer struct {
	config Config

	surface Surface
	handler brush.GestureHandler

	mode   dragMode
	origin float64
	base   brush.Selection
	cur    brush.Selection
	lastX  float64

	// down is the button state of the previous sample.
	down bool
}

// NewRecognizer creates a recognizer.
func NewRecognizer(config Config) *Recognizer {
	if config.HandleSize <= 0 {
		config.HandleSize = DefaultConfig().HandleSize
	}
	return &Recognizer{config: config}
}

// Bind attaches the recognizer to s and routes events to h. Any gesture in
// progress is dropped. Surfaces that do not implement Surface are bound
// for echoes only.
func (r *Recognizer) Bind(s brush.Surface, h brush.GestureHandler) {
	r.handler = h
	r.surface, _ = s.(Surface)
	r.mode = modeNone
	if e, ok := s.(echoer); ok {
		e.Listen(r.echo)
	}
}

// Active reports whether a gesture is in progress.
func (r *Recognizer) Active() bool {
	return r.mode != modeNone
}

// Feed processes one pointer sample. x is in surface pixels, down reports
// whether the primary button is held and hit whether the pointer is over
// the surface. Gestures only start when the button goes down over the
// surface; once started they follow the pointer anywhere.
func (r *Recognizer) Feed(x float64, down, hit bool) {
	wasDown := r.down
	r.down = down

	switch {
	case down && !wasDown:
		if hit {
			r.press(x)
		}
	case down && r.mode != modeNone:
		if x != r.lastX {
			r.drag(x)
		}
	case !down && r.mode != modeNone:
		r.release()
	}
}

func (r *Recognizer) press(x float64) {
	if r.surface == nil || r.handler == nil {
		return
	}
	x = r.clamp(x)
	r.origin = x
	r.lastX = x

	sel, ok := r.surface.Selection()
	hs := r.config.HandleSize
	switch {
	case ok && sel.P1-sel.P0 <= hs && x >= sel.P0 && x < sel.P1:
		// A marker no wider than a handle has no inside; pressing it moves it.
		r.mode = modeMove
	case ok && x >= sel.P0 && x < sel.P0+hs:
		r.mode = modeResizeW
	case ok && x >= sel.P1-hs && x <= sel.P1:
		r.mode = modeResizeE
	case ok && x > sel.P0 && x < sel.P1:
		r.mode = modeMove
	default:
		r.mode = modeOverlay
		sel = brush.Selection{P0: x, P1: x}
		r.surface.SetSelection(sel)
	}
	r.base = sel
	r.cur = sel

	start := sel
	r.handler.GestureStart(brush.GestureEvent{Selection: &start, Origin: brush.OriginPointer})
}

func (r *Recognizer) drag(x float64) {
	x = r.clamp(x)
	r.lastX = x

	var sel brush.Selection
	switch r.mode {
	case modeOverlay:
		sel = brush.Selection{P0: r.origin, P1: x}
	case modeMove:
		dx := x - r.origin
		dx = max(dx, -r.base.P0)
		dx = min(dx, r.surface.Extent()-r.base.P1)
		sel = brush.Selection{P0: r.base.P0 + dx, P1: r.base.P1 + dx}
	case modeResizeW:
		sel = brush.Selection{P0: x, P1: r.base.P1}
	case modeResizeE:
		sel = brush.Selection{P0: r.base.P0, P1: x}
	default:
		return
	}
	sel = sel.Ordered()
	if sel == r.cur {
		return
	}
	r.cur = sel
	r.surface.SetSelection(sel)

	ev := sel
	r.handler.GestureMove(brush.GestureEvent{Selection: &ev, Origin: brush.OriginPointer})
}

func (r *Recognizer) release() {
	r.mode = modeNone

	if r.cur.Empty() {
		r.surface.ClearSelection()
		r.handler.GestureEnd(brush.GestureEvent{Origin: brush.OriginPointer})
		return
	}
	end := r.cur
	r.handler.GestureEnd(brush.GestureEvent{Selection: &end, Origin: brush.OriginPointer})
}

// echo replays a render command as a brush-origin move.
func (r *Recognizer) echo(sel brush.Selection) {
	if r.mode != modeNone {
		r.cur = sel
	}
	if r.handler == nil {
		return
	}
	r.handler.GestureMove(brush.GestureEvent{Selection: &sel, Origin: brush.OriginBrush})
}

func (r *Recognizer) clamp(x float64) float64 {
	return min(max(x, 0), r.surface.Extent())
}
