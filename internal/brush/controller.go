package brush

import (
	"log/slog"

	"github.com/dshills/rangebrush/internal/snap"
)

// Option configures a Controller.
type Option func(*Controller)

// WithNormalizer sets the snap function. Defaults to snap.Default.
func WithNormalizer(n snap.Normalizer) Option {
	return func(c *Controller) {
		if n != nil {
			c.normalizer = n
		}
	}
}

// WithLogger sets the logger used for state transitions.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver registers a function that sees every emitted Change,
// including its Cause. It runs after OnBrush.
func WithObserver(fn func(Change)) Option {
	return func(c *Controller) {
		c.observer = fn
	}
}

// Controller synchronizes a Surface, a GestureSource and caller-owned Props.
type Controller struct {
	props      Props
	surface    Surface
	gestures   GestureSource
	normalizer snap.Normalizer
	observer   func(Change)
	logger     *slog.Logger

	mode Mode

	// startSel is the selection captured at gesture start.
	startSel *Selection

	// rendered is the value pair last sent to the surface.
	rendered    [2]float64
	hasRendered bool

	// pending is set when an Update arrives outside ModeIdle.
	pending       bool
	pendingWidth  bool
	pendingLayout bool
}

// New validates props, binds gestures to surface and moves the surface
// to the initial value.
func New(props Props, surface Surface, gestures GestureSource, opts ...Option) (*Controller, error) {
	if err := props.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		props:      props.clone(),
		surface:    surface,
		gestures:   gestures,
		normalizer: snap.Default,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.gestures.Bind(c.surface, c)
	c.programmaticMove()
	return c, nil
}

// Mode returns the current interaction state.
func (c *Controller) Mode() Mode {
	return c.mode
}

// Props returns a copy of the current props.
func (c *Controller) Props() Props {
	return c.props.clone()
}

// Update replaces the props. A width change re-binds the gesture source
// and repositions the surface; a value change repositions the surface.
// Neither path calls OnBrush.
//
// Changes that arrive while a gesture or a programmatic move is in
// progress are applied when the controller returns to ModeIdle.
func (c *Controller) Update(props Props) error {
	if err := props.Validate(); err != nil {
		return err
	}

	prev := c.props
	c.props = props.clone()

	widthChanged := prev.Width != props.Width
	if c.mode != ModeIdle {
		c.pending = true
		c.pendingWidth = c.pendingWidth || widthChanged
		c.pendingLayout = c.pendingLayout || prev.Range != props.Range || prev.Point != props.Point
		c.logger.Debug("update deferred", "mode", c.mode, "width_changed", widthChanged)
		return nil
	}

	switch {
	case widthChanged:
		c.rebind()
		c.programmaticMove()
	case prev.Value != props.Value || prev.Range != props.Range || prev.Point != props.Point:
		c.programmaticMove()
	}
	return nil
}

// GestureStart records the selection the gesture starts from.
func (c *Controller) GestureStart(ev GestureEvent) {
	c.startSel = copySelection(ev.Selection)
	if c.props.OnBrushStart != nil {
		c.props.OnBrushStart()
	}
}

// GestureMove reacts to a selection update.
func (c *Controller) GestureMove(ev GestureEvent) {
	if c.mode == ModeProgrammatic {
		return
	}
	if ev.Selection == nil {
		return
	}
	c.mode = ModeGesturing
	c.brushed(*ev.Selection, ev.Origin)
}

// GestureEnd closes the interaction cycle. A gesture that never produced
// a move, had a start selection and ends without one is a click.
func (c *Controller) GestureEnd(ev GestureEvent) {
	if c.mode == ModeIdle && c.startSel != nil && ev.Selection == nil {
		c.click(*c.startSel)
	}
	if c.props.OnBrushEnd != nil {
		c.props.OnBrushEnd()
	}

	c.mode = ModeIdle
	c.startSel = nil
	c.settle()
}

// click replays the start selection as a drag that never moved.
func (c *Controller) click(start Selection) {
	c.logger.Debug("click", "p0", start.P0, "p1", start.P1)
	c.mode = ModeGesturing
	c.brushed(start, OriginClick)
}

// brushed inverts, snaps, re-renders and emits a gesture selection.
func (c *Controller) brushed(sel Selection, origin Origin) {
	if origin == OriginBrush {
		return
	}
	m := c.props.mapper()
	if !m.Valid() {
		return
	}

	// The first pixel staying put means the second handle is moving.
	right := c.startSel != nil && c.startSel.P0 == sel.P0

	lo := c.props.Range[0]
	d0 := c.normalizer.Normalize(m.ToValue(sel.P0), lo, c.props.Step, c.props.Marks)
	d1 := c.normalizer.Normalize(m.ToValue(sel.P1), lo, c.props.Step, c.props.Marks)

	var next [2]float64
	switch {
	case c.props.IsRanged():
		next = [2]float64{d0, d1}
	case right:
		next = [2]float64{d1, d1}
	default:
		next = [2]float64{d0, d0}
	}

	c.render(next)

	cause := CauseDrag
	if origin == OriginClick {
		cause = CauseClick
	}
	c.emit(next, cause)
}

// emit calls OnBrush unless v equals the committed value.
func (c *Controller) emit(v [2]float64, cause Cause) {
	if c.props.sameValue(v) {
		return
	}
	c.logger.Debug("brush", "v0", v[0], "v1", v[1], "cause", cause)

	c.props.OnBrush(v[0], v[1])
	if c.observer != nil {
		c.observer(Change{V0: v[0], V1: v[1], Cause: cause})
	}
}

// programmaticMove repositions the surface to the committed value while
// ignoring the echo it produces.
func (c *Controller) programmaticMove() {
	c.mode = ModeProgrammatic
	c.render(c.props.Value)
	if c.mode == ModeProgrammatic {
		c.mode = ModeIdle
	}
}

// render sends v to the surface. A degenerate mapper issues nothing.
func (c *Controller) render(v [2]float64) {
	sel, ok := c.props.mapper().Selection(v[0], v[1], c.props.IsRanged())
	if !ok {
		return
	}
	c.rendered = v
	c.hasRendered = true
	c.surface.Move(sel)
}

func (c *Controller) rebind() {
	c.logger.Debug("rebind", "width", c.props.Width)
	c.gestures.Bind(c.surface, c)
}

// settle applies updates that were deferred during the last cycle.
func (c *Controller) settle() {
	if !c.pending {
		return
	}
	widthChanged, layoutChanged := c.pendingWidth, c.pendingLayout
	c.pending = false
	c.pendingWidth = false
	c.pendingLayout = false

	if widthChanged {
		c.rebind()
		c.programmaticMove()
		return
	}
	if layoutChanged || !c.hasRendered || !c.sameRendered() {
		c.programmaticMove()
	}
}

func (c *Controller) sameRendered() bool {
	if c.props.Point {
		return c.rendered[0] == c.props.Value[0]
	}
	return c.rendered == c.props.Value
}

func copySelection(s *Selection) *Selection {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}
