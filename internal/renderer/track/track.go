// Package track draws a range brush track into a terminal row and holds
// the selection the gesture recognizer works against.
package track

import (
	"math"

	"github.com/dshills/rangebrush/internal/brush"
	"github.com/dshills/rangebrush/internal/renderer/backend"
	"github.com/dshills/rangebrush/internal/renderer/core"
)

// Glyphs used by the track.
const (
	runeTrack     = '─'
	runeRange     = '█'
	runePoint     = '┃'
	runeHandleW   = '▐'
	runeHandleE   = '▌'
	rangeOpacity  = 0.3
	handleOpacity = 0.3
)

// Track is a one-row brush surface.
//
// Track implements brush.Surface. Move stores the selection, redraws and
// then reports the selection to the listener installed by the gesture
// recognizer, which replays it as a render echo.
type Track struct {
	canvas  backend.Canvas
	palette Palette

	x, y   int
	width  int
	ranged bool

	sel    brush.Selection
	hasSel bool

	listener func(brush.Selection)
}

// New creates a track at column x, row y spanning width cells.
func New(canvas backend.Canvas, palette Palette, x, y, width int) *Track {
	return &Track{
		canvas:  canvas,
		palette: palette,
		x:       x,
		y:       y,
		width:   max(width, 0),
		ranged:  true,
	}
}

// Move positions the selection and echoes it to the listener.
func (t *Track) Move(sel brush.Selection) {
	t.sel = sel.Ordered()
	t.hasSel = true
	t.Draw()
	if t.listener != nil {
		t.listener(t.sel)
	}
}

// SetSelection stores a selection produced by pointer input. It redraws
// but does not echo.
func (t *Track) SetSelection(sel brush.Selection) {
	t.sel = sel.Ordered()
	t.hasSel = true
	t.Draw()
}

// ClearSelection removes the selection.
func (t *Track) ClearSelection() {
	t.sel = brush.Selection{}
	t.hasSel = false
	t.Draw()
}

// Selection returns the current selection, if any.
func (t *Track) Selection() (brush.Selection, bool) {
	return t.sel, t.hasSel
}

// Extent returns the track width in pixels.
func (t *Track) Extent() float64 {
	return float64(t.width)
}

// Listen installs the render echo listener. A nil fn removes it.
func (t *Track) Listen(fn func(brush.Selection)) {
	t.listener = fn
}

// SetCanvas changes the drawing target.
func (t *Track) SetCanvas(canvas backend.Canvas) {
	t.canvas = canvas
}

// SetPalette changes the colours used by Draw.
func (t *Track) SetPalette(p Palette) {
	t.palette = p
}

// Palette returns the colours used by Draw.
func (t *Track) Palette() Palette {
	return t.palette
}

// SetRanged switches between interval and point rendering.
func (t *Track) SetRanged(ranged bool) {
	t.ranged = ranged
}

// Layout moves the track and changes its width.
func (t *Track) Layout(x, y, width int) {
	t.x, t.y, t.width = x, y, max(width, 0)
}

// Bounds returns the screen cells covered by the track.
func (t *Track) Bounds() core.ScreenRect {
	return core.ScreenRect{Top: t.y, Left: t.x, Bottom: t.y + 1, Right: t.x + t.width}
}

// PixelAt converts a screen column to a track pixel.
func (t *Track) PixelAt(col int) float64 {
	return float64(col - t.x)
}

// Draw renders the track row.
func (t *Track) Draw() {
	if t.canvas == nil || t.width == 0 {
		return
	}

	base := core.DefaultStyle().WithForeground(t.palette.Track)
	t.canvas.Fill(t.Bounds(), core.Cell{Rune: runeTrack, Style: base})
	if !t.hasSel {
		return
	}

	lo, hi := t.cells()
	if t.ranged {
		fill := t.palette.Track.Blend(t.palette.Range, rangeOpacity)
		t.canvas.Fill(core.ScreenRect{Top: t.y, Left: t.x + lo, Bottom: t.y + 1, Right: t.x + hi},
			core.Cell{Rune: runeRange, Style: base.WithForeground(fill)})

		handle := core.DefaultStyle().WithForeground(t.palette.Track.Blend(t.palette.Selection, handleOpacity))
		t.canvas.SetCell(t.x+lo, t.y, core.Cell{Rune: runeHandleW, Style: handle})
		t.canvas.SetCell(t.x+hi-1, t.y, core.Cell{Rune: runeHandleE, Style: handle})
		return
	}

	point := core.DefaultStyle().WithForeground(t.palette.Selection)
	t.canvas.Fill(core.ScreenRect{Top: t.y, Left: t.x + lo, Bottom: t.y + 1, Right: t.x + hi},
		core.Cell{Rune: runePoint, Style: point})
}

// cells returns the half-open cell span covered by the selection, clamped
// to the track and at least one cell wide.
func (t *Track) cells() (int, int) {
	lo := int(math.Floor(t.sel.P0))
	hi := int(math.Ceil(t.sel.P1))
	lo = min(max(lo, 0), t.width-1)
	hi = min(max(hi, lo+1), t.width)
	return lo, hi
}
