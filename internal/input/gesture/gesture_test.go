package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/rangebrush/internal/brush"
	"github.com/dshills/rangebrush/internal/renderer/backend"
	"github.com/dshills/rangebrush/internal/renderer/track"
)

type recorded struct {
	kind string
	sel  *brush.Selection
	org  brush.Origin
}

type recorder struct {
	events []recorded
}

func (r *recorder) add(kind string, ev brush.GestureEvent) {
	var sel *brush.Selection
	if ev.Selection != nil {
		cp := *ev.Selection
		sel = &cp
	}
	r.events = append(r.events, recorded{kind: kind, sel: sel, org: ev.Origin})
}

func (r *recorder) GestureStart(ev brush.GestureEvent) { r.add("start", ev) }
func (r *recorder) GestureMove(ev brush.GestureEvent)  { r.add("move", ev) }
func (r *recorder) GestureEnd(ev brush.GestureEvent)   { r.add("end", ev) }

func sel(p0, p1 float64) *brush.Selection {
	return &brush.Selection{P0: p0, P1: p1}
}

func newBound(t *testing.T, width int) (*Recognizer, *track.Track, *recorder) {
	t.Helper()
	b := backend.NewNullBackend(width, 1)
	require.NoError(t, b.Init())
	tr := track.New(b, track.DefaultPalette(), 0, 0, width)
	rec := &recorder{}
	r := NewRecognizer(DefaultConfig())
	r.Bind(tr, rec)
	return r, tr, rec
}

func TestClickOnEmptyTrack(t *testing.T) {
	r, tr, rec := newBound(t, 100)

	r.Feed(50, true, true)
	assert.True(t, r.Active())
	r.Feed(50, true, true)
	r.Feed(50, false, true)
	assert.False(t, r.Active())

	assert.Equal(t, []recorded{
		{kind: "start", sel: sel(50, 50), org: brush.OriginPointer},
		{kind: "end", sel: nil, org: brush.OriginPointer},
	}, rec.events)

	_, ok := tr.Selection()
	assert.False(t, ok)
}

func TestOverlayDrag(t *testing.T) {
	r, _, rec := newBound(t, 100)

	r.Feed(40, true, true)
	r.Feed(60, true, false)
	r.Feed(20, true, false)
	r.Feed(20, false, false)

	assert.Equal(t, []recorded{
		{kind: "start", sel: sel(40, 40)},
		{kind: "move", sel: sel(40, 60)},
		{kind: "move", sel: sel(20, 40)},
		{kind: "end", sel: sel(20, 40)},
	}, rec.events)
}

func TestDragClampsToExtent(t *testing.T) {
	r, _, rec := newBound(t, 100)

	r.Feed(90, true, true)
	r.Feed(140, true, false)
	r.Feed(-10, true, false)

	assert.Equal(t, sel(90, 100), rec.events[1].sel)
	assert.Equal(t, sel(0, 90), rec.events[2].sel)
}

func TestPressOutsideTrackIsIgnored(t *testing.T) {
	r, _, rec := newBound(t, 100)

	r.Feed(10, true, false)
	r.Feed(20, true, true)
	r.Feed(20, false, true)

	assert.Empty(t, rec.events)
	assert.False(t, r.Active())
}

func TestMoveExistingSelection(t *testing.T) {
	r, tr, rec := newBound(t, 100)
	tr.SetSelection(brush.Selection{P0: 20, P1: 40})

	r.Feed(30, true, true)
	r.Feed(95, true, true)
	r.Feed(95, false, true)

	assert.Equal(t, []recorded{
		{kind: "start", sel: sel(20, 40)},
		{kind: "move", sel: sel(80, 100)},
		{kind: "end", sel: sel(80, 100)},
	}, rec.events)
}

func TestResizeHandles(t *testing.T) {
	t.Run("west", func(t *testing.T) {
		r, tr, rec := newBound(t, 100)
		tr.SetSelection(brush.Selection{P0: 20, P1: 40})

		r.Feed(20, true, true)
		r.Feed(50, true, true)

		assert.Equal(t, sel(40, 50), rec.events[1].sel, "handles flip when crossing")
	})

	t.Run("east", func(t *testing.T) {
		r, tr, rec := newBound(t, 100)
		tr.SetSelection(brush.Selection{P0: 20, P1: 40})

		r.Feed(39, true, true)
		r.Feed(70, true, true)

		assert.Equal(t, sel(20, 70), rec.events[1].sel)
	})

	t.Run("point marker east edge", func(t *testing.T) {
		r, tr, rec := newBound(t, 100)
		tr.SetSelection(brush.Selection{P0: 10, P1: 11})

		r.Feed(11, true, true)
		r.Feed(30, true, true)

		assert.Equal(t, sel(10, 30), rec.events[1].sel)
	})

	t.Run("point marker body moves", func(t *testing.T) {
		r, tr, rec := newBound(t, 100)
		tr.SetSelection(brush.Selection{P0: 10, P1: 11})

		r.Feed(10, true, true)
		r.Feed(30, true, true)
		r.Feed(5, true, true)

		require.Len(t, rec.events, 3)
		assert.Equal(t, sel(10, 11), rec.events[0].sel)
		assert.Equal(t, sel(30, 31), rec.events[1].sel)
		assert.Equal(t, sel(5, 6), rec.events[2].sel)
	})
}

func TestEchoIsTaggedBrush(t *testing.T) {
	_, tr, rec := newBound(t, 100)

	tr.Move(brush.Selection{P0: 5, P1: 9})

	assert.Equal(t, []recorded{{kind: "move", sel: sel(5, 9), org: brush.OriginBrush}}, rec.events)
}

func TestRebindDropsGesture(t *testing.T) {
	r, tr, rec := newBound(t, 100)

	r.Feed(10, true, true)
	r.Bind(tr, rec)
	assert.False(t, r.Active())
}

func TestDragModeString(t *testing.T) {
	assert.Equal(t, "overlay", modeOverlay.String())
	assert.Equal(t, "resize-e", modeResizeE.String())
	assert.Equal(t, "none", modeNone.String())
}

// The full path: recognizer, track and controller wired as the app does.
func TestControllerClickOnTrack(t *testing.T) {
	b := backend.NewNullBackend(20, 1)
	require.NoError(t, b.Init())
	tr := track.New(b, track.DefaultPalette(), 0, 0, 20)
	tr.SetRanged(false)
	r := NewRecognizer(DefaultConfig())

	var calls [][2]float64
	var ctrl *brush.Controller
	props := brush.Props{
		Range: [2]float64{0, 10},
		Value: [2]float64{2, 2},
		Width: 20,
		Step:  1,
		Point: true,
	}
	props.OnBrush = func(v0, v1 float64) {
		calls = append(calls, [2]float64{v0, v1})
		next := ctrl.Props()
		next.Value = [2]float64{v0, v1}
		require.NoError(t, ctrl.Update(next))
	}

	ctrl, err := brush.New(props, tr, r)
	require.NoError(t, err)
	assert.Equal(t, "────┃───────────────", b.Row(0))

	r.Feed(13, true, true)
	r.Feed(13, false, true)

	assert.Equal(t, [][2]float64{{7, 7}}, calls)
	assert.Equal(t, "──────────────┃─────", b.Row(0))
	assert.Equal(t, brush.ModeIdle, ctrl.Mode())

	r.Feed(14, true, true)
	r.Feed(3, true, true)
	r.Feed(3, false, true)

	assert.Equal(t, [][2]float64{{7, 7}, {2, 2}}, calls)
	assert.Equal(t, "────┃───────────────", b.Row(0))
}

func TestControllerDragsPointMarkerRight(t *testing.T) {
	b := backend.NewNullBackend(100, 1)
	require.NoError(t, b.Init())
	tr := track.New(b, track.DefaultPalette(), 0, 0, 100)
	tr.SetRanged(false)
	r := NewRecognizer(DefaultConfig())

	var calls [][2]float64
	var ctrl *brush.Controller
	props := brush.Props{
		Range: [2]float64{0, 100},
		Value: [2]float64{50, 50},
		Width: 100,
		Step:  1,
		Point: true,
	}
	props.OnBrush = func(v0, v1 float64) {
		calls = append(calls, [2]float64{v0, v1})
		next := ctrl.Props()
		next.Value = [2]float64{v0, v1}
		require.NoError(t, ctrl.Update(next))
	}

	ctrl, err := brush.New(props, tr, r)
	require.NoError(t, err)

	r.Feed(50, true, true)
	for x := 51.0; x <= 60; x++ {
		r.Feed(x, true, true)
	}
	r.Feed(60, false, true)

	require.NotEmpty(t, calls)
	assert.Equal(t, [2]float64{60, 60}, calls[len(calls)-1])
	assert.Equal(t, [2]float64{60, 60}, ctrl.Props().Value)
	got, ok := tr.Selection()
	require.True(t, ok)
	assert.Equal(t, brush.Selection{P0: 60, P1: 61}, got)
}
