package app

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/rangebrush/internal/brush"
	"github.com/dshills/rangebrush/internal/config"
	"github.com/dshills/rangebrush/internal/link"
	"github.com/dshills/rangebrush/internal/renderer/backend"
)

// Screen is 40 wide with a margin of 2, so the track spans columns 2..37
// and one cell is 100/36 of the default range.
func newTestApp(t *testing.T, mutate func(*config.Config)) (*Application, *backend.NullBackend) {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	require.NoError(t, cfg.Validate())

	a, err := New(Options{Config: cfg})
	require.NoError(t, err)

	nb := backend.NewNullBackend(40, 8)
	require.NoError(t, a.SetBackend(nb))
	require.NoError(t, a.attach())
	a.redraw()
	return a, nb
}

func key(k backend.Key) backend.Event {
	return backend.Event{Type: backend.EventKey, Key: k}
}

func runeKey(r rune) backend.Event {
	return backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: r}
}

func mouse(x, y int, button backend.MouseButton) backend.Event {
	return backend.Event{Type: backend.EventMouse, MouseX: x, MouseY: y, MouseButton: button}
}

func send(t *testing.T, a *Application, events ...backend.Event) {
	t.Helper()
	for _, ev := range events {
		require.NoError(t, a.handleBackendEvent(ev))
	}
	a.redraw()
}

func TestAttachLaysOutTrack(t *testing.T) {
	a, nb := newTestApp(t, nil)

	assert.Equal(t, 36.0, a.ctrl.Props().Width)
	assert.Equal(t, [2]float64{25, 75}, a.Value())

	row := nb.Row(trackRow)
	assert.Equal(t, "  ", row[:2])
	assert.Contains(t, row, "▐")
	assert.Contains(t, row, "▌")
	assert.Contains(t, nb.Row(statusRow), ">25 ..  75")
	assert.True(t, strings.HasPrefix(nb.Row(labelRow), "  0"))
	assert.Contains(t, nb.Row(labelRow), "100")
}

func TestNewRejectsInvalidProps(t *testing.T) {
	cfg := config.Default()
	cfg.Brush.Range = [2]float64{5, 1}

	_, err := New(Options{Config: cfg})
	var ierr *InitError
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, "brush", ierr.Component)
	assert.ErrorIs(t, err, brush.ErrInvalidProps)
}

func TestRunWithoutBackend(t *testing.T) {
	a, err := New(Options{Config: config.Default()})
	require.NoError(t, err)

	err = a.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoBackend)
}

func TestKeyboardNudge(t *testing.T) {
	a, _ := newTestApp(t, nil)

	send(t, a, key(backend.KeyRight))
	assert.Equal(t, [2]float64{26, 75}, a.Value())

	send(t, a, key(backend.KeyTab), key(backend.KeyLeft), key(backend.KeyLeft))
	assert.Equal(t, [2]float64{26, 73}, a.Value())
}

func TestNudgeKeepsOrder(t *testing.T) {
	a, _ := newTestApp(t, func(c *config.Config) {
		c.Brush.Value = [2]float64{40, 40}
	})

	send(t, a, key(backend.KeyRight))
	assert.Equal(t, [2]float64{40, 40}, a.Value())
}

func TestNudgeClampsToRange(t *testing.T) {
	a, _ := newTestApp(t, func(c *config.Config) {
		c.Brush.Value = [2]float64{0, 100}
	})

	send(t, a, key(backend.KeyLeft))
	assert.Equal(t, [2]float64{0, 100}, a.Value())
}

func TestNudgeFollowsMarks(t *testing.T) {
	a, _ := newTestApp(t, func(c *config.Config) {
		c.Brush.Point = true
		c.Brush.Marks = []float64{90, 10, 50}
		c.Brush.Value = [2]float64{50, 50}
	})

	send(t, a, key(backend.KeyRight))
	assert.Equal(t, [2]float64{90, 90}, a.Value())

	send(t, a, key(backend.KeyRight))
	assert.Equal(t, [2]float64{90, 90}, a.Value())

	send(t, a, key(backend.KeyLeft), key(backend.KeyLeft))
	assert.Equal(t, [2]float64{10, 10}, a.Value())
}

func TestTypedValue(t *testing.T) {
	a, nb := newTestApp(t, nil)

	send(t, a, key(backend.KeyTab), runeKey('8'), runeKey('1'))
	assert.Contains(t, nb.Row(statusRow), "= 81_")

	send(t, a, runeKey('x'), key(backend.KeyBackspace), runeKey('2'), key(backend.KeyEnter))
	assert.Equal(t, [2]float64{25, 82}, a.Value())
	assert.False(t, a.input.typing)
}

func TestTypedValueRejected(t *testing.T) {
	a, nb := newTestApp(t, nil)

	send(t, a, runeKey('9'), runeKey('0'), key(backend.KeyEnter))
	assert.Equal(t, [2]float64{25, 75}, a.Value())
	assert.Contains(t, nb.Row(statusRow), ErrOutOfRange.Error())

	send(t, a, runeKey('-'), key(backend.KeyEnter))
	assert.Contains(t, nb.Row(statusRow), "not a number")
}

func TestTypingCancel(t *testing.T) {
	a, _ := newTestApp(t, nil)

	send(t, a, runeKey('5'), key(backend.KeyEscape), key(backend.KeyEnter))
	assert.Equal(t, [2]float64{25, 75}, a.Value())
	assert.False(t, a.input.typing)
}

func TestQuitKeys(t *testing.T) {
	a, _ := newTestApp(t, nil)

	assert.ErrorIs(t, a.handleBackendEvent(runeKey('q')), ErrQuit)
	assert.ErrorIs(t, a.handleBackendEvent(key(backend.KeyCtrlC)), ErrQuit)

	// While typing, q is not a command.
	send(t, a, runeKey('1'))
	assert.NoError(t, a.handleBackendEvent(runeKey('q')))
	assert.ErrorIs(t, a.handleBackendEvent(key(backend.KeyCtrlC)), ErrQuit)
}

func TestClickMovesPoint(t *testing.T) {
	a, nb := newTestApp(t, func(c *config.Config) {
		c.Brush.Point = true
		c.Brush.Value = [2]float64{25, 25}
	})

	// Column 20 is pixel 18, the middle of the track.
	send(t, a, mouse(20, trackRow, backend.MouseLeft), mouse(20, trackRow, backend.MouseNone))

	assert.Equal(t, [2]float64{50, 50}, a.Value())
	assert.Equal(t, brush.ModeIdle, a.ctrl.Mode())
	assert.Equal(t, '┃', []rune(nb.Row(trackRow))[20])
}

func TestDragSelectsInterval(t *testing.T) {
	a, _ := newTestApp(t, nil)

	send(t, a,
		mouse(32, trackRow, backend.MouseLeft),
		mouse(34, trackRow, backend.MouseLeft),
		mouse(35, trackRow, backend.MouseLeft),
		mouse(35, trackRow, backend.MouseNone),
	)

	assert.Equal(t, [2]float64{83, 92}, a.Value())
	assert.Equal(t, brush.ModeIdle, a.ctrl.Mode())
}

func TestPressOffTrackIsIgnored(t *testing.T) {
	a, _ := newTestApp(t, nil)

	send(t, a,
		mouse(20, statusRow, backend.MouseLeft),
		mouse(30, trackRow, backend.MouseLeft),
		mouse(30, trackRow, backend.MouseNone),
	)
	assert.Equal(t, [2]float64{25, 75}, a.Value())
}

func TestResizeRelayout(t *testing.T) {
	a, _ := newTestApp(t, nil)

	send(t, a, backend.Event{Type: backend.EventResize, Width: 24, Height: 8})
	assert.Equal(t, 20.0, a.ctrl.Props().Width)
	assert.Equal(t, [2]float64{25, 75}, a.Value())

	// A screen narrower than the margins leaves a zero width track.
	send(t, a, backend.Event{Type: backend.EventResize, Width: 3, Height: 8})
	assert.Equal(t, 0.0, a.ctrl.Props().Width)
	assert.Equal(t, [2]float64{25, 75}, a.Value())
}

func TestSetValue(t *testing.T) {
	a, _ := newTestApp(t, nil)

	got, err := a.setValue([2]float64{10, 20})
	require.NoError(t, err)
	assert.Equal(t, [2]float64{10, 20}, got)
	assert.Equal(t, [2]float64{10, 20}, a.Value())

	_, err = a.setValue([2]float64{30, 20})
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = a.setValue([2]float64{-1, 20})
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = a.setValue([2]float64{math.NaN(), 20})
	assert.ErrorIs(t, err, ErrNotFinite)

	assert.Equal(t, [2]float64{10, 20}, a.Value())
}

func TestApplyConfig(t *testing.T) {
	a, _ := newTestApp(t, nil)
	_, err := a.setValue([2]float64{30, 60})
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Brush.Range = [2]float64{0, 50}
	cfg.Brush.Step = 5
	cfg.UI.Margin = 4
	a.applyConfig(cfg)

	props := a.ctrl.Props()
	assert.Equal(t, [2]float64{0, 50}, props.Range)
	assert.Equal(t, 5.0, props.Step)
	assert.Equal(t, 32.0, props.Width)
	// The file value did not change, so the user's value is kept and clamped.
	assert.Equal(t, [2]float64{30, 50}, props.Value)

	cfg = cfg.Clone()
	cfg.Brush.Value = [2]float64{5, 10}
	a.applyConfig(cfg)
	assert.Equal(t, [2]float64{5, 10}, a.Value())
	assert.Equal(t, "config reloaded", a.status)
}

type published struct {
	v     link.Value
	cause link.Cause
}

type recordingNotifier struct {
	sent []published
}

func (n *recordingNotifier) Broadcast(v link.Value, cause link.Cause) {
	n.sent = append(n.sent, published{v: v, cause: cause})
}

func TestApplyConfigRejectedDoesNotBroadcast(t *testing.T) {
	a, _ := newTestApp(t, nil)
	n := &recordingNotifier{}
	a.notifier = n

	cfg := config.Default()
	cfg.Brush.Range = [2]float64{5, 1}
	a.applyConfig(cfg)

	assert.Empty(t, n.sent)
	assert.Equal(t, [2]float64{25, 75}, a.Value())
	assert.Equal(t, [2]float64{0, 100}, a.ctrl.Props().Range)
	assert.NotEqual(t, "config reloaded", a.status)

	cfg = config.Default()
	cfg.Brush.Value = [2]float64{10, 20}
	a.applyConfig(cfg)

	assert.Equal(t, []published{{v: link.Value{V0: 10, V1: 20}, cause: link.CauseExternal}}, n.sent)
	assert.Equal(t, "config reloaded", a.status)
}

func TestLinkBridge(t *testing.T) {
	a, _ := newTestApp(t, func(c *config.Config) {
		c.Link.Listen = "127.0.0.1:0"
	})
	require.NotNil(t, a.link)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.loop(ctx, make(chan backend.Event)) }()
	defer func() {
		cancel()
		<-done
	}()

	b := linkBridge{a}
	reqCtx, reqCancel := context.WithTimeout(context.Background(), time.Second)
	defer reqCancel()

	v, err := b.Value(reqCtx)
	require.NoError(t, err)
	assert.Equal(t, link.Value{V0: 25, V1: 75}, v)

	v, err = b.SetValue(reqCtx, link.Value{V0: 40, V1: 45})
	require.NoError(t, err)
	assert.Equal(t, link.Value{V0: 40, V1: 45}, v)

	_, err = b.SetValue(reqCtx, link.Value{V0: 40, V1: 400})
	assert.ErrorIs(t, err, ErrOutOfRange)

	v, err = b.Value(reqCtx)
	require.NoError(t, err)
	assert.Equal(t, link.Value{V0: 40, V1: 45}, v)
}

func TestRunQuits(t *testing.T) {
	a, err := New(Options{Config: config.Default()})
	require.NoError(t, err)
	nb := backend.NewNullBackend(40, 8)
	require.NoError(t, a.SetBackend(nb))

	done := make(chan error, 1)
	go func() { done <- a.Run(context.Background()) }()

	nb.PostEvent(key(backend.KeyRight))
	nb.PostEvent(runeKey('q'))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after q")
	}
	assert.Equal(t, [2]float64{26, 75}, a.Value())
	assert.Positive(t, nb.Shows())
}

func TestRunStopsOnCancel(t *testing.T) {
	a, err := New(Options{Config: config.Default()})
	require.NoError(t, err)
	require.NoError(t, a.SetBackend(backend.NewNullBackend(40, 8)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	assert.ErrorIs(t, a.SetBackend(nil), ErrAlreadyRunning)
	assert.ErrorIs(t, a.Run(ctx), ErrAlreadyRunning)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestSnapScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.lua")
	require.NoError(t, os.WriteFile(path, []byte(`
function normalize(value, min, step, marks)
  return min + math.floor((value - min) / 10) * 10
end`), 0o600))

	a, _ := newTestApp(t, func(c *config.Config) {
		c.Plugin.SnapScript = path
		c.Brush.Point = true
	})
	t.Cleanup(a.closeResources)

	// Pixel 18 is 50; pixel 20 is 55.5, floored to 50 by the script.
	send(t, a, mouse(22, trackRow, backend.MouseLeft), mouse(22, trackRow, backend.MouseNone))
	assert.Equal(t, [2]float64{50, 50}, a.Value())
}

func TestMissingSnapScript(t *testing.T) {
	cfg := config.Default()
	cfg.Plugin.SnapScript = filepath.Join(t.TempDir(), "missing.lua")

	_, err := New(Options{Config: cfg})
	var ierr *InitError
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, "snap script", ierr.Component)
}
