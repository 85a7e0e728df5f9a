package app

import (
	"context"
	"math"
	"slices"

	"github.com/dshills/rangebrush/internal/brush"
	"github.com/dshills/rangebrush/internal/config"
	"github.com/dshills/rangebrush/internal/link"
	"github.com/dshills/rangebrush/internal/renderer/backend"
	"github.com/dshills/rangebrush/internal/renderer/track"
)

// pollEvents forwards backend events until ctx is done. PollEvent
// unblocks when the backend shuts down.
func (a *Application) pollEvents(ctx context.Context, out chan<- backend.Event) error {
	for {
		ev := a.backend.PollEvent()
		if ctx.Err() != nil {
			return nil
		}
		if ev.Type == backend.EventNone {
			continue
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			return nil
		}
	}
}

// loop is the only goroutine that touches the controller after Run
// starts.
func (a *Application) loop(ctx context.Context, events <-chan backend.Event) error {
	a.redraw()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			if err := a.handleBackendEvent(ev); err != nil {
				return err
			}

		case fn := <-a.calls:
			fn()

		case cfg := <-a.reloads:
			a.applyConfig(cfg)
		}
		a.redraw()
	}
}

// handleBackendEvent routes a terminal event. It returns ErrQuit when
// the user quits.
func (a *Application) handleBackendEvent(ev backend.Event) error {
	switch ev.Type {
	case backend.EventResize:
		a.resize(ev.Width, ev.Height)
	case backend.EventKey:
		return a.handleKey(ev)
	case backend.EventMouse:
		a.handleMouse(ev)
	}
	return nil
}

func (a *Application) handleMouse(ev backend.Event) {
	hit := a.track.Bounds().Contains(ev.MouseX, ev.MouseY)
	a.gestures.Feed(a.track.PixelAt(ev.MouseX), ev.MouseButton == backend.MouseLeft, hit)
}

func (a *Application) handleKey(ev backend.Event) error {
	if ev.Key == backend.KeyCtrlC {
		return ErrQuit
	}

	if a.input.typing {
		switch ev.Key {
		case backend.KeyEnter:
			a.commitTyped()
		case backend.KeyEscape:
			a.input.cancel()
		case backend.KeyBackspace:
			a.input.backspace()
		case backend.KeyRune:
			a.input.put(ev.Rune)
		}
		return nil
	}

	switch ev.Key {
	case backend.KeyTab:
		a.input.toggle(a.ctrl.Props().IsRanged())
	case backend.KeyLeft:
		a.nudge(-1)
	case backend.KeyRight:
		a.nudge(1)
	case backend.KeyRune:
		if ev.Rune == 'q' {
			return ErrQuit
		}
		a.input.begin(ev.Rune)
	}
	return nil
}

// resize lays the track out across the screen minus the margins.
func (a *Application) resize(w, h int) {
	a.width, a.height = w, h
	margin := a.cfg.UI.Margin
	tw := max(w-2*margin, 0)
	a.track.Layout(margin, trackRow, tw)

	props := a.ctrl.Props()
	props.Width = float64(tw)
	_ = a.update(props)
}

// onBrush commits a value picked by a gesture.
func (a *Application) onBrush(v0, v1 float64) {
	props := a.ctrl.Props()
	props.Value = [2]float64{v0, v1}
	if a.update(props) == nil {
		a.status = ""
	}
}

// onChange publishes gesture changes to linked clients.
func (a *Application) onChange(c brush.Change) {
	cause := link.CauseDrag
	if c.Cause == brush.CauseClick {
		cause = link.CauseClick
	}
	a.broadcast([2]float64{c.V0, c.V1}, cause)
}

func (a *Application) broadcast(v [2]float64, cause link.Cause) {
	if a.notifier != nil {
		a.notifier.Broadcast(link.Value{V0: v[0], V1: v[1]}, cause)
	}
}

func (a *Application) update(props brush.Props) error {
	if err := a.ctrl.Update(props); err != nil {
		a.logger.Error("brush update rejected", "error", err)
		a.status = err.Error()
		return err
	}
	return nil
}

// setValue commits a value requested from outside the gesture path:
// the input field, a linked client or a config reload. It never calls
// back into onBrush.
func (a *Application) setValue(v [2]float64) ([2]float64, error) {
	props := a.ctrl.Props()
	if props.Point {
		v[1] = v[0]
	}
	if err := checkValue(v, props); err != nil {
		return props.Value, err
	}
	if v == props.Value {
		return v, nil
	}

	props.Value = v
	if err := a.update(props); err != nil {
		return a.ctrl.Props().Value, err
	}
	a.broadcast(v, link.CauseExternal)
	a.logger.Debug("value set", "v0", v[0], "v1", v[1])
	return v, nil
}

func checkValue(v [2]float64, props brush.Props) error {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ErrNotFinite
		}
		if x < props.Range[0] || x > props.Range[1] {
			return ErrOutOfRange
		}
	}
	if props.IsRanged() && v[1] < v[0] {
		return ErrOutOfRange
	}
	return nil
}

// nudge moves the edited endpoint one step or to the neighbouring mark.
func (a *Application) nudge(dir int) {
	props := a.ctrl.Props()
	i := a.input.endpoint(props.IsRanged())
	v := props.Value

	next := stepFrom(v[i], dir, props)
	if props.IsRanged() {
		if i == 0 {
			next = min(next, v[1])
		} else {
			next = max(next, v[0])
		}
	}
	v[i] = next
	if _, err := a.setValue(v); err != nil {
		a.status = err.Error()
	}
}

// stepFrom returns the value one step away from cur in direction dir,
// clamped to the range.
func stepFrom(cur float64, dir int, props brush.Props) float64 {
	lo, hi := props.Range[0], props.Range[1]

	if len(props.Marks) > 0 {
		marks := slices.Sorted(slices.Values(props.Marks))
		next := cur
		if dir > 0 {
			if i := slices.IndexFunc(marks, func(m float64) bool { return m > cur }); i >= 0 {
				next = marks[i]
			}
		} else {
			for _, m := range slices.Backward(marks) {
				if m < cur {
					next = m
					break
				}
			}
		}
		return min(max(next, lo), hi)
	}

	step := props.Step
	if step <= 0 {
		// One cell's worth of domain.
		step = (hi - lo) / max(props.Width, 1)
	}
	return min(max(cur+float64(dir)*step, lo), hi)
}

// commitTyped applies the typed number to the edited endpoint.
func (a *Application) commitTyped() {
	x, err := a.input.value()
	a.input.cancel()
	if err != nil {
		a.status = "not a number"
		return
	}

	props := a.ctrl.Props()
	i := a.input.endpoint(props.IsRanged())
	v := props.Value
	v[i] = x
	if _, err := a.setValue(v); err != nil {
		a.status = err.Error()
		return
	}
	a.status = ""
}

// applyConfig takes a reloaded config. The value is only replaced when
// the file's value changed, so a reload does not undo user edits.
func (a *Application) applyConfig(cfg config.Config) {
	prev := a.cfg
	a.cfg = cfg.Clone()

	if err := SetLevel(a.opts.LogLevel, cfg.Log.Level); err != nil {
		a.logger.Warn("log level not applied", "error", err)
	}
	if palette, err := track.ParsePalette(cfg.UI.Colors.Track, cfg.UI.Colors.Range, cfg.UI.Colors.Selection); err == nil {
		a.track.SetPalette(palette)
	}
	if cfg.Plugin.SnapScript != prev.Plugin.SnapScript {
		a.logger.Warn("snap script change applies after restart", "path", cfg.Plugin.SnapScript)
	}
	if cfg.Link.Listen != prev.Link.Listen {
		a.logger.Warn("link address change applies after restart", "listen", cfg.Link.Listen)
	}

	props := a.ctrl.Props()
	props.Range = cfg.Brush.Range
	props.Step = cfg.Brush.Step
	props.Marks = cfg.Brush.Marks
	props.Point = cfg.Brush.Point
	if cfg.Brush.Value != prev.Brush.Value {
		props.Value = cfg.Brush.Value
	} else {
		props.Value = clampValue(props.Value, props.Range)
	}
	if cfg.UI.Margin != prev.UI.Margin {
		tw := max(a.width-2*cfg.UI.Margin, 0)
		a.track.Layout(cfg.UI.Margin, trackRow, tw)
		props.Width = float64(tw)
	}
	a.track.SetRanged(props.IsRanged())

	old := a.ctrl.Props().Value
	if err := a.update(props); err != nil {
		a.cfg = prev
		a.track.SetRanged(a.ctrl.Props().IsRanged())
		return
	}
	if props.Value != old {
		a.broadcast(props.Value, link.CauseExternal)
	}
	a.status = "config reloaded"
}

func clampValue(v, rng [2]float64) [2]float64 {
	for i := range v {
		v[i] = min(max(v[i], rng[0]), rng[1])
	}
	return v
}
