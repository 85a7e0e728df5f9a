// Package app owns the committed brush value and runs the terminal UI
// around it. A single event loop goroutine serializes terminal input,
// remote link requests and config reloads, so the brush controller is
// only ever touched from one goroutine.
package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/rangebrush/internal/brush"
	"github.com/dshills/rangebrush/internal/config"
	"github.com/dshills/rangebrush/internal/input/gesture"
	"github.com/dshills/rangebrush/internal/link"
	"github.com/dshills/rangebrush/internal/plugin/lua"
	"github.com/dshills/rangebrush/internal/renderer/backend"
	"github.com/dshills/rangebrush/internal/renderer/track"
	"github.com/dshills/rangebrush/internal/snap"
)

// Options configures the application.
type Options struct {
	// Config is the validated startup configuration.
	Config config.Config

	// ConfigPath is watched for changes when non-empty.
	ConfigPath string

	// Logger receives application logs. Nil discards them.
	Logger *slog.Logger

	// LogLevel, when set, is adjusted on config reload.
	LogLevel *slog.LevelVar

	// Overlay is reapplied to every reloaded config, typically to keep
	// command line flags in force.
	Overlay func(*config.Config)
}

// notifier publishes committed values to linked clients.
type notifier interface {
	Broadcast(v link.Value, cause link.Cause)
}

// Application is the owner of the brush value.
type Application struct {
	opts   Options
	cfg    config.Config
	logger *slog.Logger

	backend  backend.Backend
	track    *track.Track
	gestures *gesture.Recognizer
	ctrl     *brush.Controller
	link     *link.Server
	notifier notifier
	closers  []io.Closer

	input  inputField
	status string
	width  int
	height int

	calls   chan func()
	reloads chan config.Config
	running atomic.Bool
}

// New builds the brush, its surface and the optional link server.
func New(opts Options) (*Application, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	a := &Application{
		opts:    opts,
		cfg:     opts.Config.Clone(),
		logger:  logger,
		calls:   make(chan func(), 16),
		reloads: make(chan config.Config, 1),
	}

	palette, err := track.ParsePalette(a.cfg.UI.Colors.Track, a.cfg.UI.Colors.Range, a.cfg.UI.Colors.Selection)
	if err != nil {
		return nil, &InitError{Component: "palette", Err: err}
	}
	a.track = track.New(nil, palette, 0, trackRow, 0)
	a.track.SetRanged(!a.cfg.Brush.Point)
	a.gestures = gesture.NewRecognizer(gesture.DefaultConfig())

	normalizer, err := a.loadNormalizer()
	if err != nil {
		return nil, &InitError{Component: "snap script", Err: err}
	}

	props := brush.Props{
		OnBrush:      a.onBrush,
		OnBrushStart: func() { a.logger.Debug("gesture started") },
		OnBrushEnd:   func() { a.logger.Debug("gesture ended") },
		Range:        a.cfg.Brush.Range,
		Value:        a.cfg.Brush.Value,
		Step:         a.cfg.Brush.Step,
		Marks:        a.cfg.Brush.Marks,
		Point:        a.cfg.Brush.Point,
	}
	a.ctrl, err = brush.New(props, a.track, a.gestures,
		brush.WithNormalizer(normalizer),
		brush.WithLogger(logger.With("component", "brush")),
		brush.WithObserver(a.onChange),
	)
	if err != nil {
		a.closeResources()
		return nil, &InitError{Component: "brush", Err: err}
	}

	if a.cfg.Link.Listen != "" {
		a.link = link.NewServer(linkBridge{a},
			link.WithLogger(logger.With("component", "link")),
			link.WithAllowedOrigins(a.cfg.Link.AllowedOrigins),
		)
		a.notifier = a.link
	}
	return a, nil
}

// loadNormalizer returns the scripted snap function when one is
// configured and the built-in rule otherwise.
func (a *Application) loadNormalizer() (snap.Normalizer, error) {
	path := a.cfg.Plugin.SnapScript
	if path == "" {
		return snap.Default, nil
	}

	script, err := lua.LoadNormalizer(path)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, script)
	a.logger.Info("snap script loaded", "path", path)

	return snap.Func(func(value, lo, step float64, marks []float64) float64 {
		v := script.Normalize(value, lo, step, marks)
		if err := script.Err(); err != nil {
			a.logger.Warn("snap script failed, using default", "error", err)
		}
		return v
	}), nil
}

// SetBackend sets the terminal backend. It must be called before Run.
func (a *Application) SetBackend(b backend.Backend) error {
	if a.running.Load() {
		return ErrAlreadyRunning
	}
	a.backend = b
	return nil
}

// Run initializes the backend and processes events until ctx is done or
// the user quits. Quitting returns nil.
func (a *Application) Run(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.running.Store(false)
	defer a.closeResources()

	if err := a.attach(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	events := make(chan backend.Event, 64)

	g.Go(func() error { return a.pollEvents(gctx, events) })
	g.Go(func() error {
		<-gctx.Done()
		a.backend.Shutdown()
		return nil
	})
	if a.link != nil {
		g.Go(func() error { return a.link.ListenAndServe(gctx, a.cfg.Link.Listen) })
	}
	if w := a.startWatcher(); w != nil {
		g.Go(func() error {
			defer w.Close()
			return w.Run(gctx)
		})
	}
	g.Go(func() error { return a.loop(gctx, events) })

	err := g.Wait()
	if errors.Is(err, ErrQuit) {
		return nil
	}
	return err
}

// attach initializes the backend and lays out the screen.
func (a *Application) attach() error {
	if a.backend == nil {
		return &InitError{Component: "backend", Err: ErrNoBackend}
	}
	if err := a.backend.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	a.track.SetCanvas(a.backend)
	a.resize(a.backend.Size())
	return nil
}

func (a *Application) startWatcher() *config.Watcher {
	if a.opts.ConfigPath == "" {
		return nil
	}
	w, err := config.NewWatcher(a.opts.ConfigPath, a.queueReload,
		config.WithWatcherLogger(a.logger.With("component", "config")),
		config.WithOverlay(a.opts.Overlay),
		config.WithErrorHandler(func(err error) {
			a.post(func() { a.status = "config: " + err.Error() })
		}),
	)
	if err != nil {
		a.logger.Warn("config watcher disabled", "error", err)
		return nil
	}
	return w
}

// queueReload keeps only the newest pending config.
func (a *Application) queueReload(cfg config.Config) {
	for {
		select {
		case a.reloads <- cfg:
			return
		default:
		}
		select {
		case <-a.reloads:
		default:
		}
	}
}

// post queues fn on the event loop without waiting. It drops fn when
// the queue is full.
func (a *Application) post(fn func()) {
	select {
	case a.calls <- fn:
	default:
		a.logger.Warn("event loop queue full, dropping call")
	}
}

// do runs fn on the event loop and waits for it.
func (a *Application) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	select {
	case a.calls <- func() { fn(); close(done) }:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Value returns the committed value. It must be called from the event
// loop or before Run.
func (a *Application) Value() [2]float64 {
	return a.ctrl.Props().Value
}

func (a *Application) closeResources() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}
