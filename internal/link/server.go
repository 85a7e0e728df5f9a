// Package link exposes the committed brush value over HTTP and a
// websocket so that other processes can follow and drive it.
//
// Routes:
//
//	GET /value   current value as {"v0":..,"v1":..}
//	PUT /value   set the value; responds with the committed value
//	GET /ws      websocket; value_init on connect, value_changed on
//	             every change, accepts set_value
//
// The server never owns the value. Reads and writes go through a
// Handler, which the application serializes onto its event loop.
package link

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
)

// ErrServerClosed is returned by Serve after Shutdown or context end.
var ErrServerClosed = http.ErrServerClosed

// Handler reads and writes the committed value.
type Handler interface {
	// Value returns the committed value.
	Value(ctx context.Context) (Value, error)
	// SetValue requests a new value and returns what was committed.
	SetValue(ctx context.Context, v Value) (Value, error)
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAllowedOrigins restricts browser origins for CORS and websocket
// upgrades. "*" allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.allowedOrigins = slices.Clone(origins)
	}
}

// WithHubConfig sizes the websocket hub queues.
func WithHubConfig(cfg HubConfig) Option {
	return func(s *Server) {
		s.hubConfig = cfg
	}
}

// WithRequestTimeout bounds each Handler call.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// Server serves the value routes.
type Server struct {
	logger         *slog.Logger
	handler        Handler
	hub            *Hub
	hubConfig      HubConfig
	router         chi.Router
	upgrader       websocket.Upgrader
	allowedOrigins []string
	requestTimeout time.Duration

	httpServer *http.Server
}

// NewServer builds the router. Call Serve or ListenAndServe to start.
func NewServer(handler Handler, opts ...Option) *Server {
	s := &Server{
		logger:         slog.New(slog.DiscardHandler),
		handler:        handler,
		allowedOrigins: []string{"*"},
		requestTimeout: time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.hub = NewHub(s.logger, s.hubConfig)
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(Logging(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/value", s.handleGetValue)
	r.Put("/value", s.handlePutValue)
	r.Get("/ws", s.handleWS)
	return r
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	return s.router
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// ListenAndServe listens on addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("link listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the hub and serves ln until ctx is done. It returns nil on
// a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("link server listening", "addr", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("link server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.logger.Info("link server shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("link shutdown: %w", err)
	}
	return nil
}

// Broadcast sends value_changed to every websocket client.
func (s *Server) Broadcast(v Value, cause Cause) {
	msg, err := marshalEnvelope(TypeValueChanged, valueChangedData{Value: v, Cause: cause})
	if err != nil {
		s.logger.Warn("broadcast marshal failed", "error", err)
		return
	}
	s.hub.BroadcastBytes(msg)
}

func (s *Server) handleGetValue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	v, err := s.handler.Value(ctx)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handlePutValue(w http.ResponseWriter, r *http.Request) {
	var v Value
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageSize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding value: %w", err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	got, err := s.handler.SetValue(ctx, v)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, got)
}

// handleWS upgrades, registers the client and sends value_init.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(s.hub, conn, r.RemoteAddr, s.logger)

	// value_init is queued before the client joins the hub so that no
	// broadcast can overtake it.
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()
	v, err := s.handler.Value(ctx)
	if err != nil {
		s.logger.Warn("value snapshot failed", "client_id", client.id, "error", err)
		client.close()
		return
	}
	msg, err := marshalEnvelope(TypeValueInit, valueInitData{Value: v, ClientID: client.id})
	if err != nil || !client.enqueue(msg) {
		s.logger.Warn("value_init not queued", "client_id", client.id, "error", err)
		client.close()
		return
	}
	s.hub.register <- client

	// The pumps outlive the request; its context ends when this
	// handler returns.
	go client.writePump(context.Background())
	go client.readPump(context.Background(), s.handleInbound)
}

// handleInbound runs on the client's read pump.
func (s *Server) handleInbound(c *Client, env envelope) {
	switch env.Type {
	case TypeSetValue:
		var v Value
		if err := json.Unmarshal(env.Data, &v); err != nil {
			c.reply(TypeError, errorData{Message: "set_value: " + err.Error()})
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), s.requestTimeout)
		defer cancel()
		if _, err := s.handler.SetValue(ctx, v); err != nil {
			c.reply(TypeError, errorData{Message: err.Error()})
			return
		}
		c.logger.Debug("set_value applied", "v0", v.V0, "v1", v.V1)
	default:
		c.reply(TypeError, errorData{Message: fmt.Sprintf("unknown message type %q", env.Type)})
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return slices.Contains(s.allowedOrigins, "*") || slices.Contains(s.allowedOrigins, origin)
}

func statusFor(err error) int {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return http.StatusServiceUnavailable
	}
	return http.StatusUnprocessableEntity
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorData{Message: err.Error()})
}
