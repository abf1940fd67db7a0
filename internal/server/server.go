// Package server exposes blackjack tables over WebSocket. Every connection
// gets its own session and idle countdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/randutil"
)

// Option configures a Server
type Option func(*Server)

// WithClock drives table countdowns from clock. Tests pass a quartz mock.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// WithSeed makes every table's shoe derive from seed, in connection order
func WithSeed(seed int64) Option {
	return func(s *Server) { s.seed = seed }
}

// Server represents the WebSocket server
type Server struct {
	cfg      *config.Config
	upgrader websocket.Upgrader
	clock    quartz.Clock
	logger   *log.Logger

	mu          sync.RWMutex
	connections map[string]*Connection
	seed        int64
	tables      int
}

// NewServer creates a new WebSocket server
func NewServer(cfg *config.Config, logger *log.Logger, opts ...Option) *Server {
	s := &Server{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			// The browser client is served from anywhere during development
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clock:       quartz.NewReal(),
		logger:      logger.WithPrefix("server"),
		connections: make(map[string]*Connection),
		seed:        randutil.Seed(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes served by the server
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/health", s.handleHealth)
	return r
}

// Serve listens on the configured address until ctx is cancelled
func (s *Server) Serve(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Server.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting WebSocket server", "addr", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := httpServer.Shutdown(shutdownCtx)
	s.Stop()
	return err
}

// Stop closes all connections
func (s *Server) Stop() {
	s.mu.Lock()
	conns := make([]*Connection, 0, len(s.connections))
	for _, conn := range s.connections {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
}

// ConnectionCount returns the number of open connections
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(uuid.NewString(), conn, s.logger)
	table, err := NewTable(
		randutil.New(s.nextSeed()),
		s.clock,
		s.cfg.Game(),
		s.cfg.Table.Chips,
		s.cfg.Countdown(),
		s.logger,
		func(state StateData) { client.sendState(state, "") },
	)
	if err != nil {
		s.logger.Error("Failed to create table", "error", err)
		_ = conn.Close()
		return
	}
	client.table = table

	s.mu.Lock()
	s.connections[client.ID()] = client
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "id", client.ID(), "total", total)

	welcome, err := NewMessage(MessageTypeWelcome, WelcomeData{
		ConnectionID:     client.ID(),
		Chips:            s.cfg.Table.Chips,
		CountdownSeconds: s.cfg.Table.CountdownSeconds,
	})
	if err == nil {
		_ = client.SendMessage(welcome)
	}
	client.sendState(table.State(), "")
	client.Start()

	go func() {
		<-client.Done()
		s.mu.Lock()
		delete(s.connections, client.ID())
		total := len(s.connections)
		s.mu.Unlock()
		s.logger.Info("Client disconnected", "id", client.ID(), "total", total)
	}()
}

func (s *Server) nextSeed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.tables
	s.tables++
	return randutil.Derive(s.seed, n)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}
