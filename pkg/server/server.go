// Package server exposes boards, charts and the character catalog over HTTP.
//
// All routes under /api return JSON except the chart artifacts. Errors use a
// single body shape:
//
//	{"error": {"code": "BOARD_NOT_FOUND", "message": "board \"x\" not found"}}
//
// The server is stateless apart from its [session.Store]; each board is
// guarded by its own mutex so that concurrent edits to one board serialize
// their load-modify-store round trips.
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/heightcompare/pkg/catalog"
	"github.com/matzehuels/heightcompare/pkg/pipeline"
	"github.com/matzehuels/heightcompare/pkg/session"
)

// Defaults applied by [New] to zero [Config] fields.
const (
	DefaultAddr         = ":8080"
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	shutdownTimeout     = 10 * time.Second
)

// Config holds the server settings.
type Config struct {
	Addr string
	// Token enables bearer authentication on /api when non-empty.
	Token        string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// BoardTTL is the lifetime of boards created through the API.
	// Zero means [session.DefaultTTL]; negative means boards never expire.
	BoardTTL time.Duration

	// ChartHeight and Watermark are the chart defaults when a request does
	// not override them.
	ChartHeight float64
	Watermark   string
}

// Server serves the HTTP API.
type Server struct {
	cfg     Config
	boards  session.Store
	catalog catalog.Source
	runner  *pipeline.Runner
	logger  *log.Logger
	locks   *boardLocks
}

// New creates a server. A nil runner renders without caching; a nil logger
// uses the default logger.
func New(cfg Config, boards session.Store, src catalog.Source, runner *pipeline.Runner, logger *log.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.BoardTTL == 0 {
		cfg.BoardTTL = session.DefaultTTL
	}
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	return &Server{
		cfg:     cfg,
		boards:  boards,
		catalog: src,
		runner:  runner,
		logger:  logger,
		locks:   newBoardLocks(),
	}
}

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled. It closes ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("http server listening", "addr", ln.Addr().String(), "auth", s.cfg.Token != "")
		if err := httpServer.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		s.logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}

// boardLocks hands out one mutex per board ID and forgets it once no
// request holds or waits for it.
type boardLocks struct {
	mu    sync.Mutex
	locks map[string]*boardLock
}

type boardLock struct {
	sync.Mutex
	refs int
}

func newBoardLocks() *boardLocks {
	return &boardLocks{locks: make(map[string]*boardLock)}
}

// lock acquires the mutex for id and returns its release function.
func (l *boardLocks) lock(id string) func() {
	l.mu.Lock()
	bl, ok := l.locks[id]
	if !ok {
		bl = &boardLock{}
		l.locks[id] = bl
	}
	bl.refs++
	l.mu.Unlock()

	bl.Lock()
	return func() {
		bl.Unlock()
		l.mu.Lock()
		bl.refs--
		if bl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *boardLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
