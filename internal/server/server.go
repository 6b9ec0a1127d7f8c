// Package server exposes a running tower over HTTP and WebSocket.
//
// One goroutine owns the [tower.Engine]. It advances the engine on a ticker
// and executes commands received over a channel; HTTP handlers and socket
// readers only ever send commands, so the engine itself needs no locking.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/jengatower/pkg/dataset"
	"github.com/matzehuels/jengatower/pkg/errors"
	"github.com/matzehuels/jengatower/pkg/metrics"
	"github.com/matzehuels/jengatower/pkg/pipeline"
	"github.com/matzehuels/jengatower/pkg/tower"
	"github.com/matzehuels/jengatower/pkg/tower/layout"
)

// Options configures a Server.
type Options struct {
	// TickRate is the engine frame rate in frames per second.
	TickRate int
	// BroadcastEvery publishes a snapshot to socket clients every n ticks.
	BroadcastEvery int

	Runner      *pipeline.Runner
	DatasetHash string
	Layout      layout.Options

	Metrics *metrics.Registry
	Logger  *log.Logger
}

func (o *Options) setDefaults() {
	if o.TickRate <= 0 {
		o.TickRate = 60
	}
	if o.BroadcastEvery <= 0 {
		o.BroadcastEvery = max(1, o.TickRate/20)
	}
	if o.Layout.Brick == (layout.Brick{}) {
		o.Layout = layout.DefaultOptions()
	}
	if o.Runner == nil {
		o.Runner = pipeline.NewRunner(nil, nil, nil)
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

type command struct {
	fn   func(*tower.Engine)
	done chan struct{}
}

// Server serves one engine.
type Server struct {
	eng    *tower.Engine
	ds     *dataset.Dataset
	opts   Options
	logger *log.Logger
	cmds   chan command
	hub    *hub
	router chi.Router

	// stopped is closed when Run returns; commands sent later fail fast.
	stopped  chan struct{}
	stopOnce sync.Once
}

// New wraps eng. The engine must not be used by the caller afterwards.
func New(eng *tower.Engine, opts Options) *Server {
	opts.setDefaults()
	s := &Server{
		eng:    eng,
		ds:     eng.Dataset(),
		opts:   opts,
		logger: opts.Logger,
		cmds:    make(chan command),
		hub:     newHub(opts.Logger),
		stopped: make(chan struct{}),
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.router }

// Run owns the engine until ctx is canceled. A command already accepted
// completes before Run returns, and the engine is not touched afterwards.
func (s *Server) Run(ctx context.Context) error {
	defer s.stopOnce.Do(func() { close(s.stopped) })
	go s.hub.run(ctx)

	interval := time.Second / time.Duration(s.opts.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	frame := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-s.cmds:
			c.fn(s.eng)
			close(c.done)
		case now := <-ticker.C:
			s.eng.Tick(now.Sub(last))
			last = now
			frame++
			if frame%s.opts.BroadcastEvery == 0 && s.hub.active() {
				s.publish()
			}
		}
	}
}

func (s *Server) publish() {
	data, err := json.Marshal(s.eng.Snapshot())
	if err != nil {
		s.logger.Error("encode snapshot", "err", err)
		return
	}
	s.hub.broadcast(data)
}

// do runs fn on the owner goroutine and waits for it.
func (s *Server) do(ctx context.Context, fn func(*tower.Engine)) error {
	c := command{fn: fn, done: make(chan struct{})}
	select {
	case s.cmds <- c:
	case <-s.stopped:
		return errors.New(errors.ErrCodeTimeout, "engine stopped")
	case <-ctx.Done():
		return errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "engine busy")
	}
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "engine command")
	}
}

// ListenAndServe runs the engine loop and an HTTP server on addr until ctx
// is canceled or the listener fails, then shuts the HTTP server down
// gracefully. It returns only after the engine loop has exited, so the
// caller may use or close the engine again.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      writeTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.Run(gctx); gctx.Err() == nil {
			return err
		}
		return nil
	})
	g.Go(func() error {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(errors.ErrCodeNetwork, err, "listen on %s", addr)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	s.logger.Info("server stopped")
	return err
}
