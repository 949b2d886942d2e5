// Package server implements "plategen serve", the web front end to the
// layout pipeline.
//
// Routes:
//
//	GET  /             upload form
//	POST /             multipart upload (field "file") → HTML plate layout
//	POST /api/layout   experiments JSON → layout JSON
//	POST /api/render   experiments JSON → one rendered artifact (?format=svg)
//	GET  /healthz      liveness, including the cache backend when it can be pinged
//
// Layout and render options can be given as query parameters: packer, seed,
// title, well_size and labels.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/plategen/pkg/pipeline"
)

// Defaults for [Options].
const (
	DefaultAddr          = "localhost:4567"
	DefaultMaxUploadSize = 1 << 20
	shutdownTimeout      = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	Addr          string
	MaxUploadSize int64

	// Defaults are the pipeline options every request starts from.
	Defaults pipeline.Options
}

// Server serves the upload form and the layout API.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	opts   Options
	router chi.Router
}

// New creates a server backed by runner. A nil logger logs nothing.
func New(runner *pipeline.Runner, logger *log.Logger, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = DefaultMaxUploadSize
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{runner: runner, logger: logger, opts: opts}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleForm)
	r.Post("/", s.handleUpload)
	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/layout", s.handleAPILayout)
		r.Post("/render", s.handleAPIRender)
	})
	return r
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.opts.Addr }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
