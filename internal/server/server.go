// Package server wires the GraphQL schemas, the auth gate and the store into
// one HTTP listener.
package server

import (
	"context"
	"net/http"
	"time"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"minitwitql/internal/auth"
	"minitwitql/internal/config"
	"minitwitql/internal/store"
)

const shutdownTimeout = 15 * time.Second

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Store   store.Store
	Gate    *auth.Gate
	API     *graphql.Schema
	Login   *graphql.Schema
	Limiter *auth.Limiter
}

// Server is the HTTP front of the API.
type Server struct {
	cfg  config.ServerConfig
	log  *zap.Logger
	deps Deps

	metrics    *metrics
	playground []byte
	router     http.Handler
}

// New returns a Server ready to serve.
func New(cfg config.ServerConfig, deps Deps, log *zap.Logger) (*Server, error) {
	switch {
	case deps.Store == nil:
		return nil, errors.New("server: store is required")
	case deps.Gate == nil:
		return nil, errors.New("server: auth gate is required")
	case deps.API == nil || deps.Login == nil:
		return nil, errors.New("server: both schemas are required")
	}
	if deps.Limiter == nil {
		deps.Limiter = auth.NewLimiter(0, 0)
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		cfg:     cfg,
		log:     log,
		deps:    deps,
		metrics: newMetrics(),
	}
	if cfg.Playground {
		page, err := renderPlayground(apiPath, loginPath)
		if err != nil {
			return nil, err
		}
		s.playground = page
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s,
		ErrorLog:     zap.NewStdLog(s.log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("minitwitql listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.Wrap(err, "HTTP server ListenAndServe")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info("shutting down", zap.Error(ctx.Err()))
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "HTTP server Shutdown")
		}
		return nil
	}
}
