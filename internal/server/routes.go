package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gorilla/mux"
	"github.com/graph-gophers/graphql-go/relay"
	"go.uber.org/zap"

	"minitwitql/internal/apperr"
	"minitwitql/internal/auth"
)

const (
	apiPath   = "/graphql"
	loginPath = "/login"
)

func (s *Server) registerRoutes() {
	r := mux.NewRouter()

	api := s.requireToken(&relay.Handler{Schema: s.deps.API})
	r.Handle(apiPath, s.metrics.instrument("graphql", api)).Methods(http.MethodPost)

	login := s.throttleLogin(&relay.Handler{Schema: s.deps.Login})
	r.Handle(loginPath, s.metrics.instrument("login", login)).Methods(http.MethodPost)

	r.Handle("/healthz", s.metrics.instrument("healthz", s.handleHealth())).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.handler()).Methods(http.MethodGet)
	if s.playground != nil {
		r.Handle("/", s.handlePlayground()).Methods(http.MethodGet)
	}

	s.router = s.recoverPanic(s.logRequests(s.withTimeout(r)))
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := s.deps.Store.Ping(r.Context()); err != nil {
			s.log.Warn("health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.Write([]byte(`{"status":"healthy"}`))
	}
}

func (s *Server) handlePlayground() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(s.playground)
	}
}

// requireToken runs the auth gate before any resolver. Rejected requests get
// a 401 with a GraphQL error envelope.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.deps.Gate.Check(r.Header.Get("Authorization")); err != nil {
			reason := "invalid"
			if err.Error() == auth.MsgMustLogIn {
				reason = "missing"
			}
			s.metrics.rejected.WithLabelValues(reason).Inc()
			s.log.Debug("request rejected", zap.String("reason", reason), zap.Error(apperr.Cause(err)))
			writeErrors(w, http.StatusUnauthorized, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// throttleLogin limits login API calls per client address.
func (s *Server) throttleLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.deps.Limiter.Allow(clientIP(r)) {
			s.metrics.rejected.WithLabelValues("throttled").Inc()
			w.Header().Set("Retry-After", "1")
			writeErrors(w, http.StatusTooManyRequests,
				apperr.NewValidation("too many login attempts, try again later"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// withTimeout bounds every store call a request makes.
func (s *Server) withTimeout(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.RequestTimeout <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", clientIP(r)),
		)
	})
}

func (s *Server) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				s.log.Error("panic serving request",
					zap.String("panic", fmt.Sprint(err)),
					zap.ByteString("stack", debug.Stack()))
				writeErrors(w, http.StatusInternalServerError, apperr.Wrap(fmt.Errorf("%v", err), "panic"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
