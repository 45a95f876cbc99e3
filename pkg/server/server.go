// Package server exposes the sticky-note engine over HTTP.
//
// Routes, all scoped to the session owner:
//
//	GET    /notes        board: notes plus distinct tags
//	POST   /notes        create; estimator sizes the card when grid is omitted
//	PATCH  /notes/{id}   partial update of content, tags, locked, grid
//	DELETE /notes/{id}   delete
//
// Errors are JSON envelopes {"error":{"code","message"}} with the status
// derived from the error code. Sessions are bearer tokens resolved through
// a session.Store; --no-auth mode maps every request to a fixed local
// owner.
package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sqing33/stickyboard/pkg/errors"
	"github.com/sqing33/stickyboard/pkg/estimate"
	"github.com/sqing33/stickyboard/pkg/session"
	"github.com/sqing33/stickyboard/pkg/store"
)

// Config assembles a Server. Store is required; a nil Sessions with
// NoAuth false rejects every request as unauthenticated.
type Config struct {
	Store     store.Store
	Sessions  session.Store
	Estimator *estimate.Estimator

	// Env is the pixel environment used when a create omits its size.
	// The client normally sends its live value; this is the default.
	Env estimate.Env

	// NoAuth maps every request to the fixed local owner instead of
	// resolving bearer tokens. Development only.
	NoAuth bool

	Logger *log.Logger
}

// Server handles the notes API.
type Server struct {
	store     store.Store
	sessions  session.Store
	estimator *estimate.Estimator
	env       estimate.Env
	noAuth    bool
	logger    *log.Logger
}

// New creates a Server from the config.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	est := cfg.Estimator
	if est == nil {
		est = estimate.New(nil, nil)
	}
	return &Server{
		store:     cfg.Store,
		sessions:  cfg.Sessions,
		estimator: est,
		env:       cfg.Env,
		noAuth:    cfg.NoAuth,
		logger:    logger,
	}
}

// Router builds the chi router with authentication applied to every note
// route.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.logRequests)

	r.Route("/notes", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Patch("/{id}", s.handlePatch)
		r.Delete("/{id}", s.handleDelete)
	})
	return r
}

type ctxKey int

const ownerKey ctxKey = 0

// ownerFromContext returns the authenticated owner set by authenticate.
func ownerFromContext(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey).(string)
	return owner
}

// authenticate resolves the bearer token to an owner and stores it on the
// request context. Missing, malformed, unknown, and expired tokens are all
// the same UNAUTHENTICATED to the caller.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.noAuth {
			ctx := context.WithValue(r.Context(), ownerKey, session.MockLocal().OwnerID)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.writeError(w, r, errors.New(errors.CodeUnauthenticated, "missing bearer token"))
			return
		}
		if s.sessions == nil {
			s.writeError(w, r, errors.New(errors.CodeUnauthenticated, "no session backend"))
			return
		}

		sess, err := s.sessions.Get(r.Context(), token)
		if err != nil {
			s.writeError(w, r, errors.Wrap(errors.CodePersistence, err, "resolve session"))
			return
		}
		if sess == nil {
			s.writeError(w, r, errors.New(errors.CodeUnauthenticated, "session expired or unknown"))
			return
		}

		ctx := context.WithValue(r.Context(), ownerKey, sess.OwnerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// logRequests logs one line per request with method, path, status, and
// elapsed time.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start).Round(time.Millisecond))
	})
}
