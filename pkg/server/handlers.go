package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sqing33/stickyboard/pkg/errors"
	"github.com/sqing33/stickyboard/pkg/estimate"
	"github.com/sqing33/stickyboard/pkg/grid"
	"github.com/sqing33/stickyboard/pkg/note"
	"github.com/sqing33/stickyboard/pkg/store"
)

// createRequest is the POST /notes body. Grid carries only the desired
// size; the position is always assigned server-side by placement search.
type createRequest struct {
	Tags    []string   `json:"tags"`
	Content string     `json:"content"`
	Grid    *grid.Size `json:"grid,omitempty"`

	// Env optionally carries the client's live pixel environment so the
	// estimator sizes against what the user actually sees.
	Env *estimate.Env `json:"env,omitempty"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	view, err := s.store.List(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.CodeValidation, err, "invalid request body"))
		return
	}

	var size grid.Size
	if req.Grid != nil {
		size = *req.Grid
	} else {
		env := s.env
		if req.Env != nil && req.Env.Valid() {
			env = *req.Env
		}
		size = s.estimator.Size(r.Context(), req.Content, env)
	}

	n, err := s.store.Create(r.Context(), ownerFromContext(r.Context()), store.CreateInput{
		Tags:    req.Tags,
		Content: req.Content,
		Size:    size,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"id": n.ID})
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	var patch note.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.writeError(w, r, errors.Wrap(errors.CodeValidation, err, "invalid request body"))
		return
	}

	n, err := s.store.Update(r.Context(), ownerFromContext(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), ownerFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// errorEnvelope is the JSON body for every failure response.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.CodePersistence
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}

	s.writeJSON(w, status, errorEnvelope{Error: errorBody{
		Code:    string(code),
		Message: errors.UserMessage(err),
	}})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}
