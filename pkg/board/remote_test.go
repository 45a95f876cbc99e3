package board

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sqing33/stickyboard/pkg/errors"
	"github.com/sqing33/stickyboard/pkg/grid"
	"github.com/sqing33/stickyboard/pkg/note"
)

func TestHTTPRemoteFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer tok")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"notes": []note.Note{{ID: "n1", Content: "hi"}},
			"tags":  []string{"note"},
		})
	}))
	defer srv.Close()

	remote := NewHTTPRemote(srv.URL, "tok", nil)
	notes, tags, err := remote.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if len(notes) != 1 || notes[0].ID != "n1" {
		t.Errorf("notes = %+v, want one note n1", notes)
	}
	if len(tags) != 1 || tags[0] != "note" {
		t.Errorf("tags = %v, want [note]", tags)
	}
}

func TestHTTPRemoteErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "VALIDATION", "message": "rect out of bounds"},
		})
	}))
	defer srv.Close()

	remote := NewHTTPRemote(srv.URL, "tok", nil)
	err := remote.Patch(context.Background(), "n1", note.Patch{})
	if !errors.Is(err, errors.CodeValidation) {
		t.Fatalf("Patch() = %v, want VALIDATION", err)
	}
}

func TestHTTPRemoteStatusFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	remote := NewHTTPRemote(srv.URL, "tok", nil)
	err := remote.Delete(context.Background(), "n1")
	if !errors.Is(err, errors.CodeNotFound) {
		t.Fatalf("Delete() = %v, want NOT_FOUND", err)
	}
}

func TestHTTPRemoteCreateNotRetriedOnLostResponse(t *testing.T) {
	posts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts++
		// Drop the connection after the server has seen the request,
		// as if the note was created but the response never arrived.
		panic(http.ErrAbortHandler)
	}))
	defer srv.Close()

	remote := NewHTTPRemote(srv.URL, "tok", nil)
	_, err := remote.Create(context.Background(), []string{"note"}, "hi", nil)
	if err == nil {
		t.Fatal("Create() succeeded, want transport error")
	}
	if !errors.Is(err, errors.CodePersistence) {
		t.Errorf("Create() = %v, want PERSISTENCE_FAILURE", err)
	}
	if posts != 1 {
		t.Errorf("server saw %d POSTs for one Create, want 1", posts)
	}
}

func TestHTTPRemotePatchRetriesLostResponse(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			panic(http.ErrAbortHandler)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	remote := NewHTTPRemote(srv.URL, "tok", nil)
	if err := remote.Patch(context.Background(), "n1", note.Patch{}); err != nil {
		t.Fatalf("Patch() failed: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestHTTPRemoteRetriesConflict(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"code": "CONFLICT", "message": "lock timeout"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "n1"})
	}))
	defer srv.Close()

	remote := NewHTTPRemote(srv.URL, "tok", nil)
	id, err := remote.Create(context.Background(), []string{"note"}, "hi", &grid.Size{W: 10, H: 8})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if id != "n1" {
		t.Errorf("id = %q, want n1", id)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}
