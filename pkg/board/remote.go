package board

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sqing33/stickyboard/pkg/errors"
	"github.com/sqing33/stickyboard/pkg/grid"
	"github.com/sqing33/stickyboard/pkg/note"
)

// HTTPRemote talks to the notes API over HTTP with a bearer token.
type HTTPRemote struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPRemote creates a remote for the given API base URL. A nil client
// uses http.DefaultClient.
func NewHTTPRemote(baseURL, token string, client *http.Client) *HTTPRemote {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPRemote{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  client,
	}
}

func (r *HTTPRemote) Fetch(ctx context.Context) ([]note.Note, []string, error) {
	var view struct {
		Notes []note.Note `json:"notes"`
		Tags  []string    `json:"tags"`
	}
	if err := r.do(ctx, http.MethodGet, "/notes", nil, &view); err != nil {
		return nil, nil, err
	}
	return view.Notes, view.Tags, nil
}

func (r *HTTPRemote) Create(ctx context.Context, tags []string, content string, size *grid.Size) (string, error) {
	body := map[string]any{"tags": tags, "content": content}
	if size != nil {
		body["grid"] = size
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := r.do(ctx, http.MethodPost, "/notes", body, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

func (r *HTTPRemote) Patch(ctx context.Context, noteID string, patch note.Patch) error {
	return r.do(ctx, http.MethodPatch, "/notes/"+noteID, patch, nil)
}

func (r *HTTPRemote) Delete(ctx context.Context, noteID string) error {
	return r.do(ctx, http.MethodDelete, "/notes/"+noteID, nil, nil)
}

// transportError marks a failure where no response arrived at all. The
// server may or may not have processed the request, so only idempotent
// methods can safely resend it.
type transportError struct{ err error }

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// idempotent reports whether resending the request cannot change the
// outcome. PATCH carries absolute state and DELETE of a gone note is a
// NOT_FOUND, so both are safe; POST creates a fresh note every time.
func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// do sends one request and decodes the response into out when non-nil.
// Failure responses are decoded from the error envelope; a missing or
// unreadable envelope falls back to the status-code mapping.
//
// Server-reported CONFLICT is retried with backoff for every method: the
// transaction rolled back fully before the 409 was sent. A lost response
// is retried only for idempotent methods, so one client Create never
// executes more than one POST on the server.
func (r *HTTPRemote) do(ctx context.Context, method, path string, body, out any) error {
	var data []byte
	if body != nil {
		var err error
		if data, err = json.Marshal(body); err != nil {
			return errors.Wrap(errors.CodeValidation, err, "encode request")
		}
	}

	shouldRetry := func(err error) bool {
		if errors.Retryable(err) {
			return true
		}
		var te *transportError
		return idempotent(method) && stderrors.As(err, &te)
	}

	return retry(ctx, 3, 250*time.Millisecond, shouldRetry, func() error {
		var reader io.Reader
		if data != nil {
			reader = bytes.NewReader(data)
		}
		req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
		if err != nil {
			return errors.Wrap(errors.CodePersistence, err, "build request")
		}
		if data != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if r.token != "" {
			req.Header.Set("Authorization", "Bearer "+r.token)
		}

		resp, err := r.client.Do(req)
		if err != nil {
			return errors.Wrap(errors.CodePersistence, &transportError{err}, "%s %s", method, path)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return remoteError(resp)
		}
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return errors.Wrap(errors.CodePersistence, err, "decode response")
			}
		}
		return nil
	})
}

func remoteError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(data, &envelope) == nil && envelope.Error.Code != "" {
		return errors.New(errors.Code(envelope.Error.Code), "%s", envelope.Error.Message)
	}
	return errors.New(errors.FromHTTPStatus(resp.StatusCode),
		"%s", fmt.Sprintf("server returned %s", resp.Status))
}

var _ Remote = (*HTTPRemote)(nil)
