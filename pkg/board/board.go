// Package board is the client side of the note sync protocol.
//
// Local state is the source of truth for immediate feedback; the server is
// the source of truth for persistence. Every user-driven rectangle change
// runs the same two-phase protocol: apply the rectangle locally, then send
// exactly one PATCH carrying the final rectangle. On success nothing else
// happens. On an authentication failure local state is kept and the
// re-login callback fires. On any other failure the note reverts to its
// last known-good rectangle and a rate-limited notice is emitted, so a
// burst of failures (an arrange loop, a flaky connection) surfaces at most
// one visible error per cooldown window.
package board

import (
	"context"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/sqing33/stickyboard/pkg/errors"
	"github.com/sqing33/stickyboard/pkg/grid"
	"github.com/sqing33/stickyboard/pkg/layout"
	"github.com/sqing33/stickyboard/pkg/note"
)

// Remote is the server as the board sees it. Every method carries only
// final state, never deltas, so racing requests resolve to last-write-wins
// on the server.
type Remote interface {
	// Fetch returns the owner's full board.
	Fetch(ctx context.Context) ([]note.Note, []string, error)

	// Create makes a new note and returns its assigned ID. A nil size
	// lets the server estimate one from the content.
	Create(ctx context.Context, tags []string, content string, size *grid.Size) (string, error)

	// Patch applies a partial update to one note.
	Patch(ctx context.Context, noteID string, patch note.Patch) error

	// Delete removes one note.
	Delete(ctx context.Context, noteID string) error
}

// Config assembles a Board. Remote is required.
type Config struct {
	Remote   Remote
	Notifier *Notifier

	// OnAuthRequired fires when the server rejects a request as
	// unauthenticated; the app should send the user back to login.
	// Local state is left as-is so the retry after login still has it.
	OnAuthRequired func()

	Logger *log.Logger
}

// Board holds the local note state and pushes changes to the remote.
type Board struct {
	mu    sync.Mutex
	notes map[string]note.Note
	tags  []string

	remote         Remote
	notifier       *Notifier
	onAuthRequired func()
	logger         *log.Logger
}

// New creates an empty board. Call Load to populate it from the remote.
func New(cfg Config) *Board {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = NewNotifier(DefaultCooldown, nil)
	}
	return &Board{
		notes:          make(map[string]note.Note),
		remote:         cfg.Remote,
		notifier:       notifier,
		onAuthRequired: cfg.OnAuthRequired,
		logger:         logger,
	}
}

// Load replaces local state with the remote board.
func (b *Board) Load(ctx context.Context) error {
	notes, tags, err := b.remote.Fetch(ctx)
	if err != nil {
		return b.fail(err)
	}

	b.mu.Lock()
	b.notes = make(map[string]note.Note, len(notes))
	for _, n := range notes {
		b.notes[n.ID] = n
	}
	b.tags = tags
	b.mu.Unlock()
	return nil
}

// Notes returns a snapshot of local state, sorted by creation time.
func (b *Board) Notes() []note.Note {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]note.Note, 0, len(b.notes))
	for _, n := range b.notes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		a, c := out[i], out[j]
		if !a.CreatedAt.Equal(c.CreatedAt) {
			return a.CreatedAt.Before(c.CreatedAt)
		}
		return a.ID < c.ID
	})
	return out
}

// Tags returns the distinct tags from the last Load.
func (b *Board) Tags() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.tags...)
}

// ApplyLocal sets a note's rectangle locally and returns the previous
// value for a later revert. The second return is false when the note is
// unknown.
func (b *Board) ApplyLocal(noteID string, rect grid.Rect) (grid.Rect, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, ok := b.notes[noteID]
	if !ok {
		return grid.Rect{}, false
	}
	prev := n.Rect
	n.Rect = rect
	b.notes[noteID] = n
	return prev, true
}

// RevertLocal restores a note's rectangle to a previous value.
func (b *Board) RevertLocal(noteID string, prev grid.Rect) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, ok := b.notes[noteID]
	if !ok {
		return
	}
	n.Rect = prev
	b.notes[noteID] = n
}

// CommitRect runs the full two-phase protocol for one rectangle change:
// optimistic local apply, one PATCH with the final rectangle, revert on
// non-auth failure.
func (b *Board) CommitRect(ctx context.Context, noteID string, rect grid.Rect) error {
	prev, ok := b.ApplyLocal(noteID, rect)
	if !ok {
		return errors.New(errors.CodeNotFound, "note %s not on board", noteID)
	}

	err := b.remote.Patch(ctx, noteID, note.Patch{Rect: &rect})
	if err == nil {
		return nil
	}

	if errors.Is(err, errors.CodeUnauthenticated) {
		// Keep the optimistic state; the user retries after login.
		b.authRequired()
		return err
	}

	b.RevertLocal(noteID, prev)
	return b.fail(err)
}

// Create makes a note on the server and mirrors it locally. A nil size
// defers sizing to the server's estimator.
func (b *Board) Create(ctx context.Context, tags []string, content string, size *grid.Size) (string, error) {
	id, err := b.remote.Create(ctx, tags, content, size)
	if err != nil {
		if errors.Is(err, errors.CodeUnauthenticated) {
			b.authRequired()
			return "", err
		}
		return "", b.fail(err)
	}

	// Reload to pick up the server-assigned rectangle and timestamps.
	if err := b.Load(ctx); err != nil {
		b.logger.Warn("reload after create failed", "err", err)
	}
	return id, nil
}

// Delete removes a note remotely and locally. The local copy is kept on
// failure so the board never shows a phantom deletion.
func (b *Board) Delete(ctx context.Context, noteID string) error {
	if err := b.remote.Delete(ctx, noteID); err != nil {
		if errors.Is(err, errors.CodeUnauthenticated) {
			b.authRequired()
			return err
		}
		return b.fail(err)
	}

	b.mu.Lock()
	delete(b.notes, noteID)
	b.mu.Unlock()
	return nil
}

// SetLocked commits a note's layout-lock flag and mirrors it locally on
// success.
func (b *Board) SetLocked(ctx context.Context, noteID string, locked bool) error {
	if err := b.remote.Patch(ctx, noteID, note.Patch{Locked: &locked}); err != nil {
		if errors.Is(err, errors.CodeUnauthenticated) {
			b.authRequired()
			return err
		}
		return b.fail(err)
	}

	b.mu.Lock()
	if n, ok := b.notes[noteID]; ok {
		n.Locked = locked
		b.notes[noteID] = n
	}
	b.mu.Unlock()
	return nil
}

// ArrangeResult summarizes one best-effort arrange pass.
type ArrangeResult struct {
	Moved  int // notes whose new rectangle committed
	Failed int // notes whose commit failed and was reverted
}

// Arrange repacks the board and commits each moved note individually.
// A per-note failure reverts that note and counts it, but never rolls
// back siblings that already committed. A nil sizer keeps current sizes.
func (b *Board) Arrange(ctx context.Context, sizer layout.Sizer) ArrangeResult {
	b.mu.Lock()
	input := make([]layout.Note, 0, len(b.notes))
	for _, n := range b.notes {
		input = append(input, layout.Note{
			ID:      n.ID,
			Rect:    n.Rect,
			Locked:  n.Locked,
			Content: n.Content,
		})
	}
	b.mu.Unlock()

	var res ArrangeResult
	for _, p := range layout.Arrange(ctx, input, sizer) {
		if err := b.CommitRect(ctx, p.ID, p.Rect); err != nil {
			if errors.Is(err, errors.CodeUnauthenticated) {
				// Pointless to keep looping without a session.
				res.Failed++
				return res
			}
			res.Failed++
			continue
		}
		res.Moved++
	}
	return res
}

// fail routes an error through the rate-limited notifier and returns it.
func (b *Board) fail(err error) error {
	if b.notifier.Notify(err) {
		b.logger.Error("sync failed", "err", err)
	}
	return err
}

func (b *Board) authRequired() {
	if b.onAuthRequired != nil {
		b.onAuthRequired()
	}
}
