// Package store persists sticky notes and serializes concurrent mutation.
//
// The contract is row-level: mutations to the same note by the same owner
// are serialized, mutations to different notes may interleave. Create
// additionally locks the owner's whole note set while placement runs, so
// two concurrent creates can never be assigned overlapping positions.
// Every query is scoped by owner, which rules out cross-user contention by
// construction.
//
// Two implementations share the contract: Postgres (SELECT … FOR UPDATE)
// for deployments and an in-memory store with equivalent lock semantics
// for tests and local development.
package store

import (
	"context"

	"github.com/sqing33/stickyboard/pkg/grid"
	"github.com/sqing33/stickyboard/pkg/note"
)

// BoardView is one owner's full board: every note plus the distinct tags
// across them, sorted for stable output.
type BoardView struct {
	Notes []note.Note `json:"notes"`
	Tags  []string    `json:"tags"`
}

// CreateInput carries the validated fields for a new note. Size is the
// desired footprint; the store clamps it and runs placement search under
// the owner-set lock to assign the position.
type CreateInput struct {
	Tags    []string
	Content string
	Size    grid.Size
}

// Store is the persistence contract for one notes table.
//
// All methods validate before mutating and return structured errors from
// pkg/errors: VALIDATION for bad input, NOT_FOUND when the note is missing
// or owned by someone else, CONFLICT for lock-wait timeouts (retryable),
// PERSISTENCE_FAILURE otherwise. Partial writes are never observable.
type Store interface {
	// List returns the owner's board. Reads degrade on missing columns
	// rather than failing the request.
	List(ctx context.Context, ownerID string) (*BoardView, error)

	// Get returns one note by ID, scoped to the owner.
	Get(ctx context.Context, ownerID, noteID string) (*note.Note, error)

	// Create validates the input, locks the owner's existing notes,
	// places the new one, and inserts it. Returns the stored note with
	// its assigned ID and rectangle.
	Create(ctx context.Context, ownerID string, in CreateInput) (*note.Note, error)

	// Update applies a patch to one note under its row lock. All bundled
	// fields commit atomically or not at all.
	Update(ctx context.Context, ownerID, noteID string, patch note.Patch) (*note.Note, error)

	// Delete removes one note, scoped to the owner.
	Delete(ctx context.Context, ownerID, noteID string) error

	// Close releases the backing resources.
	Close() error
}

func validateCreate(in CreateInput) error {
	if err := note.ValidateTags(in.Tags); err != nil {
		return err
	}
	return note.ValidateContent(in.Content)
}
