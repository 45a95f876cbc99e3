package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sqing33/stickyboard/pkg/errors"
	"github.com/sqing33/stickyboard/pkg/grid"
	"github.com/sqing33/stickyboard/pkg/layout"
	"github.com/sqing33/stickyboard/pkg/note"
	"github.com/sqing33/stickyboard/pkg/observability"
)

// MemoryStore keeps notes in process memory with the same lock semantics
// as the Postgres store: a per-note mutex serializes mutations to one note,
// and a per-owner mutex serializes creates so placement never races.
type MemoryStore struct {
	mu      sync.RWMutex
	notes   map[string]*note.Note
	rowMu   map[string]*sync.Mutex
	ownerMu map[string]*sync.Mutex

	// now is swappable for tests.
	now func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		notes:   make(map[string]*note.Note),
		rowMu:   make(map[string]*sync.Mutex),
		ownerMu: make(map[string]*sync.Mutex),
		now:     time.Now,
	}
}

// rowLock returns the mutex serializing mutations to one note.
func (s *MemoryStore) rowLock(noteID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.rowMu[noteID]
	if !ok {
		m = &sync.Mutex{}
		s.rowMu[noteID] = m
	}
	return m
}

// ownerLock returns the mutex held across create's read-place-insert.
func (s *MemoryStore) ownerLock(ownerID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.ownerMu[ownerID]
	if !ok {
		m = &sync.Mutex{}
		s.ownerMu[ownerID] = m
	}
	return m
}

func (s *MemoryStore) List(ctx context.Context, ownerID string) (*BoardView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	view := &BoardView{Notes: []note.Note{}, Tags: []string{}}
	tagSet := make(map[string]struct{})
	for _, n := range s.notes {
		if n.OwnerID != ownerID {
			continue
		}
		cp := *n
		cp.Tags = append([]string(nil), n.Tags...)
		view.Notes = append(view.Notes, cp)
		for _, t := range n.Tags {
			tagSet[t] = struct{}{}
		}
	}

	sort.Slice(view.Notes, func(i, j int) bool {
		a, b := view.Notes[i], view.Notes[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	for t := range tagSet {
		view.Tags = append(view.Tags, t)
	}
	sort.Strings(view.Tags)
	return view, nil
}

func (s *MemoryStore) Get(ctx context.Context, ownerID, noteID string) (*note.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notes[noteID]
	if !ok || n.OwnerID != ownerID {
		return nil, errors.New(errors.CodeNotFound, "note %s not found", noteID)
	}
	cp := *n
	cp.Tags = append([]string(nil), n.Tags...)
	return &cp, nil
}

func (s *MemoryStore) Create(ctx context.Context, ownerID string, in CreateInput) (*note.Note, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	start := s.now()

	// Holding the owner lock across read, placement, and insert mirrors
	// the Postgres owner-set FOR UPDATE on create.
	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	var obstacles []grid.Rect
	for _, n := range s.notes {
		if n.OwnerID == ownerID {
			obstacles = append(obstacles, n.Rect)
		}
	}
	s.mu.RUnlock()

	size := grid.ClampSize(in.Size)
	pos := layout.Place(ctx, obstacles, size)

	id, err := note.NewID()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	n := &note.Note{
		ID:        id,
		OwnerID:   ownerID,
		Tags:      append([]string(nil), in.Tags...),
		Content:   in.Content,
		Rect:      grid.Rect{X: pos.X, Y: pos.Y, W: size.W, H: size.H},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.notes[id] = n
	s.mu.Unlock()

	observability.Store().OnCommit(ctx, "create", time.Since(start))

	cp := *n
	cp.Tags = append([]string(nil), n.Tags...)
	return &cp, nil
}

func (s *MemoryStore) Update(ctx context.Context, ownerID, noteID string, patch note.Patch) (*note.Note, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	start := s.now()

	lock := s.rowLock(noteID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[noteID]
	if !ok || n.OwnerID != ownerID {
		err := errors.New(errors.CodeNotFound, "note %s not found", noteID)
		observability.Store().OnRollback(ctx, "update", err)
		return nil, err
	}

	// Mutate a copy so a failed path never leaves a partial write.
	cp := *n
	cp.Tags = append([]string(nil), n.Tags...)
	if patch.Content != nil {
		cp.Content = *patch.Content
	}
	if patch.Tags != nil {
		cp.Tags = append([]string(nil), patch.Tags...)
	}
	if patch.Locked != nil {
		cp.Locked = *patch.Locked
	}
	if patch.Rect != nil {
		cp.Rect = *patch.Rect
	}
	cp.UpdatedAt = s.now().UTC()

	s.notes[noteID] = &cp
	observability.Store().OnCommit(ctx, "update", time.Since(start))

	out := cp
	out.Tags = append([]string(nil), cp.Tags...)
	return &out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, ownerID, noteID string) error {
	lock := s.rowLock(noteID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[noteID]
	if !ok || n.OwnerID != ownerID {
		return errors.New(errors.CodeNotFound, "note %s not found", noteID)
	}
	delete(s.notes, noteID)
	delete(s.rowMu, noteID)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
