package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/sqing33/stickyboard/pkg/errors"
	"github.com/sqing33/stickyboard/pkg/grid"
	"github.com/sqing33/stickyboard/pkg/note"
)

func mustCreate(t *testing.T, s Store, owner string, in CreateInput) *note.Note {
	t.Helper()
	n, err := s.Create(context.Background(), owner, in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return n
}

func TestCreateEmptyBoard(t *testing.T) {
	s := NewMemoryStore()
	n := mustCreate(t, s, "alice", CreateInput{
		Tags:    []string{"idea"},
		Content: "hello",
		Size:    grid.Size{W: 16, H: 16},
	})

	if n.Rect.X != 0 || n.Rect.Y != 0 {
		t.Errorf("first note placed at (%d,%d), want (0,0)", n.Rect.X, n.Rect.Y)
	}
	if !n.Rect.Valid() {
		t.Errorf("rect out of bounds: %+v", n.Rect)
	}
	if n.ID == "" {
		t.Error("note has no ID")
	}
	if n.CreatedAt.IsZero() || n.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
}

func TestCreateValidation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateInput
	}{
		{"no tags", CreateInput{Content: "x", Size: grid.Size{W: 8, H: 8}}},
		{"too many tags", CreateInput{Tags: []string{"a", "b", "c", "d"}, Content: "x"}},
		{"empty content", CreateInput{Tags: []string{"a"}, Content: ""}},
		{"duplicate tags", CreateInput{Tags: []string{"a", "a"}, Content: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(ctx, "alice", tt.in)
			if !errors.Is(err, errors.CodeValidation) {
				t.Errorf("Create() error = %v, want VALIDATION", err)
			}
		})
	}

	// Nothing was stored.
	view, err := s.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(view.Notes) != 0 {
		t.Errorf("board has %d notes after rejected creates, want 0", len(view.Notes))
	}
}

func TestCreatePlacesWithoutOverlap(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var rects []grid.Rect
	for i := 0; i < 6; i++ {
		n := mustCreate(t, s, "alice", CreateInput{
			Tags:    []string{"idea"},
			Content: fmt.Sprintf("note %d", i),
			Size:    grid.Size{W: 10, H: 10},
		})
		for _, r := range rects {
			if grid.Collides(n.Rect, r) {
				t.Errorf("note %d at %+v overlaps %+v", i, n.Rect, r)
			}
		}
		rects = append(rects, n.Rect)
	}

	view, err := s.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(view.Notes) != 6 {
		t.Errorf("List() returned %d notes, want 6", len(view.Notes))
	}
}

func TestConcurrentCreatesNeverOverlap(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Create(ctx, "alice", CreateInput{
				Tags:    []string{"idea"},
				Content: fmt.Sprintf("concurrent %d", i),
				Size:    grid.Size{W: 12, H: 12},
			})
			if err != nil {
				t.Errorf("Create() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	view, err := s.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(view.Notes) != workers {
		t.Fatalf("List() returned %d notes, want %d", len(view.Notes), workers)
	}
	for i := 0; i < len(view.Notes); i++ {
		for j := i + 1; j < len(view.Notes); j++ {
			if grid.Collides(view.Notes[i].Rect, view.Notes[j].Rect) {
				t.Errorf("notes %s and %s overlap: %+v vs %+v",
					view.Notes[i].ID, view.Notes[j].ID,
					view.Notes[i].Rect, view.Notes[j].Rect)
			}
		}
	}
}

func TestListScopedByOwner(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	mustCreate(t, s, "alice", CreateInput{Tags: []string{"work"}, Content: "a", Size: grid.Size{W: 8, H: 8}})
	mustCreate(t, s, "bob", CreateInput{Tags: []string{"home"}, Content: "b", Size: grid.Size{W: 8, H: 8}})

	view, err := s.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(view.Notes) != 1 {
		t.Fatalf("List() returned %d notes, want 1", len(view.Notes))
	}
	if view.Notes[0].Content != "a" {
		t.Errorf("got someone else's note: %q", view.Notes[0].Content)
	}
	if len(view.Tags) != 1 || view.Tags[0] != "work" {
		t.Errorf("Tags = %v, want [work]", view.Tags)
	}
}

func TestGetWrongOwnerIsNotFound(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	n := mustCreate(t, s, "alice", CreateInput{Tags: []string{"x"}, Content: "a", Size: grid.Size{W: 8, H: 8}})

	if _, err := s.Get(ctx, "bob", n.ID); !errors.Is(err, errors.CodeNotFound) {
		t.Errorf("Get() as wrong owner error = %v, want NOT_FOUND", err)
	}
	if _, err := s.Get(ctx, "alice", n.ID); err != nil {
		t.Errorf("Get() as owner error = %v", err)
	}
}

func TestUpdateFields(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	n := mustCreate(t, s, "alice", CreateInput{Tags: []string{"x"}, Content: "before", Size: grid.Size{W: 8, H: 8}})

	content := "after"
	locked := true
	rect := grid.Rect{X: 5, Y: 5, W: 10, H: 10}
	updated, err := s.Update(ctx, "alice", n.ID, note.Patch{
		Content: &content,
		Tags:    []string{"y", "z"},
		Locked:  &locked,
		Rect:    &rect,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Content != "after" {
		t.Errorf("Content = %q, want %q", updated.Content, "after")
	}
	if len(updated.Tags) != 2 || updated.Tags[0] != "y" {
		t.Errorf("Tags = %v, want [y z]", updated.Tags)
	}
	if !updated.Locked {
		t.Error("Locked = false, want true")
	}
	if updated.Rect != rect {
		t.Errorf("Rect = %+v, want %+v", updated.Rect, rect)
	}
	if !updated.UpdatedAt.After(n.UpdatedAt) && !updated.UpdatedAt.Equal(n.UpdatedAt) {
		t.Error("UpdatedAt went backwards")
	}
}

func TestUpdateEmptyPatch(t *testing.T) {
	s := NewMemoryStore()
	n := mustCreate(t, s, "alice", CreateInput{Tags: []string{"x"}, Content: "a", Size: grid.Size{W: 8, H: 8}})

	_, err := s.Update(context.Background(), "alice", n.ID, note.Patch{})
	if !errors.Is(err, errors.CodeValidation) {
		t.Errorf("Update() error = %v, want VALIDATION", err)
	}
}

func TestUpdateOutOfBoundsRectRejected(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	n := mustCreate(t, s, "alice", CreateInput{Tags: []string{"x"}, Content: "a", Size: grid.Size{W: 8, H: 8}})

	bad := grid.Rect{X: 40, Y: 0, W: 10, H: 5} // x+w > 48
	_, err := s.Update(ctx, "alice", n.ID, note.Patch{Rect: &bad})
	if !errors.Is(err, errors.CodeValidation) {
		t.Fatalf("Update() error = %v, want VALIDATION", err)
	}

	stored, err := s.Get(ctx, "alice", n.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.Rect != n.Rect {
		t.Errorf("stored rect changed after rejected update: %+v, want %+v", stored.Rect, n.Rect)
	}
}

func TestUpdateMissingNote(t *testing.T) {
	s := NewMemoryStore()
	content := "x"
	_, err := s.Update(context.Background(), "alice", "nope", note.Patch{Content: &content})
	if !errors.Is(err, errors.CodeNotFound) {
		t.Errorf("Update() error = %v, want NOT_FOUND", err)
	}
}

func TestConcurrentUpdatesSerialize(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	n := mustCreate(t, s, "alice", CreateInput{Tags: []string{"x"}, Content: "a", Size: grid.Size{W: 8, H: 8}})

	rects := []grid.Rect{
		{X: 0, Y: 0, W: 10, H: 10},
		{X: 10, Y: 0, W: 10, H: 10},
		{X: 20, Y: 0, W: 10, H: 10},
		{X: 30, Y: 0, W: 10, H: 10},
	}

	var wg sync.WaitGroup
	for i := range rects {
		wg.Add(1)
		go func(r grid.Rect) {
			defer wg.Done()
			if _, err := s.Update(ctx, "alice", n.ID, note.Patch{Rect: &r}); err != nil {
				t.Errorf("Update() error = %v", err)
			}
		}(rects[i])
	}
	wg.Wait()

	// The final state must be exactly one of the requested rectangles,
	// never a mix of coordinates from different requests.
	stored, err := s.Get(ctx, "alice", n.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	found := false
	for _, r := range rects {
		if stored.Rect == r {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("stored rect %+v is not any requested rect (partial write)", stored.Rect)
	}
}

func TestDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	n := mustCreate(t, s, "alice", CreateInput{Tags: []string{"x"}, Content: "a", Size: grid.Size{W: 8, H: 8}})

	if err := s.Delete(ctx, "bob", n.ID); !errors.Is(err, errors.CodeNotFound) {
		t.Errorf("Delete() as wrong owner error = %v, want NOT_FOUND", err)
	}
	if err := s.Delete(ctx, "alice", n.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, "alice", n.ID); !errors.Is(err, errors.CodeNotFound) {
		t.Errorf("Delete() twice error = %v, want NOT_FOUND", err)
	}
	if _, err := s.Get(ctx, "alice", n.ID); !errors.Is(err, errors.CodeNotFound) {
		t.Errorf("Get() after delete error = %v, want NOT_FOUND", err)
	}
}

func TestOverlappingManualRectAccepted(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	a := mustCreate(t, s, "alice", CreateInput{Tags: []string{"x"}, Content: "a", Size: grid.Size{W: 10, H: 10}})
	b := mustCreate(t, s, "alice", CreateInput{Tags: []string{"x"}, Content: "b", Size: grid.Size{W: 10, H: 10}})

	// Drag b exactly onto a. In bounds, so the server accepts it even
	// though it overlaps; users may stack notes deliberately.
	onto := a.Rect
	if _, err := s.Update(ctx, "alice", b.ID, note.Patch{Rect: &onto}); err != nil {
		t.Errorf("Update() with overlapping rect error = %v", err)
	}
}
