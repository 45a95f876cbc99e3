package layout

import (
	"context"
	"math/rand"
	"strconv"
	"testing"

	"github.com/sqing33/stickyboard/pkg/grid"
)

// checkNoOverlap asserts the arranged board holds the no-overlap invariant:
// placements against each other and against every locked obstacle.
func checkNoOverlap(t *testing.T, placements []Placement, locked []grid.Rect) {
	t.Helper()

	rects := append([]grid.Rect{}, locked...)
	for _, p := range placements {
		if !p.Rect.Valid() {
			t.Errorf("placement %s has invalid rect %+v", p.ID, p.Rect)
		}
		if grid.CollidesAny(p.Rect, rects) {
			t.Errorf("placement %s at %+v overlaps", p.ID, p.Rect)
		}
		rects = append(rects, p.Rect)
	}
}

func TestArrangeEmpty(t *testing.T) {
	if got := Arrange(context.Background(), nil, nil); len(got) != 0 {
		t.Errorf("Arrange(nil) = %v, want empty", got)
	}
}

func TestArrangeLockedNotesStayPut(t *testing.T) {
	lockedRect := grid.Rect{X: 20, Y: 0, W: 10, H: 10}
	notes := []Note{
		{ID: "locked", Rect: lockedRect, Locked: true},
		{ID: "a", Rect: grid.Rect{X: 0, Y: 30, W: 12, H: 8}},
		{ID: "b", Rect: grid.Rect{X: 5, Y: 50, W: 6, H: 6}},
		{ID: "c", Rect: grid.Rect{X: 9, Y: 70, W: 18, H: 10}},
	}

	placements := Arrange(context.Background(), notes, nil)

	if len(placements) != 3 {
		t.Fatalf("got %d placements, want 3 (locked excluded)", len(placements))
	}
	for _, p := range placements {
		if p.ID == "locked" {
			t.Fatal("locked note must not be relocated")
		}
	}
	checkNoOverlap(t, placements, []grid.Rect{lockedRect})
}

func TestArrangeLargestFirst(t *testing.T) {
	notes := []Note{
		{ID: "small", Rect: grid.Rect{X: 0, Y: 0, W: 4, H: 4}},
		{ID: "big", Rect: grid.Rect{X: 0, Y: 20, W: 20, H: 20}},
	}

	placements := Arrange(context.Background(), notes, nil)

	// Descending area: the big note is placed first and gets the origin.
	if placements[0].ID != "big" || placements[0].Rect.X != 0 || placements[0].Rect.Y != 0 {
		t.Errorf("big note should be placed first at origin, got %+v", placements[0])
	}
	checkNoOverlap(t, placements, nil)
}

func TestArrangeIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ctx := context.Background()

	var notes []Note
	for i := 0; i < 25; i++ {
		notes = append(notes, Note{
			ID: "n" + strconv.Itoa(i),
			Rect: grid.Rect{
				X: rng.Intn(30), Y: rng.Intn(100),
				W: 1 + rng.Intn(18), H: 1 + rng.Intn(18),
			},
			Locked: i%7 == 0,
		})
	}

	first := Arrange(ctx, notes, nil)

	// Apply the first pass, then arrange again with no edits between.
	byID := make(map[string]grid.Rect, len(first))
	for _, p := range first {
		byID[p.ID] = p.Rect
	}
	arranged := make([]Note, len(notes))
	copy(arranged, notes)
	for i, n := range arranged {
		if r, ok := byID[n.ID]; ok {
			arranged[i].Rect = r
		}
	}

	second := Arrange(ctx, arranged, nil)

	if len(first) != len(second) {
		t.Fatalf("placement counts differ: %d vs %d", len(first), len(second))
	}
	secondByID := make(map[string]grid.Rect, len(second))
	for _, p := range second {
		secondByID[p.ID] = p.Rect
	}
	for _, p := range first {
		if secondByID[p.ID] != p.Rect {
			t.Errorf("note %s moved on second pass: %+v → %+v", p.ID, p.Rect, secondByID[p.ID])
		}
	}
}

func TestArrangeDeterministic(t *testing.T) {
	notes := []Note{
		{ID: "a", Rect: grid.Rect{X: 3, Y: 9, W: 10, H: 10}},
		{ID: "b", Rect: grid.Rect{X: 20, Y: 9, W: 10, H: 10}}, // same area, same y, larger x
		{ID: "c", Rect: grid.Rect{X: 0, Y: 0, W: 5, H: 5}, Locked: true},
	}

	ctx := context.Background()
	first := Arrange(ctx, notes, nil)

	// Shuffle input order; output must be identical.
	shuffled := []Note{notes[1], notes[2], notes[0]}
	second := Arrange(ctx, shuffled, nil)

	if len(first) != len(second) {
		t.Fatalf("placement counts differ")
	}
	firstByID := make(map[string]grid.Rect, len(first))
	for _, p := range first {
		firstByID[p.ID] = p.Rect
	}
	for _, p := range second {
		if firstByID[p.ID] != p.Rect {
			t.Errorf("note %s placement depends on input order: %+v vs %+v",
				p.ID, firstByID[p.ID], p.Rect)
		}
	}
}

func TestArrangeWithSizer(t *testing.T) {
	notes := []Note{
		{ID: "resized", Rect: grid.Rect{X: 0, Y: 0, W: 4, H: 4}, Content: "body"},
		{ID: "locked", Rect: grid.Rect{X: 30, Y: 0, W: 10, H: 10}, Locked: true, Content: "body"},
	}

	sizer := func(content string) grid.Size { return grid.Size{W: 12, H: 8} }
	placements := Arrange(context.Background(), notes, sizer)

	if len(placements) != 1 {
		t.Fatalf("got %d placements, want 1", len(placements))
	}
	if got := placements[0].Rect.Size(); got != (grid.Size{W: 12, H: 8}) {
		t.Errorf("unlocked note not resized by sizer: %+v", got)
	}
	// The locked note keeps its size even though the sizer disagrees.
	checkNoOverlap(t, placements, []grid.Rect{notes[1].Rect})
}

func TestArrangeClampsOversizedLockedNote(t *testing.T) {
	notes := []Note{
		{ID: "huge", Rect: grid.Rect{X: 0, Y: 0, W: grid.Cols * 2, H: 10}, Locked: true},
		{ID: "a", Rect: grid.Rect{X: 0, Y: 40, W: 8, H: 8}},
	}

	placements := Arrange(context.Background(), notes, nil)
	checkNoOverlap(t, placements, []grid.Rect{{X: 0, Y: 0, W: grid.Cols, H: 10}})
}

func TestArrangeRandomizedInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	ctx := context.Background()

	for trial := 0; trial < 20; trial++ {
		var notes []Note
		var lockedRects []grid.Rect
		for i := 0; i < 40; i++ {
			n := Note{
				ID: "n" + strconv.Itoa(i),
				Rect: grid.Rect{
					X: rng.Intn(28), Y: rng.Intn(200),
					W: 1 + rng.Intn(20), H: 1 + rng.Intn(20),
				},
				Locked: rng.Intn(5) == 0,
			}
			notes = append(notes, n)
			if n.Locked {
				lockedRects = append(lockedRects, n.Rect)
			}
		}

		placements := Arrange(ctx, notes, nil)

		unlockedCount := len(notes) - len(lockedRects)
		if len(placements) != unlockedCount {
			t.Fatalf("trial %d: %d placements for %d unlocked notes", trial, len(placements), unlockedCount)
		}
		checkNoOverlap(t, placements, lockedRects)
	}
}
