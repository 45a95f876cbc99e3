package layout

import (
	"context"
	"sort"
	"time"

	"github.com/sqing33/stickyboard/pkg/grid"
	"github.com/sqing33/stickyboard/pkg/observability"
)

// Note is the slice of a sticky note the arranger needs.
type Note struct {
	ID      string
	Rect    grid.Rect
	Locked  bool
	Content string
}

// Placement is the new rectangle assigned to one unlocked note.
type Placement struct {
	ID   string
	Rect grid.Rect
}

// Sizer recomputes a note's footprint from its content for the live pixel
// environment. A nil Sizer keeps each note's current size.
type Sizer func(content string) grid.Size

// Arrange repacks a board and returns a placement for every unlocked note.
// Locked notes never move and never resize beyond a bounds clamp, but they
// are obstacles for everything else.
//
// Unlocked notes are placed in descending-area order, with (y, x) of the
// old position and then ID breaking ties, so the packing is fully
// deterministic.
// Arrange is idempotent: running it twice without edits reproduces the
// same rectangles.
func Arrange(ctx context.Context, notes []Note, sizer Sizer) []Placement {
	start := time.Now()

	var locked, unlocked []Note
	for _, n := range notes {
		s := grid.ClampSize(n.Rect.Size())
		n.Rect.W, n.Rect.H = s.W, s.H
		if n.Locked {
			locked = append(locked, n)
			continue
		}
		if sizer != nil {
			s = grid.ClampSize(sizer(n.Content))
			n.Rect.W, n.Rect.H = s.W, s.H
		}
		unlocked = append(unlocked, n)
	}

	// Locked notes seed the obstacle list in reading order. Their
	// positions never change; the order only fixes the obstacle slice.
	sort.Slice(locked, func(i, j int) bool {
		a, b := locked[i].Rect, locked[j].Rect
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	sort.Slice(unlocked, func(i, j int) bool {
		a, b := unlocked[i], unlocked[j]
		if aa, ba := a.Rect.Area(), b.Rect.Area(); aa != ba {
			return aa > ba
		}
		if a.Rect.Y != b.Rect.Y {
			return a.Rect.Y < b.Rect.Y
		}
		if a.Rect.X != b.Rect.X {
			return a.Rect.X < b.Rect.X
		}
		return a.ID < b.ID
	})

	obstacles := make([]grid.Rect, 0, len(notes))
	for _, n := range locked {
		obstacles = append(obstacles, n.Rect)
	}

	placements := make([]Placement, 0, len(unlocked))
	for _, n := range unlocked {
		p := Place(ctx, obstacles, n.Rect.Size())
		r := grid.Rect{X: p.X, Y: p.Y, W: n.Rect.W, H: n.Rect.H}
		placements = append(placements, Placement{ID: n.ID, Rect: r})
		obstacles = append(obstacles, r)
	}

	observability.Layout().OnArrange(ctx, len(notes), len(locked), time.Since(start))
	return placements
}
