package layout

import (
	"context"
	"math/rand"
	"testing"

	"github.com/sqing33/stickyboard/pkg/grid"
)

func TestPlaceEmptyBoard(t *testing.T) {
	p := Place(context.Background(), nil, grid.Size{W: 10, H: 10})
	if p != (grid.Point{X: 0, Y: 0}) {
		t.Errorf("Place on empty board = %+v, want origin", p)
	}
}

func TestPlaceFillsRowLeftToRight(t *testing.T) {
	// Second 10×10 note lands beside the first, not below it: row 0 is
	// tried before row 10.
	obstacles := []grid.Rect{{X: 0, Y: 0, W: 10, H: 10}}

	p := Place(context.Background(), obstacles, grid.Size{W: 10, H: 10})
	if p != (grid.Point{X: 10, Y: 0}) {
		t.Errorf("Place = %+v, want {10 0}", p)
	}
}

func TestPlaceBelowFullWidthRow(t *testing.T) {
	// A full-width obstacle blocks every x at y=0; the next candidate row
	// is its bottom edge.
	obstacles := []grid.Rect{{X: 0, Y: 0, W: grid.Cols, H: 5}}

	p := Place(context.Background(), obstacles, grid.Size{W: 10, H: 5})
	if p != (grid.Point{X: 0, Y: 5}) {
		t.Errorf("Place = %+v, want {0 5}", p)
	}
}

func TestPlaceUsesGapBetweenObstacles(t *testing.T) {
	obstacles := []grid.Rect{
		{X: 0, Y: 0, W: 10, H: 10},
		{X: 20, Y: 0, W: 28, H: 10},
	}

	p := Place(context.Background(), obstacles, grid.Size{W: 10, H: 10})
	if p != (grid.Point{X: 10, Y: 0}) {
		t.Errorf("Place = %+v, want the 10-wide gap at {10 0}", p)
	}
}

func TestPlaceSkipsTooNarrowGap(t *testing.T) {
	obstacles := []grid.Rect{
		{X: 0, Y: 0, W: 10, H: 10},
		{X: 15, Y: 0, W: 33, H: 10},
	}

	p := Place(context.Background(), obstacles, grid.Size{W: 10, H: 10})
	if p != (grid.Point{X: 0, Y: 10}) {
		t.Errorf("Place = %+v, want next row {0 10}", p)
	}
}

func TestPlaceClampsOversizedRequest(t *testing.T) {
	p := Place(context.Background(), nil, grid.Size{W: grid.Cols * 2, H: 0})
	r := grid.Rect{X: p.X, Y: p.Y, W: grid.Cols, H: 1}
	if !r.Valid() {
		t.Errorf("clamped placement %+v invalid", r)
	}
}

func TestPlaceFullWidthGoesBelowEverything(t *testing.T) {
	// Stagger obstacles so every earlier edge row rejects a full-width
	// probe.
	obstacles := []grid.Rect{
		{X: 0, Y: 0, W: 10, H: 7},
		{X: 40, Y: 3, W: 8, H: 9},
	}

	p := Place(context.Background(), obstacles, grid.Size{W: grid.Cols, H: 4})
	if p != (grid.Point{X: 0, Y: 12}) {
		t.Errorf("Place = %+v, want fallback below everything {0 12}", p)
	}
}

func TestPlaceNeverOverlapsRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ctx := context.Background()

	for trial := 0; trial < 50; trial++ {
		var obstacles []grid.Rect
		for i := 0; i < 30; i++ {
			size := grid.Size{W: 1 + rng.Intn(20), H: 1 + rng.Intn(20)}
			p := Place(ctx, obstacles, size)
			r := grid.Rect{X: p.X, Y: p.Y, W: size.W, H: size.H}

			if !r.Valid() {
				t.Fatalf("trial %d note %d: invalid rect %+v", trial, i, r)
			}
			if grid.CollidesAny(r, obstacles) {
				t.Fatalf("trial %d note %d: %+v overlaps an obstacle", trial, i, r)
			}
			obstacles = append(obstacles, r)
		}
	}
}

func TestCandidateRowsSortedDeduped(t *testing.T) {
	obstacles := []grid.Rect{
		{X: 0, Y: 5, W: 4, H: 5},  // edges 5, 10
		{X: 8, Y: 0, W: 4, H: 5},  // edges 0, 5
		{X: 20, Y: 5, W: 4, H: 3}, // edges 5, 8
	}

	got := candidateRows(obstacles)
	want := []int{0, 5, 8, 10}
	if len(got) != len(want) {
		t.Fatalf("candidateRows = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidateRows = %v, want %v", got, want)
		}
	}
}
