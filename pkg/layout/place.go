package layout

import (
	"context"
	"sort"

	"github.com/sqing33/stickyboard/pkg/grid"
	"github.com/sqing33/stickyboard/pkg/observability"
)

// Place returns the first-fit position for a rectangle of the given size
// among the obstacles. The size is clamped to valid bounds before the
// search, so the result is always a valid, non-colliding rectangle.
//
// Candidate rows are only the obstacle edges (plus row 0): any other row is
// dominated by the nearest edge above it, so scanning them would never find
// an earlier fit. Within a row, columns are scanned left to right. If no
// candidate fits, the rectangle is appended below everything, which always
// succeeds because the clamped width fits the board.
func Place(ctx context.Context, obstacles []grid.Rect, size grid.Size) grid.Point {
	observability.Layout().OnPlace(ctx, len(obstacles))

	size = grid.ClampSize(size)

	for _, y := range candidateRows(obstacles) {
		for x := 0; x <= grid.Cols-size.W; x++ {
			probe := grid.Rect{X: x, Y: y, W: size.W, H: size.H}
			if !grid.CollidesAny(probe, obstacles) {
				return grid.Point{X: x, Y: y}
			}
		}
	}

	return grid.Point{X: 0, Y: maxBottom(obstacles)}
}

// candidateRows returns 0 plus every obstacle's top and bottom edge,
// ascending and deduplicated.
func candidateRows(obstacles []grid.Rect) []int {
	rows := make([]int, 0, 2*len(obstacles)+1)
	rows = append(rows, 0)
	for _, o := range obstacles {
		rows = append(rows, o.Y, o.Bottom())
	}
	sort.Ints(rows)

	dedup := rows[:1]
	for _, y := range rows[1:] {
		if y != dedup[len(dedup)-1] {
			dedup = append(dedup, y)
		}
	}
	return dedup
}

// maxBottom returns the first row below every obstacle.
func maxBottom(obstacles []grid.Rect) int {
	bottom := 0
	for _, o := range obstacles {
		if b := o.Bottom(); b > bottom {
			bottom = b
		}
	}
	return bottom
}
