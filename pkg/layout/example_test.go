package layout_test

import (
	"context"
	"fmt"

	"github.com/sqing33/stickyboard/pkg/grid"
	"github.com/sqing33/stickyboard/pkg/layout"
)

// ExamplePlace shows first-fit placement filling a row left to right
// before moving down.
func ExamplePlace() {
	obstacles := []grid.Rect{
		{X: 0, Y: 0, W: 16, H: 12},
	}

	p := layout.Place(context.Background(), obstacles, grid.Size{W: 16, H: 12})
	fmt.Printf("x=%d y=%d\n", p.X, p.Y)
	// Output: x=16 y=0
}

// ExampleArrange repacks a board around a locked note.
func ExampleArrange() {
	notes := []layout.Note{
		{ID: "pinned", Rect: grid.Rect{X: 0, Y: 0, W: 24, H: 10}, Locked: true},
		{ID: "todo", Rect: grid.Rect{X: 5, Y: 40, W: 12, H: 10}},
		{ID: "idea", Rect: grid.Rect{X: 30, Y: 80, W: 24, H: 12}},
	}

	for _, p := range layout.Arrange(context.Background(), notes, nil) {
		fmt.Printf("%s → x=%d y=%d\n", p.ID, p.Rect.X, p.Rect.Y)
	}
	// Output:
	// idea → x=24 y=0
	// todo → x=0 y=10
}
