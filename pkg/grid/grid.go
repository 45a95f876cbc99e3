package grid

// Cols is the fixed column count of every board. The board grows downward
// without bound; only the horizontal extent is limited.
const Cols = 48

// Rect is a note's footprint in grid units.
type Rect struct {
	X int `json:"x" toml:"x"`
	Y int `json:"y" toml:"y"`
	W int `json:"w" toml:"w"`
	H int `json:"h" toml:"h"`
}

// Size is a width/height pair in grid units.
type Size struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Point is a grid position.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Valid reports whether r lies inside the board: non-negative origin, at
// least one unit in each dimension, and right edge within [Cols].
func (r Rect) Valid() bool {
	return r.X >= 0 && r.Y >= 0 && r.W >= 1 && r.H >= 1 && r.X+r.W <= Cols
}

// Size returns the width/height of r.
func (r Rect) Size() Size { return Size{W: r.W, H: r.H} }

// Bottom returns the first row below r.
func (r Rect) Bottom() int { return r.Y + r.H }

// Right returns the first column right of r.
func (r Rect) Right() int { return r.X + r.W }

// Area returns the number of grid units covered by r.
func (r Rect) Area() int { return r.W * r.H }

// Area returns the number of grid units covered by s.
func (s Size) Area() int { return s.W * s.H }

// Collides reports whether a and b share at least one grid unit. Rectangles
// that merely touch edges do not collide.
func Collides(a, b Rect) bool {
	return !(a.X+a.W <= b.X || a.X >= b.X+b.W || a.Y+a.H <= b.Y || a.Y >= b.Y+b.H)
}

// CollidesAny reports whether r overlaps any of the obstacles.
func CollidesAny(r Rect, obstacles []Rect) bool {
	for _, o := range obstacles {
		if Collides(r, o) {
			return true
		}
	}
	return false
}

// ClampSize forces s into the valid range: at least 1×1 and no wider than
// the board.
func ClampSize(s Size) Size {
	if s.W < 1 {
		s.W = 1
	}
	if s.W > Cols {
		s.W = Cols
	}
	if s.H < 1 {
		s.H = 1
	}
	return s
}

// ClampRect forces r into the board horizontally and to non-negative rows,
// preserving its size where possible.
func ClampRect(r Rect) Rect {
	s := ClampSize(r.Size())
	r.W, r.H = s.W, s.H
	if r.X < 0 {
		r.X = 0
	}
	if r.X+r.W > Cols {
		r.X = Cols - r.W
	}
	if r.Y < 0 {
		r.Y = 0
	}
	return r
}
