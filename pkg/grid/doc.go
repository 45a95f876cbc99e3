// Package grid defines the coordinate model for sticky-note boards.
//
// A board is a fixed-width grid of [Cols] columns with unbounded height;
// every note occupies an axis-aligned rectangle of whole grid units. The
// package is pure value semantics: no I/O, no state.
//
// [Collides] is the single overlap predicate in the repository. Placement
// search, auto-arrange, and every invariant test go through it; no other
// overlap logic may be introduced elsewhere.
package grid
