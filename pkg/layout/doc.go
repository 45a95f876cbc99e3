// Package layout positions sticky notes on the 48-column board.
//
// Two operations, both pure functions of their inputs:
//
//   - [Place] finds the first-fit position for one new rectangle among
//     existing obstacles, scanning top-to-bottom then left-to-right.
//   - [Arrange] repacks a whole board: locked notes stay put and act as
//     obstacles, unlocked notes are re-placed in descending-area order to
//     close gaps.
//
// Neither function holds state between calls, so both are deterministic:
// the same notes, sizes, and lock flags always produce the same packing,
// and arranging an already-arranged board reproduces it exactly.
package layout
