// Package pkg provides the core libraries for the Stickyboard note engine.
//
// # Overview
//
// Stickyboard keeps per-user boards of sticky notes on a fixed-width grid,
// with content-driven sizing, collision-free placement, and an auto-arrange
// pass that packs notes upward. The pkg directory is organized into four
// main areas:
//
//  1. Geometry and placement ([grid], [layout], [estimate], [measure])
//  2. Domain model and validation ([note], [errors])
//  3. Server side ([store], [server], [session], [cache], [observability])
//  4. Client side ([board], [io])
//
// # Architecture
//
// The typical data flow through Stickyboard:
//
//	Note content + tags
//	         ↓
//	    [estimate] package (content → grid size, cached)
//	         ↓
//	    [layout] package (first-fit placement, auto-arrange)
//	         ↓
//	    [store] package (row-locked persistence, memory or Postgres)
//	         ↓
//	    [server] package (HTTP API with session auth)
//	         ↓
//	    [board] package (optimistic client sync)
//
// # Quick Start
//
// Create a note on an in-memory board and arrange it:
//
//	import (
//	    "context"
//	    "github.com/sqing33/stickyboard/pkg/estimate"
//	    "github.com/sqing33/stickyboard/pkg/measure"
//	    "github.com/sqing33/stickyboard/pkg/store"
//	)
//
//	ctx := context.Background()
//
//	// 1. Size the note from its content
//	est := estimate.New(measure.DefaultFont, nil)
//	size := est.Size(ctx, "Buy milk", estimate.Env{CellPx: 24, InsetPx: 4})
//
//	// 2. Create it; the store picks a collision-free position
//	s := store.NewMemoryStore()
//	n, _ := s.Create(ctx, "alice", store.CreateInput{
//	    Tags:    []string{"todo"},
//	    Content: "Buy milk",
//	    Size:    size,
//	})
//
// # Main Packages
//
// ## Geometry and Placement
//
// [grid] - The 48-column coordinate system: rectangles, bounds checks, and
// the single AABB collision predicate every other package defers to.
//
// [layout] - First-fit placement over candidate rows and the deterministic
// auto-arrange ordering (locked notes become fixed obstacles).
//
// [estimate] - Content-driven size estimation scored by a compactness
// heuristic, with cached measurements keyed by content hash.
//
// [measure] - Text measurement environment backed by font metrics.
//
// ## Domain Model
//
// [note] - The sticky-note model, patch semantics, UUIDv7 identity, and
// the validation gate in front of every mutation.
//
// [errors] - The engine's error taxonomy (VALIDATION, NOT_FOUND,
// UNAUTHENTICATED, SCHEMA_OUTDATED, CONFLICT, PERSISTENCE_FAILURE) with
// HTTP status mapping in both directions.
//
// ## Server Side
//
// [store] - Board persistence with per-note row locking. MemoryStore for
// tests and single-process use, PostgresStore (pgx + golang-migrate) for
// production, including degraded reads against an outdated schema.
//
// [server] - The chi HTTP API: bearer-session auth, JSON error envelopes,
// and the notes CRUD surface.
//
// [session] - Session stores with memory, file, and Redis backends.
//
// [cache] - Estimation cache backends (file, Redis, null) sharing one
// content-hash key scheme.
//
// [observability] - Commit, rollback, and degraded-read hooks.
//
// ## Client Side
//
// [board] - Client-side board state with optimistic rect commits, revert
// on failure, rate-limited failure notices, and best-effort arrange.
//
// [io] - Board snapshot export/import as validated JSON.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/layout/...             # Specific package
//	go test -tags integration ./pkg/...  # Include Postgres integration tests
//
// [grid]: https://pkg.go.dev/github.com/sqing33/stickyboard/pkg/grid
// [layout]: https://pkg.go.dev/github.com/sqing33/stickyboard/pkg/layout
// [estimate]: https://pkg.go.dev/github.com/sqing33/stickyboard/pkg/estimate
// [measure]: https://pkg.go.dev/github.com/sqing33/stickyboard/pkg/measure
// [note]: https://pkg.go.dev/github.com/sqing33/stickyboard/pkg/note
// [errors]: https://pkg.go.dev/github.com/sqing33/stickyboard/pkg/errors
// [store]: https://pkg.go.dev/github.com/sqing33/stickyboard/pkg/store
// [server]: https://pkg.go.dev/github.com/sqing33/stickyboard/pkg/server
// [session]: https://pkg.go.dev/github.com/sqing33/stickyboard/pkg/session
// [cache]: https://pkg.go.dev/github.com/sqing33/stickyboard/pkg/cache
// [observability]: https://pkg.go.dev/github.com/sqing33/stickyboard/pkg/observability
// [board]: https://pkg.go.dev/github.com/sqing33/stickyboard/pkg/board
// [io]: https://pkg.go.dev/github.com/sqing33/stickyboard/pkg/io
package pkg
