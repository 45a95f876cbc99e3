// Package io provides JSON import and export for note boards.
//
// The format is a plain snapshot of one owner's board:
//
//	{
//	  "notes": [
//	    {"tags": ["idea"], "content": "hello", "grid": {"x": 0, "y": 0, "w": 16, "h": 16}, "locked": false}
//	  ]
//	}
//
// Export writes every note with its rectangle, lock flag, and timestamps.
// Import validates each entry (tags, content, rectangle bounds) before
// returning, so a partially invalid file is rejected as a whole rather
// than half-loaded. IDs and timestamps are ignored on import; the target
// board assigns fresh ones.
package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sqing33/stickyboard/pkg/note"
)

// boardFile is the on-disk layout.
type boardFile struct {
	Notes []note.Note `json:"notes"`
}

// WriteJSON encodes the notes as an indented JSON snapshot.
// The output can be re-imported with [ReadJSON] for backup and restore.
func WriteJSON(notes []note.Note, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(boardFile{Notes: notes}); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a board snapshot to a file at path.
func ExportJSON(notes []note.Note, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := WriteJSON(notes, f); err != nil {
		f.Close()
		return fmt.Errorf("export %s: %w", path, err)
	}
	return f.Close()
}
