package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sqing33/stickyboard/pkg/note"
)

// ReadJSON decodes a board snapshot from r.
//
// Every note is validated: tags (1-3, unique, each non-blank and within
// the length limit), content (1-10000 characters), and rectangle bounds.
// Any invalid entry rejects the whole snapshot, so an import either loads
// completely or not at all. Errors name the offending note by index.
//
// The returned notes are independent of r; ReadJSON does not close r.
func ReadJSON(r io.Reader) ([]note.Note, error) {
	var data boardFile
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	for i, n := range data.Notes {
		if err := note.ValidateTags(n.Tags); err != nil {
			return nil, fmt.Errorf("note %d: %w", i, err)
		}
		if err := note.ValidateContent(n.Content); err != nil {
			return nil, fmt.Errorf("note %d: %w", i, err)
		}
		if err := note.ValidateRect(n.Rect); err != nil {
			return nil, fmt.Errorf("note %d: %w", i, err)
		}
	}
	return data.Notes, nil
}

// ImportJSON reads a board snapshot from a JSON file at path.
func ImportJSON(path string) ([]note.Note, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	notes, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	return notes, nil
}
