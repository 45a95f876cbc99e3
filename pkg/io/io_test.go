package io

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sqing33/stickyboard/pkg/grid"
	"github.com/sqing33/stickyboard/pkg/note"
)

func sampleNotes() []note.Note {
	return []note.Note{
		{
			ID:      "n1",
			Tags:    []string{"idea"},
			Content: "hello",
			Rect:    grid.Rect{X: 0, Y: 0, W: 16, H: 16},
		},
		{
			ID:      "n2",
			Tags:    []string{"todo", "urgent"},
			Content: "second",
			Rect:    grid.Rect{X: 16, Y: 0, W: 10, H: 10},
			Locked:  true,
		},
	}
}

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(sampleNotes(), &buf); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d notes, want 2", len(got))
	}
	if got[0].Content != "hello" || got[0].Rect != (grid.Rect{X: 0, Y: 0, W: 16, H: 16}) {
		t.Errorf("first note = %+v", got[0])
	}
	if !got[1].Locked {
		t.Error("lock flag lost in round trip")
	}
	if len(got[1].Tags) != 2 || got[1].Tags[0] != "todo" {
		t.Errorf("tags = %v, want [todo urgent]", got[1].Tags)
	}
}

func TestImportExportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")

	if err := ExportJSON(sampleNotes(), path); err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}
	got, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d notes, want 2", len(got))
	}
}

func TestExportJSONUnwritablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "board.json")
	if err := ExportJSON(sampleNotes(), path); err == nil {
		t.Fatal("ExportJSON() succeeded, want error for missing directory")
	}
}

func TestReadJSONRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{
			name: "malformed",
			json: `{"notes": [`,
			want: "decode",
		},
		{
			name: "no tags",
			json: `{"notes": [{"tags": [], "content": "x", "grid": {"x":0,"y":0,"w":8,"h":8}}]}`,
			want: "note 0",
		},
		{
			name: "empty content",
			json: `{"notes": [{"tags": ["a"], "content": "", "grid": {"x":0,"y":0,"w":8,"h":8}}]}`,
			want: "note 0",
		},
		{
			name: "rect out of bounds",
			json: `{"notes": [{"tags": ["a"], "content": "x", "grid": {"x":40,"y":0,"w":10,"h":5}}]}`,
			want: "note 0",
		},
		{
			name: "second note invalid",
			json: `{"notes": [
				{"tags": ["a"], "content": "ok", "grid": {"x":0,"y":0,"w":8,"h":8}},
				{"tags": ["b"], "content": "x", "grid": {"x":0,"y":0,"w":0,"h":8}}
			]}`,
			want: "note 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.json))
			if err == nil {
				t.Fatal("ReadJSON() error = nil, want failure")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
