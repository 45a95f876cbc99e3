package note

import (
	"strings"
	"testing"

	"github.com/sqing33/stickyboard/pkg/errors"
	"github.com/sqing33/stickyboard/pkg/grid"
)

func TestNewIDTimeOrdered(t *testing.T) {
	a, err := NewID()
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	b, err := NewID()
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}

	if a == b {
		t.Fatal("consecutive IDs must differ")
	}
	// UUIDv7 sorts by creation time lexicographically.
	if a >= b {
		t.Errorf("IDs not time-ordered: %s >= %s", a, b)
	}
}

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"Single", "a", false},
		{"Typical", "buy milk\nand eggs", false},
		{"MaxRunes", strings.Repeat("x", MaxContentLen), false},
		{"MaxCJKRunes", strings.Repeat("汉", MaxContentLen), false},
		{"Empty", "", true},
		{"TooLong", strings.Repeat("x", MaxContentLen+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContent(tt.content)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateContent: err=%v, wantErr=%v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.CodeValidation) {
				t.Errorf("want VALIDATION code, got %v", err)
			}
		})
	}
}

func TestValidateTags(t *testing.T) {
	tests := []struct {
		name    string
		tags    []string
		wantErr bool
	}{
		{"One", []string{"work"}, false},
		{"Three", []string{"work", "urgent", "q3"}, false},
		{"MaxLen", []string{strings.Repeat("a", MaxTagLen)}, false},
		{"None", nil, true},
		{"Four", []string{"a", "b", "c", "d"}, true},
		{"Blank", []string{"work", "  "}, true},
		{"TooLong", []string{strings.Repeat("a", MaxTagLen+1)}, true},
		{"Duplicate", []string{"work", "work"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTags(tt.tags)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTags(%v): err=%v, wantErr=%v", tt.tags, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRect(t *testing.T) {
	if err := ValidateRect(grid.Rect{X: 0, Y: 0, W: 10, H: 10}); err != nil {
		t.Errorf("valid rect rejected: %v", err)
	}

	err := ValidateRect(grid.Rect{X: 40, Y: 0, W: 9, H: 4})
	if !errors.Is(err, errors.CodeValidation) {
		t.Errorf("x+w>cols should be VALIDATION, got %v", err)
	}
}

func TestPatchValidate(t *testing.T) {
	content := "hello"
	locked := true
	bad := ""
	in := grid.Rect{X: 0, Y: 0, W: 4, H: 4}
	out := grid.Rect{X: 44, Y: 0, W: 9, H: 4}

	tests := []struct {
		name    string
		p       Patch
		wantErr bool
	}{
		{"Empty", Patch{}, true},
		{"LockOnly", Patch{Locked: &locked}, false},
		{"Full", Patch{Content: &content, Tags: []string{"t"}, Rect: &in}, false},
		{"BadContent", Patch{Content: &bad}, true},
		{"BadRect", Patch{Rect: &out}, true},
		{"BadTags", Patch{Tags: []string{}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate: err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestPrimaryTag(t *testing.T) {
	n := Note{Tags: []string{"first", "second"}}
	if got := n.PrimaryTag(); got != "first" {
		t.Errorf("PrimaryTag = %q, want %q", got, "first")
	}
	empty := Note{}
	if got := empty.PrimaryTag(); got != "" {
		t.Errorf("PrimaryTag on no tags = %q, want empty", got)
	}
}
