// Package note defines the sticky-note model and its validation rules.
//
// Validation here is the gate in front of every mutation: the store calls
// it before touching a row, and the HTTP handlers call it before opening a
// transaction. Overlap between rectangles is deliberately NOT validated —
// users may stack notes by hand; only placement search and auto-arrange
// guarantee overlap-free results.
package note

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/sqing33/stickyboard/pkg/errors"
	"github.com/sqing33/stickyboard/pkg/grid"
)

// Limits for user-supplied fields.
const (
	MaxTags       = 3
	MaxTagLen     = 64
	MaxContentLen = 10000
)

// Note is one sticky note on an owner's board.
type Note struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"-"`
	Tags      []string  `json:"tags"`
	Content   string    `json:"content"`
	Rect      grid.Rect `json:"grid"`
	Locked    bool      `json:"locked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PrimaryTag returns the first tag, the one stored on the notes row itself.
func (n *Note) PrimaryTag() string {
	if len(n.Tags) == 0 {
		return ""
	}
	return n.Tags[0]
}

// NewID returns a time-ordered, globally unique note ID (UUIDv7).
// Collision-free under concurrent creation per the identity-generator
// contract.
func NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", errors.Wrap(errors.CodePersistence, err, "generate note id")
	}
	return id.String(), nil
}

// Patch is a partial update to one note. Nil fields are left untouched;
// Tags is a full replacement when non-nil.
type Patch struct {
	Content *string    `json:"content,omitempty"`
	Tags    []string   `json:"tags,omitempty"`
	Locked  *bool      `json:"locked,omitempty"`
	Rect    *grid.Rect `json:"grid,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Content == nil && p.Tags == nil && p.Locked == nil && p.Rect == nil
}

// Validate checks every field the patch carries. Fields it does not carry
// are not checked; the stored values already passed validation.
func (p Patch) Validate() error {
	if p.IsEmpty() {
		return errors.New(errors.CodeValidation, "patch must change at least one field")
	}
	if p.Content != nil {
		if err := ValidateContent(*p.Content); err != nil {
			return err
		}
	}
	if p.Tags != nil {
		if err := ValidateTags(p.Tags); err != nil {
			return err
		}
	}
	if p.Rect != nil {
		if err := ValidateRect(*p.Rect); err != nil {
			return err
		}
	}
	return nil
}

// ValidateContent checks the 1–10000 character bound. Length is counted in
// runes, matching what the user sees.
func ValidateContent(content string) error {
	n := utf8.RuneCountInString(content)
	if n == 0 {
		return errors.New(errors.CodeValidation, "content must not be empty")
	}
	if n > MaxContentLen {
		return errors.New(errors.CodeValidation, "content exceeds %d characters (%d)", MaxContentLen, n)
	}
	return nil
}

// ValidateTags checks count, per-tag length, and uniqueness within the
// note. Order is preserved and significant: the first tag is primary.
func ValidateTags(tags []string) error {
	if len(tags) == 0 {
		return errors.New(errors.CodeValidation, "at least one tag is required")
	}
	if len(tags) > MaxTags {
		return errors.New(errors.CodeValidation, "at most %d tags allowed (%d)", MaxTags, len(tags))
	}
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return errors.New(errors.CodeValidation, "tags must not be blank")
		}
		if utf8.RuneCountInString(tag) > MaxTagLen {
			return errors.New(errors.CodeValidation, "tag %q exceeds %d characters", tag, MaxTagLen)
		}
		if _, dup := seen[tag]; dup {
			return errors.New(errors.CodeValidation, "duplicate tag %q", tag)
		}
		seen[tag] = struct{}{}
	}
	return nil
}

// ValidateRect checks grid bounds only. Overlap with other notes is
// permitted (deliberate stacking).
func ValidateRect(r grid.Rect) error {
	if !r.Valid() {
		return errors.New(errors.CodeValidation,
			"rect out of bounds: x=%d y=%d w=%d h=%d (cols=%d)", r.X, r.Y, r.W, r.H, grid.Cols)
	}
	return nil
}
