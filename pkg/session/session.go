// Package session resolves authenticated board owners.
//
// Session issuance (login, OAuth, whatever the site uses) is an external
// collaborator; this package only defines how the engine looks a session
// up and which owner it maps to. Backends:
//   - memory: in-process storage for development and tests
//   - file: per-user storage for single-instance deployments
//   - redis: shared storage for multi-instance deployments
//
// Every mutation in the engine starts by resolving the caller's session;
// an absent or expired session is UNAUTHENTICATED before anything else
// happens.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"
)

// Session stores one authenticated user's data.
type Session struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (may be a no-op for backends with
	// native expiry).
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// DefaultTTL is the default session duration.
const DefaultTTL = 24 * time.Hour

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// New creates a session for the given owner.
func New(ownerID, name string, ttl time.Duration) (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Session{
		ID:        id,
		OwnerID:   ownerID,
		Name:      name,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}

// MockLocal creates a fixed session for local development without
// authentication (serve --no-auth). Every request resolves to the same
// owner.
func MockLocal() *Session {
	now := time.Now()
	return &Session{
		ID:        "local-session",
		OwnerID:   "local",
		Name:      "Local User",
		ExpiresAt: now.Add(365 * 24 * time.Hour),
		CreatedAt: now,
	}
}
