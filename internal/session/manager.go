// Package session provides server-side session management. Sessions hold
// the user's identity and the bearer token for the upstream API, are
// JSON-serialized into a key-value store with a TTL, and are referenced
// from the browser only by a signed session ID cookie.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrSessionNotFound is returned when a session is not found
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when a session has expired
	ErrSessionExpired = errors.New("session expired")
	// ErrInvalidSession is returned when session data is invalid
	ErrInvalidSession = errors.New("invalid session")
)

// Manager defines the interface for session management operations
type Manager interface {
	Create(ctx context.Context, sess *Session, maxAge int) (string, error)
	Get(ctx context.Context, sessionID string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, sessionID string) error
	Validate(ctx context.Context, sessionID string) (bool, error)
}

type manager struct {
	store Store
}

// NewManager creates a new session manager backed by the given store
func NewManager(store Store) Manager {
	return &manager{
		store: store,
	}
}

// Create assigns the session a new ID and lifetime and persists it.
// The caller fills in identity and token fields beforehand.
func (m *manager) Create(ctx context.Context, sess *Session, maxAge int) (string, error) {
	now := time.Now()
	sess.ID = uuid.New().String()
	sess.CreatedAt = now
	sess.ExpiresAt = now.Add(time.Duration(maxAge) * time.Second)

	if err := m.write(ctx, sess); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return sess.ID, nil
}

// Get retrieves a session by ID
func (m *manager) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, err := m.store.Get(ctx, storeKey(sessionID))
	if err != nil {
		return nil, ErrSessionNotFound
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, ErrInvalidSession
	}

	// Stores with native TTL should have evicted this already, but the
	// memory store expires lazily.
	if time.Now().After(sess.ExpiresAt) {
		m.store.Delete(ctx, storeKey(sessionID))
		return nil, ErrSessionExpired
	}

	return &sess, nil
}

// Save persists a mutated session under its existing ID, keeping the
// remaining lifetime. Login, token refresh and profile updates all
// mutate-and-save.
func (m *manager) Save(ctx context.Context, sess *Session) error {
	if sess.ID == "" {
		return ErrInvalidSession
	}
	if time.Now().After(sess.ExpiresAt) {
		return ErrSessionExpired
	}

	if err := m.write(ctx, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes a session
func (m *manager) Delete(ctx context.Context, sessionID string) error {
	return m.store.Delete(ctx, storeKey(sessionID))
}

// Validate checks if a session exists and is valid
func (m *manager) Validate(ctx context.Context, sessionID string) (bool, error) {
	sess, err := m.Get(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return sess != nil, nil
}

func (m *manager) write(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return m.store.Set(ctx, storeKey(sess.ID), string(data), time.Until(sess.ExpiresAt))
}

func storeKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}
