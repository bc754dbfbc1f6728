package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/dayoung-oh/lunchspin/internal/domain"
)

const sessionKey = "lunchspin-session"

// ErrNoSession is returned when no snapshot has been persisted yet.
var ErrNoSession = errors.New("no persisted session")

// SessionSnapshot is the persisted subset of the session state. Candidate
// lists and cache entries are rebuilt through discovery, never persisted here.
type SessionSnapshot struct {
	Winner             *domain.Candidate `json:"winner,omitempty"`
	RadiusMeters       int               `json:"radius_meters"`
	Zoomed             bool              `json:"zoomed"`
	Center             domain.Location   `json:"center"`
	SelectedCategories []string          `json:"selected_categories"`
	SavedAt            time.Time         `json:"saved_at"`
}

// SessionStore persists the session snapshot under a fixed session name,
// in a namespace independent from the result cache.
type SessionStore struct {
	db *DB
}

// NewSessionStore creates a session store backed by db.
func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

// Load reads the persisted snapshot.
func (s *SessionStore) Load(_ context.Context) (SessionSnapshot, error) {
	var snapshot SessionSnapshot
	err := s.db.Store().Get(sessionKey, &snapshot)
	if err == badgerhold.ErrNotFound {
		return SessionSnapshot{}, ErrNoSession
	}
	if err != nil {
		return SessionSnapshot{}, fmt.Errorf("load session snapshot: %w", err)
	}
	return snapshot, nil
}

// Save writes the snapshot, replacing any previous one.
func (s *SessionStore) Save(_ context.Context, snapshot SessionSnapshot) error {
	snapshot.SavedAt = time.Now()
	if err := s.db.Store().Upsert(sessionKey, &snapshot); err != nil {
		return fmt.Errorf("save session snapshot: %w", err)
	}
	return nil
}

// Clear removes the persisted snapshot.
func (s *SessionStore) Clear(_ context.Context) error {
	err := s.db.Store().Delete(sessionKey, SessionSnapshot{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("clear session snapshot: %w", err)
	}
	return nil
}
