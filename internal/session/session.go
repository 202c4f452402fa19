// Package session owns the client's logged-in state: the public account record
// and the tokens from the last login, held in memory and mirrored to a Store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"mellow/internal/model"
)

// Key is the fixed storage key of the active session.
const Key = "user"

// ErrNoSession is returned by mutations when nobody is logged in.
var ErrNoSession = errors.New("not logged in")

// Session is the persisted login state.
type Session struct {
	User         model.PublicUser `json:"user"`
	AccessToken  string           `json:"access_token,omitempty"`
	RefreshToken string           `json:"refresh_token,omitempty"`
}

func (s Session) clone() Session {
	if s.User.ProfileImage != nil {
		image := *s.User.ProfileImage
		s.User.ProfileImage = &image
	}
	return s
}

// Manager is the single owner of the session. It is safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	store   Store
	current *Session
}

// NewManager returns a manager persisting through store. Call Load before use.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Load restores the session saved by a previous run. A missing record is not an error.
func (m *Manager) Load(ctx context.Context) error {
	data, err := m.store.Load(ctx, Key)
	if errors.Is(err, ErrNotFound) {
		m.mu.Lock()
		m.current = nil
		m.mu.Unlock()
		return nil
	}
	if err != nil {
		return err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode session: %w", err)
	}

	m.mu.Lock()
	m.current = &s
	m.mu.Unlock()
	return nil
}

// Current returns a copy of the active session.
func (m *Manager) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Session{}, false
	}
	return m.current.clone(), true
}

// Set persists s and makes it the active session.
func (m *Manager) Set(ctx context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked(ctx, s.clone())
}

// UpdateProfileImage records a server-acknowledged avatar change. Empty clears it.
func (m *Manager) UpdateProfileImage(ctx context.Context, image string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ErrNoSession
	}

	next := m.current.clone()
	next.User.ProfileImage = nil
	if image != "" {
		next.User.ProfileImage = &image
	}
	return m.saveLocked(ctx, next)
}

// Clear removes the session from memory and storage.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Delete(ctx, Key); err != nil {
		return err
	}
	m.current = nil
	return nil
}

func (m *Manager) saveLocked(ctx context.Context, s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := m.store.Save(ctx, Key, data); err != nil {
		return err
	}
	m.current = &s
	return nil
}
