// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/tomtom215/learnquest/internal/logging"
)

// Listener is called after the session becomes authenticated (true) or
// unauthenticated (false). Listeners run synchronously in registration order.
type Listener func(authenticated bool)

// Manager is the process-wide session: it caches the tokens in memory,
// persists them through a Store and notifies listeners on sign-in and
// sign-out. It implements apiclient.TokenSource.
type Manager struct {
	store Store
	now   func() time.Time

	mu     sync.RWMutex
	tokens Tokens

	listenerMu sync.Mutex
	listeners  map[uint64]Listener
	nextID     uint64
}

// NewManager creates a manager over store.
func NewManager(store Store) *Manager {
	return &Manager{
		store:     store,
		now:       time.Now,
		listeners: make(map[uint64]Listener),
	}
}

// Restore loads a previously persisted session. A missing session is not an error.
func (m *Manager) Restore(ctx context.Context) error {
	tokens, err := m.store.Load(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	m.mu.Lock()
	m.tokens = tokens
	m.mu.Unlock()

	if tokens.AccessToken != "" {
		logging.Info().Str("component", "session").Msg("Restored persisted session")
		m.notify(true)
	}
	return nil
}

// AccessToken returns the current access token, or "".
func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokens.AccessToken
}

// RefreshToken returns the current refresh token, or "".
func (m *Manager) RefreshToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokens.RefreshToken
}

// Tokens returns a copy of the current session.
func (m *Manager) Tokens() Tokens {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokens
}

// IsAuthenticated reports whether an access token is held.
func (m *Manager) IsAuthenticated() bool {
	return m.AccessToken() != ""
}

// Set stores a new token pair. An empty refresh token keeps the previous one.
// Listeners are notified only on the unauthenticated to authenticated edge.
func (m *Manager) Set(ctx context.Context, access, refresh string) error {
	m.mu.Lock()
	wasAuthenticated := m.tokens.AccessToken != ""
	if refresh == "" {
		refresh = m.tokens.RefreshToken
	}
	m.tokens = Tokens{AccessToken: access, RefreshToken: refresh, SavedAt: m.now()}
	tokens := m.tokens
	m.mu.Unlock()

	err := m.store.Save(ctx, tokens)
	if err != nil {
		err = fmt.Errorf("persist session: %w", err)
	}
	if !wasAuthenticated && access != "" {
		m.notify(true)
	}
	return err
}

// Clear drops the session in memory and in the store. The in-memory session
// is cleared even when the store fails, so the process never stays signed in.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	wasAuthenticated := m.tokens.AccessToken != ""
	m.tokens = Tokens{}
	m.mu.Unlock()

	err := m.store.Clear(ctx)
	if err != nil {
		err = fmt.Errorf("clear session: %w", err)
	}
	if wasAuthenticated {
		m.notify(false)
	}
	return err
}

// ExpiresAt returns the exp claim of the access token.
func (m *Manager) ExpiresAt() (time.Time, bool) {
	return ExpiresAt(m.AccessToken())
}

// NeedsRefresh reports whether the access token expires within window.
// Tokens without a readable exp claim never need a proactive refresh.
func (m *Manager) NeedsRefresh(window time.Duration) bool {
	exp, ok := m.ExpiresAt()
	if !ok {
		return false
	}
	return m.now().Add(window).After(exp)
}

// OnChange registers l and returns a function that removes it.
func (m *Manager) OnChange(l Listener) (cancel func()) {
	m.listenerMu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = l
	m.listenerMu.Unlock()

	return func() {
		m.listenerMu.Lock()
		delete(m.listeners, id)
		m.listenerMu.Unlock()
	}
}

func (m *Manager) notify(authenticated bool) {
	m.listenerMu.Lock()
	ids := make([]uint64, 0, len(m.listeners))
	for id := range m.listeners {
		ids = append(ids, id)
	}
	m.listenerMu.Unlock()

	// Map order is random; registration order is id order.
	slices.Sort(ids)
	for _, id := range ids {
		m.listenerMu.Lock()
		l, ok := m.listeners[id]
		m.listenerMu.Unlock()
		if ok {
			l(authenticated)
		}
	}
}
