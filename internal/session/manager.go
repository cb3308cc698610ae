package session

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Manager owns the pending-state map, keyed by user id. Expiry is
// wall-clock and checked on access; there is no background sweep, so
// the cache janitor stays disabled and entries carry their own
// ExpiresAt.
type Manager struct {
	ttl   time.Duration
	now   func() time.Time
	cache *cache.Cache
}

// NewManager creates a Manager with the given state TTL.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		ttl:   ttl,
		now:   time.Now,
		cache: cache.New(cache.NoExpiration, 0),
	}
}

// TTL returns the configured state lifetime.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Put stores a state for its user and starts its expiry clock.
// Replaces any previous state for that user.
func (m *Manager) Put(st *State) {
	st.ExpiresAt = m.now().Add(m.ttl)
	m.cache.Set(st.UserID, st, cache.NoExpiration)
}

// Get returns the user's pending state. A state past its ExpiresAt is
// discarded and reported via expired, so the caller can tell the user
// to start over.
func (m *Manager) Get(userID string) (st *State, expired bool) {
	v, ok := m.cache.Get(userID)
	if !ok {
		return nil, false
	}
	st = v.(*State)
	if m.now().After(st.ExpiresAt) {
		m.cache.Delete(userID)
		return nil, true
	}
	return st, false
}

// Extend restarts the expiry clock of an existing state. Used when the
// state advances to a new phase; re-prompts within a phase do not
// extend.
func (m *Manager) Extend(st *State) {
	st.ExpiresAt = m.now().Add(m.ttl)
}

// Delete removes the user's pending state, if any.
func (m *Manager) Delete(userID string) {
	m.cache.Delete(userID)
}
