package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Identity is the player behind an issued token.
type Identity struct {
	PlayerID int64
	Username string
}

type session struct {
	identity  Identity
	expiresAt time.Time
}

// Store issues and resolves opaque bearer tokens. Tokens expire after
// the configured TTL; expired entries are swept lazily on Lookup and
// in bulk every sweepInterval.
type Store struct {
	mu        sync.RWMutex
	ttl       time.Duration
	sessions  map[string]session
	lastSweep time.Time
}

const sweepInterval = 10 * time.Minute

func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:       ttl,
		sessions:  make(map[string]session),
		lastSweep: time.Now(),
	}
}

// Issue mints a fresh token for the identity.
func (s *Store) Issue(id Identity) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = session{identity: id, expiresAt: time.Now().Add(s.ttl)}
	s.maybeSweepLocked()
	s.mu.Unlock()
	return token
}

// Lookup resolves a token to its identity. Expired or unknown tokens
// return false.
func (s *Store) Lookup(token string) (Identity, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return Identity{}, false
	}
	if time.Now().After(sess.expiresAt) {
		s.Revoke(token)
		return Identity{}, false
	}
	return sess.identity, true
}

func (s *Store) Revoke(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

func (s *Store) maybeSweepLocked() {
	now := time.Now()
	if now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	for token, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, token)
		}
	}
	s.lastSweep = now
}
