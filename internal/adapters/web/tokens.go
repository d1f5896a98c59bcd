package web

import (
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"

	"raidbot/internal/domain"
)

type editToken struct {
	eventID  uint
	issuedAt time.Time
}

// TokenStore holds the single-use dashboard edit tokens. It is a
// bounded cache with TTL semantics owned by this adapter: entries
// leave on use, on expiry check, or in the periodic sweep.
type TokenStore struct {
	tokens *xsync.Map[string, editToken]
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenStore(ttl time.Duration) *TokenStore {
	return &TokenStore{
		tokens: xsync.NewMap[string, editToken](),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue mints a fresh token for the event's formation.
func (s *TokenStore) Issue(eventID uint) string {
	token := uuid.NewString()
	s.tokens.Store(token, editToken{eventID: eventID, issuedAt: s.now()})
	return token
}

// Peek resolves a token without consuming it (the dashboard GET).
func (s *TokenStore) Peek(token string) (uint, error) {
	t, ok := s.tokens.Load(token)
	if !ok {
		return 0, domain.ErrTokenUnknown
	}
	if s.expired(t) {
		s.tokens.Delete(token)
		return 0, domain.ErrTokenExpired
	}
	return t.eventID, nil
}

// Consume resolves and invalidates a token in one step (the dispatch
// POST). LoadAndDelete makes single use atomic under concurrent posts.
func (s *TokenStore) Consume(token string) (uint, error) {
	t, ok := s.tokens.LoadAndDelete(token)
	if !ok {
		return 0, domain.ErrTokenUnknown
	}
	if s.expired(t) {
		return 0, domain.ErrTokenExpired
	}
	return t.eventID, nil
}

// Sweep drops expired tokens. Safe to run redundantly.
func (s *TokenStore) Sweep() {
	s.tokens.Range(func(token string, t editToken) bool {
		if s.expired(t) {
			s.tokens.Delete(token)
		}
		return true
	})
}

func (s *TokenStore) expired(t editToken) bool {
	return s.now().Sub(t.issuedAt) > s.ttl
}
