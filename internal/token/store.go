package token

import (
	"sync"

	"github.com/google/uuid"
)

// DefaultTTLSeconds mirrors policy.DefaultTTL; kept independent so this
// package has no dependency on the policy package.
const DefaultTTLSeconds = 300

// nowFunc returns the current wall-clock time in milliseconds. Tests
// override it to exercise TTL boundaries deterministically.
type nowFunc func() int64

// Store is the mutex-guarded, in-memory token-id-to-token mapping. It
// is safe for concurrent use, though the core's own contract (spec §5)
// only requires safety at call boundaries, not linearizable issue/get.
type Store struct {
	mu     sync.Mutex
	tokens map[string]ScopedToken
	now    nowFunc
}

// New returns an empty Store using the real wall clock.
func New() *Store {
	return &Store{
		tokens: make(map[string]ScopedToken),
		now:    defaultNow,
	}
}

// newWithClock is used by tests to inject a deterministic clock.
func newWithClock(now nowFunc) *Store {
	return &Store{
		tokens: make(map[string]ScopedToken),
		now:    now,
	}
}

// Issue stamps IssuedAt/ExpiresAt from ttlSeconds and stores a fresh
// UUID-identified token. TTLSeconds is taken literally, including
// zero: callers that want the policy default of 300s must resolve it
// before calling (see policy.Policy.EffectiveTTL), since 0 here means
// "expire immediately," not "unset."
func (s *Store) Issue(params IssueParams) ScopedToken {
	s.mu.Lock()
	defer s.mu.Unlock()

	issuedAt := s.now()
	tok := ScopedToken{
		TokenID:         uuid.New().String(),
		CredentialName:  params.CredentialName,
		CredentialValue: params.CredentialValue,
		PolicyName:      params.PolicyName,
		AgentID:         params.AgentID,
		SkillID:         params.SkillID,
		Scope:           params.Scope,
		IssuedAt:        issuedAt,
		ExpiresAt:       issuedAt + int64(params.TTLSeconds)*1000,
		Used:            false,
	}
	s.tokens[tok.TokenID] = tok
	return tok
}

// Get returns the token, or false if it does not exist or has
// expired. An expired token is purged lazily on this call.
func (s *Store) Get(tokenID string) (ScopedToken, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, ok := s.tokens[tokenID]
	if !ok {
		return ScopedToken{}, false
	}
	if s.now() >= tok.ExpiresAt {
		delete(s.tokens, tokenID)
		return ScopedToken{}, false
	}
	return tok, true
}

// MarkUsed sets used = true and reports whether the token still
// exists (and had not expired). Idempotent: calling it again on an
// already-used, still-live token returns true.
func (s *Store) MarkUsed(tokenID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, ok := s.tokens[tokenID]
	if !ok {
		return false
	}
	if s.now() >= tok.ExpiresAt {
		delete(s.tokens, tokenID)
		return false
	}
	tok.Used = true
	s.tokens[tokenID] = tok
	return true
}

// PurgeExpired removes every token whose expiry has passed and
// reports how many were removed. Idempotent.
func (s *Store) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	count := 0
	for id, tok := range s.tokens {
		if now >= tok.ExpiresAt {
			delete(s.tokens, id)
			count++
		}
	}
	return count
}

// Size reports the number of tokens currently held, expired or not.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}
