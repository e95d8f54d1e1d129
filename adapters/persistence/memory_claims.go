package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/khoahotran/portfolio-onboarding/internal/application/service"
)

type claim struct {
	token     string
	expiresAt time.Time
}

// MemoryClaimStore is the single-process stand-in for the Redis claim store.
type MemoryClaimStore struct {
	mu     sync.Mutex
	claims map[string]claim
	now    func() time.Time
}

func NewMemoryClaimStore() *MemoryClaimStore {
	return &MemoryClaimStore{claims: make(map[string]claim), now: time.Now}
}

var _ service.ClaimStore = (*MemoryClaimStore)(nil)

func (s *MemoryClaimStore) Claim(ctx context.Context, username, token string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if c, ok := s.claims[username]; ok && now.Before(c.expiresAt) {
		return c.token == token, nil
	}
	s.claims[username] = claim{token: token, expiresAt: now.Add(ttl)}
	return true, nil
}

func (s *MemoryClaimStore) Release(ctx context.Context, username, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.claims[username]; ok && c.token == token {
		delete(s.claims, username)
	}
	return nil
}

func (s *MemoryClaimStore) Claimed(ctx context.Context, names []string) (map[string]bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	out := make(map[string]bool)
	for _, n := range names {
		if c, ok := s.claims[n]; ok && now.Before(c.expiresAt) {
			out[n] = true
		}
	}
	return out, nil
}
