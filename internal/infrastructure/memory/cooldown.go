// Package memory holds in-process adapter implementations, used for local
// runs and as the fallback cooldown backend.
package memory

import (
	"context"
	"sync"
	"time"

	"solswap-service/internal/application"
)

type entry struct {
	expiresAt time.Time
}

// CooldownStore keeps cooldown windows in process memory. State is lost on
// restart, which for a devnet faucet only means an early repeat payout.
type CooldownStore struct {
	mu      sync.Mutex
	held    map[string]entry
	window  time.Duration
	reserve time.Duration
	now     func() time.Time
}

var _ application.CooldownStore = (*CooldownStore)(nil)

func NewCooldownStore(window, reserveTTL time.Duration) *CooldownStore {
	return &CooldownStore{
		held:    make(map[string]entry),
		window:  window,
		reserve: reserveTTL,
		now:     time.Now,
	}
}

// WithNow overrides the time source. Tests only.
func (s *CooldownStore) WithNow(now func() time.Time) *CooldownStore {
	s.now = now
	return s
}

func (s *CooldownStore) Reserve(_ context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.held[key]; ok && e.expiresAt.After(now) {
		return e.expiresAt.Sub(now), application.ErrCooldownActive
	}
	// Claim the key for the duration of the payment attempt.
	s.held[key] = entry{expiresAt: now.Add(s.reserve)}
	return 0, nil
}

func (s *CooldownStore) Commit(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held[key] = entry{expiresAt: s.now().Add(s.window)}
	return nil
}

func (s *CooldownStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.held, key)
	return nil
}
