package cache

import (
	"context"
	"sync"
	"time"

	"github.com/opsconsole/backend/internal/domain/shared"
)

// reservation is a held idempotency key and its expiry.
type reservation struct {
	expiresAt time.Time
}

// InMemoryIdempotencyStore keeps reserved keys in a process-local map.
// Keys are not shared across instances.
type InMemoryIdempotencyStore struct {
	mu        sync.Mutex
	keys      map[string]reservation
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore creates the store and starts its sweeper goroutine.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		keys:     make(map[string]reservation),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.sweepLoop(5 * time.Minute)

	return s
}

// Reserve holds key for ttl. It returns false while an unexpired reservation exists.
func (s *InMemoryIdempotencyStore) Reserve(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if r, held := s.keys[key]; held && now.Before(r.expiresAt) {
		return false, nil
	}
	s.keys[key] = reservation{expiresAt: now.Add(ttl)}
	return true, nil
}

// Release drops key. Releasing an unknown key is not an error.
func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

// Close stops the sweeper. Safe to call more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryIdempotencyStore) sweepLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep removes expired reservations.
func (s *InMemoryIdempotencyStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, r := range s.keys {
		if !now.Before(r.expiresAt) {
			delete(s.keys, key)
		}
	}
}

// Size returns the number of held keys, expired or not.
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
