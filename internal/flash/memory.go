package flash

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type entry struct {
	msg       Message
	expiresAt time.Time
}

// MemoryStore keeps flash messages in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

func (s *MemoryStore) Put(_ context.Context, msg Message) (string, error) {
	if msg.Text == "" {
		return "", ErrEmptyMessage
	}
	token := newToken()

	s.mu.Lock()
	s.entries[token] = entry{msg: msg, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()

	return token, nil
}

func (s *MemoryStore) Take(_ context.Context, token string) (Message, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[token]
	if !ok {
		return Message{}, false, nil
	}
	delete(s.entries, token)

	if !s.now().Before(e.expiresAt) {
		return Message{}, false, nil
	}
	return e.msg, true, nil
}

// Sweep drops expired messages and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, token)
			removed++
		}
	}
	return removed
}

// Len returns the number of messages currently held.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Run sweeps expired messages every interval until ctx is done.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				logger.Debug("flash sweep", "removed", n)
			}
		}
	}
}
