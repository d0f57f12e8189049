package appointment

import (
	"context"
	"sync"
)

// MemoryRepository keeps appointments in process memory. Data lives as long
// as the repository value does.
type MemoryRepository struct {
	mu           sync.RWMutex
	appointments []Appointment
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) List(_ context.Context) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Appointment, len(r.appointments))
	copy(out, r.appointments)
	return out, nil
}

func (r *MemoryRepository) Exists(_ context.Context, a Appointment) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indexOf(a) >= 0, nil
}

func (r *MemoryRepository) Insert(_ context.Context, a Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(a) >= 0 {
		return ErrUnavailable
	}
	r.appointments = append(r.appointments, a)
	return nil
}

func (r *MemoryRepository) Reset(_ context.Context) error {
	r.mu.Lock()
	r.appointments = nil
	r.mu.Unlock()
	return nil
}

// indexOf must be called with mu held.
func (r *MemoryRepository) indexOf(a Appointment) int {
	for i, existing := range r.appointments {
		if existing.Date == a.Date && existing.Time == a.Time {
			return i
		}
	}
	return -1
}
