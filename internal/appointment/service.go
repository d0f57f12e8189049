package appointment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	redisclient "github.com/hackgods/appointment-booking/internal/redis"
)

// Locker guards the check-then-insert critical section for a slot.
type Locker interface {
	WithSlotLock(ctx context.Context, slot string, fn func(ctx context.Context) error) error
}

// LocalLocker serializes bookings inside a single process.
type LocalLocker struct {
	mu sync.Mutex
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{}
}

func (l *LocalLocker) WithSlotLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(ctx)
}

// Default retry policy for a contended slot lock.
const (
	defaultLockAttempts = 3
	defaultLockBackoff  = 25 * time.Millisecond
)

type Service struct {
	repo         Repository
	locker       Locker
	now          func() time.Time
	lockAttempts int
	lockBackoff  time.Duration
}

type Option func(*Service)

// WithClock replaces the wall clock used by the past-date rule.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLockRetry sets how many times Book tries to take a contended slot lock
// and the base delay between attempts. The delay grows linearly.
func WithLockRetry(attempts int, backoff time.Duration) Option {
	return func(s *Service) {
		if attempts < 1 {
			attempts = 1
		}
		s.lockAttempts = attempts
		s.lockBackoff = backoff
	}
}

func NewService(repo Repository, locker Locker, opts ...Option) *Service {
	if locker == nil {
		locker = NewLocalLocker()
	}
	s := &Service{
		repo:         repo,
		locker:       locker,
		now:          time.Now,
		lockAttempts: defaultLockAttempts,
		lockBackoff:  defaultLockBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Book stores the appointment unless it lies in the past or the slot is
// taken. Rejections come back as a Result; the error is reserved for
// storage or lock failures.
func (s *Service) Book(ctx context.Context, date, clock string) (Result, error) {
	now := s.now()
	if at, ok := parseInstant(date, clock, now.Location()); ok && at.Before(now) {
		return rejected(ReasonPastDate, MessagePastDate), nil
	}

	appt := Appointment{Date: date, Time: clock}

	err := s.withRetry(ctx, appt.slotKey(), func(lockCtx context.Context) error {
		taken, err := s.repo.Exists(lockCtx, appt)
		if err != nil {
			return fmt.Errorf("check availability: %w", err)
		}
		if taken {
			return ErrUnavailable
		}
		return s.repo.Insert(lockCtx, appt)
	})

	switch {
	case err == nil:
		return booked(), nil
	case errors.Is(err, ErrUnavailable):
		return rejected(ReasonUnavailable, MessageUnavailable), nil
	case errors.Is(err, redisclient.ErrLockNotAcquired):
		return rejected(ReasonBusy, MessageBusy), nil
	default:
		return Result{}, fmt.Errorf("book appointment: %w", err)
	}
}

// withRetry runs fn under the slot lock, retrying while another booking of
// the same slot holds it.
func (s *Service) withRetry(ctx context.Context, slot string, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = s.locker.WithSlotLock(ctx, slot, fn)
		if !errors.Is(err, redisclient.ErrLockNotAcquired) || attempt >= s.lockAttempts {
			return err
		}

		timer := time.NewTimer(time.Duration(attempt) * s.lockBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// List returns a snapshot of all appointments in booking order.
func (s *Service) List(ctx context.Context) ([]Appointment, error) {
	appts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	if appts == nil {
		appts = []Appointment{}
	}
	return appts, nil
}

// Reset empties the store.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.repo.Reset(ctx); err != nil {
		return fmt.Errorf("reset appointments: %w", err)
	}
	return nil
}
