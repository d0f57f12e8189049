package appointment

import (
	"context"
)

// Repository holds the booked appointments.
type Repository interface {
	// List returns every appointment in insertion order.
	List(ctx context.Context) ([]Appointment, error)

	// Exists reports whether the exact date/time pair is already booked.
	Exists(ctx context.Context, a Appointment) (bool, error)

	// Insert appends a new appointment. It returns ErrUnavailable if the pair
	// is already stored.
	Insert(ctx context.Context, a Appointment) error

	// Reset removes every appointment.
	Reset(ctx context.Context) error
}
