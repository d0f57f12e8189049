package appointment

import (
	"errors"
	"fmt"
)

// Appointment is a booked date/time pair. Both fields are kept exactly as the
// user typed them; equality of the pair is what makes a slot unavailable.
type Appointment struct {
	Date string
	Time string
}

// slotKey identifies the slot an appointment occupies. It is used as the
// lock key so concurrent bookings of the same pair serialize. The date is
// length-prefixed so a "|" inside either field cannot make two pairs collide.
func (a Appointment) slotKey() string {
	return fmt.Sprintf("%d:%s|%s", len(a.Date), a.Date, a.Time)
}

type Reason string

const (
	ReasonBooked      Reason = "booked"
	ReasonPastDate    Reason = "past_date"
	ReasonUnavailable Reason = "unavailable"
	ReasonBusy        Reason = "busy"
)

const (
	MessageBooked      = "Appointment booked successfully"
	MessagePastDate    = "Cannot book appointments in the past"
	MessageUnavailable = "The selected time is unavailable"
	MessageBusy        = "The selected time is being booked, please retry"
)

var (
	ErrPastDate        = errors.New("cannot book appointments in the past")
	ErrUnavailable     = errors.New("the selected time is unavailable")
	ErrSlotBeingBooked = errors.New("slot is currently being booked, please retry")
)

// Result is the outcome of a booking attempt. Rejections are ordinary
// results, not errors.
type Result struct {
	Success bool
	Reason  Reason
	Message string
}

// Err returns the sentinel error matching a rejected result, or nil on success.
func (r Result) Err() error {
	switch r.Reason {
	case ReasonPastDate:
		return ErrPastDate
	case ReasonUnavailable:
		return ErrUnavailable
	case ReasonBusy:
		return ErrSlotBeingBooked
	}
	return nil
}

func booked() Result {
	return Result{Success: true, Reason: ReasonBooked, Message: MessageBooked}
}

func rejected(reason Reason, message string) Result {
	return Result{Reason: reason, Message: message}
}
