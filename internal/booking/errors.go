package booking

import (
	"errors"
	"strings"
)

// Errors returned by Service. Their messages are safe to show to callers.
var (
	ErrInvalidTime       = errors.New("appointment time must be in the future")
	ErrSlotUnavailable   = errors.New("this time slot is already booked")
	ErrDoctorNotFound    = errors.New("no doctor found with the provided ID")
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("appointment not found")
	ErrPastAppointment   = errors.New("cannot delete past appointment")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrServer            = errors.New("server error")
)

// ValidationError carries the field messages of a rejected appointment.
// errors.Is(err, ErrValidation) holds for it.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
