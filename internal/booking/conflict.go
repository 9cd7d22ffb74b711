package booking

import (
	"context"
	"time"
)

// slotTime normalizes an appointment time to UTC milliseconds, the finest
// precision every backend stores.
func slotTime(at time.Time) time.Time {
	return at.UTC().Truncate(time.Millisecond)
}

// HasConflict reports whether an active appointment already holds the slot
// (doctorID, at). Times match exactly after slotTime; there is no tolerance window.
func (s *Service) HasConflict(ctx context.Context, doctorID string, at time.Time) (bool, error) {
	return s.repo.HasActiveAppointment(ctx, doctorID, slotTime(at))
}
