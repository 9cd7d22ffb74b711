// Package store holds the persistence contract shared by the postgres,
// mongo and in-memory backends.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"doctor-booking-api/internal/model"
)

var (
	ErrNotFound = errors.New("store: not found")
	// ErrSlotTaken is returned when an insert would give a slot a second
	// active appointment.
	ErrSlotTaken = errors.New("store: slot already has an active appointment")
	ErrDuplicate = errors.New("store: duplicate key")
)

// ValidationError lists the field messages of a record rejected before write.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ", ")
}

// ValidateAppointment checks the fields every backend requires.
func ValidateAppointment(a *model.Appointment) error {
	var msgs []string
	if a.UserID == "" {
		msgs = append(msgs, "User ID is required")
	}
	if a.DoctorID == "" {
		msgs = append(msgs, "Doctor ID is required")
	}
	if a.DateTime.IsZero() {
		msgs = append(msgs, "Appointment date and time is required")
	}
	if !a.Status.Valid() {
		msgs = append(msgs, "Status must be one of: Pending, Confirmed, Cancelled, Completed")
	}
	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	return nil
}

// DefaultAbout fills an empty doctor profile text.
const DefaultAbout = "No information available"

// ValidateDoctor checks a doctor profile and fills the default About.
func ValidateDoctor(d *model.Doctor) error {
	var msgs []string
	if strings.TrimSpace(d.Name) == "" {
		msgs = append(msgs, "Please add a name")
	} else if len([]rune(d.Name)) > 100 {
		msgs = append(msgs, "Name can not be more than 100 characters")
	}
	if strings.TrimSpace(d.Specialization) == "" {
		msgs = append(msgs, "Please add a specialization")
	} else if len([]rune(d.Specialization)) > 100 {
		msgs = append(msgs, "Specialization can not be more than 100 characters")
	}
	if strings.TrimSpace(d.Image) == "" {
		msgs = append(msgs, "Please add an image URL")
	}
	if len([]rune(d.About)) > 1000 {
		msgs = append(msgs, "About section can not be more than 1000 characters")
	}
	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	if d.About == "" {
		d.About = DefaultAbout
	}
	return nil
}

type Appointments interface {
	CreateAppointment(ctx context.Context, a *model.Appointment) error
	HasActiveAppointment(ctx context.Context, doctorID string, at time.Time) (bool, error)
	GetAppointment(ctx context.Context, id string) (*model.Appointment, error)
	FindOwnedAppointment(ctx context.Context, id, userID string) (*model.Appointment, error)
	DeleteAppointment(ctx context.Context, id, userID string) error
	ListAppointmentsByUser(ctx context.Context, userID string) ([]model.AppointmentView, error)
	// UpdateAppointmentStatus sets status to `to` only while it still equals
	// `from`; ErrNotFound otherwise.
	UpdateAppointmentStatus(ctx context.Context, id string, from, to model.Status) error
	// ListElapsedAppointments returns active appointments dated at or
	// before `before`, oldest first.
	ListElapsedAppointments(ctx context.Context, before time.Time, limit int) ([]model.Appointment, error)
}

type Doctors interface {
	DoctorByID(ctx context.Context, id string) (*model.Doctor, error)
	ListDoctors(ctx context.Context) ([]model.Doctor, error)
	UpsertDoctor(ctx context.Context, d *model.Doctor) error
}

type Users interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByID(ctx context.Context, id string) (*model.User, error)
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (string, error)
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	RotateRefreshToken(ctx context.Context, oldID, newID, userID, newHash string, newExpiry time.Time) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) error
}

// Backend is a complete storage implementation.
type Backend interface {
	Appointments
	Doctors
	Users
	RefreshTokens
	Migrate(ctx context.Context) error
	Close(ctx context.Context) error
}
