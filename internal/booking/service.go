// Package booking implements the appointment rules: future-dated creation,
// one active appointment per doctor and timestamp, owner-only deletion of
// upcoming appointments, and the status state machine.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"doctor-booking-api/internal/metrics"
	"doctor-booking-api/internal/model"
	"doctor-booking-api/internal/store"
)

const (
	MsgBooked  = "Appointment Booked Successfully"
	MsgDeleted = "Appointment deleted successfully"
)

type Repository interface {
	HasActiveAppointment(ctx context.Context, doctorID string, at time.Time) (bool, error)
	CreateAppointment(ctx context.Context, a *model.Appointment) error
	GetAppointment(ctx context.Context, id string) (*model.Appointment, error)
	FindOwnedAppointment(ctx context.Context, id, userID string) (*model.Appointment, error)
	DeleteAppointment(ctx context.Context, id, userID string) error
	ListAppointmentsByUser(ctx context.Context, userID string) ([]model.AppointmentView, error)
	UpdateAppointmentStatus(ctx context.Context, id string, from, to model.Status) error
}

type DoctorDirectory interface {
	DoctorByID(ctx context.Context, id string) (*model.Doctor, error)
}

// SlotLocker serializes check-and-insert for one slot across processes.
type SlotLocker interface {
	Lock(ctx context.Context, doctorID string, at time.Time) (unlock func(), err error)
}

type Service struct {
	repo    Repository
	doctors DoctorDirectory
	locker  SlotLocker
	log     zerolog.Logger
	now     func() time.Time
}

type Option func(*Service)

func WithLocker(l SlotLocker) Option {
	return func(s *Service) { s.locker = l }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, doctors DoctorDirectory, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		doctors: doctors,
		log:     zerolog.Nop(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type CreateInput struct {
	UserID   string
	DoctorID string
	DateTime time.Time
	// Status may only be empty or Pending.
	Status string
}

func (s *Service) Create(ctx context.Context, in CreateInput) error {
	err := s.create(ctx, in)
	metrics.AppointmentsCreated.WithLabelValues(outcome(err)).Inc()
	return err
}

func (s *Service) create(ctx context.Context, in CreateInput) error {
	at := slotTime(in.DateTime)
	if !at.After(s.now()) {
		return ErrInvalidTime
	}
	if in.Status != "" && model.Status(in.Status) != InitialStatus {
		return &ValidationError{Messages: []string{"Status cannot be set when booking; new appointments start as Pending"}}
	}

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, in.DoctorID, at)
		if err != nil {
			return s.internal("lock slot", err)
		}
		defer unlock()
	}

	busy, err := s.HasConflict(ctx, in.DoctorID, at)
	if err != nil {
		return s.internal("check conflict", err)
	}
	if busy {
		return ErrSlotUnavailable
	}

	if _, err := s.doctors.DoctorByID(ctx, in.DoctorID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrDoctorNotFound
		}
		return s.internal("find doctor", err)
	}

	a := &model.Appointment{
		ID:       uuid.New().String(),
		UserID:   in.UserID,
		DoctorID: in.DoctorID,
		DateTime: at,
		Status:   InitialStatus,
	}
	if err := s.repo.CreateAppointment(ctx, a); err != nil {
		var ve *store.ValidationError
		switch {
		case errors.As(err, &ve):
			return &ValidationError{Messages: ve.Messages}
		case errors.Is(err, store.ErrSlotTaken):
			// the unique index caught a concurrent booking
			return ErrSlotUnavailable
		}
		return s.internal("create appointment", err)
	}

	s.log.Info().
		Str("appointment_id", a.ID).
		Str("doctor_id", a.DoctorID).
		Time("at", a.DateTime).
		Msg("appointment booked")
	return nil
}

// Delete removes an upcoming appointment owned by userID. A record owned by
// someone else is reported as ErrNotFound.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	err := s.delete(ctx, id, userID)
	metrics.AppointmentsDeleted.WithLabelValues(outcome(err)).Inc()
	return err
}

func (s *Service) delete(ctx context.Context, id, userID string) error {
	a, err := s.repo.FindOwnedAppointment(ctx, id, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return s.internal("find appointment", err)
	}
	if !a.DateTime.After(s.now()) {
		return ErrPastAppointment
	}
	if err := s.repo.DeleteAppointment(ctx, id, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return s.internal("delete appointment", err)
	}
	return nil
}

// List returns the user's appointments, latest first.
func (s *Service) List(ctx context.Context, userID string) ([]model.AppointmentView, error) {
	out, err := s.repo.ListAppointmentsByUser(ctx, userID)
	if err != nil {
		return nil, s.internal("list appointments", err)
	}
	return out, nil
}

// Transition moves an appointment along the state machine. The write is a
// compare-and-set on the current status.
func (s *Service) Transition(ctx context.Context, id string, to model.Status) error {
	a, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return s.internal("get appointment", err)
	}

	from := a.Status
	if !CanTransition(from, to) {
		metrics.StatusTransitions.WithLabelValues(string(from), string(to), "rejected").Inc()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	if from == to {
		return nil
	}
	if err := s.repo.UpdateAppointmentStatus(ctx, id, from, to); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.StatusTransitions.WithLabelValues(string(from), string(to), "conflict").Inc()
			return fmt.Errorf("%w: status of %s changed concurrently", ErrInvalidTransition, id)
		}
		return s.internal("update status", err)
	}
	metrics.StatusTransitions.WithLabelValues(string(from), string(to), "ok").Inc()
	return nil
}

// internal logs an unexpected failure and hides it behind ErrServer.
func (s *Service) internal(op string, err error) error {
	s.log.Error().Err(err).Str("op", op).Msg("booking failure")
	return ErrServer
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidTime):
		return "invalid_time"
	case errors.Is(err, ErrSlotUnavailable):
		return "slot_unavailable"
	case errors.Is(err, ErrDoctorNotFound):
		return "doctor_not_found"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrPastAppointment):
		return "past"
	}
	return "error"
}
