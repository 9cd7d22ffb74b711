// Package memory is an in-process store used by tests and local runs.
// It enforces the same single-active-appointment-per-slot rule as the
// database indexes, atomically under its mutex.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"doctor-booking-api/internal/model"
	"doctor-booking-api/internal/store"
)

type Store struct {
	mu           sync.RWMutex
	appointments map[string]model.Appointment
	doctors      map[string]model.Doctor
	users        map[string]model.User
	tokens       map[string]model.RefreshToken
}

var _ store.Backend = (*Store)(nil)

func New() *Store {
	return &Store{
		appointments: make(map[string]model.Appointment),
		doctors:      make(map[string]model.Doctor),
		users:        make(map[string]model.User),
		tokens:       make(map[string]model.RefreshToken),
	}
}

func (s *Store) Migrate(context.Context) error { return nil }

func (s *Store) Close(context.Context) error { return nil }

// ----- appointments -----

func (s *Store) CreateAppointment(_ context.Context, a *model.Appointment) error {
	if err := store.ValidateAppointment(a); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.Status.Active() && s.activeAt(a.DoctorID, a.DateTime) {
		return store.ErrSlotTaken
	}
	now := time.Now().UTC()
	a.DateTime = a.DateTime.UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	s.appointments[a.ID] = *a
	return nil
}

func (s *Store) activeAt(doctorID string, at time.Time) bool {
	for _, a := range s.appointments {
		if a.DoctorID == doctorID && a.DateTime.Equal(at) && a.Status.Active() {
			return true
		}
	}
	return false
}

func (s *Store) HasActiveAppointment(_ context.Context, doctorID string, at time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeAt(doctorID, at), nil
}

func (s *Store) GetAppointment(_ context.Context, id string) (*model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (s *Store) FindOwnedAppointment(_ context.Context, id, userID string) (*model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.appointments[id]
	if !ok || a.UserID != userID {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (s *Store) DeleteAppointment(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok || a.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.appointments, id)
	return nil
}

func (s *Store) ListAppointmentsByUser(_ context.Context, userID string) ([]model.AppointmentView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.AppointmentView{}
	for _, a := range s.appointments {
		if a.UserID != userID {
			continue
		}
		out = append(out, model.AppointmentView{Appointment: a, DoctorName: s.doctors[a.DoctorID].Name})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateTime.Equal(out[j].DateTime) {
			return out[i].DateTime.After(out[j].DateTime)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateAppointmentStatus(_ context.Context, id string, from, to model.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok || a.Status != from {
		return store.ErrNotFound
	}
	if to.Active() && !from.Active() && s.activeAt(a.DoctorID, a.DateTime) {
		return store.ErrSlotTaken
	}
	a.Status = to
	a.UpdatedAt = time.Now().UTC()
	s.appointments[id] = a
	return nil
}

func (s *Store) ListElapsedAppointments(_ context.Context, before time.Time, limit int) ([]model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Appointment
	for _, a := range s.appointments {
		if a.Status.Active() && !a.DateTime.After(before) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateTime.Equal(out[j].DateTime) {
			return out[i].DateTime.Before(out[j].DateTime)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ----- doctors -----

func (s *Store) DoctorByID(_ context.Context, id string) (*model.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.doctors[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &d, nil
}

func (s *Store) ListDoctors(context.Context) ([]model.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Doctor, 0, len(s.doctors))
	for _, d := range s.doctors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpsertDoctor(_ context.Context, d *model.Doctor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if old, ok := s.doctors[d.ID]; ok {
		d.CreatedAt = old.CreatedAt
	} else {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	s.doctors[d.ID] = *d
	return nil
}

// ----- users -----

func (s *Store) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) || strings.EqualFold(existing.Username, u.Username) {
			return store.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = *u
	return nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

// ----- refresh tokens -----

func (s *Store) CreateRefreshToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New().String()
	s.tokens[id] = model.RefreshToken{
		ID:        id,
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return id, nil
}

func (s *Store) GetRefreshTokenByHash(_ context.Context, tokenHash string) (*model.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rt := range s.tokens {
		if rt.TokenHash == tokenHash {
			return &rt, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) RotateRefreshToken(_ context.Context, oldID, newID, userID, newHash string, newExpiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.tokens[oldID]
	if !ok || old.Revoked {
		return store.ErrNotFound
	}
	old.Revoked = true
	old.ReplacedBy = &newID
	s.tokens[oldID] = old
	s.tokens[newID] = model.RefreshToken{
		ID:        newID,
		UserID:    userID,
		TokenHash: newHash,
		ExpiresAt: newExpiry,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (s *Store) RevokeAllRefreshTokens(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rt := range s.tokens {
		if rt.UserID == userID && !rt.Revoked {
			rt.Revoked = true
			s.tokens[id] = rt
		}
	}
	return nil
}
