package postgres

import (
	"context"
	"time"

	"doctor-booking-api/internal/model"
	"doctor-booking-api/internal/store"
)

const appointmentCols = `id, user_id, doctor_id, appointment_time, status, created_at, updated_at`

func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	if err := store.ValidateAppointment(a); err != nil {
		return err
	}
	a.DateTime = a.DateTime.UTC()
	err := s.pool.QueryRow(ctx,
		`INSERT INTO appointments (id, user_id, doctor_id, appointment_time, status)
		 VALUES ($1,$2,$3,$4,$5)
		 RETURNING created_at, updated_at`,
		a.ID, a.UserID, a.DoctorID, a.DateTime, a.Status,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	return mapErr(err)
}

func (s *Store) HasActiveAppointment(ctx context.Context, doctorID string, at time.Time) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM appointments
			WHERE doctor_id = $1
			  AND appointment_time = $2
			  AND status IN ('Pending','Confirmed'))`,
		doctorID, at.UTC(),
	).Scan(&exists)
	return exists, err
}

func scanAppointment(row interface{ Scan(...any) error }) (*model.Appointment, error) {
	a := &model.Appointment{}
	var status string
	if err := row.Scan(&a.ID, &a.UserID, &a.DoctorID, &a.DateTime, &status, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	a.Status = model.Status(status)
	a.DateTime = a.DateTime.UTC()
	return a, nil
}

func (s *Store) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	return scanAppointment(s.pool.QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id))
}

func (s *Store) FindOwnedAppointment(ctx context.Context, id, userID string) (*model.Appointment, error) {
	return scanAppointment(s.pool.QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id = $1 AND user_id = $2`, id, userID))
}

func (s *Store) DeleteAppointment(ctx context.Context, id, userID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM appointments WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListAppointmentsByUser(ctx context.Context, userID string) ([]model.AppointmentView, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT a.id, a.user_id, a.doctor_id, a.appointment_time, a.status,
		        a.created_at, a.updated_at, COALESCE(d.name, '')
		 FROM appointments a
		 LEFT JOIN doctors d ON d.id = a.doctor_id
		 WHERE a.user_id = $1
		 ORDER BY a.appointment_time DESC, a.id`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.AppointmentView{}
	for rows.Next() {
		var v model.AppointmentView
		var status string
		if err := rows.Scan(&v.ID, &v.UserID, &v.DoctorID, &v.DateTime, &status,
			&v.CreatedAt, &v.UpdatedAt, &v.DoctorName); err != nil {
			return nil, err
		}
		v.Status = model.Status(status)
		v.DateTime = v.DateTime.UTC()
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) UpdateAppointmentStatus(ctx context.Context, id string, from, to model.Status) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE appointments SET status = $1, updated_at = NOW()
		 WHERE id = $2 AND status = $3`, string(to), id, string(from))
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListElapsedAppointments(ctx context.Context, before time.Time, limit int) ([]model.Appointment, error) {
	q := `SELECT ` + appointmentCols + ` FROM appointments
		WHERE status IN ('Pending','Confirmed') AND appointment_time <= $1
		ORDER BY appointment_time, id`
	args := []any{before.UTC()}
	if limit > 0 {
		q += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}
