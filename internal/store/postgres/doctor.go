package postgres

import (
	"context"

	"doctor-booking-api/internal/model"
)

const doctorCols = `id, name, specialization, image, available, about, created_at, updated_at`

func (s *Store) DoctorByID(ctx context.Context, id string) (*model.Doctor, error) {
	d := &model.Doctor{}
	err := s.pool.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.Specialization, &d.Image, &d.Available, &d.About, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return d, nil
}

func (s *Store) ListDoctors(ctx context.Context) ([]model.Doctor, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+doctorCols+` FROM doctors ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Doctor{}
	for rows.Next() {
		var d model.Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.Specialization, &d.Image, &d.Available, &d.About,
			&d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpsertDoctor inserts the doctor or overwrites the profile with the same id.
func (s *Store) UpsertDoctor(ctx context.Context, d *model.Doctor) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO doctors (id, name, specialization, image, available, about)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name, specialization = EXCLUDED.specialization,
		     image = EXCLUDED.image, available = EXCLUDED.available,
		     about = EXCLUDED.about, updated_at = NOW()
		 RETURNING created_at, updated_at`,
		d.ID, d.Name, d.Specialization, d.Image, d.Available, d.About,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	return mapErr(err)
}
