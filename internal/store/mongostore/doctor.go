package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"doctor-booking-api/internal/model"
)

type doctorDoc struct {
	ID             string    `bson:"_id"`
	Name           string    `bson:"name"`
	Specialization string    `bson:"specialization"`
	Image          string    `bson:"image"`
	Available      bool      `bson:"available"`
	About          string    `bson:"about"`
	CreatedAt      time.Time `bson:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt"`
}

func (d doctorDoc) model() model.Doctor {
	return model.Doctor{
		ID:             d.ID,
		Name:           d.Name,
		Specialization: d.Specialization,
		Image:          d.Image,
		Available:      d.Available,
		About:          d.About,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func (s *Store) DoctorByID(ctx context.Context, id string) (*model.Doctor, error) {
	var d doctorDoc
	if err := s.col(Doctors).FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, mapErr(err)
	}
	m := d.model()
	return &m, nil
}

func (s *Store) ListDoctors(ctx context.Context) ([]model.Doctor, error) {
	cur, err := s.col(Doctors).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []model.Doctor{}
	for cur.Next(ctx) {
		var d doctorDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, d.model())
	}
	return out, cur.Err()
}

func (s *Store) UpsertDoctor(ctx context.Context, d *model.Doctor) error {
	now := time.Now().UTC()
	_, err := s.col(Doctors).UpdateOne(ctx,
		bson.M{"_id": d.ID},
		bson.M{
			"$set": bson.M{
				"name":           d.Name,
				"specialization": d.Specialization,
				"image":          d.Image,
				"available":      d.Available,
				"about":          d.About,
				"updatedAt":      now,
			},
			"$setOnInsert": bson.M{"createdAt": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return mapErr(err)
	}
	d.UpdatedAt = now
	return nil
}
