package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"doctor-booking-api/internal/model"
	"doctor-booking-api/internal/store"
)

type appointmentDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"userId"`
	DoctorID  string    `bson:"doctorId"`
	DateTime  time.Time `bson:"dateTime"`
	Status    string    `bson:"status"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (d appointmentDoc) model() model.Appointment {
	return model.Appointment{
		ID:        d.ID,
		UserID:    d.UserID,
		DoctorID:  d.DoctorID,
		DateTime:  d.DateTime.UTC(),
		Status:    model.Status(d.Status),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func activeFilter() bson.M {
	return bson.M{"$in": bson.A{string(model.StatusPending), string(model.StatusConfirmed)}}
}

func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	if err := store.ValidateAppointment(a); err != nil {
		return err
	}
	now := time.Now().UTC()
	a.DateTime = a.DateTime.UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	_, err := s.col(Appointments).InsertOne(ctx, appointmentDoc{
		ID:        a.ID,
		UserID:    a.UserID,
		DoctorID:  a.DoctorID,
		DateTime:  a.DateTime,
		Status:    string(a.Status),
		CreatedAt: now,
		UpdatedAt: now,
	})
	return mapErr(err)
}

func (s *Store) HasActiveAppointment(ctx context.Context, doctorID string, at time.Time) (bool, error) {
	n, err := s.col(Appointments).CountDocuments(ctx, bson.M{
		"doctorId": doctorID,
		"dateTime": at.UTC(),
		"status":   activeFilter(),
	}, options.Count().SetLimit(1))
	return n > 0, err
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*model.Appointment, error) {
	var d appointmentDoc
	if err := s.col(Appointments).FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, mapErr(err)
	}
	a := d.model()
	return &a, nil
}

func (s *Store) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Store) FindOwnedAppointment(ctx context.Context, id, userID string) (*model.Appointment, error) {
	return s.findOne(ctx, bson.M{"_id": id, "userId": userID})
}

func (s *Store) DeleteAppointment(ctx context.Context, id, userID string) error {
	res, err := s.col(Appointments).DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

type appointmentViewDoc struct {
	appointmentDoc `bson:",inline"`
	Doctor         []struct {
		Name string `bson:"name"`
	} `bson:"doctor"`
}

// ListAppointmentsByUser joins each appointment to its doctor's name.
func (s *Store) ListAppointmentsByUser(ctx context.Context, userID string) ([]model.AppointmentView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$sort", Value: bson.D{{Key: "dateTime", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         Doctors,
			"localField":   "doctorId",
			"foreignField": "_id",
			"as":           "doctor",
		}}},
	}
	cur, err := s.col(Appointments).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []model.AppointmentView{}
	for cur.Next(ctx) {
		var d appointmentViewDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		v := model.AppointmentView{Appointment: d.appointmentDoc.model()}
		if len(d.Doctor) > 0 {
			v.DoctorName = d.Doctor[0].Name
		}
		out = append(out, v)
	}
	return out, cur.Err()
}

func (s *Store) UpdateAppointmentStatus(ctx context.Context, id string, from, to model.Status) error {
	res, err := s.col(Appointments).UpdateOne(ctx,
		bson.M{"_id": id, "status": string(from)},
		bson.M{"$set": bson.M{"status": string(to), "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListElapsedAppointments(ctx context.Context, before time.Time, limit int) ([]model.Appointment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "dateTime", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.col(Appointments).Find(ctx, bson.M{
		"status":   activeFilter(),
		"dateTime": bson.M{"$lte": before.UTC()},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []model.Appointment
	for cur.Next(ctx) {
		var d appointmentDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, d.model())
	}
	return out, cur.Err()
}
