// Package mongostore keeps appointments, doctors, users and refresh tokens
// in MongoDB collections.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"doctor-booking-api/internal/model"
	"doctor-booking-api/internal/store"
)

const (
	Appointments  = "appointments"
	Doctors       = "doctors"
	Users         = "users"
	RefreshTokens = "refresh_tokens"

	activeSlotIndex = "active_slot"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ store.Backend = (*Store)(nil)

// Connect opens a client and pings it within timeout.
func Connect(ctx context.Context, uri, database string, timeout time.Duration) (*Store, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	client, err := mongo.Connect(cctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

func (s *Store) col(name string) *mongo.Collection { return s.db.Collection(name) }

// Migrate creates the indexes. CreateMany is a no-op for indexes that
// already exist with the same definition.
func (s *Store) Migrate(ctx context.Context) error {
	active := bson.A{string(model.StatusPending), string(model.StatusConfirmed)}
	indexes := map[string][]mongo.IndexModel{
		Appointments: {
			{
				Keys: bson.D{{Key: "doctorId", Value: 1}, {Key: "dateTime", Value: 1}},
				Options: options.Index().
					SetName(activeSlotIndex).
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"status": bson.M{"$in": active}}),
			},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "dateTime", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "dateTime", Value: 1}}},
		},
		Users: {
			{Keys: bson.D{{Key: "emailLower", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_unique")},
			{Keys: bson.D{{Key: "usernameLower", Value: 1}}, Options: options.Index().SetUnique(true).SetName("username_unique")},
		},
		RefreshTokens: {
			{Keys: bson.D{{Key: "tokenHash", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
	}
	for name, models := range indexes {
		if _, err := s.col(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		if strings.Contains(err.Error(), activeSlotIndex) {
			return store.ErrSlotTaken
		}
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return err
}
