package mongostore

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"doctor-booking-api/internal/model"
)

type userDoc struct {
	ID            string    `bson:"_id"`
	Username      string    `bson:"username"`
	UsernameLower string    `bson:"usernameLower"`
	Email         string    `bson:"email"`
	EmailLower    string    `bson:"emailLower"`
	PasswordHash  string    `bson:"passwordHash"`
	CreatedAt     time.Time `bson:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt"`
}

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	now := time.Now().UTC()
	_, err := s.col(Users).InsertOne(ctx, userDoc{
		ID:            u.ID,
		Username:      u.Username,
		UsernameLower: strings.ToLower(u.Username),
		Email:         u.Email,
		EmailLower:    strings.ToLower(u.Email),
		PasswordHash:  u.PasswordHash,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return mapErr(err)
	}
	u.CreatedAt, u.UpdatedAt = now, now
	return nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.user(ctx, bson.M{"emailLower": strings.ToLower(email)})
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	return s.user(ctx, bson.M{"_id": id})
}

func (s *Store) user(ctx context.Context, filter bson.M) (*model.User, error) {
	var d userDoc
	if err := s.col(Users).FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, mapErr(err)
	}
	return &model.User{
		ID:           d.ID,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}
