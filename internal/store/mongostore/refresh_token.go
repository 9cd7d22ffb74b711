package mongostore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"doctor-booking-api/internal/model"
	"doctor-booking-api/internal/store"
)

type refreshTokenDoc struct {
	ID         string    `bson:"_id"`
	UserID     string    `bson:"userId"`
	TokenHash  string    `bson:"tokenHash"`
	ExpiresAt  time.Time `bson:"expiresAt"`
	Revoked    bool      `bson:"revoked"`
	ReplacedBy *string   `bson:"replacedBy,omitempty"`
	CreatedAt  time.Time `bson:"createdAt"`
}

func (s *Store) CreateRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (string, error) {
	id := uuid.New().String()
	_, err := s.col(RefreshTokens).InsertOne(ctx, refreshTokenDoc{
		ID:        id,
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", mapErr(err)
	}
	return id, nil
}

func (s *Store) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	var d refreshTokenDoc
	if err := s.col(RefreshTokens).FindOne(ctx, bson.M{"tokenHash": tokenHash}).Decode(&d); err != nil {
		return nil, mapErr(err)
	}
	return &model.RefreshToken{
		ID:         d.ID,
		UserID:     d.UserID,
		TokenHash:  d.TokenHash,
		ExpiresAt:  d.ExpiresAt,
		Revoked:    d.Revoked,
		ReplacedBy: d.ReplacedBy,
		CreatedAt:  d.CreatedAt,
	}, nil
}

// RotateRefreshToken flips the old token to revoked with a conditional
// update, so a second rotation of the same token finds nothing to match.
// Standalone servers have no transactions; if the insert fails the user
// simply has to log in again.
func (s *Store) RotateRefreshToken(ctx context.Context, oldID, newID, userID, newHash string, newExpiry time.Time) error {
	res, err := s.col(RefreshTokens).UpdateOne(ctx,
		bson.M{"_id": oldID, "revoked": false},
		bson.M{"$set": bson.M{"revoked": true, "replacedBy": newID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	_, err = s.col(RefreshTokens).InsertOne(ctx, refreshTokenDoc{
		ID:        newID,
		UserID:    userID,
		TokenHash: newHash,
		ExpiresAt: newExpiry,
		CreatedAt: time.Now().UTC(),
	})
	return mapErr(err)
}

func (s *Store) RevokeAllRefreshTokens(ctx context.Context, userID string) error {
	_, err := s.col(RefreshTokens).UpdateMany(ctx,
		bson.M{"userId": userID, "revoked": false},
		bson.M{"$set": bson.M{"revoked": true}},
	)
	return err
}
