package handler

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"doctor-booking-api/internal/auth"
	"doctor-booking-api/internal/model"
	"doctor-booking-api/internal/rpc"
	"doctor-booking-api/internal/store"
)

func (h *Handler) Register(ctx context.Context, req *rpc.RegisterRequest) (*rpc.AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, h.internal("hash password", err)
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := h.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// don't reveal whether the email or the username is taken
			return nil, status.Error(codes.AlreadyExists, "user already exists")
		}
		return nil, h.internal("create user", err)
	}

	h.log.Info().Str("user_id", u.ID).Msg("user registered")
	return h.issue(ctx, u)
}

func (h *Handler) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	u, err := h.store.UserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, status.Error(codes.Unauthenticated, "Email or password is incorrect")
		}
		return nil, h.internal("find user", err)
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, status.Error(codes.Unauthenticated, "Email or password is incorrect")
	}
	return h.issue(ctx, u)
}

// issue creates an access token and a stored refresh token for u.
func (h *Handler) issue(ctx context.Context, u *model.User) (*rpc.AuthResponse, error) {
	access, err := h.iss.Access(u.ID)
	if err != nil {
		return nil, h.internal("sign token", err)
	}
	raw, hash, exp, err := h.iss.NewRefresh()
	if err != nil {
		return nil, h.internal("generate refresh token", err)
	}
	if _, err := h.store.CreateRefreshToken(ctx, u.ID, hash, exp); err != nil {
		return nil, h.internal("store refresh token", err)
	}
	return &rpc.AuthResponse{
		UserID:           u.ID,
		Username:         u.Username,
		AccessToken:      access,
		RefreshToken:     raw,
		RefreshExpiresAt: exp,
	}, nil
}

// Refresh rotates a refresh token. Presenting a token that was already
// rotated revokes every token of its owner.
func (h *Handler) Refresh(ctx context.Context, req *rpc.RefreshRequest) (*rpc.AuthResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	rt, err := h.store.GetRefreshTokenByHash(ctx, auth.HashRefreshToken(req.RefreshToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, status.Error(codes.Unauthenticated, "invalid refresh token")
		}
		return nil, h.internal("find refresh token", err)
	}
	if rt.Revoked {
		return nil, h.reuse(ctx, rt.UserID)
	}
	if time.Now().After(rt.ExpiresAt) {
		return nil, status.Error(codes.Unauthenticated, "refresh token expired")
	}

	u, err := h.store.UserByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, status.Error(codes.Unauthenticated, "invalid refresh token")
		}
		return nil, h.internal("find user", err)
	}

	raw, hash, exp, err := h.iss.NewRefresh()
	if err != nil {
		return nil, h.internal("generate refresh token", err)
	}
	if err := h.store.RotateRefreshToken(ctx, rt.ID, uuid.New().String(), u.ID, hash, exp); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// lost a race with another rotation of the same token
			return nil, h.reuse(ctx, u.ID)
		}
		return nil, h.internal("rotate refresh token", err)
	}
	access, err := h.iss.Access(u.ID)
	if err != nil {
		return nil, h.internal("sign token", err)
	}
	return &rpc.AuthResponse{
		UserID:           u.ID,
		Username:         u.Username,
		AccessToken:      access,
		RefreshToken:     raw,
		RefreshExpiresAt: exp,
	}, nil
}

func (h *Handler) reuse(ctx context.Context, userID string) error {
	h.log.Warn().Str("user_id", userID).Msg("refresh token reuse, revoking all sessions")
	if err := h.store.RevokeAllRefreshTokens(ctx, userID); err != nil {
		return h.internal("revoke refresh tokens", err)
	}
	return status.Error(codes.Unauthenticated, "invalid refresh token")
}

func (h *Handler) Logout(ctx context.Context, _ *rpc.Empty) (*rpc.MessageResponse, error) {
	userID, err := uid(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.store.RevokeAllRefreshTokens(ctx, userID); err != nil {
		return nil, h.internal("revoke refresh tokens", err)
	}
	return &rpc.MessageResponse{Message: "Logged out successfully"}, nil
}
