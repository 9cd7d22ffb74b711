// Package handler implements rpc.BookingServer on top of the booking
// service, the doctor directory and the identity stores.
package handler

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"doctor-booking-api/internal/auth"
	"doctor-booking-api/internal/booking"
	"doctor-booking-api/internal/middleware"
	"doctor-booking-api/internal/rpc"
	"doctor-booking-api/internal/store"
)

// Store is what the handler needs besides the booking service.
type Store interface {
	store.Doctors
	store.Users
	store.RefreshTokens
}

type Handler struct {
	rpc.UnimplementedBookingServer
	svc   *booking.Service
	store Store
	iss   *auth.Issuer
	log   zerolog.Logger
}

var _ rpc.BookingServer = (*Handler)(nil)

func New(svc *booking.Service, st Store, iss *auth.Issuer, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, store: st, iss: iss, log: log}
}

func uid(ctx context.Context) (string, error) {
	id, ok := middleware.UserID(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "no token")
	}
	return id, nil
}

// toStatus maps booking errors to gRPC codes. Messages of the booking
// sentinels are safe to return as is.
func toStatus(err error) error {
	switch {
	case errors.Is(err, booking.ErrInvalidTime),
		errors.Is(err, booking.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, booking.ErrSlotUnavailable):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, booking.ErrDoctorNotFound),
		errors.Is(err, booking.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, booking.ErrPastAppointment),
		errors.Is(err, booking.ErrInvalidTransition):
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	return status.Error(codes.Internal, booking.ErrServer.Error())
}

func (h *Handler) internal(op string, err error) error {
	h.log.Error().Err(err).Str("op", op).Msg("handler failure")
	return status.Error(codes.Internal, booking.ErrServer.Error())
}
