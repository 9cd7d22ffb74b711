package handler

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"doctor-booking-api/internal/model"
	"doctor-booking-api/internal/rpc"
	"doctor-booking-api/internal/store"
)

func doctorToRPC(d *model.Doctor) *rpc.Doctor {
	return &rpc.Doctor{
		ID:             d.ID,
		Name:           d.Name,
		Specialization: d.Specialization,
		Image:          d.Image,
		Available:      d.Available,
		About:          d.About,
	}
}

func (h *Handler) ListDoctors(ctx context.Context, _ *rpc.Empty) (*rpc.ListDoctorsResponse, error) {
	docs, err := h.store.ListDoctors(ctx)
	if err != nil {
		return nil, h.internal("list doctors", err)
	}
	out := &rpc.ListDoctorsResponse{Doctors: make([]*rpc.Doctor, 0, len(docs))}
	for i := range docs {
		out.Doctors = append(out.Doctors, doctorToRPC(&docs[i]))
	}
	return out, nil
}

func (h *Handler) GetDoctor(ctx context.Context, req *rpc.GetDoctorRequest) (*rpc.Doctor, error) {
	d, err := h.store.DoctorByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, status.Error(codes.NotFound, "Doctor not found")
		}
		return nil, h.internal("get doctor", err)
	}
	return doctorToRPC(d), nil
}
