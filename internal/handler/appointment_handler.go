package handler

import (
	"context"

	"doctor-booking-api/internal/booking"
	"doctor-booking-api/internal/model"
	"doctor-booking-api/internal/rpc"
)

func toRPC(a *model.AppointmentView) *rpc.Appointment {
	return &rpc.Appointment{
		ID:         a.ID,
		UserID:     a.UserID,
		DoctorID:   a.DoctorID,
		DoctorName: a.DoctorName,
		DateTime:   a.DateTime,
		Status:     string(a.Status),
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func (h *Handler) ListAppointments(ctx context.Context, _ *rpc.Empty) (*rpc.ListAppointmentsResponse, error) {
	userID, err := uid(ctx)
	if err != nil {
		return nil, err
	}
	list, err := h.svc.List(ctx, userID)
	if err != nil {
		return nil, toStatus(err)
	}
	out := &rpc.ListAppointmentsResponse{Appointments: make([]*rpc.Appointment, 0, len(list))}
	for i := range list {
		out.Appointments = append(out.Appointments, toRPC(&list[i]))
	}
	return out, nil
}

// CreateAppointment always books for the authenticated caller.
func (h *Handler) CreateAppointment(ctx context.Context, req *rpc.CreateAppointmentRequest) (*rpc.MessageResponse, error) {
	userID, err := uid(ctx)
	if err != nil {
		return nil, err
	}
	err = h.svc.Create(ctx, booking.CreateInput{
		UserID:   userID,
		DoctorID: req.DoctorID,
		DateTime: req.DateTime,
		Status:   req.Status,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.MessageResponse{Message: booking.MsgBooked}, nil
}

func (h *Handler) DeleteAppointment(ctx context.Context, req *rpc.DeleteAppointmentRequest) (*rpc.MessageResponse, error) {
	userID, err := uid(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Delete(ctx, req.ID, userID); err != nil {
		return nil, toStatus(err)
	}
	return &rpc.MessageResponse{Message: booking.MsgDeleted}, nil
}
