package model

import "time"

type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusCancelled Status = "Cancelled"
	StatusCompleted Status = "Completed"
)

// ActiveStatuses occupy a slot and block other bookings for it.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Doctor struct {
	ID             string
	Name           string
	Specialization string
	Image          string
	Available      bool
	About          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Appointment struct {
	ID        string
	UserID    string
	DoctorID  string
	DateTime  time.Time
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppointmentView is an appointment joined with the doctor's display name.
type AppointmentView struct {
	Appointment
	DoctorName string
}

type RefreshToken struct {
	ID         string
	UserID     string
	TokenHash  string
	ExpiresAt  time.Time
	Revoked    bool
	ReplacedBy *string
	CreatedAt  time.Time
}
