package rpc

import (
	"time"
)

// Empty is the request of calls that take no arguments.
type Empty struct{}

func (*Empty) AppendWire(b []byte) []byte { return b }

func (*Empty) UnmarshalWire(b []byte) error { return walk(b, func(field) error { return nil }) }

// ----- identity -----

type RegisterRequest struct {
	Username string `validate:"min=3,max=30,username"`
	Email    string `validate:"required,email"`
	Password string `validate:"min=6"`
}

func (m *RegisterRequest) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.Username)
	b = appendString(b, 2, m.Email)
	return appendString(b, 3, m.Password)
}

func (m *RegisterRequest) UnmarshalWire(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Username = f.str()
		case 2:
			m.Email = f.str()
		case 3:
			m.Password = f.str()
		}
		return nil
	})
}

type LoginRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

func (m *LoginRequest) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.Email)
	return appendString(b, 2, m.Password)
}

func (m *LoginRequest) UnmarshalWire(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Email = f.str()
		case 2:
			m.Password = f.str()
		}
		return nil
	})
}

type RefreshRequest struct {
	RefreshToken string `validate:"required"`
}

func (m *RefreshRequest) AppendWire(b []byte) []byte {
	return appendString(b, 1, m.RefreshToken)
}

func (m *RefreshRequest) UnmarshalWire(b []byte) error {
	return walk(b, func(f field) error {
		if f.num == 1 {
			m.RefreshToken = f.str()
		}
		return nil
	})
}

// AuthResponse is returned by Register, Login and Refresh.
type AuthResponse struct {
	UserID           string
	Username         string
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

func (m *AuthResponse) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.UserID)
	b = appendString(b, 2, m.Username)
	b = appendString(b, 3, m.AccessToken)
	b = appendString(b, 4, m.RefreshToken)
	return appendTimestamp(b, 5, m.RefreshExpiresAt)
}

func (m *AuthResponse) UnmarshalWire(b []byte) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.UserID = f.str()
		case 2:
			m.Username = f.str()
		case 3:
			m.AccessToken = f.str()
		case 4:
			m.RefreshToken = f.str()
		case 5:
			m.RefreshExpiresAt, err = parseTimestamp(f.bytes)
		}
		return err
	})
}

// MessageResponse acknowledges a command with a human readable message.
type MessageResponse struct {
	Message string
}

func (m *MessageResponse) AppendWire(b []byte) []byte {
	return appendString(b, 1, m.Message)
}

func (m *MessageResponse) UnmarshalWire(b []byte) error {
	return walk(b, func(f field) error {
		if f.num == 1 {
			m.Message = f.str()
		}
		return nil
	})
}

// ----- doctors -----

type Doctor struct {
	ID             string
	Name           string
	Specialization string
	Image          string
	Available      bool
	About          string
}

func (m *Doctor) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.ID)
	b = appendString(b, 2, m.Name)
	b = appendString(b, 3, m.Specialization)
	b = appendString(b, 4, m.Image)
	b = appendBool(b, 5, m.Available)
	return appendString(b, 6, m.About)
}

func (m *Doctor) UnmarshalWire(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.ID = f.str()
		case 2:
			m.Name = f.str()
		case 3:
			m.Specialization = f.str()
		case 4:
			m.Image = f.str()
		case 5:
			m.Available = f.varint != 0
		case 6:
			m.About = f.str()
		}
		return nil
	})
}

type GetDoctorRequest struct {
	ID string
}

func (m *GetDoctorRequest) AppendWire(b []byte) []byte {
	return appendString(b, 1, m.ID)
}

func (m *GetDoctorRequest) UnmarshalWire(b []byte) error {
	return walk(b, func(f field) error {
		if f.num == 1 {
			m.ID = f.str()
		}
		return nil
	})
}

type ListDoctorsResponse struct {
	Doctors []*Doctor
}

func (m *ListDoctorsResponse) AppendWire(b []byte) []byte {
	for _, d := range m.Doctors {
		b = appendMessage(b, 1, d)
	}
	return b
}

func (m *ListDoctorsResponse) UnmarshalWire(b []byte) error {
	return walk(b, func(f field) error {
		if f.num != 1 {
			return nil
		}
		d := &Doctor{}
		if err := d.UnmarshalWire(f.bytes); err != nil {
			return err
		}
		m.Doctors = append(m.Doctors, d)
		return nil
	})
}

// ----- appointments -----

type Appointment struct {
	ID         string
	UserID     string
	DoctorID   string
	DoctorName string
	DateTime   time.Time
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (m *Appointment) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.ID)
	b = appendString(b, 2, m.UserID)
	b = appendString(b, 3, m.DoctorID)
	b = appendString(b, 4, m.DoctorName)
	b = appendTimestamp(b, 5, m.DateTime)
	b = appendString(b, 6, m.Status)
	b = appendTimestamp(b, 7, m.CreatedAt)
	return appendTimestamp(b, 8, m.UpdatedAt)
}

func (m *Appointment) UnmarshalWire(b []byte) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.ID = f.str()
		case 2:
			m.UserID = f.str()
		case 3:
			m.DoctorID = f.str()
		case 4:
			m.DoctorName = f.str()
		case 5:
			m.DateTime, err = parseTimestamp(f.bytes)
		case 6:
			m.Status = f.str()
		case 7:
			m.CreatedAt, err = parseTimestamp(f.bytes)
		case 8:
			m.UpdatedAt, err = parseTimestamp(f.bytes)
		}
		return err
	})
}

type ListAppointmentsResponse struct {
	Appointments []*Appointment
}

func (m *ListAppointmentsResponse) AppendWire(b []byte) []byte {
	for _, a := range m.Appointments {
		b = appendMessage(b, 1, a)
	}
	return b
}

func (m *ListAppointmentsResponse) UnmarshalWire(b []byte) error {
	return walk(b, func(f field) error {
		if f.num != 1 {
			return nil
		}
		a := &Appointment{}
		if err := a.UnmarshalWire(f.bytes); err != nil {
			return err
		}
		m.Appointments = append(m.Appointments, a)
		return nil
	})
}

// CreateAppointmentRequest books for the authenticated caller. Status is
// optional and may only be "Pending".
type CreateAppointmentRequest struct {
	DoctorID string
	DateTime time.Time
	Status   string
}

func (m *CreateAppointmentRequest) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.DoctorID)
	b = appendTimestamp(b, 2, m.DateTime)
	return appendString(b, 3, m.Status)
}

func (m *CreateAppointmentRequest) UnmarshalWire(b []byte) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.DoctorID = f.str()
		case 2:
			m.DateTime, err = parseTimestamp(f.bytes)
		case 3:
			m.Status = f.str()
		}
		return err
	})
}

type DeleteAppointmentRequest struct {
	ID string
}

func (m *DeleteAppointmentRequest) AppendWire(b []byte) []byte {
	return appendString(b, 1, m.ID)
}

func (m *DeleteAppointmentRequest) UnmarshalWire(b []byte) error {
	return walk(b, func(f field) error {
		if f.num == 1 {
			m.ID = f.str()
		}
		return nil
	})
}
