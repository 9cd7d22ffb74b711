package gateway

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"doctor-booking-api/internal/handler"
	"doctor-booking-api/internal/middleware"
	"doctor-booking-api/internal/rpc"
)

// Field rules live on the rpc requests; the bodies only insist on
// presence so every field message reaches the client at once.
type registerBody struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	EmailID  string `json:"emailId"`
	Password string `json:"password" binding:"required"`
}

type loginBody struct {
	Email    string `json:"email"`
	EmailID  string `json:"emailId"`
	Password string `json:"password" binding:"required"`
}

func pick(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func badBody(c *gin.Context, err error) {
	msg := "Request body must be valid JSON"
	if msgs := handler.ValidationMessages(err); len(msgs) > 0 {
		msg = strings.Join(msgs, ", ")
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Validation error", "message": msg})
}

// setSession writes the token pair as http-only cookies.
func (s *server) setSession(c *gin.Context, resp *rpc.AuthResponse) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessCookie, resp.AccessToken, int(s.iss.AccessTTL().Seconds()), "/", "", s.secure, true)
	c.SetCookie(middleware.RefreshCookie, resp.RefreshToken, int(time.Until(resp.RefreshExpiresAt).Seconds()), "/api/", "", s.secure, true)
}

func sessionJSON(message string, resp *rpc.AuthResponse) gin.H {
	return gin.H{
		"success":       true,
		"message":       message,
		"userId":        resp.UserID,
		"username":      resp.Username,
		"jwt_token":     resp.AccessToken,
		"refresh_token": resp.RefreshToken,
	}
}

func (s *server) register(c *gin.Context) {
	var b registerBody
	if err := c.ShouldBindJSON(&b); err != nil {
		badBody(c, err)
		return
	}
	resp, err := s.h.Register(c.Request.Context(), &rpc.RegisterRequest{
		Username: b.Username,
		Email:    pick(b.EmailID, b.Email),
		Password: b.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	s.setSession(c, resp)
	c.JSON(http.StatusOK, sessionJSON("User registered successfully", resp))
}

func (s *server) login(c *gin.Context) {
	var b loginBody
	if err := c.ShouldBindJSON(&b); err != nil {
		badBody(c, err)
		return
	}
	resp, err := s.h.Login(c.Request.Context(), &rpc.LoginRequest{
		Email:    pick(b.EmailID, b.Email),
		Password: b.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	s.setSession(c, resp)
	c.JSON(http.StatusOK, sessionJSON("Login successful", resp))
}

// refresh takes the token from the JSON body or the refresh cookie.
func (s *server) refresh(c *gin.Context) {
	var b struct {
		RefreshToken string `json:"refresh_token"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&b); err != nil {
			badBody(c, err)
			return
		}
	}
	if b.RefreshToken == "" {
		b.RefreshToken, _ = c.Cookie(middleware.RefreshCookie)
	}
	resp, err := s.h.Refresh(c.Request.Context(), &rpc.RefreshRequest{RefreshToken: b.RefreshToken})
	if err != nil {
		writeError(c, err)
		return
	}
	s.setSession(c, resp)
	c.JSON(http.StatusOK, sessionJSON("Token refreshed", resp))
}

func (s *server) logout(c *gin.Context) {
	resp, err := s.h.Logout(c.Request.Context(), &rpc.Empty{})
	if err != nil {
		writeError(c, err)
		return
	}
	c.SetCookie(middleware.AccessCookie, "", -1, "/", "", s.secure, true)
	c.SetCookie(middleware.RefreshCookie, "", -1, "/api/", "", s.secure, true)
	c.JSON(http.StatusOK, gin.H{"message": resp.Message})
}

type doctorJSON struct {
	ID             string `json:"_id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Image          string `json:"image"`
	Availability   bool   `json:"availability"`
	About          string `json:"about"`
}

func toDoctorJSON(d *rpc.Doctor) doctorJSON {
	return doctorJSON{
		ID:             d.ID,
		Name:           d.Name,
		Specialization: d.Specialization,
		Image:          d.Image,
		Availability:   d.Available,
		About:          d.About,
	}
}

func (s *server) listDoctors(c *gin.Context) {
	resp, err := s.h.ListDoctors(c.Request.Context(), &rpc.Empty{})
	if err != nil {
		writeError(c, err)
		return
	}
	data := make([]doctorJSON, 0, len(resp.Doctors))
	for _, d := range resp.Doctors {
		data = append(data, toDoctorJSON(d))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(data), "data": data})
}

func (s *server) getDoctor(c *gin.Context) {
	d, err := s.h.GetDoctor(c.Request.Context(), &rpc.GetDoctorRequest{ID: c.Param("id")})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": toDoctorJSON(d)})
}

type doctorRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type appointmentJSON struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"userId"`
	Doctor    doctorRef `json:"doctorId"`
	DateTime  time.Time `json:"appointmentDateTime"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *server) listAppointments(c *gin.Context) {
	resp, err := s.h.ListAppointments(c.Request.Context(), &rpc.Empty{})
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]appointmentJSON, 0, len(resp.Appointments))
	for _, a := range resp.Appointments {
		out = append(out, appointmentJSON{
			ID:        a.ID,
			UserID:    a.UserID,
			Doctor:    doctorRef{ID: a.DoctorID, Name: a.DoctorName},
			DateTime:  a.DateTime,
			Status:    a.Status,
			CreatedAt: a.CreatedAt,
			UpdatedAt: a.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// createBody.UserID is accepted for compatibility and ignored; bookings
// always belong to the authenticated caller.
type createBody struct {
	UserID   string `json:"userId"`
	DoctorID string `json:"doctorId" binding:"required"`
	DateTime string `json:"dateTime" binding:"required"`
	Status   string `json:"status"`
}

// Browsers post datetime-local values without a zone; those are read as UTC.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func parseDateTime(s string) (time.Time, error) {
	var err error
	for _, layout := range dateTimeLayouts {
		var t time.Time
		if t, err = time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func (s *server) createAppointment(c *gin.Context) {
	var b createBody
	if err := c.ShouldBindJSON(&b); err != nil {
		badBody(c, err)
		return
	}
	at, err := parseDateTime(strings.TrimSpace(b.DateTime))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation error", "message": "Appointment date and time is invalid"})
		return
	}

	resp, err := s.h.CreateAppointment(c.Request.Context(), &rpc.CreateAppointmentRequest{
		DoctorID: b.DoctorID,
		DateTime: at,
		Status:   b.Status,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": resp.Message})
}

func (s *server) deleteAppointment(c *gin.Context) {
	resp, err := s.h.DeleteAppointment(c.Request.Context(), &rpc.DeleteAppointmentRequest{ID: c.Param("id")})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": resp.Message})
}
