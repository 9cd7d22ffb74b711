package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"doctor-booking-api/internal/booking"
)

var httpStatus = map[codes.Code]int{
	codes.InvalidArgument:    http.StatusBadRequest,
	codes.FailedPrecondition: http.StatusBadRequest,
	codes.Unauthenticated:    http.StatusUnauthorized,
	codes.PermissionDenied:   http.StatusForbidden,
	codes.NotFound:           http.StatusNotFound,
	codes.AlreadyExists:      http.StatusConflict,
	codes.ResourceExhausted:  http.StatusTooManyRequests,
}

// titles for the booking errors, keyed by their message
var titles = map[string]string{
	booking.ErrInvalidTime.Error():     "Invalid appointment time",
	booking.ErrSlotUnavailable.Error(): "Time slot unavailable",
	booking.ErrDoctorNotFound.Error():  "Doctor not found",
	booking.ErrNotFound.Error():        "Appointment not found",
	booking.ErrPastAppointment.Error(): "Cannot delete past appointment",
}

var codeTitles = map[codes.Code]string{
	codes.InvalidArgument:   "Validation error",
	codes.Unauthenticated:   "Invalid credentials",
	codes.NotFound:          "Not found",
	codes.AlreadyExists:     "User already exists",
	codes.ResourceExhausted: "Too many requests",
}

// writeError renders a handler error as {"error", "message"}.
func writeError(c *gin.Context, err error) {
	st, _ := status.FromError(err)
	code := http.StatusInternalServerError
	if v, ok := httpStatus[st.Code()]; ok {
		code = v
	}
	title, ok := titles[st.Message()]
	if !ok {
		title, ok = codeTitles[st.Code()]
	}
	if !ok || code == http.StatusInternalServerError {
		title = "Server error"
	}
	msg := st.Message()
	if code == http.StatusInternalServerError {
		msg = booking.ErrServer.Error()
	}
	c.JSON(code, gin.H{"error": title, "message": msg})
}
