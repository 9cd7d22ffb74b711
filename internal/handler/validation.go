package handler

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var usernameRE = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRE.MatchString(fl.Field().String())
	})
	return v
}

// fieldMessages is keyed by "Field.tag", falling back to "Field".
var fieldMessages = map[string]string{
	"Username":          "Username must be between 3 and 30 characters",
	"Username.username": "Username can only contain letters, numbers, and underscores",
	"Email":             "Please provide a valid email address",
	"EmailID":           "Please provide a valid email address",
	"Password":          "Password must be at least 6 characters long",
	"Password.required": "Password is required",
	"DoctorID":          "Doctor ID is required",
	"DateTime":          "Appointment date and time is required",
	"RefreshToken":      "refresh token required",
}

// ValidationMessages turns validator errors into client-facing messages in
// field order. It returns nil for any other error.
func ValidationMessages(err error) []string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msg, ok := fieldMessages[fe.StructField()+"."+fe.Tag()]
		if !ok {
			msg, ok = fieldMessages[fe.StructField()]
		}
		if !ok {
			msg = fe.Error()
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

func validateRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		if msgs := ValidationMessages(err); msgs != nil {
			return invalid(msgs)
		}
		return err
	}
	return nil
}

func invalid(msgs []string) error {
	return status.Error(codes.InvalidArgument, strings.Join(msgs, ", "))
}
