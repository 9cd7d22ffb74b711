package booking

import (
	"fmt"

	"doctor-booking-api/internal/model"
)

// InitialStatus is the state every new appointment starts in.
const InitialStatus = model.StatusPending

// allowed transitions; Cancelled and Completed have no way out
var transitions = map[model.Status][]model.Status{
	model.StatusPending:   {model.StatusConfirmed, model.StatusCancelled},
	model.StatusConfirmed: {model.StatusConfirmed, model.StatusCancelled, model.StatusCompleted},
}

// CanTransition reports whether an appointment may move from one status to another.
func CanTransition(from, to model.Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func ParseStatus(s string) (model.Status, error) {
	st := model.Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown appointment status %q", s)
	}
	return st, nil
}
