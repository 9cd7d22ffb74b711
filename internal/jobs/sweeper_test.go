package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doctor-booking-api/internal/booking"
	"doctor-booking-api/internal/jobs"
	"doctor-booking-api/internal/model"
	"doctor-booking-api/internal/store/memory"
)

var now = time.Date(2029, 6, 1, 9, 0, 0, 0, time.UTC)

func seed(t *testing.T, st *memory.Store, id string, at time.Time, s model.Status) {
	t.Helper()
	require.NoError(t, st.CreateAppointment(context.Background(), &model.Appointment{
		ID: id, UserID: "u1", DoctorID: "d1", DateTime: at, Status: s,
	}))
}

func status(t *testing.T, st *memory.Store, id string) model.Status {
	t.Helper()
	a, err := st.GetAppointment(context.Background(), id)
	require.NoError(t, err)
	return a.Status
}

func TestRunClosesElapsed(t *testing.T) {
	st := memory.New()
	seed(t, st, "confirmed-past", now.Add(-2*time.Hour), model.StatusConfirmed)
	seed(t, st, "pending-past", now.Add(-time.Hour), model.StatusPending)
	seed(t, st, "pending-future", now.Add(time.Hour), model.StatusPending)
	seed(t, st, "cancelled-past", now.Add(-3*time.Hour), model.StatusCancelled)

	clock := func() time.Time { return now }
	svc := booking.NewService(st, st, booking.WithClock(clock))
	sw := jobs.NewSweeper(st, svc, zerolog.Nop(), jobs.WithClock(clock))

	res, err := sw.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, jobs.Result{Completed: 1, Cancelled: 1}, res)

	assert.Equal(t, model.StatusCompleted, status(t, st, "confirmed-past"))
	assert.Equal(t, model.StatusCancelled, status(t, st, "pending-past"))
	assert.Equal(t, model.StatusPending, status(t, st, "pending-future"))
	assert.Equal(t, model.StatusCancelled, status(t, st, "cancelled-past"))

	// second run has nothing left to do
	res, err = sw.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, jobs.Result{}, res)
}

func TestRunRespectsBatch(t *testing.T) {
	st := memory.New()
	for i, id := range []string{"a", "b", "c"} {
		seed(t, st, id, now.Add(-time.Duration(i+1)*time.Hour), model.StatusPending)
	}
	clock := func() time.Time { return now }
	svc := booking.NewService(st, st, booking.WithClock(clock))
	sw := jobs.NewSweeper(st, svc, zerolog.Nop(), jobs.WithClock(clock), jobs.WithBatch(2))

	res, err := sw.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Cancelled)
	// oldest first
	assert.Equal(t, model.StatusCancelled, status(t, st, "c"))

	res, err = sw.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Cancelled)
}

type flaky struct {
	calls int
}

func (f *flaky) Transition(_ context.Context, id string, _ model.Status) error {
	f.calls++
	switch id {
	case "boom":
		return booking.ErrServer
	case "gone":
		return booking.ErrNotFound
	}
	return nil
}

type fixedList []model.Appointment

func (l fixedList) ListElapsedAppointments(context.Context, time.Time, int) ([]model.Appointment, error) {
	return l, nil
}

func TestRunContinuesPastFailures(t *testing.T) {
	list := fixedList{
		{ID: "boom", Status: model.StatusPending},
		{ID: "gone", Status: model.StatusPending},
		{ID: "ok", Status: model.StatusConfirmed},
	}
	f := &flaky{}
	res, err := jobs.NewSweeper(list, f, zerolog.Nop()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, f.calls)
	assert.Equal(t, jobs.Result{Completed: 1, Failed: 1}, res)
}

type failingList struct{}

func (failingList) ListElapsedAppointments(context.Context, time.Time, int) ([]model.Appointment, error) {
	return nil, errors.New("db down")
}

func TestRunListError(t *testing.T) {
	_, err := jobs.NewSweeper(failingList{}, &flaky{}, zerolog.Nop()).Run(context.Background())
	require.Error(t, err)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	sw := jobs.NewSweeper(fixedList{}, &flaky{}, zerolog.Nop())
	require.Error(t, sw.Start("every now and then"))
	sw.Stop()

	require.NoError(t, sw.Start("@every 1h"))
	sw.Stop()
}
