// Package jobs runs background maintenance on a cron schedule.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"doctor-booking-api/internal/booking"
	"doctor-booking-api/internal/model"
)

const defaultBatch = 500

// ElapsedLister finds active appointments whose time has passed.
type ElapsedLister interface {
	ListElapsedAppointments(ctx context.Context, before time.Time, limit int) ([]model.Appointment, error)
}

// Transitioner is satisfied by *booking.Service.
type Transitioner interface {
	Transition(ctx context.Context, id string, to model.Status) error
}

// Result counts what one sweep did.
type Result struct {
	Completed int
	Cancelled int
	Failed    int
}

// Sweeper closes appointments that are in the past: confirmed ones become
// Completed and pending ones Cancelled.
type Sweeper struct {
	list    ElapsedLister
	svc     Transitioner
	log     zerolog.Logger
	now     func() time.Time
	batch   int
	timeout time.Duration
	cron    *cron.Cron
}

type Option func(*Sweeper)

func WithBatch(n int) Option {
	return func(s *Sweeper) {
		if n > 0 {
			s.batch = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) { s.now = now }
}

func WithTimeout(d time.Duration) Option {
	return func(s *Sweeper) { s.timeout = d }
}

func NewSweeper(list ElapsedLister, svc Transitioner, log zerolog.Logger, opts ...Option) *Sweeper {
	s := &Sweeper{
		list:    list,
		svc:     svc,
		log:     log,
		now:     time.Now,
		batch:   defaultBatch,
		timeout: time.Minute,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run performs one sweep. A failed transition is logged and skipped.
func (s *Sweeper) Run(ctx context.Context) (Result, error) {
	var res Result
	due, err := s.list.ListElapsedAppointments(ctx, s.now(), s.batch)
	if err != nil {
		return res, err
	}

	for _, a := range due {
		to := model.StatusCancelled
		if a.Status == model.StatusConfirmed {
			to = model.StatusCompleted
		}
		err := s.svc.Transition(ctx, a.ID, to)
		switch {
		case err == nil:
			if to == model.StatusCompleted {
				res.Completed++
			} else {
				res.Cancelled++
			}
		case errors.Is(err, booking.ErrNotFound), errors.Is(err, booking.ErrInvalidTransition):
			// deleted or moved on since it was listed
			s.log.Debug().Err(err).Str("appointment_id", a.ID).Msg("sweep skipped")
		default:
			res.Failed++
			s.log.Warn().Err(err).Str("appointment_id", a.ID).Str("to", string(to)).Msg("sweep transition failed")
		}
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
	}
	return res, nil
}

// Start schedules Run on a cron expression such as "@every 5m".
func (s *Sweeper) Start(schedule string) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		started := time.Now()
		res, err := s.Run(ctx)
		ev := s.log.Info()
		if err != nil {
			ev = s.log.Error().Err(err)
		}
		ev.Int("completed", res.Completed).
			Int("cancelled", res.Cancelled).
			Int("failed", res.Failed).
			Dur("took", time.Since(started)).
			Msg("expiry sweep")
	})
	if err != nil {
		return err
	}
	s.cron = c
	c.Start()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
