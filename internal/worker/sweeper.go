package worker

import (
	"context"
	"log/slog"
	"time"

	"chairtime/internal/domain/appointment"
	"chairtime/internal/domain/notification"
	"chairtime/internal/pkg/clock"
	"chairtime/internal/pkg/errs"
	"chairtime/internal/pkg/metrics"
	"chairtime/internal/usecase/notify"
	"chairtime/internal/usecase/shared"

	"github.com/google/uuid"
)

// sweepBatchLimit bounds how many expired rows one cycle claims.
const sweepBatchLimit = 100

// Sweeper reclaims pending appointments nobody answered in time.
type Sweeper struct {
	uow        shared.UnitOfWork
	dispatcher notify.Dispatcher
	clock      clock.Clock
	interval   time.Duration
}

func NewSweeper(uow shared.UnitOfWork, dispatcher notify.Dispatcher, clk clock.Clock, interval time.Duration) *Sweeper {
	return &Sweeper{uow: uow, dispatcher: dispatcher, clock: clk, interval: interval}
}

// Run loops until the context is cancelled, observing the shutdown signal
// between iterations.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("timeout sweeper started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("timeout sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				slog.Error("sweep cycle failed", "error", err)
			}
		}
	}
}

// SweepOnce runs one cycle and returns how many appointments expired.
// The status flip commits first; notifications follow per recipient so one
// bad recipient never rolls back the batch.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	now := s.clock.Now()
	metrics.SweepCyclesTotal.Inc()

	expired, err := s.expireBatch(ctx, now)
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}
	metrics.SweepExpiredTotal.Add(float64(len(expired)))

	for _, appt := range expired {
		s.notifyRecipients(ctx, appt)
	}
	return len(expired), nil
}

func (s *Sweeper) expireBatch(ctx context.Context, now time.Time) ([]*appointment.Appointment, error) {
	var expired []*appointment.Appointment
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		expired = expired[:0]

		candidates, err := tx.Appointments().FindExpiredPending(ctx, tx.DB(), now, sweepBatchLimit)
		if err != nil {
			return errs.Wrap(err, "failed to list expired appointments")
		}
		if len(candidates) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, len(candidates))
		byID := make(map[uuid.UUID]*appointment.Appointment, len(candidates))
		for i, a := range candidates {
			ids[i] = a.ID()
			byID[a.ID()] = a
		}

		// One statement for the whole batch keeps write amplification flat.
		flipped, err := tx.Appointments().ExpireBatch(ctx, tx.DB(), ids, now)
		if err != nil {
			return errs.Wrap(err, "failed to expire appointment batch")
		}

		for _, id := range flipped {
			if err := tx.Events().Append(ctx, tx.DB(), id, appointment.EventUnanswered, nil, nil, now); err != nil {
				return errs.Wrap(err, "failed to record expiry event")
			}
			expired = append(expired, byID[id])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expired, nil
}

// notifyRecipients creates one unanswered notification per distinct
// participant, each in its own transaction so failures stay isolated.
func (s *Sweeper) notifyRecipients(ctx context.Context, appt *appointment.Appointment) {
	for _, recipientID := range appt.Participants().IDs() {
		err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			_, err := s.dispatcher.CreateAndPush(ctx, tx, notify.CreateInput{
				RecipientID:   recipientID,
				Kind:          notification.KindBookingUnanswered,
				CorrelationID: appt.ID(),
				Topic:         "bookings",
				Payload: notification.Payload{
					"message": "booking request expired without an answer",
					"start":   appt.Window().Start(),
					"end":     appt.Window().End(),
				},
				Event: notify.EventAppointmentUnanswered,
			})
			return err
		})
		if err != nil {
			slog.Error("failed to notify recipient about expiry",
				"appointment_id", appt.ID(),
				"recipient_id", recipientID,
				"error", err)
		}
	}
}
