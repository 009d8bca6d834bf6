//go:build unit

package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"chairtime/internal/domain/appointment"
	"chairtime/internal/domain/notification"
	"chairtime/internal/pkg/clock"
	"chairtime/internal/usecase/notify"
	"chairtime/internal/worker"
	"chairtime/tests/common/fake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sweeperEnv struct {
	uow       *fake.UnitOfWork
	publisher *fake.Publisher
	clk       *clock.MockClock
	sweeper   *worker.Sweeper
}

func newSweeperEnv(t *testing.T) *sweeperEnv {
	t.Helper()
	e := &sweeperEnv{
		uow:       fake.NewUnitOfWork(),
		publisher: fake.NewPublisher(),
		clk:       clock.NewMockClock(time.Date(2026, 3, 2, 9, 10, 0, 0, time.UTC)),
	}
	dispatcher := notify.NewDispatcher(e.publisher, fake.NewBadgeCounter(), fake.NewUserDirectory(), e.clk)
	e.sweeper = worker.NewSweeper(e.uow, dispatcher, e.clk, 30*time.Second)
	return e
}

func TestSweepOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("expired pending flips to unanswered", func(t *testing.T) {
		e := newSweeperEnv(t)
		// Seeded pending expires at 09:05; the clock reads 09:10.
		s := fake.NewSeedBuilder(t).Linked()
		e.uow.Tx.AppointmentRepo.Seed(s.Appt)

		n, err := e.sweeper.SweepOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		stored, err := e.uow.Tx.AppointmentRepo.FindByID(ctx, nil, s.Appt.ID())
		require.NoError(t, err)
		assert.Equal(t, appointment.StatusUnanswered, stored.Status())
		assert.Equal(t, appointment.DecisionNoAnswer, stored.StoreDecision())
		assert.Equal(t, appointment.DecisionNoAnswer, stored.FreeBarberDecision())
		assert.Nil(t, stored.PendingExpiresAt())
		assert.Equal(t, int64(2), stored.Version())

		assert.Contains(t, e.uow.Tx.EventRepo.Kinds(s.Appt.ID()), appointment.EventUnanswered)

		// Every distinct participant hears about it once.
		for _, recipientID := range s.Appt.Participants().IDs() {
			rows := e.uow.Tx.NotificationRepo.ByRecipient(recipientID)
			require.Len(t, rows, 1)
			assert.Equal(t, notification.KindBookingUnanswered, rows[0].Kind())

			events := e.publisher.EventsFor(recipientID)
			require.Len(t, events, 1)
			assert.Equal(t, notify.EventAppointmentUnanswered, events[0].Event)
		}
	})

	t.Run("unexpired pending survives", func(t *testing.T) {
		e := newSweeperEnv(t)
		e.clk.Set(time.Date(2026, 3, 2, 9, 2, 0, 0, time.UTC))
		s := fake.NewSeedBuilder(t)
		e.uow.Tx.AppointmentRepo.Seed(s.Appt)

		n, err := e.sweeper.SweepOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		stored, err := e.uow.Tx.AppointmentRepo.FindByID(ctx, nil, s.Appt.ID())
		require.NoError(t, err)
		assert.Equal(t, appointment.StatusPending, stored.Status())
		assert.Empty(t, e.uow.Tx.NotificationRepo.All())
	})

	t.Run("push failure does not block notification rows", func(t *testing.T) {
		e := newSweeperEnv(t)
		s := fake.NewSeedBuilder(t).Linked()
		e.uow.Tx.AppointmentRepo.Seed(s.Appt)
		e.publisher.FailFor[s.StoreOwnerID] = errors.New("channel down")

		n, err := e.sweeper.SweepOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		// The row exists for everyone even though one push died.
		for _, recipientID := range s.Appt.Participants().IDs() {
			require.Len(t, e.uow.Tx.NotificationRepo.ByRecipient(recipientID), 1)
		}
		assert.Empty(t, e.publisher.EventsFor(s.StoreOwnerID))
		assert.Len(t, e.publisher.EventsFor(s.CustomerID), 1)
	})

	t.Run("settled appointments are ignored", func(t *testing.T) {
		e := newSweeperEnv(t)
		s := fake.NewSeedBuilder(t)
		require.NoError(t, s.Appt.Cancel(time.Date(2026, 3, 2, 9, 1, 0, 0, time.UTC)))
		e.uow.Tx.AppointmentRepo.Seed(s.Appt)

		n, err := e.sweeper.SweepOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("whole batch expires in one cycle", func(t *testing.T) {
		e := newSweeperEnv(t)
		first := fake.NewSeedBuilder(t)
		second := fake.NewSeedBuilder(t)
		e.uow.Tx.AppointmentRepo.Seed(first.Appt, second.Appt)

		n, err := e.sweeper.SweepOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}

func TestRunStopsOnCancel(t *testing.T) {
	e := newSweeperEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.sweeper.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}
