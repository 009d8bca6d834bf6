//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"chairtime/internal/domain/appointment"
	"chairtime/internal/domain/notification"
	"chairtime/internal/pkg/clock"
	"chairtime/internal/usecase/commands"
	"chairtime/internal/usecase/notify"
	"chairtime/tests/common/fake"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type approvalEnv struct {
	uow       *fake.UnitOfWork
	publisher *fake.Publisher
	clk       *clock.MockClock
	uc        commands.ApprovalCommands
}

func newApprovalEnv(t *testing.T) *approvalEnv {
	t.Helper()
	e := &approvalEnv{
		uow:       fake.NewUnitOfWork(),
		publisher: fake.NewPublisher(),
		clk:       clock.NewMockClock(time.Date(2026, 3, 2, 9, 10, 0, 0, time.UTC)),
	}
	dispatcher := notify.NewDispatcher(e.publisher, fake.NewBadgeCounter(), fake.NewUserDirectory(), e.clk)
	e.uc = commands.NewApprovalUseCase(e.uow, dispatcher, e.clk)
	return e
}

// seedRequested stores the aggregate plus the request notifications the
// booking flow would have produced.
func (e *approvalEnv) seedRequested(t *testing.T, b *fake.SeedBuilder) {
	t.Helper()
	e.uow.Tx.AppointmentRepo.Seed(b.Appt)
	for _, recipientID := range b.RequestedRecipients {
		n, err := notification.New(recipientID, notification.KindBookingRequested, b.Appt.ID(), "bookings",
			notification.Payload{"message": "new booking request"}, b.Appt.CreatedAt())
		require.NoError(t, err)
		_, err = e.uow.Tx.NotificationRepo.Create(context.Background(), nil, n)
		require.NoError(t, err)
	}
}

func TestDecide(t *testing.T) {
	ctx := context.Background()

	t.Run("store approval settles an unlinked booking", func(t *testing.T) {
		e := newApprovalEnv(t)
		s := fake.NewSeedBuilder(t)
		e.seedRequested(t, s)

		result, err := e.uc.Decide(ctx, s.Appt.ID(), s.StoreOwnerID, true)
		require.NoError(t, err)
		assert.True(t, result.FullyApproved)
		assert.Equal(t, appointment.StatusApproved, result.Status)

		stored, err := e.uow.Tx.AppointmentRepo.FindByID(ctx, nil, s.Appt.ID())
		require.NoError(t, err)
		assert.Equal(t, appointment.StatusApproved, stored.Status())
		assert.Equal(t, int64(2), stored.Version())

		customer := e.uow.Tx.NotificationRepo.ByRecipient(s.CustomerID)
		require.Len(t, customer, 1)
		assert.Equal(t, notification.KindBookingApproved, customer[0].Kind())

		kinds := e.uow.Tx.EventRepo.Kinds(s.Appt.ID())
		assert.Equal(t, []appointment.EventKind{appointment.EventDecided, appointment.EventApproved}, kinds)
	})

	t.Run("access control", func(t *testing.T) {
		e := newApprovalEnv(t)
		s := fake.NewSeedBuilder(t)
		e.seedRequested(t, s)

		_, err := e.uc.Decide(ctx, s.Appt.ID(), uuid.New(), true)
		require.ErrorIs(t, err, commands.ErrNotParticipant)

		_, err = e.uc.Decide(ctx, s.Appt.ID(), s.CustomerID, true)
		require.ErrorIs(t, err, commands.ErrCannotDecide)

		_, err = e.uc.Decide(ctx, uuid.New(), s.StoreOwnerID, true)
		require.ErrorIs(t, err, commands.ErrAppointmentNotFound)
	})

	t.Run("second decision conflicts", func(t *testing.T) {
		e := newApprovalEnv(t)
		s := fake.NewSeedBuilder(t)
		e.seedRequested(t, s)

		_, err := e.uc.Decide(ctx, s.Appt.ID(), s.StoreOwnerID, true)
		require.NoError(t, err)

		_, err = e.uc.Decide(ctx, s.Appt.ID(), s.StoreOwnerID, false)
		require.ErrorIs(t, err, commands.ErrDecisionAlreadyMade)
	})

	t.Run("barber rejection patches the store-facing request", func(t *testing.T) {
		e := newApprovalEnv(t)
		s := fake.NewSeedBuilder(t).Linked()
		e.seedRequested(t, s)

		result, err := e.uc.Decide(ctx, s.Appt.ID(), s.FreeBarberID, false)
		require.NoError(t, err)
		assert.Equal(t, appointment.StatusRejected, result.Status)

		// Customer hears the barber declined.
		customer := e.uow.Tx.NotificationRepo.ByRecipient(s.CustomerID)
		require.Len(t, customer, 1)
		assert.Equal(t, notification.KindBarberRejected, customer[0].Kind())

		// The store owner's original request is patched, not deleted.
		owner := e.uow.Tx.NotificationRepo.ByRecipient(s.StoreOwnerID)
		var requested *notification.Notification
		for _, n := range owner {
			if n.Kind() == notification.KindBookingRequested {
				requested = n
			}
		}
		require.NotNil(t, requested)
		assert.True(t, requested.IsRead())
		assert.Equal(t, "barber declined, awaiting new customer choice", requested.Payload()["message"])
	})

	t.Run("store rejection patches the barber-facing request", func(t *testing.T) {
		e := newApprovalEnv(t)
		s := fake.NewSeedBuilder(t).Linked()
		e.seedRequested(t, s)

		_, err := e.uc.Decide(ctx, s.Appt.ID(), s.StoreOwnerID, false)
		require.NoError(t, err)

		barber := e.uow.Tx.NotificationRepo.ByRecipient(s.FreeBarberID)
		var requested *notification.Notification
		for _, n := range barber {
			if n.Kind() == notification.KindBookingRequested {
				requested = n
			}
		}
		require.NotNil(t, requested)
		assert.True(t, requested.IsRead())
		assert.Equal(t, "store declined, awaiting new customer choice", requested.Payload()["message"])
	})

	t.Run("linked approval needs both sides", func(t *testing.T) {
		e := newApprovalEnv(t)
		s := fake.NewSeedBuilder(t).Linked()
		e.seedRequested(t, s)

		result, err := e.uc.Decide(ctx, s.Appt.ID(), s.FreeBarberID, true)
		require.NoError(t, err)
		assert.False(t, result.FullyApproved)
		assert.Equal(t, appointment.StatusPending, result.Status)

		customer := e.uow.Tx.NotificationRepo.ByRecipient(s.CustomerID)
		require.Len(t, customer, 1)
		assert.Equal(t, notification.KindBarberApproved, customer[0].Kind())
		assert.Equal(t, "barber approved, awaiting store confirmation", customer[0].Payload()["message"])

		result, err = e.uc.Decide(ctx, s.Appt.ID(), s.StoreOwnerID, true)
		require.NoError(t, err)
		assert.True(t, result.FullyApproved)
	})

	t.Run("free barber only approval invites a store pick", func(t *testing.T) {
		e := newApprovalEnv(t)
		s := fake.NewSeedBuilder(t).FreeBarberOnly()
		e.seedRequested(t, s)

		result, err := e.uc.Decide(ctx, s.Appt.ID(), s.FreeBarberID, true)
		require.NoError(t, err)
		assert.True(t, result.FullyApproved)

		customer := e.uow.Tx.NotificationRepo.ByRecipient(s.CustomerID)
		require.Len(t, customer, 1)
		assert.Equal(t, notification.KindBarberApproved, customer[0].Kind())
		assert.Equal(t, "barber approved, proceed to pick a store", customer[0].Payload()["message"])
	})

	t.Run("barber approval cascades over competing requests", func(t *testing.T) {
		e := newApprovalEnv(t)
		winner := fake.NewSeedBuilder(t).FreeBarberOnly()
		e.seedRequested(t, winner)

		loser := fake.NewSeedBuilder(t).FreeBarberOnly()
		loser.SetFreeBarber(winner.FreeBarberID)
		e.seedRequested(t, loser)

		_, err := e.uc.Decide(ctx, winner.Appt.ID(), winner.FreeBarberID, true)
		require.NoError(t, err)

		superseded, err := e.uow.Tx.AppointmentRepo.FindByID(ctx, nil, loser.Appt.ID())
		require.NoError(t, err)
		assert.Equal(t, appointment.StatusRejected, superseded.Status())

		// The loser's booker gets a fresh rejection and the stale request
		// notification is patched.
		booker := e.uow.Tx.NotificationRepo.ByRecipient(loser.CustomerID)
		var rejected *notification.Notification
		for _, n := range booker {
			if n.Kind() == notification.KindBookingRejected {
				rejected = n
			}
		}
		require.NotNil(t, rejected)
		assert.Equal(t, loser.Appt.ID(), rejected.CorrelationID())

		stale, err := e.uow.Tx.NotificationRepo.FindByCorrelation(ctx, nil, loser.Appt.ID(), notification.KindBookingRequested, nil)
		require.NoError(t, err)
		for _, n := range stale {
			assert.True(t, n.IsRead())
			assert.Equal(t, "now unavailable", n.Payload()["message"])
		}

		assert.Contains(t, e.uow.Tx.EventRepo.Kinds(loser.Appt.ID()), appointment.EventSuperseded)
	})

	t.Run("full approval cascades over chair overlaps", func(t *testing.T) {
		e := newApprovalEnv(t)
		winner := fake.NewSeedBuilder(t)
		e.seedRequested(t, winner)

		// Same chair, overlapping window, different customer.
		rival := fake.NewSeedBuilder(t)
		rival.SetChair(*winner.Appt.ChairID(), winner.StoreOwnerID)
		e.seedRequested(t, rival)

		_, err := e.uc.Decide(ctx, winner.Appt.ID(), winner.StoreOwnerID, true)
		require.NoError(t, err)

		superseded, err := e.uow.Tx.AppointmentRepo.FindByID(ctx, nil, rival.Appt.ID())
		require.NoError(t, err)
		assert.Equal(t, appointment.StatusRejected, superseded.Status())
	})

	t.Run("pending rival on another chair survives", func(t *testing.T) {
		e := newApprovalEnv(t)
		winner := fake.NewSeedBuilder(t)
		e.seedRequested(t, winner)

		other := fake.NewSeedBuilder(t)
		e.seedRequested(t, other)

		_, err := e.uc.Decide(ctx, winner.Appt.ID(), winner.StoreOwnerID, true)
		require.NoError(t, err)

		untouched, err := e.uow.Tx.AppointmentRepo.FindByID(ctx, nil, other.Appt.ID())
		require.NoError(t, err)
		assert.Equal(t, appointment.StatusPending, untouched.Status())
	})
}

func TestCompleteAndCancelCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("complete after approval", func(t *testing.T) {
		e := newApprovalEnv(t)
		s := fake.NewSeedBuilder(t)
		e.seedRequested(t, s)

		require.ErrorIs(t, e.uc.Complete(ctx, s.Appt.ID(), s.StoreOwnerID), commands.ErrNotCompletable)

		_, err := e.uc.Decide(ctx, s.Appt.ID(), s.StoreOwnerID, true)
		require.NoError(t, err)
		require.NoError(t, e.uc.Complete(ctx, s.Appt.ID(), s.StoreOwnerID))

		require.ErrorIs(t, e.uc.Complete(ctx, s.Appt.ID(), s.CustomerID), commands.ErrCannotDecide)
	})

	t.Run("cancel notifies the other participants", func(t *testing.T) {
		e := newApprovalEnv(t)
		s := fake.NewSeedBuilder(t)
		e.seedRequested(t, s)

		require.NoError(t, e.uc.Cancel(ctx, s.Appt.ID(), s.CustomerID))

		stored, err := e.uow.Tx.AppointmentRepo.FindByID(ctx, nil, s.Appt.ID())
		require.NoError(t, err)
		assert.Equal(t, appointment.StatusCancelled, stored.Status())
		assert.NotEmpty(t, e.uow.Tx.NotificationRepo.ByRecipient(s.StoreOwnerID))

		require.ErrorIs(t, e.uc.Cancel(ctx, s.Appt.ID(), s.CustomerID), commands.ErrNotCancellable)
	})
}
