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
	"chairtime/internal/usecase/shared"
	"chairtime/tests/common/fake"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingEnv struct {
	uow        *fake.UnitOfWork
	publisher  *fake.Publisher
	clk        *clock.MockClock
	uc         commands.BookingCommands
	storeID    uuid.UUID
	ownerID    uuid.UUID
	chairID    uuid.UUID
	customerID uuid.UUID
	offeringID uuid.UUID
}

func newBookingEnv(t *testing.T) *bookingEnv {
	t.Helper()
	e := &bookingEnv{
		uow:        fake.NewUnitOfWork(),
		publisher:  fake.NewPublisher(),
		clk:        clock.NewMockClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)),
		storeID:    uuid.New(),
		ownerID:    uuid.New(),
		chairID:    uuid.New(),
		customerID: uuid.New(),
		offeringID: uuid.New(),
	}
	dispatcher := notify.NewDispatcher(e.publisher, fake.NewBadgeCounter(), fake.NewUserDirectory(), e.clk)
	e.uc = commands.NewBookingUseCase(e.uow, dispatcher, e.clk, 5*time.Minute)

	reads := e.uow.Tx.ReadsFake
	reads.Stores[e.storeID] = &shared.StoreSnapshot{ID: e.storeID, OwnerID: e.ownerID, Name: "Fade Factory"}
	reads.Chairs[e.chairID] = &shared.ChairSnapshot{ID: e.chairID, StoreID: e.storeID, Name: "Chair 1", IsActive: true}
	reads.SeedOpenAllWeek(e.storeID, "09:00", "18:00")
	reads.Offerings[e.offeringID] = shared.ServiceOfferingSnapshot{ID: e.offeringID, Name: "Haircut", PriceCents: 3500, IsActive: true}
	return e
}

func (e *bookingEnv) request() commands.CreateBookingRequest {
	start := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)
	return commands.CreateBookingRequest{
		ChairID:            &e.chairID,
		Start:              start,
		End:                start.Add(time.Hour),
		ServiceOfferingIDs: []uuid.UUID{e.offeringID},
		BookedByType:       appointment.BookedByCustomer,
	}
}

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("chair booking succeeds", func(t *testing.T) {
		e := newBookingEnv(t)

		result, err := e.uc.CreateBooking(ctx, e.request(), e.customerID)
		require.NoError(t, err)
		require.NotNil(t, result)

		appts := e.uow.Tx.AppointmentRepo.All()
		require.Len(t, appts, 1)
		appt := appts[0]
		assert.Equal(t, result.AppointmentID, appt.ID())
		assert.Equal(t, appointment.StatusPending, appt.Status())
		assert.False(t, appt.IsLinked())
		require.NotNil(t, appt.PendingExpiresAt())
		assert.Equal(t, e.clk.Now().Add(5*time.Minute), *appt.PendingExpiresAt())

		services := appt.Services()
		require.Len(t, services, 1)
		assert.Equal(t, "Haircut", services[0].Name)
		assert.Equal(t, int64(3500), services[0].PriceCents)

		// Store owner is told; the booking customer is not.
		owner := e.uow.Tx.NotificationRepo.ByRecipient(e.ownerID)
		require.Len(t, owner, 1)
		assert.Equal(t, notification.KindBookingRequested, owner[0].Kind())
		assert.Equal(t, appt.ID(), owner[0].CorrelationID())
		assert.Empty(t, e.uow.Tx.NotificationRepo.ByRecipient(e.customerID))

		pushes := e.publisher.EventsFor(e.ownerID)
		require.Len(t, pushes, 1)
		assert.Equal(t, notify.EventRequestCreated, pushes[0].Event)

		assert.Equal(t, []appointment.EventKind{appointment.EventCreated}, e.uow.Tx.EventRepo.Kinds(appt.ID()))
	})

	t.Run("linked booking notifies both deciding sides", func(t *testing.T) {
		e := newBookingEnv(t)
		barberID := uuid.New()
		req := e.request()
		req.FreeBarberID = &barberID

		_, err := e.uc.CreateBooking(ctx, req, e.customerID)
		require.NoError(t, err)

		appt := e.uow.Tx.AppointmentRepo.All()[0]
		assert.True(t, appt.IsLinked())
		assert.Equal(t, appointment.DecisionPending, appt.StoreDecision())
		assert.Equal(t, appointment.DecisionPending, appt.FreeBarberDecision())

		assert.Len(t, e.uow.Tx.NotificationRepo.ByRecipient(e.ownerID), 1)
		assert.Len(t, e.uow.Tx.NotificationRepo.ByRecipient(barberID), 1)
	})

	t.Run("validation failures", func(t *testing.T) {
		cases := []struct {
			name   string
			mutate func(e *bookingEnv, req *commands.CreateBookingRequest)
			errIs  error
		}{
			{
				name: "window in the past",
				mutate: func(e *bookingEnv, req *commands.CreateBookingRequest) {
					req.Start = e.clk.Now().Add(-2 * time.Hour)
					req.End = e.clk.Now().Add(-time.Hour)
				},
				errIs: commands.ErrInvalidTimeWindow,
			},
			{
				name: "start not before end",
				mutate: func(_ *bookingEnv, req *commands.CreateBookingRequest) {
					req.End = req.Start
				},
				errIs: commands.ErrInvalidTimeWindow,
			},
			{
				name: "no services",
				mutate: func(_ *bookingEnv, req *commands.CreateBookingRequest) {
					req.ServiceOfferingIDs = nil
				},
				errIs: commands.ErrNoServicesSelected,
			},
			{
				name: "neither chair nor barber",
				mutate: func(_ *bookingEnv, req *commands.CreateBookingRequest) {
					req.ChairID = nil
				},
				errIs: commands.ErrNoCounterparty,
			},
			{
				name: "unknown chair",
				mutate: func(_ *bookingEnv, req *commands.CreateBookingRequest) {
					unknown := uuid.New()
					req.ChairID = &unknown
				},
				errIs: commands.ErrChairNotFound,
			},
			{
				name: "unknown offering",
				mutate: func(_ *bookingEnv, req *commands.CreateBookingRequest) {
					req.ServiceOfferingIDs = []uuid.UUID{uuid.New()}
				},
				errIs: commands.ErrUnknownServiceOffering,
			},
			{
				name: "before opening time",
				mutate: func(_ *bookingEnv, req *commands.CreateBookingRequest) {
					req.Start = time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC)
					req.End = req.Start.Add(time.Hour)
				},
				errIs: commands.ErrOutsideWorkingHours,
			},
			{
				name: "past closing time",
				mutate: func(_ *bookingEnv, req *commands.CreateBookingRequest) {
					req.Start = time.Date(2026, 3, 3, 17, 30, 0, 0, time.UTC)
					req.End = req.Start.Add(time.Hour)
				},
				errIs: commands.ErrOutsideWorkingHours,
			},
		}
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				e := newBookingEnv(t)
				req := e.request()
				c.mutate(e, &req)

				_, err := e.uc.CreateBooking(ctx, req, e.customerID)
				require.ErrorIs(t, err, c.errIs)
				assert.Empty(t, e.uow.Tx.AppointmentRepo.All())
			})
		}
	})

	t.Run("closed weekday rejects", func(t *testing.T) {
		e := newBookingEnv(t)
		delete(e.uow.Tx.ReadsFake.Hours[e.storeID], time.Tuesday)

		_, err := e.uc.CreateBooking(ctx, e.request(), e.customerID)
		require.ErrorIs(t, err, commands.ErrOutsideWorkingHours)
	})

	t.Run("inactive chair rejects", func(t *testing.T) {
		e := newBookingEnv(t)
		e.uow.Tx.ReadsFake.Chairs[e.chairID].IsActive = false

		_, err := e.uc.CreateBooking(ctx, e.request(), e.customerID)
		require.ErrorIs(t, err, commands.ErrChairInactive)
	})

	t.Run("overlapping active appointment rejects with slot taken", func(t *testing.T) {
		e := newBookingEnv(t)

		_, err := e.uc.CreateBooking(ctx, e.request(), e.customerID)
		require.NoError(t, err)

		req := e.request()
		req.Start = req.Start.Add(30 * time.Minute)
		req.End = req.Start.Add(time.Hour)
		_, err = e.uc.CreateBooking(ctx, req, uuid.New())
		require.ErrorIs(t, err, commands.ErrSlotTaken)
		assert.Len(t, e.uow.Tx.AppointmentRepo.All(), 1)
	})

	t.Run("store-initiated booking notifies the barber only", func(t *testing.T) {
		e := newBookingEnv(t)
		barberID := uuid.New()
		req := e.request()
		req.FreeBarberID = &barberID
		req.CustomerID = &e.customerID
		req.BookedByType = appointment.BookedByStore

		_, err := e.uc.CreateBooking(ctx, req, e.ownerID)
		require.NoError(t, err)

		appt := e.uow.Tx.AppointmentRepo.All()[0]
		assert.Equal(t, appointment.BookedByStore, appt.BookedByType())
		assert.Equal(t, e.ownerID, appt.BookedBy())

		// The owner booked it themselves, so only the barber hears about it.
		assert.Empty(t, e.uow.Tx.NotificationRepo.ByRecipient(e.ownerID))
		assert.Len(t, e.uow.Tx.NotificationRepo.ByRecipient(barberID), 1)
	})
}
