//go:build unit

package appointment_test

import (
	"testing"
	"time"

	"chairtime/internal/domain/appointment"
	"chairtime/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name   string
	mutate func(*builder.AppointmentBuilder)
	errIs  error
}

func TestNewAppointment(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		b := builder.NewAppointmentBuilder()
		actual, err := b.BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, appointment.StatusPending, actual.Status())
		assert.False(t, actual.IsLinked())
		require.NotNil(t, actual.PendingExpiresAt())
		assert.Equal(t, b.Now.Add(b.PendingTimeout), *actual.PendingExpiresAt())
		assert.Equal(t, int64(1), actual.Version())
		assert.Equal(t, actual.CreatedAt(), actual.UpdatedAt())
	})

	t.Run("validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name: "window already started",
				mutate: func(b *builder.AppointmentBuilder) {
					b.WithWindow(b.Now.Add(-time.Hour), b.Now.Add(time.Hour))
				},
				errIs: appointment.ErrWindowInPast,
			},
			{
				name: "window starting exactly now",
				mutate: func(b *builder.AppointmentBuilder) {
					b.WithWindow(b.Now, b.Now.Add(time.Hour))
				},
				errIs: appointment.ErrWindowInPast,
			},
			{
				name:   "no services selected",
				mutate: func(b *builder.AppointmentBuilder) { b.WithServices() },
				errIs:  appointment.ErrNoServices,
			},
			{
				name: "neither chair nor free barber",
				mutate: func(b *builder.AppointmentBuilder) {
					b.WithChairID(nil).WithFreeBarberID(nil)
				},
				errIs: appointment.ErrNoCounterparty,
			},
			{
				name:   "free barber only is fine",
				mutate: func(b *builder.AppointmentBuilder) { b.AsFreeBarberOnly() },
			},
		})
	})

	t.Run("linked booking arms both decision slots", func(t *testing.T) {
		actual, err := builder.NewAppointmentBuilder().AsLinked().BuildDomain()
		require.NoError(t, err)

		assert.True(t, actual.IsLinked())
		assert.Equal(t, appointment.DecisionPending, actual.StoreDecision())
		assert.Equal(t, appointment.DecisionPending, actual.FreeBarberDecision())
	})

	t.Run("unlinked booking leaves decision slots empty", func(t *testing.T) {
		actual, err := builder.NewAppointmentBuilder().BuildDomain()
		require.NoError(t, err)

		assert.Empty(t, string(actual.StoreDecision()))
		assert.Empty(t, string(actual.FreeBarberDecision()))
	})

	t.Run("performer resolution prefers the free barber", func(t *testing.T) {
		manualID := uuid.New()
		linked, err := builder.NewAppointmentBuilder().AsLinked().WithManualBarberID(&manualID).BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, linked.PerformerID())
		barberID, ok := linked.Participants().ID(appointment.RoleFreeBarber)
		require.True(t, ok)
		assert.Equal(t, barberID, *linked.PerformerID())

		manual, err := builder.NewAppointmentBuilder().WithManualBarberID(&manualID).BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, manual.PerformerID())
		assert.Equal(t, manualID, *manual.PerformerID())

		bare, err := builder.NewAppointmentBuilder().BuildDomain()
		require.NoError(t, err)
		assert.Nil(t, bare.PerformerID())
	})
}

func TestApplyDecision(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	t.Run("store approval fully approves an unlinked booking", func(t *testing.T) {
		a := mustBuild(t, builder.NewAppointmentBuilder())

		outcome, err := a.ApplyDecision(appointment.RoleStoreOwner, true, now)
		require.NoError(t, err)

		assert.True(t, outcome.FullyApproved)
		assert.Equal(t, appointment.StatusApproved, a.Status())
		assert.Nil(t, a.PendingExpiresAt())
	})

	t.Run("rejection terminates immediately", func(t *testing.T) {
		a := mustBuild(t, builder.NewAppointmentBuilder())

		outcome, err := a.ApplyDecision(appointment.RoleStoreOwner, false, now)
		require.NoError(t, err)

		assert.True(t, outcome.Rejected)
		assert.Equal(t, appointment.StatusRejected, a.Status())
		assert.Nil(t, a.PendingExpiresAt())
	})

	t.Run("linked booking needs both approvals", func(t *testing.T) {
		a := mustBuild(t, builder.NewAppointmentBuilder().AsLinked())

		outcome, err := a.ApplyDecision(appointment.RoleFreeBarber, true, now)
		require.NoError(t, err)
		assert.False(t, outcome.FullyApproved)
		assert.True(t, outcome.AwaitingStore)
		assert.Equal(t, appointment.StatusPending, a.Status())
		assert.Equal(t, appointment.DecisionApproved, a.FreeBarberDecision())
		assert.Equal(t, appointment.DecisionPending, a.StoreDecision())

		outcome, err = a.ApplyDecision(appointment.RoleStoreOwner, true, now.Add(time.Minute))
		require.NoError(t, err)
		assert.True(t, outcome.FullyApproved)
		assert.Equal(t, appointment.StatusApproved, a.Status())
	})

	t.Run("store-first approval on linked booking awaits the barber", func(t *testing.T) {
		a := mustBuild(t, builder.NewAppointmentBuilder().AsLinked())

		outcome, err := a.ApplyDecision(appointment.RoleStoreOwner, true, now)
		require.NoError(t, err)
		assert.False(t, outcome.FullyApproved)
		assert.False(t, outcome.AwaitingStore)
		assert.Equal(t, appointment.StatusPending, a.Status())
	})

	t.Run("one rejection kills a linked booking", func(t *testing.T) {
		a := mustBuild(t, builder.NewAppointmentBuilder().AsLinked())

		_, err := a.ApplyDecision(appointment.RoleFreeBarber, true, now)
		require.NoError(t, err)

		outcome, err := a.ApplyDecision(appointment.RoleStoreOwner, false, now.Add(time.Minute))
		require.NoError(t, err)
		assert.True(t, outcome.Rejected)
		assert.Equal(t, appointment.StatusRejected, a.Status())
		assert.Equal(t, appointment.DecisionRejected, a.StoreDecision())
		assert.Equal(t, appointment.DecisionApproved, a.FreeBarberDecision())
	})

	t.Run("same side cannot decide twice", func(t *testing.T) {
		a := mustBuild(t, builder.NewAppointmentBuilder().AsLinked())

		_, err := a.ApplyDecision(appointment.RoleFreeBarber, true, now)
		require.NoError(t, err)

		_, err = a.ApplyDecision(appointment.RoleFreeBarber, true, now.Add(time.Minute))
		require.ErrorIs(t, err, appointment.ErrSideAlreadyDecided)
	})

	t.Run("customer has no decision to make", func(t *testing.T) {
		a := mustBuild(t, builder.NewAppointmentBuilder())

		_, err := a.ApplyDecision(appointment.RoleCustomer, true, now)
		require.ErrorIs(t, err, appointment.ErrRoleCannotDecide)
	})

	t.Run("no decision on a settled appointment", func(t *testing.T) {
		a := mustBuild(t, builder.NewAppointmentBuilder())
		_, err := a.ApplyDecision(appointment.RoleStoreOwner, false, now)
		require.NoError(t, err)

		_, err = a.ApplyDecision(appointment.RoleStoreOwner, true, now.Add(time.Minute))
		require.ErrorIs(t, err, appointment.ErrNotPending)
	})
}

func TestExpireAndSupersede(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	t.Run("expire marks unanswered and fills open decision slots", func(t *testing.T) {
		a := mustBuild(t, builder.NewAppointmentBuilder().AsLinked())
		_, err := a.ApplyDecision(appointment.RoleFreeBarber, true, now)
		require.NoError(t, err)

		require.NoError(t, a.Expire(now.Add(10*time.Minute)))
		assert.Equal(t, appointment.StatusUnanswered, a.Status())
		assert.Equal(t, appointment.DecisionNoAnswer, a.StoreDecision())
		assert.Equal(t, appointment.DecisionApproved, a.FreeBarberDecision())
		assert.Nil(t, a.PendingExpiresAt())
	})

	t.Run("expire refuses settled appointments", func(t *testing.T) {
		a := mustBuild(t, builder.NewAppointmentBuilder())
		_, err := a.ApplyDecision(appointment.RoleStoreOwner, true, now)
		require.NoError(t, err)

		require.ErrorIs(t, a.Expire(now), appointment.ErrNotPending)
	})

	t.Run("supersede rejects open slots only", func(t *testing.T) {
		a := mustBuild(t, builder.NewAppointmentBuilder().AsLinked())
		_, err := a.ApplyDecision(appointment.RoleStoreOwner, true, now)
		require.NoError(t, err)

		require.NoError(t, a.RejectAsSuperseded(now.Add(time.Minute)))
		assert.Equal(t, appointment.StatusRejected, a.Status())
		assert.Equal(t, appointment.DecisionApproved, a.StoreDecision())
		assert.Equal(t, appointment.DecisionRejected, a.FreeBarberDecision())
	})

	t.Run("HasExpired honors the deadline boundary", func(t *testing.T) {
		b := builder.NewAppointmentBuilder()
		a := mustBuild(t, b)
		deadline := b.Now.Add(b.PendingTimeout)

		assert.False(t, a.HasExpired(deadline.Add(-time.Second)))
		assert.True(t, a.HasExpired(deadline))
		assert.True(t, a.HasExpired(deadline.Add(time.Second)))
	})
}

func TestCompleteAndCancel(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	t.Run("complete requires approval first", func(t *testing.T) {
		a := mustBuild(t, builder.NewAppointmentBuilder())
		require.ErrorIs(t, a.Complete(now), appointment.ErrNotApproved)

		_, err := a.ApplyDecision(appointment.RoleStoreOwner, true, now)
		require.NoError(t, err)
		require.NoError(t, a.Complete(now.Add(time.Hour)))
		assert.Equal(t, appointment.StatusCompleted, a.Status())
	})

	t.Run("cancel works while pending or approved", func(t *testing.T) {
		pending := mustBuild(t, builder.NewAppointmentBuilder())
		require.NoError(t, pending.Cancel(now))
		assert.Equal(t, appointment.StatusCancelled, pending.Status())

		approved := mustBuild(t, builder.NewAppointmentBuilder())
		_, err := approved.ApplyDecision(appointment.RoleStoreOwner, true, now)
		require.NoError(t, err)
		require.NoError(t, approved.Cancel(now.Add(time.Minute)))
		assert.Equal(t, appointment.StatusCancelled, approved.Status())

		require.ErrorIs(t, approved.Cancel(now), appointment.ErrNotPending)
	})
}

func TestParticipants(t *testing.T) {
	customerID := uuid.New()
	storeOwnerID := uuid.New()
	freeBarberID := uuid.New()

	p := appointment.NewParticipants(&customerID, &storeOwnerID, &freeBarberID)

	role, ok := p.RoleOf(freeBarberID)
	require.True(t, ok)
	assert.Equal(t, appointment.RoleFreeBarber, role)

	_, ok = p.RoleOf(uuid.New())
	assert.False(t, ok)

	assert.True(t, p.Contains(customerID))
	assert.Len(t, p.IDs(), 3)

	partial := appointment.NewParticipants(&customerID, nil, nil)
	assert.Equal(t, 1, partial.Len())
	assert.Nil(t, partial.IDPtr(appointment.RoleStoreOwner))
}

func mustBuild(t *testing.T, b *builder.AppointmentBuilder) *appointment.Appointment {
	t.Helper()
	a, err := b.BuildDomain()
	require.NoError(t, err)
	return a
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual, err := builder.NewAppointmentBuilder().With(c.mutate).BuildDomain()

			if c.errIs == nil {
				require.NotNil(t, actual)
				require.NoError(t, err)
			} else {
				require.Nil(t, actual)
				require.ErrorIs(t, err, c.errIs)
			}
		})
	}
}
