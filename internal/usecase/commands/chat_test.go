//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"chairtime/internal/pkg/clock"
	"chairtime/internal/usecase/commands"
	"chairtime/internal/usecase/notify"
	"chairtime/tests/common/fake"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatEnv struct {
	uow       *fake.UnitOfWork
	publisher *fake.Publisher
	clk       *clock.MockClock
	uc        commands.ChatCommands
	appr      commands.ApprovalCommands
}

func newChatEnv(t *testing.T) *chatEnv {
	t.Helper()
	e := &chatEnv{
		uow:       fake.NewUnitOfWork(),
		publisher: fake.NewPublisher(),
		clk:       clock.NewMockClock(time.Date(2026, 3, 2, 9, 10, 0, 0, time.UTC)),
	}
	dispatcher := notify.NewDispatcher(e.publisher, fake.NewBadgeCounter(), fake.NewUserDirectory(), e.clk)
	e.uc = commands.NewChatUseCase(e.uow, dispatcher, e.clk)
	e.appr = commands.NewApprovalUseCase(e.uow, dispatcher, e.clk)
	return e
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("first message creates the thread and fans out", func(t *testing.T) {
		e := newChatEnv(t)
		s := fake.NewSeedBuilder(t).Linked()
		e.uow.Tx.AppointmentRepo.Seed(s.Appt)

		result, err := e.uc.SendMessage(ctx, s.Appt.ID(), s.CustomerID, "hi, still on for tomorrow?")
		require.NoError(t, err)
		assert.True(t, result.ThreadCreated)

		thread := e.uow.Tx.ChatRepo.ThreadFor(s.Appt.ID())
		require.NotNil(t, thread)
		assert.Equal(t, "hi, still on for tomorrow?", thread.LastPreview())
		assert.Equal(t, 0, thread.UnreadFor(s.CustomerID))
		assert.Equal(t, 1, thread.UnreadFor(s.StoreOwnerID))
		assert.Equal(t, 1, thread.UnreadFor(s.FreeBarberID))
		require.Len(t, e.uow.Tx.ChatRepo.Messages, 1)

		// Every participant, sender included, gets the message and a badge.
		for _, participantID := range []uuid.UUID{s.CustomerID, s.StoreOwnerID, s.FreeBarberID} {
			events := e.publisher.EventsFor(participantID)
			var names []string
			for _, ev := range events {
				names = append(names, ev.Event)
			}
			assert.Contains(t, names, notify.EventThreadCreated)
			assert.Contains(t, names, notify.EventChatMessage)
			assert.Contains(t, names, notify.EventBadgeUpdated)
		}
	})

	t.Run("second message reuses the thread", func(t *testing.T) {
		e := newChatEnv(t)
		s := fake.NewSeedBuilder(t).Linked()
		e.uow.Tx.AppointmentRepo.Seed(s.Appt)

		first, err := e.uc.SendMessage(ctx, s.Appt.ID(), s.CustomerID, "hello")
		require.NoError(t, err)
		second, err := e.uc.SendMessage(ctx, s.Appt.ID(), s.StoreOwnerID, "see you then")
		require.NoError(t, err)

		assert.False(t, second.ThreadCreated)
		assert.Equal(t, first.ThreadID, second.ThreadID)

		thread := e.uow.Tx.ChatRepo.ThreadFor(s.Appt.ID())
		assert.Equal(t, 1, thread.UnreadFor(s.CustomerID))
		assert.Equal(t, 2, thread.UnreadFor(s.FreeBarberID))
	})

	t.Run("chat stays open on approved appointments", func(t *testing.T) {
		e := newChatEnv(t)
		s := fake.NewSeedBuilder(t)
		e.uow.Tx.AppointmentRepo.Seed(s.Appt)

		_, err := e.appr.Decide(ctx, s.Appt.ID(), s.StoreOwnerID, true)
		require.NoError(t, err)

		_, err = e.uc.SendMessage(ctx, s.Appt.ID(), s.CustomerID, "thanks!")
		require.NoError(t, err)
	})

	t.Run("terminal appointments refuse messages", func(t *testing.T) {
		e := newChatEnv(t)
		s := fake.NewSeedBuilder(t)
		e.uow.Tx.AppointmentRepo.Seed(s.Appt)

		_, err := e.appr.Decide(ctx, s.Appt.ID(), s.StoreOwnerID, false)
		require.NoError(t, err)

		_, err = e.uc.SendMessage(ctx, s.Appt.ID(), s.CustomerID, "hello?")
		require.ErrorIs(t, err, commands.ErrAppointmentInactive)
	})

	t.Run("rejections", func(t *testing.T) {
		e := newChatEnv(t)
		s := fake.NewSeedBuilder(t)
		e.uow.Tx.AppointmentRepo.Seed(s.Appt)

		_, err := e.uc.SendMessage(ctx, s.Appt.ID(), uuid.New(), "let me in")
		require.ErrorIs(t, err, commands.ErrNotParticipant)

		_, err = e.uc.SendMessage(ctx, s.Appt.ID(), s.CustomerID, "   ")
		require.ErrorIs(t, err, commands.ErrEmptyMessage)

		_, err = e.uc.SendMessage(ctx, uuid.New(), s.CustomerID, "hi")
		require.ErrorIs(t, err, commands.ErrAppointmentNotFound)
	})
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()

	t.Run("zeroes only the caller's counter", func(t *testing.T) {
		e := newChatEnv(t)
		s := fake.NewSeedBuilder(t).Linked()
		e.uow.Tx.AppointmentRepo.Seed(s.Appt)

		_, err := e.uc.SendMessage(ctx, s.Appt.ID(), s.CustomerID, "hello")
		require.NoError(t, err)
		_, err = e.uc.SendMessage(ctx, s.Appt.ID(), s.CustomerID, "anyone there?")
		require.NoError(t, err)

		e.publisher.Events = nil
		require.NoError(t, e.uc.MarkRead(ctx, s.Appt.ID(), s.StoreOwnerID))

		thread := e.uow.Tx.ChatRepo.ThreadFor(s.Appt.ID())
		assert.Equal(t, 0, thread.UnreadFor(s.StoreOwnerID))
		assert.Equal(t, 2, thread.UnreadFor(s.FreeBarberID))

		// Only the caller gets a refreshed badge.
		require.Len(t, e.publisher.Events, 1)
		assert.Equal(t, s.StoreOwnerID, e.publisher.Events[0].UserID)
		assert.Equal(t, notify.EventBadgeUpdated, e.publisher.Events[0].Event)
	})

	t.Run("errors", func(t *testing.T) {
		e := newChatEnv(t)
		s := fake.NewSeedBuilder(t)
		e.uow.Tx.AppointmentRepo.Seed(s.Appt)

		require.ErrorIs(t, e.uc.MarkRead(ctx, s.Appt.ID(), s.CustomerID), commands.ErrThreadNotFound)
		require.ErrorIs(t, e.uc.MarkRead(ctx, uuid.New(), s.CustomerID), commands.ErrAppointmentNotFound)

		_, err := e.uc.SendMessage(ctx, s.Appt.ID(), s.CustomerID, "hi")
		require.NoError(t, err)
		require.ErrorIs(t, e.uc.MarkRead(ctx, s.Appt.ID(), uuid.New()), commands.ErrNotParticipant)
	})
}
