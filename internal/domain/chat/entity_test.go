//go:build unit

package chat_test

import (
	"strings"
	"testing"
	"time"

	"chairtime/internal/domain/appointment"
	"chairtime/internal/domain/chat"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	threadID := uuid.New()
	apptID := uuid.New()
	senderID := uuid.New()

	t.Run("trims and keeps body", func(t *testing.T) {
		msg, err := chat.NewMessage(threadID, apptID, senderID, "  hello there  ", now)
		require.NoError(t, err)
		assert.Equal(t, "hello there", msg.Body())
		assert.Equal(t, threadID, msg.ThreadID())
		assert.Equal(t, now, msg.SentAt())
	})

	t.Run("rejects empty and whitespace-only bodies", func(t *testing.T) {
		_, err := chat.NewMessage(threadID, apptID, senderID, "", now)
		require.ErrorIs(t, err, chat.ErrEmptyBody)

		_, err = chat.NewMessage(threadID, apptID, senderID, "   \n\t ", now)
		require.ErrorIs(t, err, chat.ErrEmptyBody)
	})
}

func TestThread(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	customerID := uuid.New()
	storeOwnerID := uuid.New()
	barberID := uuid.New()
	participants := appointment.NewParticipants(&customerID, &storeOwnerID, &barberID)
	apptID := uuid.New()

	send := func(t *testing.T, th *chat.Thread, sender uuid.UUID, body string, at time.Time) *chat.Message {
		t.Helper()
		msg, err := chat.NewMessage(th.ID(), apptID, sender, body, at)
		require.NoError(t, err)
		require.NoError(t, th.RecordMessage(msg))
		return msg
	}

	t.Run("message increments everyone but the sender", func(t *testing.T) {
		th := chat.NewThread(apptID, participants, now)

		send(t, th, customerID, "hi", now.Add(time.Minute))

		assert.Equal(t, 0, th.UnreadFor(customerID))
		assert.Equal(t, 1, th.UnreadFor(storeOwnerID))
		assert.Equal(t, 1, th.UnreadFor(barberID))
		assert.Equal(t, "hi", th.LastPreview())
		require.NotNil(t, th.LastMessageAt())
		assert.Equal(t, now.Add(time.Minute), *th.LastMessageAt())
	})

	t.Run("counters accumulate across messages", func(t *testing.T) {
		th := chat.NewThread(apptID, participants, now)

		send(t, th, customerID, "first", now.Add(time.Minute))
		send(t, th, storeOwnerID, "second", now.Add(2*time.Minute))

		assert.Equal(t, 1, th.UnreadFor(customerID))
		assert.Equal(t, 1, th.UnreadFor(storeOwnerID))
		assert.Equal(t, 2, th.UnreadFor(barberID))
		assert.Equal(t, "second", th.LastPreview())
	})

	t.Run("mark read zeroes only the caller", func(t *testing.T) {
		th := chat.NewThread(apptID, participants, now)
		send(t, th, customerID, "hello", now.Add(time.Minute))
		send(t, th, customerID, "anyone?", now.Add(2*time.Minute))

		require.NoError(t, th.MarkRead(barberID, now.Add(3*time.Minute)))

		assert.Equal(t, 0, th.UnreadFor(barberID))
		assert.Equal(t, 2, th.UnreadFor(storeOwnerID))
	})

	t.Run("strangers are rejected", func(t *testing.T) {
		th := chat.NewThread(apptID, participants, now)
		stranger := uuid.New()

		msg, err := chat.NewMessage(th.ID(), apptID, stranger, "let me in", now)
		require.NoError(t, err)
		require.ErrorIs(t, th.RecordMessage(msg), chat.ErrNotInThread)
		require.ErrorIs(t, th.MarkRead(stranger, now), chat.ErrNotInThread)
		assert.Equal(t, 0, th.UnreadFor(stranger))
	})

	t.Run("two-party thread has two counters", func(t *testing.T) {
		two := appointment.NewParticipants(&customerID, &storeOwnerID, nil)
		th := chat.NewThread(apptID, two, now)

		msg, err := chat.NewMessage(th.ID(), apptID, customerID, "hey", now.Add(time.Minute))
		require.NoError(t, err)
		require.NoError(t, th.RecordMessage(msg))

		assert.Equal(t, 1, th.UnreadFor(storeOwnerID))
		assert.Equal(t, 0, th.UnreadByRole(appointment.RoleFreeBarber))
	})
}

func TestPreview(t *testing.T) {
	t.Run("short bodies pass through", func(t *testing.T) {
		assert.Equal(t, "hello", chat.Preview("hello"))
	})

	t.Run("long bodies truncate at the limit", func(t *testing.T) {
		long := strings.Repeat("a", 200)
		assert.Equal(t, strings.Repeat("a", chat.PreviewLength), chat.Preview(long))
	})

	t.Run("truncation respects rune boundaries", func(t *testing.T) {
		long := strings.Repeat("あ", 100)
		got := chat.Preview(long)
		assert.Equal(t, strings.Repeat("あ", chat.PreviewLength), got)
	})
}
