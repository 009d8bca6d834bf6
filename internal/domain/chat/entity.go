package chat

import (
	"errors"
	"strings"
	"time"

	"chairtime/internal/domain/appointment"

	"github.com/google/uuid"
)

var (
	ErrEmptyBody     = errors.New("message body is empty")
	ErrNotInThread   = errors.New("user is not a thread participant")
	ErrUnknownReader = errors.New("user has no unread counter on this thread")
)

// PreviewLength caps the thread's last-message preview.
const PreviewLength = 60

// Message is immutable once written.
type Message struct {
	id            uuid.UUID
	threadID      uuid.UUID
	appointmentID uuid.UUID
	senderID      uuid.UUID
	body          string
	sentAt        time.Time
}

func NewMessage(threadID, appointmentID, senderID uuid.UUID, body string, now time.Time) (*Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyBody
	}
	return &Message{
		id:            uuid.New(),
		threadID:      threadID,
		appointmentID: appointmentID,
		senderID:      senderID,
		body:          body,
		sentAt:        now,
	}, nil
}

func ReconstructMessage(id, threadID, appointmentID, senderID uuid.UUID, body string, sentAt time.Time) *Message {
	return &Message{
		id:            id,
		threadID:      threadID,
		appointmentID: appointmentID,
		senderID:      senderID,
		body:          body,
		sentAt:        sentAt,
	}
}

func (m *Message) ID() uuid.UUID            { return m.id }
func (m *Message) ThreadID() uuid.UUID      { return m.threadID }
func (m *Message) AppointmentID() uuid.UUID { return m.appointmentID }
func (m *Message) SenderID() uuid.UUID      { return m.senderID }
func (m *Message) Body() string             { return m.body }
func (m *Message) SentAt() time.Time        { return m.sentAt }

// Thread mirrors the appointment's participant set and carries one
// unread counter per participant role.
type Thread struct {
	id            uuid.UUID
	appointmentID uuid.UUID
	participants  appointment.Participants
	unread        map[appointment.Role]int
	lastPreview   string
	lastMessageAt *time.Time
	createdAt     time.Time
	updatedAt     time.Time
}

func NewThread(appointmentID uuid.UUID, participants appointment.Participants, now time.Time) *Thread {
	unread := make(map[appointment.Role]int, participants.Len())
	for _, role := range []appointment.Role{appointment.RoleCustomer, appointment.RoleStoreOwner, appointment.RoleFreeBarber} {
		if _, ok := participants.ID(role); ok {
			unread[role] = 0
		}
	}
	return &Thread{
		id:            uuid.New(),
		appointmentID: appointmentID,
		participants:  participants,
		unread:        unread,
		createdAt:     now,
		updatedAt:     now,
	}
}

func ReconstructThread(
	id, appointmentID uuid.UUID,
	participants appointment.Participants,
	unread map[appointment.Role]int,
	lastPreview string,
	lastMessageAt *time.Time,
	createdAt, updatedAt time.Time,
) *Thread {
	return &Thread{
		id:            id,
		appointmentID: appointmentID,
		participants:  participants,
		unread:        unread,
		lastPreview:   lastPreview,
		lastMessageAt: lastMessageAt,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// RecordMessage folds a freshly sent message into the thread: preview and
// timestamp move, every counter except the sender's increments.
func (t *Thread) RecordMessage(msg *Message) error {
	senderRole, ok := t.participants.RoleOf(msg.SenderID())
	if !ok {
		return ErrNotInThread
	}
	t.lastPreview = Preview(msg.Body())
	sentAt := msg.SentAt()
	t.lastMessageAt = &sentAt
	for role := range t.unread {
		if role == senderRole {
			continue
		}
		t.unread[role]++
	}
	t.updatedAt = msg.SentAt()
	return nil
}

// MarkRead zeroes only the caller's own counter.
func (t *Thread) MarkRead(userID uuid.UUID, now time.Time) error {
	role, ok := t.participants.RoleOf(userID)
	if !ok {
		return ErrNotInThread
	}
	if _, ok := t.unread[role]; !ok {
		return ErrUnknownReader
	}
	t.unread[role] = 0
	t.updatedAt = now
	return nil
}

func (t *Thread) UnreadFor(userID uuid.UUID) int {
	role, ok := t.participants.RoleOf(userID)
	if !ok {
		return 0
	}
	return t.unread[role]
}

func (t *Thread) UnreadByRole(role appointment.Role) int {
	return t.unread[role]
}

func (t *Thread) ID() uuid.UUID                          { return t.id }
func (t *Thread) AppointmentID() uuid.UUID               { return t.appointmentID }
func (t *Thread) Participants() appointment.Participants { return t.participants }
func (t *Thread) LastPreview() string                    { return t.lastPreview }
func (t *Thread) LastMessageAt() *time.Time              { return t.lastMessageAt }
func (t *Thread) CreatedAt() time.Time                   { return t.createdAt }
func (t *Thread) UpdatedAt() time.Time                   { return t.updatedAt }

// Preview truncates on rune boundaries so multi-byte text never splits.
func Preview(body string) string {
	runes := []rune(body)
	if len(runes) <= PreviewLength {
		return body
	}
	return string(runes[:PreviewLength])
}
