package notification

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNoRecipient = errors.New("notification needs a recipient")

// Kind is the closed set of notification event kinds.
type Kind string

const (
	KindBookingRequested  Kind = "booking_requested"
	KindBarberApproved    Kind = "barber_approved"
	KindBookingApproved   Kind = "booking_approved"
	KindBookingRejected   Kind = "booking_rejected"
	KindBarberRejected    Kind = "barber_rejected"
	KindStoreRejected     Kind = "store_rejected"
	KindBookingUnanswered Kind = "booking_unanswered"
	KindBookingCancelled  Kind = "booking_cancelled"
)

func (k Kind) String() string {
	return string(k)
}

// Payload is the opaque structured body delivered with a notification.
type Payload map[string]any

// Notification is created once per recipient per event. It is never
// deleted; stale ones get patched instead.
type Notification struct {
	id            uuid.UUID
	recipientID   uuid.UUID
	kind          Kind
	correlationID uuid.UUID
	topic         string
	payload       Payload
	isRead        bool
	createdAt     time.Time
}

func New(recipientID uuid.UUID, kind Kind, correlationID uuid.UUID, topic string, payload Payload, now time.Time) (*Notification, error) {
	if recipientID == uuid.Nil {
		return nil, ErrNoRecipient
	}
	if payload == nil {
		payload = Payload{}
	}
	return &Notification{
		id:            uuid.New(),
		recipientID:   recipientID,
		kind:          kind,
		correlationID: correlationID,
		topic:         topic,
		payload:       payload,
		createdAt:     now,
	}, nil
}

func Reconstruct(
	id, recipientID uuid.UUID,
	kind Kind,
	correlationID uuid.UUID,
	topic string,
	payload Payload,
	isRead bool,
	createdAt time.Time,
) *Notification {
	return &Notification{
		id:            id,
		recipientID:   recipientID,
		kind:          kind,
		correlationID: correlationID,
		topic:         topic,
		payload:       payload,
		isRead:        isRead,
		createdAt:     createdAt,
	}
}

// ApplyPatch merges the patch into the payload, forces the read flag and
// refreshes the timestamp. Used when the underlying request went stale.
func (n *Notification) ApplyPatch(patch Payload, now time.Time) {
	if n.payload == nil {
		n.payload = Payload{}
	}
	for k, v := range patch {
		n.payload[k] = v
	}
	n.isRead = true
	n.createdAt = now
}

func (n *Notification) MarkRead() {
	n.isRead = true
}

func (n *Notification) ID() uuid.UUID            { return n.id }
func (n *Notification) RecipientID() uuid.UUID   { return n.recipientID }
func (n *Notification) Kind() Kind               { return n.kind }
func (n *Notification) CorrelationID() uuid.UUID { return n.correlationID }
func (n *Notification) Topic() string            { return n.topic }
func (n *Notification) IsRead() bool             { return n.isRead }
func (n *Notification) CreatedAt() time.Time     { return n.createdAt }

func (n *Notification) Payload() Payload {
	out := make(Payload, len(n.payload))
	for k, v := range n.payload {
		out[k] = v
	}
	return out
}
