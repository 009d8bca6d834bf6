package queries

import (
	"context"
	"time"

	"chairtime/internal/infra"
	"chairtime/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrThreadNotFound = errs.New("chat thread not found")
	ErrThreadAccess   = errs.New("caller is not a thread participant")
)

type ThreadListItem struct {
	ThreadID          uuid.UUID  `json:"thread_id"`
	AppointmentID     uuid.UUID  `json:"appointment_id"`
	AppointmentStatus string     `json:"appointment_status"`
	StoreName         *string    `json:"store_name,omitempty"`
	LastPreview       string     `json:"last_preview"`
	LastMessageAt     *time.Time `json:"last_message_at,omitempty"`
	UnreadCount       int        `json:"unread_count"`
}

type MessageView struct {
	ID            uuid.UUID `json:"id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	SenderID      uuid.UUID `json:"sender_id"`
	SenderName    string    `json:"sender_name,omitempty"`
	Body          string    `json:"body"`
	SentAt        time.Time `json:"sent_at"`
}

// ThreadAccessRow resolves, in one read, whether the appointment is still
// chattable and whether the caller belongs to it.
type ThreadAccessRow struct {
	AppointmentID uuid.UUID
	Active        bool
	Participant   bool
}

type ChatReadStore interface {
	// ActiveThreadsByUser lists threads whose appointment is still pending
	// or approved and includes the caller.
	ActiveThreadsByUser(ctx context.Context, userID uuid.UUID) ([]*ThreadListItem, error)
	MessagesByAppointment(ctx context.Context, appointmentID uuid.UUID, limit int32) ([]*MessageView, error)
	ThreadAccess(ctx context.Context, appointmentID, userID uuid.UUID) (*ThreadAccessRow, error)
	UnreadChatTotal(ctx context.Context, userID uuid.UUID) (int64, error)
}

type ChatQueries interface {
	ListThreads(ctx context.Context, userID uuid.UUID) ([]*ThreadListItem, error)
	ListMessages(ctx context.Context, userID, appointmentID uuid.UUID, limit int) ([]*MessageView, error)
}

type chatQueriesImpl struct {
	store ChatReadStore
}

func NewChatQueries(store ChatReadStore) ChatQueries {
	return &chatQueriesImpl{store: store}
}

func (q *chatQueriesImpl) ListThreads(ctx context.Context, userID uuid.UUID) ([]*ThreadListItem, error) {
	items, err := q.store.ActiveThreadsByUser(ctx, userID)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list chat threads")
	}
	return items, nil
}

// ListMessages refuses terminal appointments; their history stays out of
// reach through this surface.
func (q *chatQueriesImpl) ListMessages(ctx context.Context, userID, appointmentID uuid.UUID, limit int) ([]*MessageView, error) {
	access, err := q.store.ThreadAccess(ctx, appointmentID, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, errs.Wrap(err, "failed to resolve thread access")
	}
	if !access.Active {
		return nil, ErrThreadNotFound
	}
	if !access.Participant {
		return nil, ErrThreadAccess
	}

	if limit <= 0 || limit > 200 {
		limit = 100
	}
	msgs, err := q.store.MessagesByAppointment(ctx, appointmentID, int32(limit))
	if err != nil {
		return nil, errs.Wrap(err, "failed to list messages")
	}
	return msgs, nil
}
