package queries

import (
	"context"
	"time"

	"chairtime/internal/infra"
	"chairtime/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrNotificationAccess = errs.New("notification belongs to another user")

type NotificationView struct {
	ID            uuid.UUID      `json:"id"`
	Kind          string         `json:"kind"`
	CorrelationID uuid.UUID      `json:"correlation_id"`
	Topic         string         `json:"topic"`
	Payload       map[string]any `json:"payload"`
	IsRead        bool           `json:"is_read"`
	CreatedAt     time.Time      `json:"created_at"`
}

type NotificationReadStore interface {
	FindByRecipient(ctx context.Context, recipientID uuid.UUID, limit int32) ([]*NotificationView, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) error
}

type NotificationQueries interface {
	List(ctx context.Context, recipientID uuid.UUID, limit int) ([]*NotificationView, error)
	UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) error
}

type notificationQueriesImpl struct {
	store NotificationReadStore
}

func NewNotificationQueries(store NotificationReadStore) NotificationQueries {
	return &notificationQueriesImpl{store: store}
}

func (q *notificationQueriesImpl) List(ctx context.Context, recipientID uuid.UUID, limit int) ([]*NotificationView, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	views, err := q.store.FindByRecipient(ctx, recipientID, int32(limit))
	if err != nil {
		return nil, errs.Wrap(err, "failed to list notifications")
	}
	return views, nil
}

func (q *notificationQueriesImpl) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	count, err := q.store.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, errs.Wrap(err, "failed to count unread notifications")
	}
	return count, nil
}

func (q *notificationQueriesImpl) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	if err := q.store.MarkRead(ctx, id, recipientID); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrNotificationAccess
		}
		return errs.Wrap(err, "failed to mark notification read")
	}
	return nil
}
