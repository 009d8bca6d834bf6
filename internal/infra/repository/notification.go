package repository

import (
	"context"
	"encoding/json"
	"time"

	"chairtime/internal/domain/notification"
	"chairtime/internal/infra"
	"chairtime/internal/infra/db"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type NotificationRepository struct{}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) Create(ctx context.Context, tx db.DBTX, n *notification.Notification) (uuid.UUID, error) {
	payload, err := json.Marshal(n.Payload())
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to encode notification payload", err, infra.KindDBFailure)
	}

	query, args, err := psql.Insert("notifications").
		Columns("id", "recipient_id", "kind", "correlation_id", "topic", "payload", "is_read", "created_at").
		Values(n.ID(), n.RecipientID(), n.Kind().String(), n.CorrelationID(), n.Topic(), payload, n.IsRead(), n.CreatedAt()).
		ToSql()
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to build notification insert", err, infra.KindDBFailure)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create notification", err)
	}
	return n.ID(), nil
}

func (r *NotificationRepository) FindByCorrelation(ctx context.Context, tx db.DBTX, correlationID uuid.UUID, kind notification.Kind, recipientID *uuid.UUID) ([]*notification.Notification, error) {
	builder := psql.Select("id", "recipient_id", "kind", "correlation_id", "topic", "payload", "is_read", "created_at").
		From("notifications").
		Where(sq.Eq{"correlation_id": correlationID, "kind": kind.String()}).
		OrderBy("created_at")
	if recipientID != nil {
		builder = builder.Where(sq.Eq{"recipient_id": *recipientID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build correlation query", err, infra.KindDBFailure)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query notifications", err)
	}
	defer rows.Close()

	var out []*notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate notifications", err)
	}
	return out, nil
}

func (r *NotificationRepository) Update(ctx context.Context, tx db.DBTX, n *notification.Notification) error {
	payload, err := json.Marshal(n.Payload())
	if err != nil {
		return infra.WrapRepoErr("failed to encode notification payload", err, infra.KindDBFailure)
	}

	query, args, err := psql.Update("notifications").
		Set("payload", payload).
		Set("is_read", n.IsRead()).
		Set("created_at", n.CreatedAt()).
		Where(sq.Eq{"id": n.ID()}).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build notification update", err, infra.KindDBFailure)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return infra.WrapRepoErr("failed to update notification", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("notification not found", nil, infra.KindNotFound)
	}
	return nil
}

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var (
		id            uuid.UUID
		recipientID   uuid.UUID
		kind          string
		correlationID uuid.UUID
		topic         string
		rawPayload    []byte
		isRead        bool
		createdAt     time.Time
	)

	if err := row.Scan(&id, &recipientID, &kind, &correlationID, &topic, &rawPayload, &isRead, &createdAt); err != nil {
		return nil, infra.WrapRepoErr("failed to scan notification", err)
	}

	payload := notification.Payload{}
	if len(rawPayload) > 0 {
		if err := json.Unmarshal(rawPayload, &payload); err != nil {
			return nil, infra.WrapRepoErr("failed to decode notification payload", err, infra.KindDBFailure)
		}
	}

	return notification.Reconstruct(id, recipientID, notification.Kind(kind), correlationID, topic, payload, isRead, createdAt), nil
}
