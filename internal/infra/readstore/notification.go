package readstore

import (
	"context"
	"encoding/json"

	"chairtime/internal/infra"
	"chairtime/internal/infra/db"
	"chairtime/internal/usecase/queries"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type NotificationReadStore struct {
	dbtx db.DBTX
}

func NewNotificationReadStore(dbtx db.DBTX) *NotificationReadStore {
	return &NotificationReadStore{dbtx: dbtx}
}

func (s *NotificationReadStore) FindByRecipient(ctx context.Context, recipientID uuid.UUID, limit int32) ([]*queries.NotificationView, error) {
	query, args, err := psql.Select("id", "kind", "correlation_id", "topic", "payload", "is_read", "created_at").
		From("notifications").
		Where(sq.Eq{"recipient_id": recipientID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build notifications query", err, infra.KindDBFailure)
	}

	rows, err := s.dbtx.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query notifications", err)
	}
	defer rows.Close()

	var out []*queries.NotificationView
	for rows.Next() {
		var (
			view       queries.NotificationView
			rawPayload []byte
		)
		if err := rows.Scan(&view.ID, &view.Kind, &view.CorrelationID, &view.Topic, &rawPayload, &view.IsRead, &view.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan notification row", err)
		}
		view.Payload = map[string]any{}
		if len(rawPayload) > 0 {
			if err := json.Unmarshal(rawPayload, &view.Payload); err != nil {
				return nil, infra.WrapRepoErr("failed to decode notification payload", err, infra.KindDBFailure)
			}
		}
		out = append(out, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate notifications", err)
	}
	return out, nil
}

func (s *NotificationReadStore) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	query, args, err := psql.Select("COUNT(*)").
		From("notifications").
		Where(sq.Eq{"recipient_id": recipientID, "is_read": false}).
		ToSql()
	if err != nil {
		return 0, infra.WrapRepoErr("failed to build unread count query", err, infra.KindDBFailure)
	}

	var count int64
	if err := s.dbtx.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, infra.WrapRepoErr("failed to count unread notifications", err)
	}
	return count, nil
}

// MarkRead scopes the update to the recipient so one user cannot touch
// another's rows.
func (s *NotificationReadStore) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	query, args, err := psql.Update("notifications").
		Set("is_read", true).
		Where(sq.Eq{"id": id, "recipient_id": recipientID}).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build mark-read update", err, infra.KindDBFailure)
	}

	tag, err := s.dbtx.Exec(ctx, query, args...)
	if err != nil {
		return infra.WrapRepoErr("failed to mark notification read", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("notification not found for recipient", nil, infra.KindNotFound)
	}
	return nil
}
