package readstore

import (
	"context"

	"chairtime/internal/infra"
	"chairtime/internal/infra/db"
	"chairtime/internal/usecase/queries"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type ChatReadStore struct {
	dbtx db.DBTX
}

func NewChatReadStore(dbtx db.DBTX) *ChatReadStore {
	return &ChatReadStore{dbtx: dbtx}
}

func (s *ChatReadStore) ActiveThreadsByUser(ctx context.Context, userID uuid.UUID) ([]*queries.ThreadListItem, error) {
	unreadExpr := `CASE
		WHEN t.customer_id = ? THEN t.unread_customer
		WHEN t.store_owner_id = ? THEN t.unread_store_owner
		ELSE t.unread_free_barber
	END AS unread_count`

	query, args, err := psql.Select(
		"t.id", "t.appointment_id", "a.status", "st.name", "t.last_preview", "t.last_message_at",
	).
		Column(sq.Expr(unreadExpr, userID, userID)).
		From("chat_threads t").
		Join("appointments a ON a.id = t.appointment_id").
		LeftJoin("stores st ON st.id = a.store_id").
		Where(sq.Eq{"a.status": activeStatuses}).
		Where(sq.Or{
			sq.Eq{"t.customer_id": userID},
			sq.Eq{"t.store_owner_id": userID},
			sq.Eq{"t.free_barber_id": userID},
		}).
		OrderBy("t.last_message_at DESC NULLS LAST").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build threads query", err, infra.KindDBFailure)
	}

	rows, err := s.dbtx.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query threads", err)
	}
	defer rows.Close()

	var out []*queries.ThreadListItem
	for rows.Next() {
		var item queries.ThreadListItem
		if err := rows.Scan(
			&item.ThreadID, &item.AppointmentID, &item.AppointmentStatus,
			&item.StoreName, &item.LastPreview, &item.LastMessageAt, &item.UnreadCount,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan thread row", err)
		}
		out = append(out, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate threads", err)
	}
	return out, nil
}

func (s *ChatReadStore) MessagesByAppointment(ctx context.Context, appointmentID uuid.UUID, limit int32) ([]*queries.MessageView, error) {
	query, args, err := psql.Select("id", "appointment_id", "sender_id", "body", "sent_at").
		From("chat_messages").
		Where(sq.Eq{"appointment_id": appointmentID}).
		OrderBy("sent_at").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build messages query", err, infra.KindDBFailure)
	}

	rows, err := s.dbtx.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query messages", err)
	}
	defer rows.Close()

	var out []*queries.MessageView
	for rows.Next() {
		var view queries.MessageView
		if err := rows.Scan(&view.ID, &view.AppointmentID, &view.SenderID, &view.Body, &view.SentAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan message row", err)
		}
		out = append(out, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate messages", err)
	}
	return out, nil
}

// ThreadAccess resolves activity and membership in one round trip; the
// thread must already exist.
func (s *ChatReadStore) ThreadAccess(ctx context.Context, appointmentID, userID uuid.UUID) (*queries.ThreadAccessRow, error) {
	query, args, err := psql.Select("a.id").
		Column(sq.Expr("a.status IN ('pending','approved') AS active")).
		Column(sq.Expr(
			"(t.customer_id = ? OR t.store_owner_id = ? OR t.free_barber_id = ?) AS participant",
			userID, userID, userID,
		)).
		From("chat_threads t").
		Join("appointments a ON a.id = t.appointment_id").
		Where(sq.Eq{"t.appointment_id": appointmentID}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build thread access query", err, infra.KindDBFailure)
	}

	var row queries.ThreadAccessRow
	err = s.dbtx.QueryRow(ctx, query, args...).Scan(&row.AppointmentID, &row.Active, &row.Participant)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to resolve thread access", err)
	}
	return &row, nil
}

// UnreadChatTotal sums the caller's counters across threads on still
// active appointments.
func (s *ChatReadStore) UnreadChatTotal(ctx context.Context, userID uuid.UUID) (int64, error) {
	sumExpr := `COALESCE(SUM(CASE
		WHEN t.customer_id = ? THEN t.unread_customer
		WHEN t.store_owner_id = ? THEN t.unread_store_owner
		ELSE t.unread_free_barber
	END), 0)`

	query, args, err := psql.Select().
		Column(sq.Expr(sumExpr, userID, userID)).
		From("chat_threads t").
		Join("appointments a ON a.id = t.appointment_id").
		Where(sq.Eq{"a.status": activeStatuses}).
		Where(sq.Or{
			sq.Eq{"t.customer_id": userID},
			sq.Eq{"t.store_owner_id": userID},
			sq.Eq{"t.free_barber_id": userID},
		}).
		ToSql()
	if err != nil {
		return 0, infra.WrapRepoErr("failed to build unread chat query", err, infra.KindDBFailure)
	}

	var total int64
	if err := s.dbtx.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, infra.WrapRepoErr("failed to sum unread chat", err)
	}
	return total, nil
}
