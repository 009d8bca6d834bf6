package repository

import (
	"context"
	"database/sql"
	"time"

	"chairtime/internal/domain/appointment"
	"chairtime/internal/domain/chat"
	"chairtime/internal/infra"
	"chairtime/internal/infra/db"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type ChatRepository struct{}

func NewChatRepository() *ChatRepository {
	return &ChatRepository{}
}

func (r *ChatRepository) FindThreadByAppointment(ctx context.Context, tx db.DBTX, appointmentID uuid.UUID) (*chat.Thread, error) {
	query, args, err := psql.Select(
		"id", "appointment_id", "customer_id", "store_owner_id", "free_barber_id",
		"unread_customer", "unread_store_owner", "unread_free_barber",
		"last_preview", "last_message_at", "created_at", "updated_at",
	).
		From("chat_threads").
		Where(sq.Eq{"appointment_id": appointmentID}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build thread query", err, infra.KindDBFailure)
	}

	var (
		id            uuid.UUID
		apptID        uuid.UUID
		customerID    uuid.NullUUID
		storeOwnerID  uuid.NullUUID
		freeBarberID  uuid.NullUUID
		unreadCust    int
		unreadOwner   int
		unreadBarber  int
		lastPreview   string
		lastMessageAt sql.NullTime
		createdAt     time.Time
		updatedAt     time.Time
	)
	err = tx.QueryRow(ctx, query, args...).Scan(
		&id, &apptID, &customerID, &storeOwnerID, &freeBarberID,
		&unreadCust, &unreadOwner, &unreadBarber,
		&lastPreview, &lastMessageAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find chat thread", err)
	}

	participants := appointment.NewParticipants(
		fromNullUUID(customerID),
		fromNullUUID(storeOwnerID),
		fromNullUUID(freeBarberID),
	)

	unread := make(map[appointment.Role]int, 3)
	if customerID.Valid {
		unread[appointment.RoleCustomer] = unreadCust
	}
	if storeOwnerID.Valid {
		unread[appointment.RoleStoreOwner] = unreadOwner
	}
	if freeBarberID.Valid {
		unread[appointment.RoleFreeBarber] = unreadBarber
	}

	var lastAt *time.Time
	if lastMessageAt.Valid {
		lastAt = &lastMessageAt.Time
	}

	return chat.ReconstructThread(id, apptID, participants, unread, lastPreview, lastAt, createdAt, updatedAt), nil
}

func (r *ChatRepository) CreateThread(ctx context.Context, tx db.DBTX, thread *chat.Thread) (uuid.UUID, error) {
	p := thread.Participants()
	query, args, err := psql.Insert("chat_threads").
		Columns(
			"id", "appointment_id", "customer_id", "store_owner_id", "free_barber_id",
			"unread_customer", "unread_store_owner", "unread_free_barber",
			"last_preview", "last_message_at", "created_at", "updated_at",
		).
		Values(
			thread.ID(),
			thread.AppointmentID(),
			p.IDPtr(appointment.RoleCustomer),
			p.IDPtr(appointment.RoleStoreOwner),
			p.IDPtr(appointment.RoleFreeBarber),
			thread.UnreadByRole(appointment.RoleCustomer),
			thread.UnreadByRole(appointment.RoleStoreOwner),
			thread.UnreadByRole(appointment.RoleFreeBarber),
			thread.LastPreview(),
			thread.LastMessageAt(),
			thread.CreatedAt(),
			thread.UpdatedAt(),
		).
		ToSql()
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to build thread insert", err, infra.KindDBFailure)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create chat thread", err)
	}
	return thread.ID(), nil
}

func (r *ChatRepository) UpdateThread(ctx context.Context, tx db.DBTX, thread *chat.Thread) error {
	query, args, err := psql.Update("chat_threads").
		Set("unread_customer", thread.UnreadByRole(appointment.RoleCustomer)).
		Set("unread_store_owner", thread.UnreadByRole(appointment.RoleStoreOwner)).
		Set("unread_free_barber", thread.UnreadByRole(appointment.RoleFreeBarber)).
		Set("last_preview", thread.LastPreview()).
		Set("last_message_at", thread.LastMessageAt()).
		Set("updated_at", thread.UpdatedAt()).
		Where(sq.Eq{"id": thread.ID()}).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build thread update", err, infra.KindDBFailure)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return infra.WrapRepoErr("failed to update chat thread", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("chat thread not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *ChatRepository) CreateMessage(ctx context.Context, tx db.DBTX, msg *chat.Message) (uuid.UUID, error) {
	query, args, err := psql.Insert("chat_messages").
		Columns("id", "thread_id", "appointment_id", "sender_id", "body", "sent_at").
		Values(msg.ID(), msg.ThreadID(), msg.AppointmentID(), msg.SenderID(), msg.Body(), msg.SentAt()).
		ToSql()
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to build message insert", err, infra.KindDBFailure)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create chat message", err)
	}
	return msg.ID(), nil
}
