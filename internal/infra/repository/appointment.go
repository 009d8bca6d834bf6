package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"chairtime/internal/domain/appointment"
	"chairtime/internal/infra"
	"chairtime/internal/infra/db"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var appointmentColumns = []string{
	"id", "chair_id", "store_id", "customer_id", "store_owner_id", "free_barber_id",
	"manual_barber_id", "performer_user_id", "booked_by", "booked_by_type",
	"start_time", "end_time", "status", "store_decision", "free_barber_decision",
	"is_linked", "pending_expires_at", "version", "created_at", "updated_at",
}

type AppointmentRepository struct{}

func NewAppointmentRepository() *AppointmentRepository {
	return &AppointmentRepository{}
}

func (r *AppointmentRepository) Create(ctx context.Context, tx db.DBTX, appt *appointment.Appointment) (uuid.UUID, error) {
	query, args, err := psql.Insert("appointments").
		Columns(
			"id", "chair_id", "store_id", "customer_id", "store_owner_id", "free_barber_id",
			"manual_barber_id", "performer_user_id", "booked_by", "booked_by_type",
			"slot_date", "start_time", "end_time", "status", "store_decision", "free_barber_decision",
			"is_linked", "pending_expires_at", "version", "created_at", "updated_at",
		).
		Values(
			appt.ID(),
			appt.ChairID(),
			appt.StoreID(),
			appt.Participants().IDPtr(appointment.RoleCustomer),
			appt.Participants().IDPtr(appointment.RoleStoreOwner),
			appt.Participants().IDPtr(appointment.RoleFreeBarber),
			appt.ManualBarberID(),
			appt.PerformerID(),
			appt.BookedBy(),
			string(appt.BookedByType()),
			appt.Window().Start(),
			appt.Window().Start(),
			appt.Window().End(),
			string(appt.Status()),
			nullDecision(appt.StoreDecision()),
			nullDecision(appt.FreeBarberDecision()),
			appt.IsLinked(),
			appt.PendingExpiresAt(),
			appt.Version(),
			appt.CreatedAt(),
			appt.UpdatedAt(),
		).
		ToSql()
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to build appointment insert", err, infra.KindDBFailure)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create appointment", err)
	}

	if err := r.insertServices(ctx, tx, appt); err != nil {
		return uuid.Nil, err
	}
	return appt.ID(), nil
}

func (r *AppointmentRepository) insertServices(ctx context.Context, tx db.DBTX, appt *appointment.Appointment) error {
	builder := psql.Insert("appointment_services").
		Columns("appointment_id", "position", "name", "price_cents")
	for i, item := range appt.Services() {
		builder = builder.Values(appt.ID(), i, item.Name, item.PriceCents)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build service items insert", err, infra.KindDBFailure)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to persist service items", err)
	}
	return nil
}

func (r *AppointmentRepository) FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*appointment.Appointment, error) {
	query, args, err := psql.Select(appointmentColumns...).
		From("appointments").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build appointment query", err, infra.KindDBFailure)
	}

	appt, err := scanAppointment(tx.QueryRow(ctx, query, args...), nil)
	if err != nil {
		return nil, err
	}

	services, err := r.loadServices(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	return withServices(appt, services), nil
}

func (r *AppointmentRepository) loadServices(ctx context.Context, tx db.DBTX, appointmentID uuid.UUID) ([]appointment.ServiceItem, error) {
	query, args, err := psql.Select("name", "price_cents").
		From("appointment_services").
		Where(sq.Eq{"appointment_id": appointmentID}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build service items query", err, infra.KindDBFailure)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load service items", err)
	}
	defer rows.Close()

	var items []appointment.ServiceItem
	for rows.Next() {
		var item appointment.ServiceItem
		if err := rows.Scan(&item.Name, &item.PriceCents); err != nil {
			return nil, infra.WrapRepoErr("failed to scan service item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate service items", err)
	}
	return items, nil
}

// Update writes current state guarded by the loaded version; a zero-row
// update means someone else won the race.
func (r *AppointmentRepository) Update(ctx context.Context, tx db.DBTX, appt *appointment.Appointment) error {
	query, args, err := psql.Update("appointments").
		Set("status", string(appt.Status())).
		Set("store_decision", nullDecision(appt.StoreDecision())).
		Set("free_barber_decision", nullDecision(appt.FreeBarberDecision())).
		Set("pending_expires_at", appt.PendingExpiresAt()).
		Set("updated_at", appt.UpdatedAt()).
		Set("version", appt.Version()+1).
		Where(sq.Eq{"id": appt.ID(), "version": appt.Version()}).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build appointment update", err, infra.KindDBFailure)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return infra.WrapRepoErr("failed to update appointment", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("stale appointment version", nil, infra.KindVersionMismatch)
	}
	return nil
}

func (r *AppointmentRepository) FindPendingByPerformer(ctx context.Context, tx db.DBTX, performerID, excludeID uuid.UUID) ([]*appointment.Appointment, error) {
	query, args, err := psql.Select(appointmentColumns...).
		From("appointments").
		Where(sq.Eq{"performer_user_id": performerID, "status": string(appointment.StatusPending)}).
		Where(sq.NotEq{"id": excludeID}).
		OrderBy("created_at").
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build performer query", err, infra.KindDBFailure)
	}
	return r.queryMany(ctx, tx, query, args)
}

func (r *AppointmentRepository) FindPendingOnChairOverlapping(ctx context.Context, tx db.DBTX, chairID, excludeID uuid.UUID, window appointment.TimeWindow) ([]*appointment.Appointment, error) {
	query, args, err := psql.Select(appointmentColumns...).
		From("appointments").
		Where(sq.Eq{"chair_id": chairID, "status": string(appointment.StatusPending)}).
		Where(sq.NotEq{"id": excludeID}).
		Where("start_time < ? AND ? < end_time", window.End(), window.Start()).
		OrderBy("created_at").
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build chair overlap query", err, infra.KindDBFailure)
	}
	return r.queryMany(ctx, tx, query, args)
}

// FindExpiredPending skips rows a concurrent sweep already claimed.
func (r *AppointmentRepository) FindExpiredPending(ctx context.Context, tx db.DBTX, now time.Time, limit int32) ([]*appointment.Appointment, error) {
	query, args, err := psql.Select(appointmentColumns...).
		From("appointments").
		Where(sq.Eq{"status": string(appointment.StatusPending)}).
		Where(sq.LtOrEq{"pending_expires_at": now}).
		OrderBy("pending_expires_at").
		Limit(uint64(limit)).
		Suffix("FOR UPDATE SKIP LOCKED").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build expired query", err, infra.KindDBFailure)
	}
	return r.queryMany(ctx, tx, query, args)
}

// ExpireBatch flips the whole batch in one statement; sub-decisions still
// pending become no_answer.
func (r *AppointmentRepository) ExpireBatch(ctx context.Context, tx db.DBTX, ids []uuid.UUID, now time.Time) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := psql.Update("appointments").
		Set("status", string(appointment.StatusUnanswered)).
		Set("store_decision", sq.Expr("CASE WHEN store_decision = 'pending' THEN 'no_answer' ELSE store_decision END")).
		Set("free_barber_decision", sq.Expr("CASE WHEN free_barber_decision = 'pending' THEN 'no_answer' ELSE free_barber_decision END")).
		Set("pending_expires_at", nil).
		Set("updated_at", now).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"id": ids, "status": string(appointment.StatusPending)}).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build expire batch update", err, infra.KindDBFailure)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to expire appointment batch", err)
	}
	defer rows.Close()

	var flipped []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, infra.WrapRepoErr("failed to scan expired id", err)
		}
		flipped = append(flipped, id)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate expired ids", err)
	}
	return flipped, nil
}

func (r *AppointmentRepository) HasActiveOverlap(ctx context.Context, tx db.DBTX, chairID *uuid.UUID, performerID *uuid.UUID, window appointment.TimeWindow) (bool, error) {
	conds := sq.Or{}
	if chairID != nil {
		conds = append(conds, sq.Eq{"chair_id": *chairID})
	}
	if performerID != nil {
		conds = append(conds, sq.Eq{"performer_user_id": *performerID})
	}
	if len(conds) == 0 {
		return false, nil
	}

	query, args, err := psql.Select("1").
		From("appointments").
		Where(sq.Eq{"status": []string{string(appointment.StatusPending), string(appointment.StatusApproved)}}).
		Where(conds).
		Where("start_time < ? AND ? < end_time", window.End(), window.Start()).
		Limit(1).
		ToSql()
	if err != nil {
		return false, infra.WrapRepoErr("failed to build overlap query", err, infra.KindDBFailure)
	}

	var one int
	err = tx.QueryRow(ctx, query, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, infra.WrapRepoErr("failed to check overlap", err)
	}
	return true, nil
}

func (r *AppointmentRepository) queryMany(ctx context.Context, tx db.DBTX, query string, args []any) ([]*appointment.Appointment, error) {
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query appointments", err)
	}
	defer rows.Close()

	var appts []*appointment.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows, nil)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate appointments", err)
	}
	return appts, nil
}

func scanAppointment(row pgx.Row, services []appointment.ServiceItem) (*appointment.Appointment, error) {
	var (
		id             uuid.UUID
		chairID        uuid.NullUUID
		storeID        uuid.NullUUID
		customerID     uuid.NullUUID
		storeOwnerID   uuid.NullUUID
		freeBarberID   uuid.NullUUID
		manualBarberID uuid.NullUUID
		performerID    uuid.NullUUID
		bookedBy       uuid.UUID
		bookedByType   string
		startTime      time.Time
		endTime        time.Time
		status         string
		storeDecision  sql.NullString
		barberDecision sql.NullString
		isLinked       bool
		expiresAt      sql.NullTime
		version        int64
		createdAt      time.Time
		updatedAt      time.Time
	)

	err := row.Scan(
		&id, &chairID, &storeID, &customerID, &storeOwnerID, &freeBarberID,
		&manualBarberID, &performerID, &bookedBy, &bookedByType,
		&startTime, &endTime, &status, &storeDecision, &barberDecision,
		&isLinked, &expiresAt, &version, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan appointment", err)
	}

	window, err := appointment.NewTimeWindow(startTime, endTime)
	if err != nil {
		return nil, infra.WrapRepoErr("stored window is inverted", err, infra.KindDBFailure)
	}

	var expiry *time.Time
	if expiresAt.Valid {
		expiry = &expiresAt.Time
	}

	return appointment.Reconstruct(
		id,
		fromNullUUID(chairID),
		fromNullUUID(storeID),
		appointment.NewParticipants(fromNullUUID(customerID), fromNullUUID(storeOwnerID), fromNullUUID(freeBarberID)),
		fromNullUUID(manualBarberID),
		fromNullUUID(performerID),
		bookedBy,
		appointment.BookedByType(bookedByType),
		window,
		appointment.Status(status),
		appointment.Decision(storeDecision.String),
		appointment.Decision(barberDecision.String),
		isLinked,
		expiry,
		services,
		version,
		createdAt,
		updatedAt,
	), nil
}

func withServices(appt *appointment.Appointment, services []appointment.ServiceItem) *appointment.Appointment {
	return appointment.Reconstruct(
		appt.ID(), appt.ChairID(), appt.StoreID(), appt.Participants(),
		appt.ManualBarberID(), appt.PerformerID(), appt.BookedBy(), appt.BookedByType(),
		appt.Window(), appt.Status(), appt.StoreDecision(), appt.FreeBarberDecision(),
		appt.IsLinked(), appt.PendingExpiresAt(), services,
		appt.Version(), appt.CreatedAt(), appt.UpdatedAt(),
	)
}

func nullDecision(d appointment.Decision) *string {
	if d == "" {
		return nil
	}
	s := string(d)
	return &s
}

func fromNullUUID(n uuid.NullUUID) *uuid.UUID {
	if !n.Valid {
		return nil
	}
	id := n.UUID
	return &id
}
