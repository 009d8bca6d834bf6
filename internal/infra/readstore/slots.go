package readstore

import (
	"context"
	"errors"
	"time"

	"chairtime/internal/infra"
	"chairtime/internal/infra/db"
	"chairtime/internal/usecase/queries"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var activeStatuses = []string{"pending", "approved"}

// SlotReadStore backs the weekly availability grid.
type SlotReadStore struct {
	dbtx db.DBTX
}

func NewSlotReadStore(dbtx db.DBTX) *SlotReadStore {
	return &SlotReadStore{dbtx: dbtx}
}

func (s *SlotReadStore) StoreExists(ctx context.Context, storeID uuid.UUID) (bool, error) {
	query, args, err := psql.Select("1").
		From("stores").
		Where(sq.Eq{"id": storeID}).
		ToSql()
	if err != nil {
		return false, infra.WrapRepoErr("failed to build store existence query", err, infra.KindDBFailure)
	}

	var one int
	err = s.dbtx.QueryRow(ctx, query, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, infra.WrapRepoErr("failed to check store existence", err)
	}
	return true, nil
}

func (s *SlotReadStore) ActiveChairsByStore(ctx context.Context, storeID uuid.UUID) ([]queries.StoreChairRow, error) {
	query, args, err := psql.Select("c.id", "c.name", "mb.name", "mb.rating").
		From("chairs c").
		LeftJoin("manual_barbers mb ON mb.id = c.manual_barber_id").
		Where(sq.Eq{"c.store_id": storeID, "c.is_active": true}).
		OrderBy("c.name").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build chairs query", err, infra.KindDBFailure)
	}

	rows, err := s.dbtx.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query chairs", err)
	}
	defer rows.Close()

	var out []queries.StoreChairRow
	for rows.Next() {
		var row queries.StoreChairRow
		if err := rows.Scan(&row.ChairID, &row.ChairName, &row.ManualBarberName, &row.ManualBarberRating); err != nil {
			return nil, infra.WrapRepoErr("failed to scan chair row", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate chairs", err)
	}
	return out, nil
}

func (s *SlotReadStore) WorkingHoursByStore(ctx context.Context, storeID uuid.UUID) ([]queries.WorkingHourRow, error) {
	query, args, err := psql.Select("weekday", "open_time", "close_time").
		From("working_hours").
		Where(sq.Eq{"store_id": storeID}).
		OrderBy("weekday").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build working hours query", err, infra.KindDBFailure)
	}

	rows, err := s.dbtx.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query working hours", err)
	}
	defer rows.Close()

	var out []queries.WorkingHourRow
	for rows.Next() {
		var (
			row queries.WorkingHourRow
			dow int
		)
		if err := rows.Scan(&dow, &row.OpenTime, &row.CloseTime); err != nil {
			return nil, infra.WrapRepoErr("failed to scan working hour row", err)
		}
		row.Weekday = time.Weekday(dow)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate working hours", err)
	}
	return out, nil
}

func (s *SlotReadStore) ActiveAppointmentWindows(ctx context.Context, chairIDs []uuid.UUID, from, to time.Time) ([]queries.BookedWindow, error) {
	if len(chairIDs) == 0 {
		return nil, nil
	}

	query, args, err := psql.Select("chair_id", "start_time", "end_time").
		From("appointments").
		Where(sq.Eq{"chair_id": chairIDs, "status": activeStatuses}).
		Where("start_time < ? AND end_time > ?", to, from).
		OrderBy("start_time").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build occupancy query", err, infra.KindDBFailure)
	}

	rows, err := s.dbtx.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query occupancy", err)
	}
	defer rows.Close()

	var out []queries.BookedWindow
	for rows.Next() {
		var w queries.BookedWindow
		if err := rows.Scan(&w.ChairID, &w.Start, &w.End); err != nil {
			return nil, infra.WrapRepoErr("failed to scan occupancy row", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate occupancy", err)
	}
	return out, nil
}
