package readstore

import (
	"context"
	"time"

	"chairtime/internal/infra"
	"chairtime/internal/infra/db"
	"chairtime/internal/usecase/shared"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// CatalogReadStore serves the command-side lookups against the store
// catalog tables.
type CatalogReadStore struct {
	dbtx db.DBTX
}

func NewCatalogReadStore(dbtx db.DBTX) *CatalogReadStore {
	return &CatalogReadStore{dbtx: dbtx}
}

func (s *CatalogReadStore) ChairByID(ctx context.Context, id uuid.UUID) (*shared.ChairSnapshot, error) {
	query, args, err := psql.Select("id", "store_id", "name", "manual_barber_id", "is_active").
		From("chairs").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build chair query", err, infra.KindDBFailure)
	}

	var (
		chair          shared.ChairSnapshot
		manualBarberID uuid.NullUUID
	)
	err = s.dbtx.QueryRow(ctx, query, args...).Scan(&chair.ID, &chair.StoreID, &chair.Name, &manualBarberID, &chair.IsActive)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find chair", err)
	}
	if manualBarberID.Valid {
		id := manualBarberID.UUID
		chair.ManualBarberID = &id
	}
	return &chair, nil
}

func (s *CatalogReadStore) StoreByID(ctx context.Context, id uuid.UUID) (*shared.StoreSnapshot, error) {
	query, args, err := psql.Select("id", "owner_id", "name").
		From("stores").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build store query", err, infra.KindDBFailure)
	}

	var store shared.StoreSnapshot
	err = s.dbtx.QueryRow(ctx, query, args...).Scan(&store.ID, &store.OwnerID, &store.Name)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find store", err)
	}
	return &store, nil
}

func (s *CatalogReadStore) WorkingHour(ctx context.Context, storeID uuid.UUID, weekday time.Weekday) (*shared.WorkingHourSnapshot, error) {
	query, args, err := psql.Select("store_id", "weekday", "open_time", "close_time").
		From("working_hours").
		Where(sq.Eq{"store_id": storeID, "weekday": int(weekday)}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build working hour query", err, infra.KindDBFailure)
	}

	var (
		wh  shared.WorkingHourSnapshot
		dow int
	)
	err = s.dbtx.QueryRow(ctx, query, args...).Scan(&wh.StoreID, &dow, &wh.OpenTime, &wh.CloseTime)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find working hour", err)
	}
	wh.Weekday = time.Weekday(dow)
	return &wh, nil
}

func (s *CatalogReadStore) ServiceOfferingsByIDs(ctx context.Context, ids []uuid.UUID) ([]shared.ServiceOfferingSnapshot, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := psql.Select("id", "name", "price_cents", "is_active").
		From("service_offerings").
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build offerings query", err, infra.KindDBFailure)
	}

	rows, err := s.dbtx.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query service offerings", err)
	}
	defer rows.Close()

	var out []shared.ServiceOfferingSnapshot
	for rows.Next() {
		var o shared.ServiceOfferingSnapshot
		if err := rows.Scan(&o.ID, &o.Name, &o.PriceCents, &o.IsActive); err != nil {
			return nil, infra.WrapRepoErr("failed to scan service offering", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate service offerings", err)
	}
	return out, nil
}
