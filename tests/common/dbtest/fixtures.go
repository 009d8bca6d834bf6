//go:build integration

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// Catalog holds the ids of the seeded reference rows tests book against.
type Catalog struct {
	StoreID        uuid.UUID
	OwnerID        uuid.UUID
	ChairID        uuid.UUID
	ManualBarberID uuid.UUID
	ManualChairID  uuid.UUID
	OfferingID     uuid.UUID
}

// SeedCatalog inserts one store with two chairs (one staffed by a manual
// barber), open every day 09:00-18:00, and one active service offering.
func SeedCatalog(t *testing.T, db DBLike) Catalog {
	t.Helper()
	ctx := context.Background()

	c := Catalog{
		StoreID:        uuid.New(),
		OwnerID:        uuid.New(),
		ChairID:        uuid.New(),
		ManualBarberID: uuid.New(),
		ManualChairID:  uuid.New(),
		OfferingID:     uuid.New(),
	}

	_, err := db.Exec(ctx, "INSERT INTO stores (id, owner_id, name) VALUES ($1, $2, 'Test Barbershop')",
		c.StoreID, c.OwnerID)
	require.NoError(t, err)

	_, err = db.Exec(ctx, "INSERT INTO manual_barbers (id, name, rating) VALUES ($1, 'Resident Barber', 4.80)",
		c.ManualBarberID)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `INSERT INTO chairs (id, store_id, name, manual_barber_id, is_active) VALUES
		($1, $3, 'Chair 1', NULL, true),
		($2, $3, 'Chair 2', $4, true)`,
		c.ChairID, c.ManualChairID, c.StoreID, c.ManualBarberID)
	require.NoError(t, err)

	for weekday := 0; weekday < 7; weekday++ {
		_, err = db.Exec(ctx,
			"INSERT INTO working_hours (store_id, weekday, open_time, close_time) VALUES ($1, $2, '09:00', '18:00')",
			c.StoreID, weekday)
		require.NoError(t, err)
	}

	_, err = db.Exec(ctx,
		"INSERT INTO service_offerings (id, name, price_cents, is_active) VALUES ($1, 'Haircut', 3500, true)",
		c.OfferingID)
	require.NoError(t, err)

	return c
}

// CreateOffering adds one more service offering next to the seeded catalog.
func CreateOffering(t *testing.T, db DBLike, name string, priceCents int64, active bool) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO service_offerings (id, name, price_cents, is_active) VALUES ($1, $2, $3, $4)",
		id, name, priceCents, active)
	require.NoError(t, err)
	return id
}

// ResetDB truncates every table so each test starts from a blank slate.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rows, err := pool.Query(ctx, `
		SELECT 'public.' || quote_ident(tablename)
		FROM pg_tables
		WHERE schemaname = 'public'`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(tables) == 0 {
		return fmt.Errorf("no tables to truncate; schema not applied")
	}

	_, err = pool.Exec(ctx, "TRUNCATE "+strings.Join(tables, ", ")+" RESTART IDENTITY CASCADE")
	return err
}
