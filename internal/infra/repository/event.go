package repository

import (
	"context"
	"encoding/json"
	"time"

	"chairtime/internal/domain/appointment"
	"chairtime/internal/infra"
	"chairtime/internal/infra/db"

	"github.com/google/uuid"
)

type EventRepository struct{}

func NewEventRepository() *EventRepository {
	return &EventRepository{}
}

// Append writes to the append-only event log; rows are never updated.
func (r *EventRepository) Append(ctx context.Context, tx db.DBTX, appointmentID uuid.UUID, kind appointment.EventKind, actorID *uuid.UUID, detail map[string]any, at time.Time) error {
	var rawDetail []byte
	if detail != nil {
		var err error
		rawDetail, err = json.Marshal(detail)
		if err != nil {
			return infra.WrapRepoErr("failed to encode event detail", err, infra.KindDBFailure)
		}
	}

	query, args, err := psql.Insert("appointment_events").
		Columns("id", "appointment_id", "kind", "actor_id", "detail", "occurred_at").
		Values(uuid.New(), appointmentID, string(kind), actorID, rawDetail, at).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build event insert", err, infra.KindDBFailure)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to append appointment event", err)
	}
	return nil
}
