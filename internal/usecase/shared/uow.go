package shared

import (
	"context"
	"time"

	"chairtime/internal/domain/appointment"
	"chairtime/internal/domain/chat"
	"chairtime/internal/domain/notification"
	"chairtime/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Appointments() AppointmentRepository
	Notifications() NotificationRepository
	Chat() ChatRepository
	Events() EventRepository
	Reads() CommandReads
	DB() db.DBTX
}

type CommandReads interface {
	ChairByID(ctx context.Context, id uuid.UUID) (*ChairSnapshot, error)
	StoreByID(ctx context.Context, id uuid.UUID) (*StoreSnapshot, error)
	WorkingHour(ctx context.Context, storeID uuid.UUID, weekday time.Weekday) (*WorkingHourSnapshot, error)
	ServiceOfferingsByIDs(ctx context.Context, ids []uuid.UUID) ([]ServiceOfferingSnapshot, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, tx db.DBTX, appt *appointment.Appointment) (uuid.UUID, error)
	FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*appointment.Appointment, error)
	// Update persists current state guarded by the version the aggregate
	// was loaded with; a stale version surfaces as a repository error.
	Update(ctx context.Context, tx db.DBTX, appt *appointment.Appointment) error
	// FindPendingByPerformer locks and returns every pending appointment
	// whose performer matches, excluding the given appointment id.
	FindPendingByPerformer(ctx context.Context, tx db.DBTX, performerID, excludeID uuid.UUID) ([]*appointment.Appointment, error)
	// FindPendingOnChairOverlapping locks and returns pending appointments
	// on the chair whose window overlaps, excluding the given id.
	FindPendingOnChairOverlapping(ctx context.Context, tx db.DBTX, chairID, excludeID uuid.UUID, window appointment.TimeWindow) ([]*appointment.Appointment, error)
	// FindExpiredPending returns pending appointments past their deadline,
	// skipping rows another sweep already holds.
	FindExpiredPending(ctx context.Context, tx db.DBTX, now time.Time, limit int32) ([]*appointment.Appointment, error)
	// ExpireBatch flips the whole batch in a single statement and returns
	// the ids actually updated.
	ExpireBatch(ctx context.Context, tx db.DBTX, ids []uuid.UUID, now time.Time) ([]uuid.UUID, error)
	// HasActiveOverlap is the advisory pre-check before insert; the partial
	// unique index remains the final arbiter.
	HasActiveOverlap(ctx context.Context, tx db.DBTX, chairID *uuid.UUID, performerID *uuid.UUID, window appointment.TimeWindow) (bool, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, tx db.DBTX, n *notification.Notification) (uuid.UUID, error)
	// FindByCorrelation matches rows by appointment correlation and kind,
	// optionally narrowed to one recipient.
	FindByCorrelation(ctx context.Context, tx db.DBTX, correlationID uuid.UUID, kind notification.Kind, recipientID *uuid.UUID) ([]*notification.Notification, error)
	Update(ctx context.Context, tx db.DBTX, n *notification.Notification) error
}

type ChatRepository interface {
	FindThreadByAppointment(ctx context.Context, tx db.DBTX, appointmentID uuid.UUID) (*chat.Thread, error)
	CreateThread(ctx context.Context, tx db.DBTX, thread *chat.Thread) (uuid.UUID, error)
	UpdateThread(ctx context.Context, tx db.DBTX, thread *chat.Thread) error
	CreateMessage(ctx context.Context, tx db.DBTX, msg *chat.Message) (uuid.UUID, error)
}

type EventRepository interface {
	// Append writes one row to the append-only appointment event log.
	Append(ctx context.Context, tx db.DBTX, appointmentID uuid.UUID, kind appointment.EventKind, actorID *uuid.UUID, detail map[string]any, at time.Time) error
}
