//go:build unit || integration

// Package fake provides in-memory stand-ins for the persistence ports so
// command-side tests can run without a database.
package fake

import (
	"context"

	"chairtime/internal/infra/db"
	"chairtime/internal/usecase/shared"
)

type UnitOfWork struct {
	Tx *Tx
	// WithinErr, when set, fails Within before the callback runs.
	WithinErr error
	// Commits counts completed Within calls.
	Commits int
}

func NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{Tx: NewTx()}
}

func (u *UnitOfWork) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	if u.WithinErr != nil {
		return u.WithinErr
	}
	if err := fn(ctx, u.Tx); err != nil {
		return err
	}
	u.Commits++
	return nil
}

func (u *UnitOfWork) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *UnitOfWork) WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *UnitOfWork) CommandReads() shared.CommandReads {
	return u.Tx.ReadsFake
}

type Tx struct {
	AppointmentRepo  *AppointmentRepo
	NotificationRepo *NotificationRepo
	ChatRepo         *ChatRepo
	EventRepo        *EventRepo
	ReadsFake        *CommandReads
}

func NewTx() *Tx {
	return &Tx{
		AppointmentRepo:  NewAppointmentRepo(),
		NotificationRepo: NewNotificationRepo(),
		ChatRepo:         NewChatRepo(),
		EventRepo:        NewEventRepo(),
		ReadsFake:        NewCommandReads(),
	}
}

func (t *Tx) Appointments() shared.AppointmentRepository   { return t.AppointmentRepo }
func (t *Tx) Notifications() shared.NotificationRepository { return t.NotificationRepo }
func (t *Tx) Chat() shared.ChatRepository                  { return t.ChatRepo }
func (t *Tx) Events() shared.EventRepository               { return t.EventRepo }
func (t *Tx) Reads() shared.CommandReads                   { return t.ReadsFake }
func (t *Tx) DB() db.DBTX                                  { return nil }
