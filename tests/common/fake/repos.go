//go:build unit || integration

package fake

import (
	"context"
	"sort"
	"time"

	"chairtime/internal/domain/appointment"
	"chairtime/internal/domain/chat"
	"chairtime/internal/domain/notification"
	"chairtime/internal/infra"
	"chairtime/internal/infra/db"

	"github.com/google/uuid"
)

type AppointmentRepo struct {
	byID map[uuid.UUID]*appointment.Appointment
	// CreateErr, when set, fails the next Create.
	CreateErr error
}

func NewAppointmentRepo() *AppointmentRepo {
	return &AppointmentRepo{byID: make(map[uuid.UUID]*appointment.Appointment)}
}

// Seed installs an aggregate without going through Create.
func (r *AppointmentRepo) Seed(appts ...*appointment.Appointment) {
	for _, a := range appts {
		r.byID[a.ID()] = a
	}
}

func (r *AppointmentRepo) All() []*appointment.Appointment {
	out := make([]*appointment.Appointment, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out
}

func (r *AppointmentRepo) Create(_ context.Context, _ db.DBTX, appt *appointment.Appointment) (uuid.UUID, error) {
	if r.CreateErr != nil {
		return uuid.Nil, r.CreateErr
	}
	for _, existing := range r.byID {
		if !existing.Status().IsActive() {
			continue
		}
		sameChair := existing.ChairID() != nil && appt.ChairID() != nil && *existing.ChairID() == *appt.ChairID()
		if sameChair && existing.Window().Overlaps(appt.Window()) {
			return uuid.Nil, infra.WrapRepoErr("appointment slot taken", nil, infra.KindConflict)
		}
	}
	r.byID[appt.ID()] = appt
	return appt.ID(), nil
}

func (r *AppointmentRepo) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*appointment.Appointment, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, infra.WrapRepoErr("appointment not found", nil, infra.KindNotFound)
	}
	return a, nil
}

func (r *AppointmentRepo) Update(_ context.Context, _ db.DBTX, appt *appointment.Appointment) error {
	current, ok := r.byID[appt.ID()]
	if !ok {
		return infra.WrapRepoErr("appointment not found", nil, infra.KindNotFound)
	}
	if current.Version() != appt.Version() {
		return infra.WrapRepoErr("stale appointment version", nil, infra.KindVersionMismatch)
	}
	r.byID[appt.ID()] = bumpVersion(appt)
	return nil
}

func (r *AppointmentRepo) FindPendingByPerformer(_ context.Context, _ db.DBTX, performerID, excludeID uuid.UUID) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	for _, a := range r.byID {
		if a.ID() == excludeID || a.Status() != appointment.StatusPending {
			continue
		}
		if a.PerformerID() != nil && *a.PerformerID() == performerID {
			out = append(out, a)
		}
	}
	sortByCreated(out)
	return out, nil
}

func (r *AppointmentRepo) FindPendingOnChairOverlapping(_ context.Context, _ db.DBTX, chairID, excludeID uuid.UUID, window appointment.TimeWindow) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	for _, a := range r.byID {
		if a.ID() == excludeID || a.Status() != appointment.StatusPending {
			continue
		}
		if a.ChairID() != nil && *a.ChairID() == chairID && a.Window().Overlaps(window) {
			out = append(out, a)
		}
	}
	sortByCreated(out)
	return out, nil
}

func (r *AppointmentRepo) FindExpiredPending(_ context.Context, _ db.DBTX, now time.Time, limit int32) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	for _, a := range r.byID {
		if a.HasExpired(now) {
			out = append(out, a)
		}
	}
	sortByCreated(out)
	if limit > 0 && int32(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *AppointmentRepo) ExpireBatch(_ context.Context, _ db.DBTX, ids []uuid.UUID, now time.Time) ([]uuid.UUID, error) {
	var expired []uuid.UUID
	for _, id := range ids {
		a, ok := r.byID[id]
		if !ok || a.Status() != appointment.StatusPending {
			continue
		}
		if err := a.Expire(now); err != nil {
			continue
		}
		r.byID[id] = bumpVersion(a)
		expired = append(expired, id)
	}
	return expired, nil
}

func (r *AppointmentRepo) HasActiveOverlap(_ context.Context, _ db.DBTX, chairID *uuid.UUID, performerID *uuid.UUID, window appointment.TimeWindow) (bool, error) {
	for _, a := range r.byID {
		if !a.Status().IsActive() || !a.Window().Overlaps(window) {
			continue
		}
		if chairID != nil && a.ChairID() != nil && *a.ChairID() == *chairID {
			return true, nil
		}
		if performerID != nil && a.PerformerID() != nil && *a.PerformerID() == *performerID {
			return true, nil
		}
	}
	return false, nil
}

func bumpVersion(a *appointment.Appointment) *appointment.Appointment {
	return appointment.Reconstruct(
		a.ID(), a.ChairID(), a.StoreID(), a.Participants(),
		a.ManualBarberID(), a.PerformerID(), a.BookedBy(), a.BookedByType(),
		a.Window(), a.Status(), a.StoreDecision(), a.FreeBarberDecision(),
		a.IsLinked(), a.PendingExpiresAt(), a.Services(),
		a.Version()+1, a.CreatedAt(), a.UpdatedAt(),
	)
}

func sortByCreated(appts []*appointment.Appointment) {
	sort.Slice(appts, func(i, j int) bool { return appts[i].CreatedAt().Before(appts[j].CreatedAt()) })
}

type NotificationRepo struct {
	rows []*notification.Notification
	// CreateErr, when set, fails the next Create.
	CreateErr error
}

func NewNotificationRepo() *NotificationRepo {
	return &NotificationRepo{}
}

func (r *NotificationRepo) All() []*notification.Notification {
	return r.rows
}

func (r *NotificationRepo) ByRecipient(recipientID uuid.UUID) []*notification.Notification {
	var out []*notification.Notification
	for _, n := range r.rows {
		if n.RecipientID() == recipientID {
			out = append(out, n)
		}
	}
	return out
}

func (r *NotificationRepo) Create(_ context.Context, _ db.DBTX, n *notification.Notification) (uuid.UUID, error) {
	if r.CreateErr != nil {
		return uuid.Nil, r.CreateErr
	}
	r.rows = append(r.rows, n)
	return n.ID(), nil
}

func (r *NotificationRepo) FindByCorrelation(_ context.Context, _ db.DBTX, correlationID uuid.UUID, kind notification.Kind, recipientID *uuid.UUID) ([]*notification.Notification, error) {
	var out []*notification.Notification
	for _, n := range r.rows {
		if n.CorrelationID() != correlationID || n.Kind() != kind {
			continue
		}
		if recipientID != nil && n.RecipientID() != *recipientID {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *NotificationRepo) Update(_ context.Context, _ db.DBTX, n *notification.Notification) error {
	for i, existing := range r.rows {
		if existing.ID() == n.ID() {
			r.rows[i] = n
			return nil
		}
	}
	return infra.WrapRepoErr("notification not found", nil, infra.KindNotFound)
}

type ChatRepo struct {
	threads  map[uuid.UUID]*chat.Thread // keyed by appointment id
	Messages []*chat.Message
}

func NewChatRepo() *ChatRepo {
	return &ChatRepo{threads: make(map[uuid.UUID]*chat.Thread)}
}

func (r *ChatRepo) SeedThread(t *chat.Thread) {
	r.threads[t.AppointmentID()] = t
}

func (r *ChatRepo) ThreadFor(appointmentID uuid.UUID) *chat.Thread {
	return r.threads[appointmentID]
}

func (r *ChatRepo) FindThreadByAppointment(_ context.Context, _ db.DBTX, appointmentID uuid.UUID) (*chat.Thread, error) {
	t, ok := r.threads[appointmentID]
	if !ok {
		return nil, infra.WrapRepoErr("chat thread not found", nil, infra.KindNotFound)
	}
	return t, nil
}

func (r *ChatRepo) CreateThread(_ context.Context, _ db.DBTX, thread *chat.Thread) (uuid.UUID, error) {
	if _, exists := r.threads[thread.AppointmentID()]; exists {
		return uuid.Nil, infra.WrapRepoErr("thread already exists", nil, infra.KindDuplicateKey)
	}
	r.threads[thread.AppointmentID()] = thread
	return thread.ID(), nil
}

func (r *ChatRepo) UpdateThread(_ context.Context, _ db.DBTX, thread *chat.Thread) error {
	if _, ok := r.threads[thread.AppointmentID()]; !ok {
		return infra.WrapRepoErr("chat thread not found", nil, infra.KindNotFound)
	}
	r.threads[thread.AppointmentID()] = thread
	return nil
}

func (r *ChatRepo) CreateMessage(_ context.Context, _ db.DBTX, msg *chat.Message) (uuid.UUID, error) {
	r.Messages = append(r.Messages, msg)
	return msg.ID(), nil
}

type EventRecord struct {
	AppointmentID uuid.UUID
	Kind          appointment.EventKind
	ActorID       *uuid.UUID
	Detail        map[string]any
	At            time.Time
}

type EventRepo struct {
	Records []EventRecord
}

func NewEventRepo() *EventRepo {
	return &EventRepo{}
}

func (r *EventRepo) Append(_ context.Context, _ db.DBTX, appointmentID uuid.UUID, kind appointment.EventKind, actorID *uuid.UUID, detail map[string]any, at time.Time) error {
	r.Records = append(r.Records, EventRecord{
		AppointmentID: appointmentID,
		Kind:          kind,
		ActorID:       actorID,
		Detail:        detail,
		At:            at,
	})
	return nil
}

func (r *EventRepo) Kinds(appointmentID uuid.UUID) []appointment.EventKind {
	var out []appointment.EventKind
	for _, rec := range r.Records {
		if rec.AppointmentID == appointmentID {
			out = append(out, rec.Kind)
		}
	}
	return out
}
