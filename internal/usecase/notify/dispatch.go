package notify

import (
	"context"
	"log/slog"

	"chairtime/internal/domain/notification"
	"chairtime/internal/pkg/clock"
	"chairtime/internal/pkg/errs"
	"chairtime/internal/pkg/metrics"
	"chairtime/internal/usecase/shared"

	"github.com/google/uuid"
)

// Push event names on the per-user realtime channel.
const (
	EventRequestCreated        = "request-created"
	EventApprovalDecided       = "approval-decided"
	EventAppointmentUnanswered = "appointment-unanswered"
	EventChatMessage           = "chat-message"
	EventThreadCreated         = "thread-created"
	EventBadgeUpdated          = "badge-updated"
)

// Publisher delivers fire-and-forget events on a per-user channel.
type Publisher interface {
	Publish(ctx context.Context, userID uuid.UUID, event string, payload any) error
}

// BadgeCounter sums what a user has not seen yet.
type BadgeCounter interface {
	UnreadNotificationCount(ctx context.Context, userID uuid.UUID) (int64, error)
	UnreadChatTotal(ctx context.Context, userID uuid.UUID) (int64, error)
}

// UserProfile is directory data merged into notification payloads.
type UserProfile struct {
	DisplayName string
	AvatarURL   string
}

type UserDirectory interface {
	Profile(ctx context.Context, userID uuid.UUID) (*UserProfile, error)
}

type CreateInput struct {
	RecipientID   uuid.UUID
	Kind          notification.Kind
	CorrelationID uuid.UUID
	Topic         string
	Payload       notification.Payload
	Event         string
}

type Dispatcher interface {
	// Create durably persists one notification row inside the caller's
	// transaction; it must land before any push is attempted.
	Create(ctx context.Context, tx shared.Tx, in CreateInput) (uuid.UUID, error)
	// CreateAndPush persists, then attempts a best-effort push. Push
	// errors are logged and discarded since the record already exists.
	CreateAndPush(ctx context.Context, tx shared.Tx, in CreateInput) (uuid.UUID, error)
	// Invalidate patches matching stale notifications in place instead of
	// deleting history.
	Invalidate(ctx context.Context, tx shared.Tx, correlationID uuid.UUID, kind notification.Kind, recipientID *uuid.UUID, patch notification.Payload) error
	// Push is the bare fire-and-forget channel send.
	Push(ctx context.Context, userID uuid.UUID, event string, payload any)
	// PushBadge recomputes and pushes the user's aggregate unread count.
	PushBadge(ctx context.Context, userID uuid.UUID)
	// DisplayName resolves a directory name for payload enrichment;
	// lookups are best effort and fall back to empty.
	DisplayName(ctx context.Context, userID uuid.UUID) string
}

type dispatcherImpl struct {
	publisher Publisher
	badges    BadgeCounter
	directory UserDirectory
	clock     clock.Clock
}

func NewDispatcher(publisher Publisher, badges BadgeCounter, directory UserDirectory, clk clock.Clock) Dispatcher {
	return &dispatcherImpl{
		publisher: publisher,
		badges:    badges,
		directory: directory,
		clock:     clk,
	}
}

func (d *dispatcherImpl) Create(ctx context.Context, tx shared.Tx, in CreateInput) (uuid.UUID, error) {
	n, err := notification.New(in.RecipientID, in.Kind, in.CorrelationID, in.Topic, in.Payload, d.clock.Now())
	if err != nil {
		return uuid.Nil, err
	}
	id, err := tx.Notifications().Create(ctx, tx.DB(), n)
	if err != nil {
		return uuid.Nil, errs.Wrap(err, "failed to persist notification")
	}
	return id, nil
}

func (d *dispatcherImpl) CreateAndPush(ctx context.Context, tx shared.Tx, in CreateInput) (uuid.UUID, error) {
	id, err := d.Create(ctx, tx, in)
	if err != nil {
		return uuid.Nil, err
	}

	event := in.Event
	if event == "" {
		event = EventRequestCreated
	}
	payload := map[string]any{
		"notification_id": id,
		"kind":            in.Kind.String(),
		"correlation_id":  in.CorrelationID,
		"topic":           in.Topic,
		"payload":         in.Payload,
	}
	d.Push(ctx, in.RecipientID, event, payload)
	return id, nil
}

func (d *dispatcherImpl) Invalidate(ctx context.Context, tx shared.Tx, correlationID uuid.UUID, kind notification.Kind, recipientID *uuid.UUID, patch notification.Payload) error {
	matches, err := tx.Notifications().FindByCorrelation(ctx, tx.DB(), correlationID, kind, recipientID)
	if err != nil {
		return errs.Wrap(err, "failed to locate notifications to invalidate")
	}
	now := d.clock.Now()
	for _, n := range matches {
		n.ApplyPatch(patch, now)
		if err := tx.Notifications().Update(ctx, tx.DB(), n); err != nil {
			return errs.Wrap(err, "failed to patch notification")
		}
	}
	return nil
}

func (d *dispatcherImpl) Push(ctx context.Context, userID uuid.UUID, event string, payload any) {
	if err := d.publisher.Publish(ctx, userID, event, payload); err != nil {
		metrics.PushFailuresTotal.Inc()
		slog.Warn("realtime push failed",
			"user_id", userID,
			"event", event,
			"error", err)
	}
}

func (d *dispatcherImpl) PushBadge(ctx context.Context, userID uuid.UUID) {
	notifCount, err := d.badges.UnreadNotificationCount(ctx, userID)
	if err != nil {
		slog.Warn("failed to count unread notifications for badge", "user_id", userID, "error", err)
		return
	}
	chatCount, err := d.badges.UnreadChatTotal(ctx, userID)
	if err != nil {
		slog.Warn("failed to count unread chat messages for badge", "user_id", userID, "error", err)
		return
	}
	d.Push(ctx, userID, EventBadgeUpdated, map[string]any{
		"unread_notifications": notifCount,
		"unread_messages":      chatCount,
		"badge":                notifCount + chatCount,
	})
}

func (d *dispatcherImpl) DisplayName(ctx context.Context, userID uuid.UUID) string {
	profile, err := d.directory.Profile(ctx, userID)
	if err != nil || profile == nil {
		return ""
	}
	return profile.DisplayName
}
