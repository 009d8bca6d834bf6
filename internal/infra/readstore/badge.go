package readstore

import (
	"context"

	"chairtime/internal/infra/db"

	"github.com/google/uuid"
)

// BadgeReadStore aggregates both unread sources for the realtime badge.
type BadgeReadStore struct {
	notifications *NotificationReadStore
	chat          *ChatReadStore
}

func NewBadgeReadStore(dbtx db.DBTX) *BadgeReadStore {
	return &BadgeReadStore{
		notifications: NewNotificationReadStore(dbtx),
		chat:          NewChatReadStore(dbtx),
	}
}

func (s *BadgeReadStore) UnreadNotificationCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifications.CountUnread(ctx, userID)
}

func (s *BadgeReadStore) UnreadChatTotal(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.chat.UnreadChatTotal(ctx, userID)
}
