//go:build unit || integration

package fake

import (
	"context"
	"time"

	"chairtime/internal/infra"
	"chairtime/internal/usecase/notify"
	"chairtime/internal/usecase/shared"

	"github.com/google/uuid"
)

type CommandReads struct {
	Chairs    map[uuid.UUID]*shared.ChairSnapshot
	Stores    map[uuid.UUID]*shared.StoreSnapshot
	Hours     map[uuid.UUID]map[time.Weekday]*shared.WorkingHourSnapshot
	Offerings map[uuid.UUID]shared.ServiceOfferingSnapshot
}

func NewCommandReads() *CommandReads {
	return &CommandReads{
		Chairs:    make(map[uuid.UUID]*shared.ChairSnapshot),
		Stores:    make(map[uuid.UUID]*shared.StoreSnapshot),
		Hours:     make(map[uuid.UUID]map[time.Weekday]*shared.WorkingHourSnapshot),
		Offerings: make(map[uuid.UUID]shared.ServiceOfferingSnapshot),
	}
}

func (r *CommandReads) ChairByID(_ context.Context, id uuid.UUID) (*shared.ChairSnapshot, error) {
	c, ok := r.Chairs[id]
	if !ok {
		return nil, infra.WrapRepoErr("chair not found", nil, infra.KindNotFound)
	}
	return c, nil
}

func (r *CommandReads) StoreByID(_ context.Context, id uuid.UUID) (*shared.StoreSnapshot, error) {
	s, ok := r.Stores[id]
	if !ok {
		return nil, infra.WrapRepoErr("store not found", nil, infra.KindNotFound)
	}
	return s, nil
}

func (r *CommandReads) WorkingHour(_ context.Context, storeID uuid.UUID, weekday time.Weekday) (*shared.WorkingHourSnapshot, error) {
	byDay, ok := r.Hours[storeID]
	if !ok {
		return nil, infra.WrapRepoErr("working hours not found", nil, infra.KindNotFound)
	}
	wh, ok := byDay[weekday]
	if !ok {
		return nil, infra.WrapRepoErr("working hours not found", nil, infra.KindNotFound)
	}
	return wh, nil
}

func (r *CommandReads) ServiceOfferingsByIDs(_ context.Context, ids []uuid.UUID) ([]shared.ServiceOfferingSnapshot, error) {
	out := make([]shared.ServiceOfferingSnapshot, 0, len(ids))
	for _, id := range ids {
		if o, ok := r.Offerings[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

// SeedOpenAllWeek installs the same open/close window for every weekday.
func (r *CommandReads) SeedOpenAllWeek(storeID uuid.UUID, open, close string) {
	byDay := make(map[time.Weekday]*shared.WorkingHourSnapshot, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		byDay[wd] = &shared.WorkingHourSnapshot{
			StoreID:   storeID,
			Weekday:   wd,
			OpenTime:  open,
			CloseTime: close,
		}
	}
	r.Hours[storeID] = byDay
}

// PushedEvent records one realtime publish.
type PushedEvent struct {
	UserID  uuid.UUID
	Event   string
	Payload any
}

type Publisher struct {
	Events []PushedEvent
	// Err, when set, fails every publish.
	Err error
	// FailFor fails publishes to specific users only.
	FailFor map[uuid.UUID]error
}

func NewPublisher() *Publisher {
	return &Publisher{FailFor: make(map[uuid.UUID]error)}
}

func (p *Publisher) Publish(_ context.Context, userID uuid.UUID, event string, payload any) error {
	if p.Err != nil {
		return p.Err
	}
	if err, ok := p.FailFor[userID]; ok {
		return err
	}
	p.Events = append(p.Events, PushedEvent{UserID: userID, Event: event, Payload: payload})
	return nil
}

func (p *Publisher) EventsFor(userID uuid.UUID) []PushedEvent {
	var out []PushedEvent
	for _, e := range p.Events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

type BadgeCounter struct {
	Notifications map[uuid.UUID]int64
	ChatMessages  map[uuid.UUID]int64
}

func NewBadgeCounter() *BadgeCounter {
	return &BadgeCounter{
		Notifications: make(map[uuid.UUID]int64),
		ChatMessages:  make(map[uuid.UUID]int64),
	}
}

func (b *BadgeCounter) UnreadNotificationCount(_ context.Context, userID uuid.UUID) (int64, error) {
	return b.Notifications[userID], nil
}

func (b *BadgeCounter) UnreadChatTotal(_ context.Context, userID uuid.UUID) (int64, error) {
	return b.ChatMessages[userID], nil
}

type UserDirectory struct {
	Profiles map[uuid.UUID]*notify.UserProfile
}

func NewUserDirectory() *UserDirectory {
	return &UserDirectory{Profiles: make(map[uuid.UUID]*notify.UserProfile)}
}

func (d *UserDirectory) Profile(_ context.Context, userID uuid.UUID) (*notify.UserProfile, error) {
	if p, ok := d.Profiles[userID]; ok {
		return p, nil
	}
	return nil, infra.WrapRepoErr("profile not found", nil, infra.KindNotFound)
}
