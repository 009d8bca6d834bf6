package appointment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrWindowInPast       = errors.New("time window is in the past")
	ErrNoServices         = errors.New("at least one service item is required")
	ErrNoCounterparty     = errors.New("a store chair or a free barber is required")
	ErrNotPending         = errors.New("appointment is not pending")
	ErrNotApproved        = errors.New("appointment is not approved")
	ErrRoleCannotDecide   = errors.New("role has no decision to make")
	ErrSideAlreadyDecided = errors.New("this side already decided")
)

// ServiceItem is a price-and-name snapshot taken at booking time; later
// catalog edits never touch it.
type ServiceItem struct {
	Name       string
	PriceCents int64
}

type Appointment struct {
	id             uuid.UUID
	chairID        *uuid.UUID
	storeID        *uuid.UUID
	participants   Participants
	manualBarberID *uuid.UUID
	performerID    *uuid.UUID
	bookedBy       uuid.UUID
	bookedByType   BookedByType
	window         TimeWindow

	status             Status
	storeDecision      Decision
	freeBarberDecision Decision
	linked             bool

	pendingExpiresAt *time.Time
	services         []ServiceItem
	version          int64
	createdAt        time.Time
	updatedAt        time.Time
}

type NewAppointmentParams struct {
	ChairID        *uuid.UUID
	StoreID        *uuid.UUID
	CustomerID     *uuid.UUID
	StoreOwnerID   *uuid.UUID
	FreeBarberID   *uuid.UUID
	ManualBarberID *uuid.UUID
	BookedBy       uuid.UUID
	BookedByType   BookedByType
	Window         TimeWindow
	Services       []ServiceItem
	PendingTimeout time.Duration
}

func NewAppointment(p NewAppointmentParams, now time.Time) (*Appointment, error) {
	if !p.Window.Start().After(now) {
		return nil, ErrWindowInPast
	}
	if len(p.Services) == 0 {
		return nil, ErrNoServices
	}
	if p.ChairID == nil && p.FreeBarberID == nil {
		return nil, ErrNoCounterparty
	}

	linked := p.ChairID != nil && p.FreeBarberID != nil

	storeDecision := Decision("")
	freeBarberDecision := Decision("")
	if linked {
		storeDecision = DecisionPending
		freeBarberDecision = DecisionPending
	}

	var performerID *uuid.UUID
	switch {
	case p.FreeBarberID != nil:
		performerID = p.FreeBarberID
	case p.ManualBarberID != nil:
		performerID = p.ManualBarberID
	}

	expiresAt := now.Add(p.PendingTimeout)

	services := make([]ServiceItem, len(p.Services))
	copy(services, p.Services)

	return &Appointment{
		id:                 uuid.New(),
		chairID:            p.ChairID,
		storeID:            p.StoreID,
		participants:       NewParticipants(p.CustomerID, p.StoreOwnerID, p.FreeBarberID),
		manualBarberID:     p.ManualBarberID,
		performerID:        performerID,
		bookedBy:           p.BookedBy,
		bookedByType:       p.BookedByType,
		window:             p.Window,
		status:             StatusPending,
		storeDecision:      storeDecision,
		freeBarberDecision: freeBarberDecision,
		linked:             linked,
		pendingExpiresAt:   &expiresAt,
		services:           services,
		version:            1,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

func Reconstruct(
	id uuid.UUID,
	chairID, storeID *uuid.UUID,
	participants Participants,
	manualBarberID, performerID *uuid.UUID,
	bookedBy uuid.UUID,
	bookedByType BookedByType,
	window TimeWindow,
	status Status,
	storeDecision, freeBarberDecision Decision,
	linked bool,
	pendingExpiresAt *time.Time,
	services []ServiceItem,
	version int64,
	createdAt, updatedAt time.Time,
) *Appointment {
	return &Appointment{
		id:                 id,
		chairID:            chairID,
		storeID:            storeID,
		participants:       participants,
		manualBarberID:     manualBarberID,
		performerID:        performerID,
		bookedBy:           bookedBy,
		bookedByType:       bookedByType,
		window:             window,
		status:             status,
		storeDecision:      storeDecision,
		freeBarberDecision: freeBarberDecision,
		linked:             linked,
		pendingExpiresAt:   pendingExpiresAt,
		services:           services,
		version:            version,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

// DecisionOutcome describes what a single ApplyDecision call changed.
type DecisionOutcome struct {
	FullyApproved bool
	Rejected      bool
	// AwaitingStore is set when the barber side approved a linked
	// appointment and the store side has not answered yet.
	AwaitingStore bool
}

// ApplyDecision advances the state machine for one deciding side.
// Customer is never a deciding side.
func (a *Appointment) ApplyDecision(role Role, approve bool, now time.Time) (DecisionOutcome, error) {
	if a.status != StatusPending {
		return DecisionOutcome{}, ErrNotPending
	}
	if role != RoleStoreOwner && role != RoleFreeBarber {
		return DecisionOutcome{}, ErrRoleCannotDecide
	}

	if !approve {
		if a.linked {
			if err := a.setSideDecision(role, DecisionRejected); err != nil {
				return DecisionOutcome{}, err
			}
		}
		a.status = StatusRejected
		a.pendingExpiresAt = nil
		a.updatedAt = now
		return DecisionOutcome{Rejected: true}, nil
	}

	if !a.linked {
		a.status = StatusApproved
		a.pendingExpiresAt = nil
		a.updatedAt = now
		return DecisionOutcome{FullyApproved: true}, nil
	}

	if err := a.setSideDecision(role, DecisionApproved); err != nil {
		return DecisionOutcome{}, err
	}
	a.updatedAt = now

	if a.storeDecision == DecisionApproved && a.freeBarberDecision == DecisionApproved {
		a.status = StatusApproved
		a.pendingExpiresAt = nil
		return DecisionOutcome{FullyApproved: true}, nil
	}
	return DecisionOutcome{AwaitingStore: role == RoleFreeBarber}, nil
}

func (a *Appointment) setSideDecision(role Role, d Decision) error {
	switch role {
	case RoleStoreOwner:
		if a.storeDecision != DecisionPending {
			return ErrSideAlreadyDecided
		}
		a.storeDecision = d
	case RoleFreeBarber:
		if a.freeBarberDecision != DecisionPending {
			return ErrSideAlreadyDecided
		}
		a.freeBarberDecision = d
	default:
		return ErrRoleCannotDecide
	}
	return nil
}

// RejectAsSuperseded is the cascade transition applied to a competing
// request once its performer committed elsewhere.
func (a *Appointment) RejectAsSuperseded(now time.Time) error {
	if a.status != StatusPending {
		return ErrNotPending
	}
	if a.linked {
		if a.storeDecision == DecisionPending {
			a.storeDecision = DecisionRejected
		}
		if a.freeBarberDecision == DecisionPending {
			a.freeBarberDecision = DecisionRejected
		}
	}
	a.status = StatusRejected
	a.pendingExpiresAt = nil
	a.updatedAt = now
	return nil
}

// Expire is the sweep transition for a request nobody answered in time.
func (a *Appointment) Expire(now time.Time) error {
	if a.status != StatusPending {
		return ErrNotPending
	}
	if a.storeDecision == DecisionPending {
		a.storeDecision = DecisionNoAnswer
	}
	if a.freeBarberDecision == DecisionPending {
		a.freeBarberDecision = DecisionNoAnswer
	}
	a.status = StatusUnanswered
	a.pendingExpiresAt = nil
	a.updatedAt = now
	return nil
}

func (a *Appointment) Complete(now time.Time) error {
	if a.status != StatusApproved {
		return ErrNotApproved
	}
	a.status = StatusCompleted
	a.updatedAt = now
	return nil
}

func (a *Appointment) Cancel(now time.Time) error {
	if !a.status.IsActive() {
		return ErrNotPending
	}
	a.status = StatusCancelled
	a.pendingExpiresAt = nil
	a.updatedAt = now
	return nil
}

func (a *Appointment) HasExpired(now time.Time) bool {
	return a.status == StatusPending && a.pendingExpiresAt != nil && !now.Before(*a.pendingExpiresAt)
}

func (a *Appointment) ID() uuid.UUID                { return a.id }
func (a *Appointment) ChairID() *uuid.UUID          { return a.chairID }
func (a *Appointment) StoreID() *uuid.UUID          { return a.storeID }
func (a *Appointment) Participants() Participants   { return a.participants }
func (a *Appointment) ManualBarberID() *uuid.UUID   { return a.manualBarberID }
func (a *Appointment) PerformerID() *uuid.UUID      { return a.performerID }
func (a *Appointment) BookedBy() uuid.UUID          { return a.bookedBy }
func (a *Appointment) BookedByType() BookedByType   { return a.bookedByType }
func (a *Appointment) Window() TimeWindow           { return a.window }
func (a *Appointment) Status() Status               { return a.status }
func (a *Appointment) StoreDecision() Decision      { return a.storeDecision }
func (a *Appointment) FreeBarberDecision() Decision { return a.freeBarberDecision }
func (a *Appointment) IsLinked() bool               { return a.linked }
func (a *Appointment) PendingExpiresAt() *time.Time { return a.pendingExpiresAt }
func (a *Appointment) Version() int64               { return a.version }
func (a *Appointment) CreatedAt() time.Time         { return a.createdAt }
func (a *Appointment) UpdatedAt() time.Time         { return a.updatedAt }

func (a *Appointment) Services() []ServiceItem {
	out := make([]ServiceItem, len(a.services))
	copy(out, a.services)
	return out
}

// Requester is who gets told when the request dies under them: the store
// owner for store-initiated bookings, the customer otherwise.
func (a *Appointment) Requester() uuid.UUID {
	return a.bookedBy
}
