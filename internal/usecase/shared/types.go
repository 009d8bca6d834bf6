package shared

import (
	"time"

	"github.com/google/uuid"
)

type ChairSnapshot struct {
	ID             uuid.UUID
	StoreID        uuid.UUID
	Name           string
	ManualBarberID *uuid.UUID
	IsActive       bool
}

type StoreSnapshot struct {
	ID      uuid.UUID
	OwnerID uuid.UUID
	Name    string
}

// WorkingHourSnapshot carries one weekday's window as wall-clock strings
// ("09:00"); a missing row for a weekday means the store is closed.
type WorkingHourSnapshot struct {
	StoreID   uuid.UUID
	Weekday   time.Weekday
	OpenTime  string
	CloseTime string
}

type ServiceOfferingSnapshot struct {
	ID         uuid.UUID
	Name       string
	PriceCents int64
	IsActive   bool
}
