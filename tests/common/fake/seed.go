//go:build unit || integration

package fake

import (
	"testing"
	"time"

	"chairtime/internal/domain/appointment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type seedMode int

const (
	seedChairOnly seedMode = iota
	seedLinked
	seedFreeBarberOnly
)

// SeedBuilder produces pending aggregates with known participant ids for
// seeding the in-memory repositories.
type SeedBuilder struct {
	Appt         *appointment.Appointment
	CustomerID   uuid.UUID
	StoreOwnerID uuid.UUID
	FreeBarberID uuid.UUID
	ChairID      uuid.UUID
	StoreID      uuid.UUID
	// RequestedRecipients mirrors who the booking flow would have notified.
	RequestedRecipients []uuid.UUID

	t        *testing.T
	mode     seedMode
	start    time.Time
	duration time.Duration
}

func NewSeedBuilder(t *testing.T) *SeedBuilder {
	t.Helper()
	s := &SeedBuilder{
		CustomerID:   uuid.New(),
		StoreOwnerID: uuid.New(),
		FreeBarberID: uuid.New(),
		ChairID:      uuid.New(),
		StoreID:      uuid.New(),
		t:            t,
		mode:         seedChairOnly,
		start:        time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC),
		duration:     time.Hour,
	}
	s.rebuild()
	return s
}

func (s *SeedBuilder) Linked() *SeedBuilder {
	s.mode = seedLinked
	s.rebuild()
	return s
}

func (s *SeedBuilder) FreeBarberOnly() *SeedBuilder {
	s.mode = seedFreeBarberOnly
	s.rebuild()
	return s
}

func (s *SeedBuilder) SetFreeBarber(id uuid.UUID) *SeedBuilder {
	s.FreeBarberID = id
	s.rebuild()
	return s
}

func (s *SeedBuilder) SetChair(chairID, storeOwnerID uuid.UUID) *SeedBuilder {
	s.ChairID = chairID
	s.StoreOwnerID = storeOwnerID
	s.rebuild()
	return s
}

func (s *SeedBuilder) SetWindow(start time.Time, d time.Duration) *SeedBuilder {
	s.start = start
	s.duration = d
	s.rebuild()
	return s
}

func (s *SeedBuilder) rebuild() {
	s.t.Helper()

	window, err := appointment.NewTimeWindow(s.start, s.start.Add(s.duration))
	require.NoError(s.t, err)

	params := appointment.NewAppointmentParams{
		CustomerID:     &s.CustomerID,
		BookedBy:       s.CustomerID,
		BookedByType:   appointment.BookedByCustomer,
		Window:         window,
		Services:       []appointment.ServiceItem{{Name: "Haircut", PriceCents: 3500}},
		PendingTimeout: 5 * time.Minute,
	}

	switch s.mode {
	case seedChairOnly:
		params.ChairID = &s.ChairID
		params.StoreID = &s.StoreID
		params.StoreOwnerID = &s.StoreOwnerID
		s.RequestedRecipients = []uuid.UUID{s.StoreOwnerID}
	case seedLinked:
		params.ChairID = &s.ChairID
		params.StoreID = &s.StoreID
		params.StoreOwnerID = &s.StoreOwnerID
		params.FreeBarberID = &s.FreeBarberID
		s.RequestedRecipients = []uuid.UUID{s.StoreOwnerID, s.FreeBarberID}
	case seedFreeBarberOnly:
		params.FreeBarberID = &s.FreeBarberID
		s.RequestedRecipients = []uuid.UUID{s.FreeBarberID}
	}

	appt, err := appointment.NewAppointment(params, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	require.NoError(s.t, err)
	s.Appt = appt
}
