//go:build unit || integration

package builder

import (
	"time"

	domappt "chairtime/internal/domain/appointment"

	"github.com/google/uuid"
)

type AppointmentBuilder struct {
	ChairID        *uuid.UUID
	StoreID        *uuid.UUID
	CustomerID     *uuid.UUID
	StoreOwnerID   *uuid.UUID
	FreeBarberID   *uuid.UUID
	ManualBarberID *uuid.UUID
	BookedBy       uuid.UUID
	BookedByType   domappt.BookedByType
	Start          time.Time
	End            time.Time
	Services       []domappt.ServiceItem
	PendingTimeout time.Duration
	Now            time.Time
}

// NewAppointmentBuilder defaults to a chair-only booking made by a customer
// for tomorrow at 10:00.
func NewAppointmentBuilder() *AppointmentBuilder {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	start := now.Add(25 * time.Hour)
	customerID := uuid.New()
	storeOwnerID := uuid.New()
	chairID := uuid.New()
	storeID := uuid.New()
	return &AppointmentBuilder{
		ChairID:      &chairID,
		StoreID:      &storeID,
		CustomerID:   &customerID,
		StoreOwnerID: &storeOwnerID,
		BookedBy:     customerID,
		BookedByType: domappt.BookedByCustomer,
		Start:        start,
		End:          start.Add(time.Hour),
		Services: []domappt.ServiceItem{
			{Name: "Haircut", PriceCents: 3500},
		},
		PendingTimeout: 5 * time.Minute,
		Now:            now,
	}
}

func (b *AppointmentBuilder) With(mutate func(*AppointmentBuilder)) *AppointmentBuilder {
	mutate(b)
	return b
}

func (b *AppointmentBuilder) BuildDomain() (*domappt.Appointment, error) {
	window, err := domappt.NewTimeWindow(b.Start, b.End)
	if err != nil {
		return nil, err
	}
	return domappt.NewAppointment(domappt.NewAppointmentParams{
		ChairID:        b.ChairID,
		StoreID:        b.StoreID,
		CustomerID:     b.CustomerID,
		StoreOwnerID:   b.StoreOwnerID,
		FreeBarberID:   b.FreeBarberID,
		ManualBarberID: b.ManualBarberID,
		BookedBy:       b.BookedBy,
		BookedByType:   b.BookedByType,
		Window:         window,
		Services:       b.Services,
		PendingTimeout: b.PendingTimeout,
	}, b.Now)
}

// Fluent builder methods
func (b *AppointmentBuilder) WithChairID(id *uuid.UUID) *AppointmentBuilder {
	b.ChairID = id
	return b
}

func (b *AppointmentBuilder) WithFreeBarberID(id *uuid.UUID) *AppointmentBuilder {
	b.FreeBarberID = id
	return b
}

func (b *AppointmentBuilder) WithManualBarberID(id *uuid.UUID) *AppointmentBuilder {
	b.ManualBarberID = id
	return b
}

func (b *AppointmentBuilder) WithWindow(start, end time.Time) *AppointmentBuilder {
	b.Start = start
	b.End = end
	return b
}

func (b *AppointmentBuilder) WithServices(services ...domappt.ServiceItem) *AppointmentBuilder {
	b.Services = services
	return b
}

func (b *AppointmentBuilder) WithNow(now time.Time) *AppointmentBuilder {
	b.Now = now
	return b
}

// AsLinked wires both a chair and a free barber so two decisions are required.
func (b *AppointmentBuilder) AsLinked() *AppointmentBuilder {
	if b.ChairID == nil {
		chairID := uuid.New()
		b.ChairID = &chairID
	}
	freeBarberID := uuid.New()
	b.FreeBarberID = &freeBarberID
	return b
}

// AsFreeBarberOnly drops the chair so only the barber side decides.
func (b *AppointmentBuilder) AsFreeBarberOnly() *AppointmentBuilder {
	b.ChairID = nil
	b.StoreID = nil
	b.StoreOwnerID = nil
	freeBarberID := uuid.New()
	b.FreeBarberID = &freeBarberID
	return b
}

// AsStoreBooking makes the store owner the booker for a walk-in customer.
func (b *AppointmentBuilder) AsStoreBooking() *AppointmentBuilder {
	b.CustomerID = nil
	b.BookedBy = *b.StoreOwnerID
	b.BookedByType = domappt.BookedByStore
	return b
}
