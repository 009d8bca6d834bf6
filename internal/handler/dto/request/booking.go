package request

import (
	"errors"
	"time"

	"chairtime/internal/domain/appointment"
	"chairtime/internal/usecase/commands"

	"github.com/google/uuid"
)

var ErrUnknownBookedByType = errors.New("unknown booked_by_type")

type CreateBookingRequest struct {
	ChairID            *uuid.UUID  `json:"chair_id,omitempty"`
	FreeBarberID       *uuid.UUID  `json:"free_barber_id,omitempty"`
	CustomerID         *uuid.UUID  `json:"customer_id,omitempty"`
	StartTime          time.Time   `json:"start_time" binding:"required"`
	EndTime            time.Time   `json:"end_time" binding:"required"`
	ServiceOfferingIDs []uuid.UUID `json:"service_offering_ids" binding:"required,min=1"`
	BookedByType       string      `json:"booked_by_type" binding:"required"`
}

func (r CreateBookingRequest) ToCommand() (commands.CreateBookingRequest, error) {
	bookedByType := appointment.BookedByType(r.BookedByType)
	switch bookedByType {
	case appointment.BookedByCustomer, appointment.BookedByStore:
	default:
		return commands.CreateBookingRequest{}, ErrUnknownBookedByType
	}

	return commands.CreateBookingRequest{
		ChairID:            r.ChairID,
		FreeBarberID:       r.FreeBarberID,
		CustomerID:         r.CustomerID,
		Start:              r.StartTime,
		End:                r.EndTime,
		ServiceOfferingIDs: r.ServiceOfferingIDs,
		BookedByType:       bookedByType,
	}, nil
}

type DecideRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}
