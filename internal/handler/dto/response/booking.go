package response

import (
	"chairtime/internal/usecase/commands"

	"github.com/google/uuid"
)

type CreateBookingResponse struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	Status        string    `json:"status"`
}

type DecideResponse struct {
	Status        string `json:"status"`
	FullyApproved bool   `json:"fully_approved"`
}

func FromDecideResult(result *commands.DecideResult) *DecideResponse {
	return &DecideResponse{
		Status:        result.Status.String(),
		FullyApproved: result.FullyApproved,
	}
}
