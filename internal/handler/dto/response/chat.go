package response

import (
	"chairtime/internal/usecase/commands"

	"github.com/google/uuid"
)

type SendMessageResponse struct {
	MessageID     uuid.UUID `json:"message_id"`
	ThreadID      uuid.UUID `json:"thread_id"`
	ThreadCreated bool      `json:"thread_created"`
}

func FromSendMessageResult(result *commands.SendMessageResult) *SendMessageResponse {
	return &SendMessageResponse{
		MessageID:     result.MessageID,
		ThreadID:      result.ThreadID,
		ThreadCreated: result.ThreadCreated,
	}
}
