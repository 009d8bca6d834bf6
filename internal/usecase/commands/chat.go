package commands

import (
	"context"

	"chairtime/internal/domain/appointment"
	"chairtime/internal/domain/chat"
	"chairtime/internal/infra"
	"chairtime/internal/pkg/clock"
	"chairtime/internal/pkg/errs"
	"chairtime/internal/usecase/notify"
	"chairtime/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrAppointmentInactive = errs.New("appointment is not active")
	ErrEmptyMessage        = errs.New("message text is empty")
	ErrThreadNotFound      = errs.New("chat thread not found")
)

type SendMessageResult struct {
	MessageID     uuid.UUID
	ThreadID      uuid.UUID
	ThreadCreated bool
}

type ChatCommands interface {
	SendMessage(ctx context.Context, appointmentID, senderID uuid.UUID, body string) (*SendMessageResult, error)
	MarkRead(ctx context.Context, appointmentID, userID uuid.UUID) error
}

type chatUseCaseImpl struct {
	uow        shared.UnitOfWork
	dispatcher notify.Dispatcher
	clock      clock.Clock
}

func NewChatUseCase(uow shared.UnitOfWork, dispatcher notify.Dispatcher, clk clock.Clock) ChatCommands {
	return &chatUseCaseImpl{uow: uow, dispatcher: dispatcher, clock: clk}
}

func (uc *chatUseCaseImpl) SendMessage(ctx context.Context, appointmentID, senderID uuid.UUID, body string) (*SendMessageResult, error) {
	now := uc.clock.Now()

	var (
		result       SendMessageResult
		msg          *chat.Message
		participants appointment.Participants
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		appt, err := tx.Appointments().FindByID(ctx, tx.DB(), appointmentID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrAppointmentNotFound
			}
			return errs.Wrap(err, "failed to load appointment")
		}
		if !appt.Status().IsActive() {
			return ErrAppointmentInactive
		}
		if !appt.Participants().Contains(senderID) {
			return ErrNotParticipant
		}
		participants = appt.Participants()

		thread, err := tx.Chat().FindThreadByAppointment(ctx, tx.DB(), appointmentID)
		if err != nil {
			if !infra.IsKind(err, infra.KindNotFound) {
				return errs.Wrap(err, "failed to load chat thread")
			}
			// First message creates the thread.
			thread = chat.NewThread(appointmentID, appt.Participants(), now)
			if _, err := tx.Chat().CreateThread(ctx, tx.DB(), thread); err != nil {
				return errs.Wrap(err, "failed to create chat thread")
			}
			result.ThreadCreated = true
		}

		msg, err = chat.NewMessage(thread.ID(), appointmentID, senderID, body, now)
		if err != nil {
			return ErrEmptyMessage
		}
		if _, err := tx.Chat().CreateMessage(ctx, tx.DB(), msg); err != nil {
			return errs.Wrap(err, "failed to persist message")
		}

		if err := thread.RecordMessage(msg); err != nil {
			return ErrNotParticipant
		}
		if err := tx.Chat().UpdateThread(ctx, tx.DB(), thread); err != nil {
			return errs.Wrap(err, "failed to update chat thread")
		}

		result.MessageID = msg.ID()
		result.ThreadID = thread.ID()
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Pushes happen post-commit; the stored message is the source of truth.
	senderName := uc.dispatcher.DisplayName(ctx, senderID)
	for _, participantID := range participants.IDs() {
		if result.ThreadCreated {
			uc.dispatcher.Push(ctx, participantID, notify.EventThreadCreated, map[string]any{
				"thread_id":      result.ThreadID,
				"appointment_id": appointmentID,
			})
		}
		uc.dispatcher.Push(ctx, participantID, notify.EventChatMessage, map[string]any{
			"message_id":     result.MessageID,
			"thread_id":      result.ThreadID,
			"appointment_id": appointmentID,
			"sender_id":      senderID,
			"sender_name":    senderName,
			"body":           msg.Body(),
			"sent_at":        msg.SentAt(),
		})
		uc.dispatcher.PushBadge(ctx, participantID)
	}

	return &result, nil
}

func (uc *chatUseCaseImpl) MarkRead(ctx context.Context, appointmentID, userID uuid.UUID) error {
	now := uc.clock.Now()

	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		appt, err := tx.Appointments().FindByID(ctx, tx.DB(), appointmentID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrAppointmentNotFound
			}
			return errs.Wrap(err, "failed to load appointment")
		}
		if !appt.Participants().Contains(userID) {
			return ErrNotParticipant
		}

		thread, err := tx.Chat().FindThreadByAppointment(ctx, tx.DB(), appointmentID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrThreadNotFound
			}
			return errs.Wrap(err, "failed to load chat thread")
		}

		if err := thread.MarkRead(userID, now); err != nil {
			return ErrNotParticipant
		}
		return tx.Chat().UpdateThread(ctx, tx.DB(), thread)
	})
	if err != nil {
		return err
	}

	// Only the caller's badge changes.
	uc.dispatcher.PushBadge(ctx, userID)
	return nil
}
