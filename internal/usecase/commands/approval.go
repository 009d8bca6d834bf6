package commands

import (
	"context"
	"time"

	"chairtime/internal/domain/appointment"
	"chairtime/internal/domain/notification"
	"chairtime/internal/infra"
	"chairtime/internal/pkg/clock"
	"chairtime/internal/pkg/errs"
	"chairtime/internal/usecase/notify"
	"chairtime/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errs.New("appointment not found")
	ErrNotParticipant      = errs.New("caller is not a participant")
	ErrCannotDecide        = errs.New("caller has no decision to make")
	ErrDecisionAlreadyMade = errs.New("decision already made")
	ErrNotCompletable      = errs.New("appointment cannot be completed")
	ErrNotCancellable      = errs.New("appointment cannot be cancelled")
)

type DecideResult struct {
	Status        appointment.Status
	FullyApproved bool
}

type ApprovalCommands interface {
	Decide(ctx context.Context, appointmentID, userID uuid.UUID, approve bool) (*DecideResult, error)
	Complete(ctx context.Context, appointmentID, userID uuid.UUID) error
	Cancel(ctx context.Context, appointmentID, userID uuid.UUID) error
}

type approvalUseCaseImpl struct {
	uow        shared.UnitOfWork
	dispatcher notify.Dispatcher
	clock      clock.Clock
}

func NewApprovalUseCase(uow shared.UnitOfWork, dispatcher notify.Dispatcher, clk clock.Clock) ApprovalCommands {
	return &approvalUseCaseImpl{uow: uow, dispatcher: dispatcher, clock: clk}
}

func (uc *approvalUseCaseImpl) Decide(ctx context.Context, appointmentID, userID uuid.UUID, approve bool) (*DecideResult, error) {
	now := uc.clock.Now()

	var result DecideResult
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		appt, err := tx.Appointments().FindByID(ctx, tx.DB(), appointmentID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrAppointmentNotFound
			}
			return errs.Wrap(err, "failed to load appointment")
		}

		role, ok := appt.Participants().RoleOf(userID)
		if !ok {
			return ErrNotParticipant
		}

		outcome, err := appt.ApplyDecision(role, approve, now)
		if err != nil {
			return mapDecisionError(err)
		}

		if err := tx.Appointments().Update(ctx, tx.DB(), appt); err != nil {
			// A concurrent decision or sweep won the version race.
			if infra.IsKind(err, infra.KindVersionMismatch) {
				return ErrDecisionAlreadyMade
			}
			return errs.Wrap(err, "failed to persist decision")
		}

		if err := tx.Events().Append(ctx, tx.DB(), appt.ID(), appointment.EventDecided, &userID, map[string]any{
			"role":    string(role),
			"approve": approve,
		}, now); err != nil {
			return errs.Wrap(err, "failed to record decision event")
		}

		if outcome.Rejected {
			if err := uc.handleRejection(ctx, tx, appt, role, userID, now); err != nil {
				return err
			}
		} else {
			if err := uc.handleApproval(ctx, tx, appt, role, userID, outcome, now); err != nil {
				return err
			}
		}

		result = DecideResult{Status: appt.Status(), FullyApproved: outcome.FullyApproved}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (uc *approvalUseCaseImpl) handleRejection(ctx context.Context, tx shared.Tx, appt *appointment.Appointment, rejectorRole appointment.Role, rejectorID uuid.UUID, now time.Time) error {
	if err := tx.Events().Append(ctx, tx.DB(), appt.ID(), appointment.EventRejected, &rejectorID, nil, now); err != nil {
		return errs.Wrap(err, "failed to record rejection event")
	}

	kind := notification.KindStoreRejected
	message := "store rejected the booking, choose another slot"
	if rejectorRole == appointment.RoleFreeBarber {
		kind = notification.KindBarberRejected
		message = "barber rejected the booking, choose another barber"
	}

	// The other deciding side's request notification goes stale; patch it
	// in place instead of deleting history.
	var staleSide *uuid.UUID
	staleMessage := ""
	switch rejectorRole {
	case appointment.RoleFreeBarber:
		staleSide = appt.Participants().IDPtr(appointment.RoleStoreOwner)
		staleMessage = "barber declined, awaiting new customer choice"
	case appointment.RoleStoreOwner:
		staleSide = appt.Participants().IDPtr(appointment.RoleFreeBarber)
		staleMessage = "store declined, awaiting new customer choice"
	}
	if staleSide != nil && *staleSide != rejectorID {
		err := uc.dispatcher.Invalidate(ctx, tx, appt.ID(), notification.KindBookingRequested, staleSide,
			notification.Payload{"message": staleMessage})
		if err != nil {
			return err
		}
	}

	for _, recipientID := range appt.Participants().IDs() {
		if recipientID == rejectorID {
			continue
		}
		_, err := uc.dispatcher.CreateAndPush(ctx, tx, notify.CreateInput{
			RecipientID:   recipientID,
			Kind:          kind,
			CorrelationID: appt.ID(),
			Topic:         "bookings",
			Payload:       notification.Payload{"message": message},
			Event:         notify.EventApprovalDecided,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (uc *approvalUseCaseImpl) handleApproval(ctx context.Context, tx shared.Tx, appt *appointment.Appointment, approverRole appointment.Role, approverID uuid.UUID, outcome appointment.DecisionOutcome, now time.Time) error {
	if outcome.FullyApproved {
		if err := tx.Events().Append(ctx, tx.DB(), appt.ID(), appointment.EventApproved, &approverID, nil, now); err != nil {
			return errs.Wrap(err, "failed to record approval event")
		}
	}

	switch {
	case outcome.AwaitingStore:
		// Barber side committed on a linked booking; the customer learns
		// the store's answer is still outstanding.
		if customerID := appt.Participants().IDPtr(appointment.RoleCustomer); customerID != nil {
			_, err := uc.dispatcher.CreateAndPush(ctx, tx, notify.CreateInput{
				RecipientID:   *customerID,
				Kind:          notification.KindBarberApproved,
				CorrelationID: appt.ID(),
				Topic:         "bookings",
				Payload:       notification.Payload{"message": "barber approved, awaiting store confirmation"},
				Event:         notify.EventApprovalDecided,
			})
			if err != nil {
				return err
			}
		}

	case outcome.FullyApproved && approverRole == appointment.RoleFreeBarber && appt.ChairID() == nil:
		// Single-sided free-barber flow: the customer now picks a store.
		if customerID := appt.Participants().IDPtr(appointment.RoleCustomer); customerID != nil {
			_, err := uc.dispatcher.CreateAndPush(ctx, tx, notify.CreateInput{
				RecipientID:   *customerID,
				Kind:          notification.KindBarberApproved,
				CorrelationID: appt.ID(),
				Topic:         "bookings",
				Payload:       notification.Payload{"message": "barber approved, proceed to pick a store"},
				Event:         notify.EventApprovalDecided,
			})
			if err != nil {
				return err
			}
		}

	case outcome.FullyApproved:
		for _, recipientID := range appt.Participants().IDs() {
			if recipientID == approverID {
				continue
			}
			_, err := uc.dispatcher.CreateAndPush(ctx, tx, notify.CreateInput{
				RecipientID:   recipientID,
				Kind:          notification.KindBookingApproved,
				CorrelationID: appt.ID(),
				Topic:         "bookings",
				Payload:       notification.Payload{"message": "booking approved"},
				Event:         notify.EventApprovalDecided,
			})
			if err != nil {
				return err
			}
		}
	}

	// A committed performer abandons every competing pending request.
	if approverRole == appointment.RoleFreeBarber && appt.PerformerID() != nil {
		competing, err := tx.Appointments().FindPendingByPerformer(ctx, tx.DB(), *appt.PerformerID(), appt.ID())
		if err != nil {
			return errs.Wrap(err, "failed to load competing appointments")
		}
		if err := uc.cascadeReject(ctx, tx, competing, now); err != nil {
			return err
		}
	}

	// Once the chair is committed too, pending requests on the same chair
	// and window cannot succeed anymore either.
	if outcome.FullyApproved && appt.ChairID() != nil {
		competing, err := tx.Appointments().FindPendingOnChairOverlapping(ctx, tx.DB(), *appt.ChairID(), appt.ID(), appt.Window())
		if err != nil {
			return errs.Wrap(err, "failed to load overlapping appointments")
		}
		if err := uc.cascadeReject(ctx, tx, competing, now); err != nil {
			return err
		}
	}
	return nil
}

// cascadeReject settles each competing request atomically with the approval
// that made it unwinnable.
func (uc *approvalUseCaseImpl) cascadeReject(ctx context.Context, tx shared.Tx, competing []*appointment.Appointment, now time.Time) error {
	for _, other := range competing {
		if err := other.RejectAsSuperseded(now); err != nil {
			return errs.Wrap(err, "failed to supersede competing appointment")
		}
		if err := tx.Appointments().Update(ctx, tx.DB(), other); err != nil {
			return errs.Wrap(err, "failed to persist superseded appointment")
		}
		if err := tx.Events().Append(ctx, tx.DB(), other.ID(), appointment.EventSuperseded, nil, nil, now); err != nil {
			return errs.Wrap(err, "failed to record supersede event")
		}

		err := uc.dispatcher.Invalidate(ctx, tx, other.ID(), notification.KindBookingRequested, nil,
			notification.Payload{"message": "now unavailable"})
		if err != nil {
			return err
		}

		_, err = uc.dispatcher.CreateAndPush(ctx, tx, notify.CreateInput{
			RecipientID:   other.Requester(),
			Kind:          notification.KindBookingRejected,
			CorrelationID: other.ID(),
			Topic:         "bookings",
			Payload:       notification.Payload{"message": "the requested time is no longer available"},
			Event:         notify.EventApprovalDecided,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (uc *approvalUseCaseImpl) Complete(ctx context.Context, appointmentID, userID uuid.UUID) error {
	now := uc.clock.Now()
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		appt, err := tx.Appointments().FindByID(ctx, tx.DB(), appointmentID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrAppointmentNotFound
			}
			return errs.Wrap(err, "failed to load appointment")
		}

		role, ok := appt.Participants().RoleOf(userID)
		if !ok {
			return ErrNotParticipant
		}
		if role == appointment.RoleCustomer {
			return ErrCannotDecide
		}

		if err := appt.Complete(now); err != nil {
			return ErrNotCompletable
		}
		if err := tx.Appointments().Update(ctx, tx.DB(), appt); err != nil {
			if infra.IsKind(err, infra.KindVersionMismatch) {
				return ErrNotCompletable
			}
			return errs.Wrap(err, "failed to persist completion")
		}
		return tx.Events().Append(ctx, tx.DB(), appt.ID(), appointment.EventCompleted, &userID, nil, now)
	})
}

func (uc *approvalUseCaseImpl) Cancel(ctx context.Context, appointmentID, userID uuid.UUID) error {
	now := uc.clock.Now()
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
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

		if err := appt.Cancel(now); err != nil {
			return ErrNotCancellable
		}
		if err := tx.Appointments().Update(ctx, tx.DB(), appt); err != nil {
			if infra.IsKind(err, infra.KindVersionMismatch) {
				return ErrNotCancellable
			}
			return errs.Wrap(err, "failed to persist cancellation")
		}
		if err := tx.Events().Append(ctx, tx.DB(), appt.ID(), appointment.EventCancelled, &userID, nil, now); err != nil {
			return errs.Wrap(err, "failed to record cancel event")
		}

		for _, recipientID := range appt.Participants().IDs() {
			if recipientID == userID {
				continue
			}
			_, err := uc.dispatcher.CreateAndPush(ctx, tx, notify.CreateInput{
				RecipientID:   recipientID,
				Kind:          notification.KindBookingCancelled,
				CorrelationID: appt.ID(),
				Topic:         "bookings",
				Payload:       notification.Payload{"message": "booking was cancelled"},
				Event:         notify.EventApprovalDecided,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func mapDecisionError(err error) error {
	switch err {
	case appointment.ErrNotPending, appointment.ErrSideAlreadyDecided:
		return ErrDecisionAlreadyMade
	case appointment.ErrRoleCannotDecide:
		return ErrCannotDecide
	default:
		return err
	}
}
