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
	ErrChairNotFound          = errs.New("chair not found")
	ErrChairInactive          = errs.New("chair is not active")
	ErrStoreNotFound          = errs.New("store not found")
	ErrInvalidTimeWindow      = errs.New("invalid time window")
	ErrOutsideWorkingHours    = errs.New("window outside working hours")
	ErrNoServicesSelected     = errs.New("no services selected")
	ErrUnknownServiceOffering = errs.New("unknown or inactive service offering")
	ErrNoCounterparty         = errs.New("a chair or a free barber is required")
	ErrSlotTaken              = errs.New("slot already taken")
)

type CreateBookingRequest struct {
	ChairID            *uuid.UUID
	FreeBarberID       *uuid.UUID
	CustomerID         *uuid.UUID
	Start              time.Time
	End                time.Time
	ServiceOfferingIDs []uuid.UUID
	BookedByType       appointment.BookedByType
}

type CreateBookingResult struct {
	AppointmentID uuid.UUID
}

type BookingCommands interface {
	CreateBooking(ctx context.Context, req CreateBookingRequest, bookerID uuid.UUID) (*CreateBookingResult, error)
}

type bookingUseCaseImpl struct {
	uow            shared.UnitOfWork
	dispatcher     notify.Dispatcher
	clock          clock.Clock
	pendingTimeout time.Duration
}

func NewBookingUseCase(uow shared.UnitOfWork, dispatcher notify.Dispatcher, clk clock.Clock, pendingTimeout time.Duration) BookingCommands {
	return &bookingUseCaseImpl{uow: uow, dispatcher: dispatcher, clock: clk, pendingTimeout: pendingTimeout}
}

func (uc *bookingUseCaseImpl) CreateBooking(ctx context.Context, req CreateBookingRequest, bookerID uuid.UUID) (*CreateBookingResult, error) {
	now := uc.clock.Now()

	window, err := appointment.NewTimeWindow(req.Start, req.End)
	if err != nil {
		return nil, ErrInvalidTimeWindow
	}
	if !window.Start().After(now) {
		return nil, ErrInvalidTimeWindow
	}
	if len(req.ServiceOfferingIDs) == 0 {
		return nil, ErrNoServicesSelected
	}
	if req.ChairID == nil && req.FreeBarberID == nil {
		return nil, ErrNoCounterparty
	}

	var result CreateBookingResult
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var (
			storeID        *uuid.UUID
			storeOwnerID   *uuid.UUID
			manualBarberID *uuid.UUID
		)
		if req.ChairID != nil {
			chair, store, err := uc.resolveChair(ctx, tx, *req.ChairID)
			if err != nil {
				return err
			}
			if err := uc.checkWorkingHours(ctx, tx, store.ID, window); err != nil {
				return err
			}
			storeID = &store.ID
			storeOwnerID = &store.OwnerID
			manualBarberID = chair.ManualBarberID
		}

		services, err := uc.snapshotServices(ctx, tx, req.ServiceOfferingIDs)
		if err != nil {
			return err
		}

		// Advisory pre-check; the partial unique index on insert is the
		// final arbiter under concurrency.
		taken, err := tx.Appointments().HasActiveOverlap(ctx, tx.DB(), req.ChairID, req.FreeBarberID, window)
		if err != nil {
			return errs.Wrap(err, "failed to check slot availability")
		}
		if taken {
			return ErrSlotTaken
		}

		customerID := req.CustomerID
		if req.BookedByType == appointment.BookedByCustomer {
			customerID = &bookerID
		}

		appt, err := appointment.NewAppointment(appointment.NewAppointmentParams{
			ChairID:        req.ChairID,
			StoreID:        storeID,
			CustomerID:     customerID,
			StoreOwnerID:   storeOwnerID,
			FreeBarberID:   req.FreeBarberID,
			ManualBarberID: manualBarberID,
			BookedBy:       bookerID,
			BookedByType:   req.BookedByType,
			Window:         window,
			Services:       services,
			PendingTimeout: uc.pendingTimeout,
		}, now)
		if err != nil {
			return mapNewAppointmentError(err)
		}

		if _, err := tx.Appointments().Create(ctx, tx.DB(), appt); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return ErrSlotTaken
			}
			return errs.Wrap(err, "failed to create appointment")
		}

		if err := tx.Events().Append(ctx, tx.DB(), appt.ID(), appointment.EventCreated, &bookerID, map[string]any{
			"booked_by_type": string(req.BookedByType),
			"start":          window.Start(),
			"end":            window.End(),
		}, now); err != nil {
			return errs.Wrap(err, "failed to record booking event")
		}

		if err := uc.notifyRequestSides(ctx, tx, appt, bookerID); err != nil {
			return err
		}

		result.AppointmentID = appt.ID()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (uc *bookingUseCaseImpl) resolveChair(ctx context.Context, tx shared.Tx, chairID uuid.UUID) (*shared.ChairSnapshot, *shared.StoreSnapshot, error) {
	chair, err := tx.Reads().ChairByID(ctx, chairID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil, ErrChairNotFound
		}
		return nil, nil, errs.Wrap(err, "failed to load chair")
	}
	if !chair.IsActive {
		return nil, nil, ErrChairInactive
	}
	store, err := tx.Reads().StoreByID(ctx, chair.StoreID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil, ErrStoreNotFound
		}
		return nil, nil, errs.Wrap(err, "failed to load store")
	}
	return chair, store, nil
}

// checkWorkingHours requires the whole window inside one day's open hours;
// windows crossing midnight never fit.
func (uc *bookingUseCaseImpl) checkWorkingHours(ctx context.Context, tx shared.Tx, storeID uuid.UUID, window appointment.TimeWindow) error {
	start, end := window.Start(), window.End()
	if start.Year() != end.Year() || start.YearDay() != end.YearDay() {
		return ErrOutsideWorkingHours
	}

	wh, err := tx.Reads().WorkingHour(ctx, storeID, start.Weekday())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrOutsideWorkingHours
		}
		return errs.Wrap(err, "failed to load working hours")
	}

	open, err := wallClockOn(start, wh.OpenTime)
	if err != nil {
		return errs.Wrap(err, "malformed opening time")
	}
	close, err := wallClockOn(start, wh.CloseTime)
	if err != nil {
		return errs.Wrap(err, "malformed closing time")
	}
	if start.Before(open) || end.After(close) {
		return ErrOutsideWorkingHours
	}
	return nil
}

func (uc *bookingUseCaseImpl) snapshotServices(ctx context.Context, tx shared.Tx, ids []uuid.UUID) ([]appointment.ServiceItem, error) {
	offerings, err := tx.Reads().ServiceOfferingsByIDs(ctx, ids)
	if err != nil {
		return nil, errs.Wrap(err, "failed to load service offerings")
	}
	byID := make(map[uuid.UUID]shared.ServiceOfferingSnapshot, len(offerings))
	for _, o := range offerings {
		byID[o.ID] = o
	}
	items := make([]appointment.ServiceItem, 0, len(ids))
	for _, id := range ids {
		o, ok := byID[id]
		if !ok || !o.IsActive {
			return nil, ErrUnknownServiceOffering
		}
		items = append(items, appointment.ServiceItem{Name: o.Name, PriceCents: o.PriceCents})
	}
	return items, nil
}

// notifyRequestSides tells each deciding side about the new request; the
// booker never notifies themselves.
func (uc *bookingUseCaseImpl) notifyRequestSides(ctx context.Context, tx shared.Tx, appt *appointment.Appointment, bookerID uuid.UUID) error {
	bookerName := uc.dispatcher.DisplayName(ctx, bookerID)

	recipients := make([]uuid.UUID, 0, 2)
	if id := appt.Participants().IDPtr(appointment.RoleStoreOwner); id != nil && *id != bookerID {
		recipients = append(recipients, *id)
	}
	if id := appt.Participants().IDPtr(appointment.RoleFreeBarber); id != nil && *id != bookerID {
		recipients = append(recipients, *id)
	}

	for _, recipientID := range recipients {
		_, err := uc.dispatcher.CreateAndPush(ctx, tx, notify.CreateInput{
			RecipientID:   recipientID,
			Kind:          notification.KindBookingRequested,
			CorrelationID: appt.ID(),
			Topic:         "bookings",
			Payload: notification.Payload{
				"message":     "new booking request",
				"booker_name": bookerName,
				"start":       appt.Window().Start(),
				"end":         appt.Window().End(),
			},
			Event: notify.EventRequestCreated,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func mapNewAppointmentError(err error) error {
	switch err {
	case appointment.ErrWindowInPast:
		return ErrInvalidTimeWindow
	case appointment.ErrNoServices:
		return ErrNoServicesSelected
	case appointment.ErrNoCounterparty:
		return ErrNoCounterparty
	default:
		return err
	}
}

func wallClockOn(day time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}
