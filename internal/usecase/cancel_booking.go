package usecase

import (
	"context"
	"fmt"

	"workshop-booking/internal/auth"
	"workshop-booking/internal/domain"
	"workshop-booking/internal/notify"
	errs "workshop-booking/pkg/errors"
	"workshop-booking/pkg/logging"
)

// CancelBookingInput identifies the booking and who asks for the
// cancellation. Admins (cancel_any_booking) may cancel anything; a guardian
// only their own booking.
type CancelBookingInput struct {
	BookingID int64  `json:"booking_id" validate:"required,gt=0"`
	Reason    string `json:"reason"`
	Caller    auth.Caller
}

// CancelBookingResult reports the released capacity.
type CancelBookingResult struct {
	BookingID     int64 `json:"booking_id"`
	FamiliesFreed int   `json:"families_freed"`
	ChildrenFreed int   `json:"children_freed"`
}

// CancelBooking flips a booking to cancelled and releases its slots. The
// record is kept for audit; cancelling twice fails with already_cancelled
// and leaves the counters untouched.
type CancelBooking struct {
	factory    domain.UnitOfWorkFactory
	authz      auth.Authorizer
	dispatcher *notify.Dispatcher
	log        *logging.Logger
}

func NewCancelBooking(factory domain.UnitOfWorkFactory, authz auth.Authorizer, dispatcher *notify.Dispatcher, log *logging.Logger) *CancelBooking {
	return &CancelBooking{factory: factory, authz: authz, dispatcher: dispatcher, log: log.WithComponent("usecase.cancel_booking")}
}

func (uc *CancelBooking) Execute(ctx context.Context, in CancelBookingInput) (*CancelBookingResult, error) {
	const op = "usecase.CancelBooking"
	if err := validateInput(op, in); err != nil {
		return nil, err
	}

	isAdmin := uc.authz.Allow(in.Caller, auth.ActionCancelAnyBooking)
	if !isAdmin && in.Caller.GuardianID == nil {
		return nil, errs.NewUnauthorized(op, "caller may not cancel bookings")
	}

	uow, err := uc.factory.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	booking, err := uow.Bookings().GetByID(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, errs.NewNotFound(op, fmt.Sprintf("booking %d not found", in.BookingID))
	}
	if booking.IsCancelled() {
		return nil, errs.NewAlreadyCancelled(op, "booking is already cancelled")
	}
	if !isAdmin {
		if booking.GuardianID == nil || *booking.GuardianID != *in.Caller.GuardianID {
			return nil, errs.NewUnauthorized(op, "guardians may only cancel their own bookings")
		}
	}

	workshop, err := uow.Workshops().GetByID(ctx, booking.WorkshopID)
	if err != nil {
		return nil, err
	}
	if workshop == nil {
		return nil, errs.NewNotFound(op, fmt.Sprintf("workshop %d not found", booking.WorkshopID))
	}

	childCount := booking.ChildCount()
	workshop.RemoveFamily()
	workshop.RemoveChildren(childCount)
	if _, err := uow.Workshops().Save(ctx, workshop); err != nil {
		return nil, err
	}

	booking.Cancel(in.Reason)
	if _, err := uow.Bookings().Save(ctx, booking); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	uc.log.Info("booking cancelled",
		logging.BookingID(booking.ID),
		logging.WorkshopID(workshop.ID))

	guardianInfo := notify.GuardianInfoFromBooking(booking)
	uc.dispatcher.Dispatch(
		notify.NewIntent(notify.KindCancellationNotice, workshop, guardianInfo, booking.Children),
		notify.NewIntent(notify.KindAdminNotice, workshop, guardianInfo, booking.Children),
	)

	return &CancelBookingResult{BookingID: booking.ID, FamiliesFreed: 1, ChildrenFreed: childCount}, nil
}
