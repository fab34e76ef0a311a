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

type DeleteWorkshopInput struct {
	WorkshopID int64 `json:"workshop_id" validate:"required,gt=0"`
	Caller     auth.Caller
}

type DeleteWorkshopResult struct {
	WorkshopID          int64   `json:"workshop_id"`
	CancelledBookingIDs []int64 `json:"cancelled_booking_ids,omitempty"`
}

// DeleteWorkshop removes a workshop and cancels every active booking on it
// in the same transaction. Cancelled booking records are kept for audit;
// each affected guardian gets one cancellation notice after commit.
type DeleteWorkshop struct {
	factory    domain.UnitOfWorkFactory
	authz      auth.Authorizer
	dispatcher *notify.Dispatcher
	log        *logging.Logger
}

func NewDeleteWorkshop(factory domain.UnitOfWorkFactory, authz auth.Authorizer, dispatcher *notify.Dispatcher, log *logging.Logger) *DeleteWorkshop {
	return &DeleteWorkshop{factory: factory, authz: authz, dispatcher: dispatcher, log: log.WithComponent("usecase.delete_workshop")}
}

func (uc *DeleteWorkshop) Execute(ctx context.Context, in DeleteWorkshopInput) (*DeleteWorkshopResult, error) {
	const op = "usecase.DeleteWorkshop"
	if !uc.authz.Allow(in.Caller, auth.ActionDeleteWorkshop) {
		return nil, errs.NewUnauthorized(op, "caller may not delete workshops")
	}
	if err := validateInput(op, in); err != nil {
		return nil, err
	}

	uow, err := uc.factory.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	workshop, err := uow.Workshops().GetByID(ctx, in.WorkshopID)
	if err != nil {
		return nil, err
	}
	if workshop == nil {
		return nil, errs.NewNotFound(op, fmt.Sprintf("workshop %d not found", in.WorkshopID))
	}

	bookings, err := uow.Bookings().ListByWorkshop(ctx, workshop.ID)
	if err != nil {
		return nil, err
	}

	var cancelled []int64
	// one intent per distinct guardian, keyed by guardian id when linked
	// and by snapshot email otherwise
	notices := make(map[string]notify.Intent)
	for i := range bookings {
		b := &bookings[i]
		if !b.IsActive() {
			continue
		}
		b.Cancel("workshop cancelled")
		if _, err := uow.Bookings().Save(ctx, b); err != nil {
			return nil, err
		}
		cancelled = append(cancelled, b.ID)

		key := b.GuardianEmail
		if b.GuardianID != nil {
			key = fmt.Sprintf("guardian:%d", *b.GuardianID)
		}
		if _, seen := notices[key]; !seen {
			notices[key] = notify.NewIntent(notify.KindCancellationNotice, workshop,
				notify.GuardianInfoFromBooking(b), b.Children)
		}
	}

	if err := uow.Workshops().Delete(ctx, workshop.ID); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	uc.log.Info("workshop deleted",
		logging.WorkshopID(workshop.ID),
		logging.Int("cancelled_bookings", len(cancelled)))

	for _, intent := range notices {
		uc.dispatcher.Dispatch(intent)
	}
	return &DeleteWorkshopResult{WorkshopID: workshop.ID, CancelledBookingIDs: cancelled}, nil
}
