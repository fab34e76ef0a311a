package usecase

import (
	"context"
	"fmt"

	"workshop-booking/internal/auth"
	"workshop-booking/internal/domain"
	errs "workshop-booking/pkg/errors"
	"workshop-booking/pkg/logging"
)

// LinkFailure explains why one booking could not be linked. Kind mirrors
// the error kinds so callers can render failures the same way.
type LinkFailure struct {
	BookingID int64  `json:"booking_id"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
}

type LinkBookingsInput struct {
	GuardianID int64   `json:"guardian_id" validate:"required,gt=0"`
	BookingIDs []int64 `json:"booking_ids" validate:"required,min=1,dive,gt=0"`
	Caller     auth.Caller
}

type LinkBookingsResult struct {
	GuardianID int64         `json:"guardian_id"`
	LinkedIDs  []int64       `json:"linked_ids"`
	Failures   []LinkFailure `json:"failures,omitempty"`
}

// LinkBookings attaches existing bookings to a guardian record. An unknown
// guardian aborts the whole operation; a problem with an individual booking
// only takes that booking out. The linkable subset commits, and a
// partial_failure error accompanies the result when anything was skipped.
type LinkBookings struct {
	factory domain.UnitOfWorkFactory
	authz   auth.Authorizer
	log     *logging.Logger
}

func NewLinkBookings(factory domain.UnitOfWorkFactory, authz auth.Authorizer, log *logging.Logger) *LinkBookings {
	return &LinkBookings{factory: factory, authz: authz, log: log.WithComponent("usecase.link_bookings")}
}

func (uc *LinkBookings) Execute(ctx context.Context, in LinkBookingsInput) (*LinkBookingsResult, error) {
	const op = "usecase.LinkBookings"
	if !uc.authz.Allow(in.Caller, auth.ActionLinkBookings) {
		return nil, errs.NewUnauthorized(op, "caller may not link bookings")
	}
	if err := validateInput(op, in); err != nil {
		return nil, err
	}

	uow, err := uc.factory.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	guardian, err := uow.Guardians().GetByID(ctx, in.GuardianID)
	if err != nil {
		return nil, err
	}
	if guardian == nil {
		return nil, errs.NewNotFound(op, fmt.Sprintf("guardian %d not found", in.GuardianID))
	}

	var (
		linked   []int64
		failures []LinkFailure
	)
	for _, id := range in.BookingIDs {
		booking, err := uow.Bookings().GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if booking == nil {
			failures = append(failures, LinkFailure{
				BookingID: id,
				Kind:      string(errs.KindNotFound),
				Message:   fmt.Sprintf("booking %d not found", id),
			})
			continue
		}
		if booking.GuardianID != nil && *booking.GuardianID != guardian.ID {
			failures = append(failures, LinkFailure{
				BookingID: id,
				Kind:      string(errs.KindValidation),
				Message:   fmt.Sprintf("booking %d already belongs to guardian %d", id, *booking.GuardianID),
			})
			continue
		}
		gid := guardian.ID
		booking.GuardianID = &gid
		if _, err := uow.Bookings().Save(ctx, booking); err != nil {
			return nil, err
		}
		linked = append(linked, id)
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	result := &LinkBookingsResult{GuardianID: guardian.ID, LinkedIDs: linked, Failures: failures}
	if len(failures) > 0 {
		uc.log.Warn("some bookings could not be linked",
			logging.GuardianID(guardian.ID),
			logging.Int("linked", len(linked)),
			logging.Int("failed", len(failures)))
		return result, errs.NewPartialFailure(op,
			fmt.Sprintf("%d of %d bookings could not be linked", len(failures), len(in.BookingIDs)))
	}
	return result, nil
}
