package usecase

import (
	"context"
	"fmt"
	"time"

	"workshop-booking/internal/auth"
	"workshop-booking/internal/domain"
	errs "workshop-booking/pkg/errors"
	"workshop-booking/pkg/logging"
)

// EditWorkshopInput replaces every editable field of a workshop. Maxima may
// be reduced below current usage: the edit still persists, and every
// booking at the workshop is flagged for admin review instead.
type EditWorkshopInput struct {
	WorkshopID  int64     `json:"workshop_id" validate:"required,gt=0"`
	Title       string    `json:"title" validate:"required"`
	Date        time.Time `json:"date" validate:"required"`
	StartTime   string    `json:"time" validate:"required"`
	Location    string    `json:"location" validate:"required"`
	MaxFamilies int       `json:"max_families" validate:"required,gt=0"`
	MaxChildren int       `json:"max_children" validate:"required,gt=0"`
	Caller      auth.Caller
}

type EditWorkshopResult struct {
	WorkshopID        int64   `json:"workshop_id"`
	FlaggedBookingIDs []int64 `json:"flagged_booking_ids,omitempty"`
}

type EditWorkshop struct {
	factory domain.UnitOfWorkFactory
	authz   auth.Authorizer
	log     *logging.Logger
}

func NewEditWorkshop(factory domain.UnitOfWorkFactory, authz auth.Authorizer, log *logging.Logger) *EditWorkshop {
	return &EditWorkshop{factory: factory, authz: authz, log: log.WithComponent("usecase.edit_workshop")}
}

func (uc *EditWorkshop) Execute(ctx context.Context, in EditWorkshopInput) (*EditWorkshopResult, error) {
	const op = "usecase.EditWorkshop"
	if !uc.authz.Allow(in.Caller, auth.ActionEditWorkshop) {
		return nil, errs.NewUnauthorized(op, "caller may not edit workshops")
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

	shrunkBelowUsage := in.MaxFamilies < workshop.CurrentFamilies || in.MaxChildren < workshop.CurrentChildren

	workshop.Title = in.Title
	workshop.Date = in.Date
	workshop.StartTime = in.StartTime
	workshop.Location = in.Location
	workshop.MaxFamilies = in.MaxFamilies
	workshop.MaxChildren = in.MaxChildren
	if _, err := uow.Workshops().Save(ctx, workshop); err != nil {
		return nil, err
	}

	var flagged []int64
	if shrunkBelowUsage {
		bookings, err := uow.Bookings().ListByWorkshop(ctx, workshop.ID)
		if err != nil {
			return nil, err
		}
		for i := range bookings {
			b := &bookings[i]
			if !b.IsActive() || b.NeedsAdminReview {
				continue
			}
			b.NeedsAdminReview = true
			if _, err := uow.Bookings().Save(ctx, b); err != nil {
				return nil, err
			}
			flagged = append(flagged, b.ID)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if len(flagged) > 0 {
		uc.log.Warn("workshop capacity reduced below current usage",
			logging.WorkshopID(workshop.ID),
			logging.Int("flagged_bookings", len(flagged)))
	}
	return &EditWorkshopResult{WorkshopID: workshop.ID, FlaggedBookingIDs: flagged}, nil
}
