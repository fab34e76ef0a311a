package usecase

import (
	"context"
	"fmt"

	"workshop-booking/internal/auth"
	"workshop-booking/internal/domain"
	errs "workshop-booking/pkg/errors"
	"workshop-booking/pkg/logging"
)

// UpdateAvailabilityInput adjusts a workshop's consumed slots directly.
// Positive changes free slots (as a cancellation would), negative changes
// consume them. Admin tooling only; normal consumption goes through
// CreateBooking/CancelBooking.
type UpdateAvailabilityInput struct {
	WorkshopID        int64 `json:"workshop_id" validate:"required,gt=0"`
	FamilySlotsChange int   `json:"family_slots_change"`
	ChildSlotsChange  int   `json:"child_slots_change"`
	Caller            auth.Caller
}

type UpdateAvailabilityResult struct {
	WorkshopID           int64 `json:"workshop_id"`
	RemainingFamilySlots int   `json:"remaining_family_slots"`
	RemainingChildSlots  int   `json:"remaining_child_slots"`
}

type UpdateAvailability struct {
	factory domain.UnitOfWorkFactory
	authz   auth.Authorizer
	log     *logging.Logger
}

func NewUpdateAvailability(factory domain.UnitOfWorkFactory, authz auth.Authorizer, log *logging.Logger) *UpdateAvailability {
	return &UpdateAvailability{factory: factory, authz: authz, log: log.WithComponent("usecase.update_availability")}
}

func (uc *UpdateAvailability) Execute(ctx context.Context, in UpdateAvailabilityInput) (*UpdateAvailabilityResult, error) {
	const op = "usecase.UpdateAvailability"
	if !uc.authz.Allow(in.Caller, auth.ActionUpdateAvailability) {
		return nil, errs.NewUnauthorized(op, "caller may not adjust availability")
	}
	if err := validateInput(op, in); err != nil {
		return nil, err
	}
	if in.FamilySlotsChange == 0 && in.ChildSlotsChange == 0 {
		return nil, errs.NewValidation(op, "no change requested", nil)
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

	newFamilies := workshop.CurrentFamilies - in.FamilySlotsChange
	newChildren := workshop.CurrentChildren - in.ChildSlotsChange
	if newFamilies < 0 || newChildren < 0 {
		return nil, errs.NewValidation(op, "adjustment would make consumed slots negative", nil)
	}
	if newFamilies > workshop.MaxFamilies || newChildren > workshop.MaxChildren {
		return nil, errs.NewWorkshopFull(op, "adjustment exceeds workshop capacity")
	}

	workshop.CurrentFamilies = newFamilies
	workshop.CurrentChildren = newChildren
	if _, err := uow.Workshops().Save(ctx, workshop); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &UpdateAvailabilityResult{
		WorkshopID:           workshop.ID,
		RemainingFamilySlots: workshop.RemainingFamilySlots(),
		RemainingChildSlots:  workshop.RemainingChildSlots(),
	}, nil
}
