package usecase

import (
	"context"
	"fmt"
	"sort"

	"workshop-booking/internal/auth"
	"workshop-booking/internal/domain"
	errs "workshop-booking/pkg/errors"
)

// BookingView is one booking as shown to staff. Cancelled bookings are
// included; Status tells them apart.
type BookingView struct {
	ID                 int64          `json:"id"`
	GuardianID         *int64         `json:"guardian_id,omitempty"`
	GuardianName       string         `json:"guardian_name"`
	GuardianEmail      string         `json:"guardian_email"`
	GuardianPhone      string         `json:"guardian_phone"`
	Children           []domain.Child `json:"children"`
	Status             string         `json:"status"`
	NeedsAdminReview   bool           `json:"needs_admin_review,omitempty"`
	CancellationReason string         `json:"cancellation_reason,omitempty"`
}

type ViewBookingsInput struct {
	WorkshopID int64 `json:"workshop_id" validate:"required,gt=0"`
	Caller     auth.Caller
}

type ViewBookingsResult struct {
	WorkshopID    int64         `json:"workshop_id"`
	WorkshopTitle string        `json:"workshop_title"`
	Bookings      []BookingView `json:"bookings"`
}

// ViewBookings lists every booking at one workshop for staff.
type ViewBookings struct {
	factory domain.UnitOfWorkFactory
	authz   auth.Authorizer
}

func NewViewBookings(factory domain.UnitOfWorkFactory, authz auth.Authorizer) *ViewBookings {
	return &ViewBookings{factory: factory, authz: authz}
}

func (uc *ViewBookings) Execute(ctx context.Context, in ViewBookingsInput) (*ViewBookingsResult, error) {
	const op = "usecase.ViewBookings"
	if !uc.authz.Allow(in.Caller, auth.ActionViewAllBookings) {
		return nil, errs.NewUnauthorized(op, "caller may not view bookings")
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
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })

	views := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, BookingView{
			ID:                 b.ID,
			GuardianID:         b.GuardianID,
			GuardianName:       b.GuardianName,
			GuardianEmail:      b.GuardianEmail,
			GuardianPhone:      b.GuardianPhone,
			Children:           b.Children,
			Status:             string(b.Status),
			NeedsAdminReview:   b.NeedsAdminReview,
			CancellationReason: b.CancellationReason,
		})
	}
	return &ViewBookingsResult{
		WorkshopID:    workshop.ID,
		WorkshopTitle: workshop.Title,
		Bookings:      views,
	}, nil
}
