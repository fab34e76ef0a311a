package usecase

import (
	"context"
	"fmt"

	"workshop-booking/internal/domain"
	"workshop-booking/internal/notify"
	errs "workshop-booking/pkg/errors"
	"workshop-booking/pkg/logging"
)

// ChildInput is one child on a booking request.
type ChildInput struct {
	FirstName string `json:"first_name" validate:"required"`
	Age       int    `json:"age" validate:"required,gt=0"`
}

// CreateBookingInput carries everything needed to reserve slots.
type CreateBookingInput struct {
	WorkshopID       int64        `json:"workshop_id" validate:"required,gt=0"`
	GuardianName     string       `json:"guardian_name" validate:"required"`
	GuardianEmail    string       `json:"guardian_email" validate:"required,email"`
	GuardianPhone    string       `json:"guardian_phone" validate:"required"`
	GuardianPostcode string       `json:"guardian_postcode" validate:"required"`
	Children         []ChildInput `json:"children" validate:"required,min=1,dive"`
}

// CreateBookingResult reports the created booking.
type CreateBookingResult struct {
	BookingID  int64 `json:"booking_id"`
	GuardianID int64 `json:"guardian_id"`
}

// CreateBooking reserves one family slot and one child slot per child, all
// or nothing. Two concurrent calls racing for the last slot are decided at
// commit time: the loser's unit of work fails rather than overselling.
type CreateBooking struct {
	factory    domain.UnitOfWorkFactory
	dispatcher *notify.Dispatcher
	log        *logging.Logger
}

func NewCreateBooking(factory domain.UnitOfWorkFactory, dispatcher *notify.Dispatcher, log *logging.Logger) *CreateBooking {
	return &CreateBooking{factory: factory, dispatcher: dispatcher, log: log.WithComponent("usecase.create_booking")}
}

func (uc *CreateBooking) Execute(ctx context.Context, in CreateBookingInput) (*CreateBookingResult, error) {
	const op = "usecase.CreateBooking"
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

	// One booking always consumes exactly one family slot.
	if !workshop.HasFamilyCapacity() {
		return nil, errs.NewWorkshopFull(op, "workshop has no family slots left")
	}
	if !workshop.CanAccommodateChildren(len(in.Children)) {
		return nil, errs.NewWorkshopFull(op, "workshop has insufficient child slots")
	}

	// Duplicate-child detection is scoped to this workshop: the same first
	// name booked at another workshop is fine.
	existing, err := uow.Bookings().ListByWorkshop(ctx, workshop.ID)
	if err != nil {
		return nil, err
	}
	for _, b := range existing {
		if !b.IsActive() {
			continue
		}
		for _, child := range in.Children {
			if b.HasChildNamed(child.FirstName) {
				return nil, errs.NewDuplicateChild(op,
					fmt.Sprintf("child %q already has an active booking at this workshop", child.FirstName))
			}
		}
	}

	guardian, err := uow.Guardians().FindByEmail(ctx, in.GuardianEmail)
	if err != nil {
		return nil, err
	}
	if guardian == nil {
		guardian, err = uow.Guardians().Save(ctx, &domain.Guardian{
			Name:     in.GuardianName,
			Email:    in.GuardianEmail,
			Phone:    in.GuardianPhone,
			Postcode: in.GuardianPostcode,
		})
		if err != nil {
			return nil, err
		}
	}

	children := make([]domain.Child, 0, len(in.Children))
	for _, c := range in.Children {
		children = append(children, domain.Child{FirstName: c.FirstName, Age: c.Age})
	}
	gid := guardian.ID
	booking, err := uow.Bookings().Save(ctx, &domain.Booking{
		WorkshopID:       workshop.ID,
		GuardianID:       &gid,
		GuardianName:     in.GuardianName,
		GuardianEmail:    in.GuardianEmail,
		GuardianPhone:    in.GuardianPhone,
		GuardianPostcode: in.GuardianPostcode,
		Children:         children,
		Status:           domain.BookingActive,
	})
	if err != nil {
		return nil, err
	}

	workshop.AddFamily()
	workshop.AddChildren(len(children))
	if _, err := uow.Workshops().Save(ctx, workshop); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		uc.log.Warn("booking commit rejected",
			logging.WorkshopID(workshop.ID),
			logging.String("reason", err.Error()))
		return nil, err
	}

	uc.log.Info("booking created",
		logging.BookingID(booking.ID),
		logging.WorkshopID(workshop.ID),
		logging.Int("children", len(children)))

	guardianInfo := notify.GuardianInfoFromBooking(booking)
	uc.dispatcher.Dispatch(
		notify.NewIntent(notify.KindConfirmation, workshop, guardianInfo, booking.Children),
		notify.NewIntent(notify.KindAdminNotice, workshop, guardianInfo, booking.Children),
	)

	return &CreateBookingResult{BookingID: booking.ID, GuardianID: guardian.ID}, nil
}
