package usecase

import (
	"context"
	"time"

	"workshop-booking/internal/auth"
	"workshop-booking/internal/domain"
	errs "workshop-booking/pkg/errors"
	"workshop-booking/pkg/logging"
)

// CreateWorkshopInput carries the fields of a new workshop.
type CreateWorkshopInput struct {
	Title       string    `json:"title" validate:"required"`
	Date        time.Time `json:"date" validate:"required"`
	StartTime   string    `json:"time" validate:"required"`
	Location    string    `json:"location" validate:"required"`
	MaxFamilies int       `json:"max_families" validate:"required,gt=0"`
	MaxChildren int       `json:"max_children" validate:"required,gt=0"`
	Caller      auth.Caller
}

type CreateWorkshopResult struct {
	WorkshopID int64 `json:"workshop_id"`
}

type CreateWorkshop struct {
	factory domain.UnitOfWorkFactory
	authz   auth.Authorizer
	log     *logging.Logger
}

func NewCreateWorkshop(factory domain.UnitOfWorkFactory, authz auth.Authorizer, log *logging.Logger) *CreateWorkshop {
	return &CreateWorkshop{factory: factory, authz: authz, log: log.WithComponent("usecase.create_workshop")}
}

func (uc *CreateWorkshop) Execute(ctx context.Context, in CreateWorkshopInput) (*CreateWorkshopResult, error) {
	const op = "usecase.CreateWorkshop"
	if !uc.authz.Allow(in.Caller, auth.ActionCreateWorkshop) {
		return nil, errs.NewUnauthorized(op, "caller may not create workshops")
	}
	if err := validateInput(op, in); err != nil {
		return nil, err
	}

	uow, err := uc.factory.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	workshop, err := uow.Workshops().Save(ctx, &domain.Workshop{
		Title:       in.Title,
		Date:        in.Date,
		StartTime:   in.StartTime,
		Location:    in.Location,
		MaxFamilies: in.MaxFamilies,
		MaxChildren: in.MaxChildren,
	})
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	uc.log.Info("workshop created", logging.WorkshopID(workshop.ID), logging.String("title", workshop.Title))
	return &CreateWorkshopResult{WorkshopID: workshop.ID}, nil
}
