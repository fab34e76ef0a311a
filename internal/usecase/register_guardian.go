package usecase

import (
	"context"

	"workshop-booking/internal/auth"
	"workshop-booking/internal/domain"
	errs "workshop-booking/pkg/errors"
	"workshop-booking/pkg/logging"
)

type RegisterGuardianInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Postcode string `json:"postcode" validate:"required"`
	Caller   auth.Caller
}

type RegisterGuardianResult struct {
	GuardianID int64 `json:"guardian_id"`
	Existing   bool  `json:"existing"`
}

// RegisterGuardian creates a guardian record ahead of any booking, so staff
// can link walk-in bookings later. Registration is idempotent on email: a
// second registration with the same address returns the existing record.
type RegisterGuardian struct {
	factory domain.UnitOfWorkFactory
	authz   auth.Authorizer
	log     *logging.Logger
}

func NewRegisterGuardian(factory domain.UnitOfWorkFactory, authz auth.Authorizer, log *logging.Logger) *RegisterGuardian {
	return &RegisterGuardian{factory: factory, authz: authz, log: log.WithComponent("usecase.register_guardian")}
}

func (uc *RegisterGuardian) Execute(ctx context.Context, in RegisterGuardianInput) (*RegisterGuardianResult, error) {
	const op = "usecase.RegisterGuardian"
	if !uc.authz.Allow(in.Caller, auth.ActionRegisterGuardian) {
		return nil, errs.NewUnauthorized(op, "caller may not register guardians")
	}
	if err := validateInput(op, in); err != nil {
		return nil, err
	}

	uow, err := uc.factory.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	existing, err := uow.Guardians().FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &RegisterGuardianResult{GuardianID: existing.ID, Existing: true}, nil
	}

	guardian, err := uow.Guardians().Save(ctx, &domain.Guardian{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Postcode: in.Postcode,
	})
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	uc.log.Info("guardian registered", logging.GuardianID(guardian.ID))
	return &RegisterGuardianResult{GuardianID: guardian.ID}, nil
}
