package repository

import (
	"context"
	"fmt"

	"workshop-booking/internal/domain"
	errs "workshop-booking/pkg/errors"
)

// Version conflicts surface at Save rather than Commit here: the UPDATE
// carries the version predicate, so a zero row count means another
// transaction moved the row. The error kind is the same either way, callers
// only branch on commit_conflict.

type sqlWorkshopRepo struct {
	uow *SQLUnitOfWork
}

var _ domain.WorkshopRepository = (*sqlWorkshopRepo)(nil)

func (r *sqlWorkshopRepo) GetByID(ctx context.Context, id int64) (*domain.Workshop, error) {
	if err := r.uow.guard("repository.Workshops.GetByID"); err != nil {
		return nil, err
	}
	return r.uow.db.GetWorkshopTx(ctx, r.uow.tx, id)
}

func (r *sqlWorkshopRepo) ListAll(ctx context.Context) ([]domain.Workshop, error) {
	if err := r.uow.guard("repository.Workshops.ListAll"); err != nil {
		return nil, err
	}
	return r.uow.db.ListWorkshopsTx(ctx, r.uow.tx)
}

func (r *sqlWorkshopRepo) Save(ctx context.Context, w *domain.Workshop) (*domain.Workshop, error) {
	const op = "repository.Workshops.Save"
	if err := r.uow.guard(op); err != nil {
		return nil, err
	}
	if w.ID == 0 {
		id, err := r.uow.db.InsertWorkshopTx(ctx, r.uow.tx, w)
		if err != nil {
			return nil, err
		}
		w.ID = id
		w.Version = 1
		return w, nil
	}
	ok, err := r.uow.db.UpdateWorkshopTx(ctx, r.uow.tx, w)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.NewCommit(op, "concurrent update detected, transaction rolled back", nil)
	}
	w.Version++
	return w, nil
}

func (r *sqlWorkshopRepo) Delete(ctx context.Context, id int64) error {
	const op = "repository.Workshops.Delete"
	if err := r.uow.guard(op); err != nil {
		return err
	}
	ok, err := r.uow.db.DeleteWorkshopTx(ctx, r.uow.tx, id)
	if err != nil {
		return err
	}
	if !ok {
		return errs.NewNotFound(op, fmt.Sprintf("workshop %d not found", id))
	}
	return nil
}

type sqlBookingRepo struct {
	uow *SQLUnitOfWork
}

var _ domain.BookingRepository = (*sqlBookingRepo)(nil)

func (r *sqlBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	if err := r.uow.guard("repository.Bookings.GetByID"); err != nil {
		return nil, err
	}
	return r.uow.db.GetBookingTx(ctx, r.uow.tx, id)
}

func (r *sqlBookingRepo) ListAll(ctx context.Context) ([]domain.Booking, error) {
	if err := r.uow.guard("repository.Bookings.ListAll"); err != nil {
		return nil, err
	}
	return r.uow.db.ListBookingsTx(ctx, r.uow.tx)
}

func (r *sqlBookingRepo) ListByWorkshop(ctx context.Context, workshopID int64) ([]domain.Booking, error) {
	if err := r.uow.guard("repository.Bookings.ListByWorkshop"); err != nil {
		return nil, err
	}
	return r.uow.db.ListBookingsByWorkshopTx(ctx, r.uow.tx, workshopID)
}

func (r *sqlBookingRepo) ListByGuardian(ctx context.Context, guardianID int64) ([]domain.Booking, error) {
	if err := r.uow.guard("repository.Bookings.ListByGuardian"); err != nil {
		return nil, err
	}
	return r.uow.db.ListBookingsByGuardianTx(ctx, r.uow.tx, guardianID)
}

func (r *sqlBookingRepo) Save(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	const op = "repository.Bookings.Save"
	if err := r.uow.guard(op); err != nil {
		return nil, err
	}
	if b.ID == 0 {
		id, err := r.uow.db.InsertBookingTx(ctx, r.uow.tx, b)
		if err != nil {
			return nil, err
		}
		b.ID = id
		b.Version = 1
		return b, nil
	}
	ok, err := r.uow.db.UpdateBookingTx(ctx, r.uow.tx, b)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.NewCommit(op, "concurrent update detected, transaction rolled back", nil)
	}
	b.Version++
	return b, nil
}

func (r *sqlBookingRepo) Delete(ctx context.Context, id int64) error {
	const op = "repository.Bookings.Delete"
	if err := r.uow.guard(op); err != nil {
		return err
	}
	ok, err := r.uow.db.DeleteBookingTx(ctx, r.uow.tx, id)
	if err != nil {
		return err
	}
	if !ok {
		return errs.NewNotFound(op, fmt.Sprintf("booking %d not found", id))
	}
	return nil
}

type sqlGuardianRepo struct {
	uow *SQLUnitOfWork
}

var _ domain.GuardianRepository = (*sqlGuardianRepo)(nil)

func (r *sqlGuardianRepo) GetByID(ctx context.Context, id int64) (*domain.Guardian, error) {
	if err := r.uow.guard("repository.Guardians.GetByID"); err != nil {
		return nil, err
	}
	return r.uow.db.GetGuardianTx(ctx, r.uow.tx, id)
}

func (r *sqlGuardianRepo) FindByEmail(ctx context.Context, email string) (*domain.Guardian, error) {
	if err := r.uow.guard("repository.Guardians.FindByEmail"); err != nil {
		return nil, err
	}
	return r.uow.db.FindGuardianByEmailTx(ctx, r.uow.tx, email)
}

func (r *sqlGuardianRepo) ListAll(ctx context.Context) ([]domain.Guardian, error) {
	if err := r.uow.guard("repository.Guardians.ListAll"); err != nil {
		return nil, err
	}
	return r.uow.db.ListGuardiansTx(ctx, r.uow.tx)
}

func (r *sqlGuardianRepo) Save(ctx context.Context, g *domain.Guardian) (*domain.Guardian, error) {
	const op = "repository.Guardians.Save"
	if err := r.uow.guard(op); err != nil {
		return nil, err
	}
	if g.ID == 0 {
		id, err := r.uow.db.InsertGuardianTx(ctx, r.uow.tx, g)
		if err != nil {
			return nil, err
		}
		g.ID = id
		g.Version = 1
		return g, nil
	}
	ok, err := r.uow.db.UpdateGuardianTx(ctx, r.uow.tx, g)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.NewCommit(op, "concurrent update detected, transaction rolled back", nil)
	}
	g.Version++
	return g, nil
}

func (r *sqlGuardianRepo) Delete(ctx context.Context, id int64) error {
	const op = "repository.Guardians.Delete"
	if err := r.uow.guard(op); err != nil {
		return err
	}
	ok, err := r.uow.db.DeleteGuardianTx(ctx, r.uow.tx, id)
	if err != nil {
		return err
	}
	if !ok {
		return errs.NewNotFound(op, fmt.Sprintf("guardian %d not found", id))
	}
	return nil
}
