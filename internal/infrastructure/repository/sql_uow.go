// Package repository is the MySQL-backed implementation of the repository
// and UnitOfWork contracts, built on pkg/database. Transaction scope maps
// directly onto *sql.Tx; row locks plus version-checked updates give the
// same no-oversell guarantee the in-memory implementation provides.
package repository

import (
	"context"
	"database/sql"

	"workshop-booking/internal/domain"
	"workshop-booking/pkg/database"
	errs "workshop-booking/pkg/errors"
)

// SQLUnitOfWorkFactory starts SQL-backed UnitOfWork transactions.
type SQLUnitOfWorkFactory struct {
	db *database.DB
}

func NewSQLUnitOfWorkFactory(db *database.DB) *SQLUnitOfWorkFactory {
	return &SQLUnitOfWorkFactory{db: db}
}

var _ domain.UnitOfWorkFactory = (*SQLUnitOfWorkFactory)(nil)

// DB exposes the underlying connection for health checks.
func (f *SQLUnitOfWorkFactory) DB() *database.DB { return f.db }

func (f *SQLUnitOfWorkFactory) Begin(ctx context.Context) (domain.UnitOfWork, error) {
	uow := &SQLUnitOfWork{db: f.db}
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	return uow, nil
}

// SQLUnitOfWork coordinates all repository operations on a single *sql.Tx.
type SQLUnitOfWork struct {
	db *database.DB
	tx *sql.Tx

	// guard against double commit/rollback
	closed bool
}

var _ domain.UnitOfWork = (*SQLUnitOfWork)(nil)

func (u *SQLUnitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return errs.NewValidation("repository.Begin", "transaction already active, nested transactions are not supported", nil)
	}
	tx, err := u.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return errs.NewDB("repository.Begin", "failed to begin transaction", err)
	}
	u.tx = tx
	u.closed = false
	return nil
}

func (u *SQLUnitOfWork) Commit() error {
	if u.closed || u.tx == nil {
		return errs.NewValidation("repository.Commit", "no active transaction", nil)
	}
	u.closed = true
	if err := u.tx.Commit(); err != nil {
		return errs.NewCommit("repository.Commit", "transaction commit failed", err)
	}
	return nil
}

// Rollback is safe to defer: after a successful Commit it is a no-op.
func (u *SQLUnitOfWork) Rollback() error {
	if u.closed || u.tx == nil {
		return nil
	}
	u.closed = true
	if err := u.tx.Rollback(); err != nil {
		return errs.NewDB("repository.Rollback", "transaction rollback failed", err)
	}
	return nil
}

func (u *SQLUnitOfWork) Workshops() domain.WorkshopRepository { return &sqlWorkshopRepo{uow: u} }
func (u *SQLUnitOfWork) Bookings() domain.BookingRepository   { return &sqlBookingRepo{uow: u} }
func (u *SQLUnitOfWork) Guardians() domain.GuardianRepository { return &sqlGuardianRepo{uow: u} }

func (u *SQLUnitOfWork) guard(op string) error {
	if u.closed || u.tx == nil {
		return errs.NewValidation(op, "no active transaction", nil)
	}
	return nil
}
