package domain

import "context"

// UnitOfWork coordinates a set of repository operations within a single
// transaction so that capacity counters, booking records and guardian links
// change atomically.
//
// Typical usage:
//
//	uow, err := factory.Begin(ctx)
//	if err != nil { ... }
//	defer uow.Rollback()
//	ws, err := uow.Workshops().GetByID(ctx, id)
//	...
//	if err := uow.Commit(); err != nil { ... }
//
// Contract:
//   - Begin on an already-open UnitOfWork fails fast; nested transactions
//     are unsupported and must never silently flatten.
//   - Reads through the handles see this UnitOfWork's own uncommitted
//     writes but never another UnitOfWork's.
//   - Commit applies the whole write set atomically, or fails with a
//     commit_conflict error leaving the UnitOfWork rolled back.
//   - Rollback discards all uncommitted writes; it is idempotent and is a
//     no-op after Commit, so "defer uow.Rollback()" is always safe and
//     guarantees nothing partial survives an aborted operation.
//
// Keep the transaction as short as possible.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	Workshops() WorkshopRepository
	Bookings() BookingRepository
	Guardians() GuardianRepository
}

// UnitOfWorkFactory starts new UnitOfWork instances.
// A returned UnitOfWork is already begun; Begin may be a no-op.
type UnitOfWorkFactory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}
