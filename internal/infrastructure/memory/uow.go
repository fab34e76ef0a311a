package memory

import (
	"context"
	"sync"

	"workshop-booking/internal/domain"
	errs "workshop-booking/pkg/errors"
)

// Factory starts in-memory UnitOfWork transactions against one Store.
type Factory struct {
	store *Store
}

func NewFactory(store *Store) *Factory {
	return &Factory{store: store}
}

var _ domain.UnitOfWorkFactory = (*Factory)(nil)

func (f *Factory) Begin(ctx context.Context) (domain.UnitOfWork, error) {
	uow := &UnitOfWork{store: f.store}
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	return uow, nil
}

// UnitOfWork keeps a private working copy of all three tables, taken as one
// consistent snapshot at Begin. Reads see this UnitOfWork's own writes and
// nothing from other open units of work. Commit validates every written or
// deleted row against the shared store under the single commit lock and
// applies the whole write set atomically, or rejects it with a
// commit_conflict error when any row changed underneath.
type UnitOfWork struct {
	store *Store

	mu     sync.Mutex
	active bool

	workshops *workshopRepo
	bookings  *bookingRepo
	guardians *guardianRepo
}

var _ domain.UnitOfWork = (*UnitOfWork)(nil)

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errs.NewDB("memory.Begin", "context cancelled", err)
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.active {
		// Nested transactions are unsupported; fail fast instead of
		// silently flattening.
		return errs.NewValidation("memory.Begin", "transaction already active, nested transactions are not supported", nil)
	}

	ws, bs, gs := u.store.snapshot()
	u.workshops = newWorkshopRepo(u, ws)
	u.bookings = newBookingRepo(u, bs)
	u.guardians = newGuardianRepo(u, gs)
	u.active = true
	return nil
}

func (u *UnitOfWork) Workshops() domain.WorkshopRepository { return u.workshops }
func (u *UnitOfWork) Bookings() domain.BookingRepository   { return u.bookings }
func (u *UnitOfWork) Guardians() domain.GuardianRepository { return u.guardians }

// Commit applies the write set. On a version conflict the UnitOfWork is
// left in rolled-back state; the caller decides whether to retry.
func (u *UnitOfWork) Commit() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.active {
		return errs.NewValidation("memory.Commit", "no active transaction", nil)
	}

	s := u.store
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if u.stale() {
		u.discardLocked()
		s.mConflicts.Inc()
		return errs.NewCommit("memory.Commit", "concurrent update detected, transaction rolled back", nil)
	}

	for id := range u.workshops.dirty {
		row := u.workshops.rows[id]
		row.Version = u.workshops.base[id] + 1
		s.workshops[id] = row
	}
	for id := range u.workshops.deleted {
		delete(s.workshops, id)
	}
	for id := range u.bookings.dirty {
		row := u.bookings.rows[id]
		row.Version = u.bookings.base[id] + 1
		s.bookings[id] = cloneBooking(row)
	}
	for id := range u.bookings.deleted {
		delete(s.bookings, id)
	}
	for id := range u.guardians.dirty {
		row := u.guardians.rows[id]
		row.Version = u.guardians.base[id] + 1
		s.guardians[id] = row
	}
	for id := range u.guardians.deleted {
		delete(s.guardians, id)
	}

	u.discardLocked()
	s.mCommits.Inc()
	return nil
}

// Rollback discards all uncommitted writes. Always succeeds; calling it
// after Commit or twice is a no-op, so deferring it is safe on all paths.
func (u *UnitOfWork) Rollback() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.active {
		return nil
	}
	u.discardLocked()
	u.store.mRollbacks.Inc()
	return nil
}

// stale reports whether any written or deleted row changed in the shared
// store since this UnitOfWork's snapshot. Caller holds both store locks.
func (u *UnitOfWork) stale() bool {
	s := u.store
	for id := range merged(u.workshops.dirty, u.workshops.deleted) {
		if s.workshops[id].Version != u.workshops.base[id] {
			return true
		}
	}
	for id := range merged(u.bookings.dirty, u.bookings.deleted) {
		if s.bookings[id].Version != u.bookings.base[id] {
			return true
		}
	}
	for id := range merged(u.guardians.dirty, u.guardians.deleted) {
		if s.guardians[id].Version != u.guardians.base[id] {
			return true
		}
	}
	return false
}

func (u *UnitOfWork) discardLocked() {
	u.active = false
	u.workshops.reset()
	u.bookings.reset()
	u.guardians.reset()
}

func merged(a, b map[int64]struct{}) map[int64]struct{} {
	if len(b) == 0 {
		return a
	}
	m := make(map[int64]struct{}, len(a)+len(b))
	for id := range a {
		m[id] = struct{}{}
	}
	for id := range b {
		m[id] = struct{}{}
	}
	return m
}
