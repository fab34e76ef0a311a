package memory

import (
	"context"
	"sort"
	"strings"

	"workshop-booking/internal/domain"
	errs "workshop-booking/pkg/errors"
)

// The three repositories share the same shape: rows is the working copy
// (snapshot plus local writes), base records the version each id had in the
// snapshot (0 for rows created here), dirty/deleted are the write set.
// Reads never require the store locks; they only touch the working copy.

type workshopRepo struct {
	uow     *UnitOfWork
	rows    map[int64]domain.Workshop
	base    map[int64]int64
	dirty   map[int64]struct{}
	deleted map[int64]struct{}
}

func newWorkshopRepo(uow *UnitOfWork, rows map[int64]domain.Workshop) *workshopRepo {
	base := make(map[int64]int64, len(rows))
	for id, w := range rows {
		base[id] = w.Version
	}
	return &workshopRepo{
		uow:     uow,
		rows:    rows,
		base:    base,
		dirty:   make(map[int64]struct{}),
		deleted: make(map[int64]struct{}),
	}
}

func (r *workshopRepo) GetByID(_ context.Context, id int64) (*domain.Workshop, error) {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	w, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *workshopRepo) ListAll(_ context.Context) ([]domain.Workshop, error) {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	out := make([]domain.Workshop, 0, len(r.rows))
	for _, w := range r.rows {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *workshopRepo) Save(_ context.Context, w *domain.Workshop) (*domain.Workshop, error) {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	if !r.uow.active {
		return nil, errs.NewValidation("memory.Workshops.Save", "no active transaction", nil)
	}
	cp := *w
	if cp.ID == 0 {
		cp.ID = r.uow.store.nextWorkshopID()
	}
	r.rows[cp.ID] = cp
	r.dirty[cp.ID] = struct{}{}
	delete(r.deleted, cp.ID)
	out := cp
	return &out, nil
}

func (r *workshopRepo) Delete(_ context.Context, id int64) error {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	if !r.uow.active {
		return errs.NewValidation("memory.Workshops.Delete", "no active transaction", nil)
	}
	if _, ok := r.rows[id]; !ok {
		return errs.NewNotFound("memory.Workshops.Delete", "workshop not found")
	}
	delete(r.rows, id)
	delete(r.dirty, id)
	r.deleted[id] = struct{}{}
	return nil
}

func (r *workshopRepo) reset() {
	r.dirty = make(map[int64]struct{})
	r.deleted = make(map[int64]struct{})
}

type bookingRepo struct {
	uow     *UnitOfWork
	rows    map[int64]domain.Booking
	base    map[int64]int64
	dirty   map[int64]struct{}
	deleted map[int64]struct{}
}

func newBookingRepo(uow *UnitOfWork, rows map[int64]domain.Booking) *bookingRepo {
	base := make(map[int64]int64, len(rows))
	for id, b := range rows {
		base[id] = b.Version
	}
	return &bookingRepo{
		uow:     uow,
		rows:    rows,
		base:    base,
		dirty:   make(map[int64]struct{}),
		deleted: make(map[int64]struct{}),
	}
}

func (r *bookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	b, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := cloneBooking(b)
	return &cp, nil
}

func (r *bookingRepo) ListAll(_ context.Context) ([]domain.Booking, error) {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	out := make([]domain.Booking, 0, len(r.rows))
	for _, b := range r.rows {
		out = append(out, cloneBooking(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *bookingRepo) ListByWorkshop(_ context.Context, workshopID int64) ([]domain.Booking, error) {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	var out []domain.Booking
	for _, b := range r.rows {
		if b.WorkshopID == workshopID {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *bookingRepo) ListByGuardian(_ context.Context, guardianID int64) ([]domain.Booking, error) {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	var out []domain.Booking
	for _, b := range r.rows {
		if b.GuardianID != nil && *b.GuardianID == guardianID {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *bookingRepo) Save(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	if !r.uow.active {
		return nil, errs.NewValidation("memory.Bookings.Save", "no active transaction", nil)
	}
	cp := cloneBooking(*b)
	if cp.ID == 0 {
		cp.ID = r.uow.store.nextBookingID()
	}
	r.rows[cp.ID] = cp
	r.dirty[cp.ID] = struct{}{}
	delete(r.deleted, cp.ID)
	out := cloneBooking(cp)
	return &out, nil
}

func (r *bookingRepo) Delete(_ context.Context, id int64) error {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	if !r.uow.active {
		return errs.NewValidation("memory.Bookings.Delete", "no active transaction", nil)
	}
	if _, ok := r.rows[id]; !ok {
		return errs.NewNotFound("memory.Bookings.Delete", "booking not found")
	}
	delete(r.rows, id)
	delete(r.dirty, id)
	r.deleted[id] = struct{}{}
	return nil
}

func (r *bookingRepo) reset() {
	r.dirty = make(map[int64]struct{})
	r.deleted = make(map[int64]struct{})
}

type guardianRepo struct {
	uow     *UnitOfWork
	rows    map[int64]domain.Guardian
	base    map[int64]int64
	dirty   map[int64]struct{}
	deleted map[int64]struct{}
}

func newGuardianRepo(uow *UnitOfWork, rows map[int64]domain.Guardian) *guardianRepo {
	base := make(map[int64]int64, len(rows))
	for id, g := range rows {
		base[id] = g.Version
	}
	return &guardianRepo{
		uow:     uow,
		rows:    rows,
		base:    base,
		dirty:   make(map[int64]struct{}),
		deleted: make(map[int64]struct{}),
	}
}

func (r *guardianRepo) GetByID(_ context.Context, id int64) (*domain.Guardian, error) {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	g, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (r *guardianRepo) FindByEmail(_ context.Context, email string) (*domain.Guardian, error) {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	var found *domain.Guardian
	for _, g := range r.rows {
		if strings.EqualFold(g.Email, email) {
			// lowest id wins so lookups are deterministic
			if found == nil || g.ID < found.ID {
				g := g
				found = &g
			}
		}
	}
	return found, nil
}

func (r *guardianRepo) ListAll(_ context.Context) ([]domain.Guardian, error) {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	out := make([]domain.Guardian, 0, len(r.rows))
	for _, g := range r.rows {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *guardianRepo) Save(_ context.Context, g *domain.Guardian) (*domain.Guardian, error) {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	if !r.uow.active {
		return nil, errs.NewValidation("memory.Guardians.Save", "no active transaction", nil)
	}
	cp := *g
	if cp.ID == 0 {
		cp.ID = r.uow.store.nextGuardianID()
	}
	r.rows[cp.ID] = cp
	r.dirty[cp.ID] = struct{}{}
	delete(r.deleted, cp.ID)
	out := cp
	return &out, nil
}

func (r *guardianRepo) Delete(_ context.Context, id int64) error {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	if !r.uow.active {
		return errs.NewValidation("memory.Guardians.Delete", "no active transaction", nil)
	}
	if _, ok := r.rows[id]; !ok {
		return errs.NewNotFound("memory.Guardians.Delete", "guardian not found")
	}
	delete(r.rows, id)
	delete(r.dirty, id)
	r.deleted[id] = struct{}{}
	return nil
}

func (r *guardianRepo) reset() {
	r.dirty = make(map[int64]struct{})
	r.deleted = make(map[int64]struct{})
}
