package usecase

import (
	"context"
	"testing"
	"time"

	"workshop-booking/internal/auth"
	"workshop-booking/internal/domain"
	"workshop-booking/internal/infrastructure/memory"
	"workshop-booking/internal/notify"
	"workshop-booking/pkg/logging"
)

// env bundles everything a use-case test needs: the in-memory store, a
// recording notifier, and a permit-everything authorizer.
type env struct {
	store    *memory.Store
	factory  *memory.Factory
	recorder *notify.Recorder
	dispatch *notify.Dispatcher
	authz    auth.Authorizer
	log      *logging.Logger
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	recorder := notify.NewRecorder()
	log := logging.Nop()
	return &env{
		store:    store,
		factory:  memory.NewFactory(store),
		recorder: recorder,
		dispatch: notify.NewDispatcher(recorder, log),
		authz:    auth.AllowAll{},
		log:      log,
	}
}

func (e *env) seedWorkshop(t *testing.T, maxFamilies, maxChildren int) int64 {
	t.Helper()
	ctx := context.Background()
	uow, err := e.factory.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer uow.Rollback()
	w, err := uow.Workshops().Save(ctx, &domain.Workshop{
		Title:       "Pottery for Families",
		Date:        time.Date(2026, 10, 3, 0, 0, 0, 0, time.UTC),
		StartTime:   "10:00",
		Location:    "Studio B",
		MaxFamilies: maxFamilies,
		MaxChildren: maxChildren,
	})
	if err != nil {
		t.Fatalf("save workshop: %v", err)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	return w.ID
}

func (e *env) getWorkshop(t *testing.T, id int64) *domain.Workshop {
	t.Helper()
	ctx := context.Background()
	uow, err := e.factory.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer uow.Rollback()
	w, err := uow.Workshops().GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get workshop: %v", err)
	}
	return w
}

func (e *env) getBooking(t *testing.T, id int64) *domain.Booking {
	t.Helper()
	ctx := context.Background()
	uow, err := e.factory.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer uow.Rollback()
	b, err := uow.Bookings().GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	return b
}

// book creates a booking through the real use case so capacity counters
// stay honest.
func (e *env) book(t *testing.T, workshopID int64, guardianEmail string, childNames ...string) *CreateBookingResult {
	t.Helper()
	children := make([]ChildInput, 0, len(childNames))
	for _, name := range childNames {
		children = append(children, ChildInput{FirstName: name, Age: 7})
	}
	uc := NewCreateBooking(e.factory, e.dispatch, e.log)
	res, err := uc.Execute(context.Background(), CreateBookingInput{
		WorkshopID:       workshopID,
		GuardianName:     "Jo Bloggs",
		GuardianEmail:    guardianEmail,
		GuardianPhone:    "07700900123",
		GuardianPostcode: "BS1 4ND",
		Children:         children,
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	return res
}
