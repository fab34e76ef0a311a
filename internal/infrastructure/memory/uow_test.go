package memory

import (
	"context"
	"testing"
	"time"

	"workshop-booking/internal/domain"
	errs "workshop-booking/pkg/errors"
)

func testWorkshop() *domain.Workshop {
	return &domain.Workshop{
		Title:       "Clay for beginners",
		Date:        time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		StartTime:   "10:00",
		Location:    "Studio 2",
		MaxFamilies: 3,
		MaxChildren: 6,
	}
}

func begin(t *testing.T, f *Factory) domain.UnitOfWork {
	t.Helper()
	uow, err := f.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	return uow
}

func TestSaveAssignsIDAndRoundTrips(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(NewStore())

	uow := begin(t, f)
	saved, err := uow.Workshops().Save(ctx, testWorkshop())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	uow2 := begin(t, f)
	defer uow2.Rollback()
	got, err := uow2.Workshops().GetByID(ctx, saved.ID)
	if err != nil || got == nil {
		t.Fatalf("get: %v %v", got, err)
	}
	want := testWorkshop()
	if got.Title != want.Title || !got.Date.Equal(want.Date) || got.StartTime != want.StartTime ||
		got.Location != want.Location || got.MaxFamilies != want.MaxFamilies || got.MaxChildren != want.MaxChildren {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestRollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(NewStore())

	uow := begin(t, f)
	saved, err := uow.Workshops().Save(ctx, testWorkshop())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := uow.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	// rollback is idempotent
	if err := uow.Rollback(); err != nil {
		t.Fatalf("second rollback: %v", err)
	}

	uow2 := begin(t, f)
	defer uow2.Rollback()
	got, err := uow2.Workshops().GetByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("rolled back write leaked into shared state: %+v", got)
	}
}

func TestReadYourWritesAndIsolation(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(NewStore())

	writer := begin(t, f)
	defer writer.Rollback()
	saved, err := writer.Workshops().Save(ctx, testWorkshop())
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	// writer sees its own uncommitted write
	got, err := writer.Workshops().GetByID(ctx, saved.ID)
	if err != nil || got == nil {
		t.Fatalf("read-your-writes failed: %v %v", got, err)
	}

	// a concurrent unit of work must not
	reader := begin(t, f)
	defer reader.Rollback()
	leaked, err := reader.Workshops().GetByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if leaked != nil {
		t.Fatalf("uncommitted write visible to another unit of work")
	}
}

func TestNestedBeginFailsFast(t *testing.T) {
	f := NewFactory(NewStore())
	uow := begin(t, f)
	defer uow.Rollback()
	if err := uow.Begin(context.Background()); err == nil {
		t.Fatalf("nested begin must fail")
	}
}

func TestCommitWithoutTransactionFails(t *testing.T) {
	f := NewFactory(NewStore())
	uow := begin(t, f)
	if err := uow.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if err := uow.Commit(); err == nil {
		t.Fatalf("commit after rollback must fail")
	}
}

func TestCommitConflictOnStaleWrite(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(NewStore())

	setup := begin(t, f)
	saved, err := setup.Workshops().Save(ctx, testWorkshop())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := setup.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	// two units of work load the same snapshot
	first := begin(t, f)
	second := begin(t, f)
	defer second.Rollback()

	w1, _ := first.Workshops().GetByID(ctx, saved.ID)
	w1.CurrentFamilies = 1
	if _, err := first.Workshops().Save(ctx, w1); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := first.Commit(); err != nil {
		t.Fatalf("first commit should win: %v", err)
	}

	w2, _ := second.Workshops().GetByID(ctx, saved.ID)
	w2.CurrentFamilies = 1
	if _, err := second.Workshops().Save(ctx, w2); err != nil {
		t.Fatalf("save: %v", err)
	}
	err = second.Commit()
	if err == nil {
		t.Fatalf("second commit must be rejected as stale")
	}
	if !errs.IsKind(err, errs.KindCommit) {
		t.Fatalf("expected commit_conflict, got %v", err)
	}

	// the loser must be left rolled back: its writes are gone
	check := begin(t, f)
	defer check.Rollback()
	got, _ := check.Workshops().GetByID(ctx, saved.ID)
	if got.CurrentFamilies != 1 {
		t.Fatalf("winner's write lost or loser's applied: %+v", got)
	}
}

func TestDeleteConflictsWithConcurrentUpdate(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(NewStore())

	setup := begin(t, f)
	saved, _ := setup.Workshops().Save(ctx, testWorkshop())
	if err := setup.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	updater := begin(t, f)
	deleter := begin(t, f)
	defer deleter.Rollback()

	w, _ := updater.Workshops().GetByID(ctx, saved.ID)
	w.Title = "renamed"
	if _, err := updater.Workshops().Save(ctx, w); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := updater.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := deleter.Workshops().Delete(ctx, saved.ID); err != nil {
		t.Fatalf("delete in working copy: %v", err)
	}
	if err := deleter.Commit(); !errs.IsKind(err, errs.KindCommit) {
		t.Fatalf("expected commit_conflict for stale delete, got %v", err)
	}
}

func TestDeleteAbsentFailsNotFound(t *testing.T) {
	f := NewFactory(NewStore())
	uow := begin(t, f)
	defer uow.Rollback()
	err := uow.Workshops().Delete(context.Background(), 99)
	if !errs.IsKind(err, errs.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestBookingListingsAndClone(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(NewStore())

	uow := begin(t, f)
	gid := int64(42)
	b := &domain.Booking{
		WorkshopID: 7,
		GuardianID: &gid,
		Children:   []domain.Child{{FirstName: "Iris", Age: 5}},
		Status:     domain.BookingActive,
	}
	saved, err := uow.Bookings().Save(ctx, b)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	uow2 := begin(t, f)
	defer uow2.Rollback()
	byWorkshop, err := uow2.Bookings().ListByWorkshop(ctx, 7)
	if err != nil || len(byWorkshop) != 1 || byWorkshop[0].ID != saved.ID {
		t.Fatalf("list by workshop: %v %v", byWorkshop, err)
	}
	byGuardian, err := uow2.Bookings().ListByGuardian(ctx, gid)
	if err != nil || len(byGuardian) != 1 {
		t.Fatalf("list by guardian: %v %v", byGuardian, err)
	}

	// mutating a returned booking must not write through
	byGuardian[0].Children[0].FirstName = "changed"
	again, _ := uow2.Bookings().GetByID(ctx, saved.ID)
	if again.Children[0].FirstName != "Iris" {
		t.Fatalf("returned booking aliases the working copy")
	}
}

func TestGuardianFindByEmail(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(NewStore())

	uow := begin(t, f)
	g := &domain.Guardian{Name: "Sam Poe", Email: "sam@example.org", Phone: "0123", Postcode: "AB1 2CD"}
	saved, err := uow.Guardians().Save(ctx, g)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	uow2 := begin(t, f)
	defer uow2.Rollback()
	found, err := uow2.Guardians().FindByEmail(ctx, "SAM@example.org")
	if err != nil || found == nil || found.ID != saved.ID {
		t.Fatalf("find by email: %v %v", found, err)
	}
	missing, err := uow2.Guardians().FindByEmail(ctx, "nobody@example.org")
	if err != nil || missing != nil {
		t.Fatalf("expected absent guardian, got %v %v", missing, err)
	}
}
