package usecase

import (
	"context"
	"testing"
	"time"

	"workshop-booking/internal/auth"
	"workshop-booking/internal/notify"
	errs "workshop-booking/pkg/errors"
)

func TestCreateWorkshop(t *testing.T) {
	e := newEnv(t)
	uc := NewCreateWorkshop(e.factory, e.authz, e.log)

	res, err := uc.Execute(context.Background(), CreateWorkshopInput{
		Title:       "Clay Modelling",
		Date:        time.Date(2026, 11, 14, 0, 0, 0, 0, time.UTC),
		StartTime:   "14:30",
		Location:    "Main Hall",
		MaxFamilies: 8,
		MaxChildren: 16,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	w := e.getWorkshop(t, res.WorkshopID)
	if w == nil {
		t.Fatal("workshop not persisted")
	}
	if w.Title != "Clay Modelling" || w.MaxFamilies != 8 {
		t.Errorf("persisted workshop = %+v", w)
	}
	if w.CurrentFamilies != 0 || w.CurrentChildren != 0 {
		t.Errorf("new workshop must start with zero consumed slots")
	}
}

func TestCreateWorkshopUnauthorized(t *testing.T) {
	e := newEnv(t)
	uc := NewCreateWorkshop(e.factory, auth.Static{Roles: map[string]string{"desk": "staff"}}, e.log)

	_, err := uc.Execute(context.Background(), CreateWorkshopInput{
		Title:       "Clay Modelling",
		Date:        time.Date(2026, 11, 14, 0, 0, 0, 0, time.UTC),
		StartTime:   "14:30",
		Location:    "Main Hall",
		MaxFamilies: 8,
		MaxChildren: 16,
		Caller:      auth.Caller{Key: "desk"},
	})
	if !errs.IsKind(err, errs.KindUnauthorized) {
		t.Fatalf("err = %v, want unauthorized", err)
	}
}

func TestEditWorkshopPersistsChanges(t *testing.T) {
	e := newEnv(t)
	wid := e.seedWorkshop(t, 5, 10)

	uc := NewEditWorkshop(e.factory, e.authz, e.log)
	res, err := uc.Execute(context.Background(), EditWorkshopInput{
		WorkshopID:  wid,
		Title:       "Pottery for Families (moved)",
		Date:        time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC),
		StartTime:   "11:00",
		Location:    "Studio C",
		MaxFamilies: 6,
		MaxChildren: 12,
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if len(res.FlaggedBookingIDs) != 0 {
		t.Errorf("flagged bookings with no capacity problem: %v", res.FlaggedBookingIDs)
	}

	w := e.getWorkshop(t, wid)
	if w.Location != "Studio C" || w.MaxFamilies != 6 {
		t.Errorf("edit not persisted: %+v", w)
	}
}

// Shrinking capacity below current usage still persists the edit; every
// active booking gets flagged for admin review instead of being rejected.
func TestEditWorkshopShrinkFlagsBookings(t *testing.T) {
	e := newEnv(t)
	wid := e.seedWorkshop(t, 5, 10)
	b1 := e.book(t, wid, "one@example.com", "Ada", "Max")
	b2 := e.book(t, wid, "two@example.com", "Ben")

	uc := NewEditWorkshop(e.factory, e.authz, e.log)
	res, err := uc.Execute(context.Background(), EditWorkshopInput{
		WorkshopID:  wid,
		Title:       "Pottery for Families",
		Date:        time.Date(2026, 10, 3, 0, 0, 0, 0, time.UTC),
		StartTime:   "10:00",
		Location:    "Studio B",
		MaxFamilies: 1, // below the two booked families
		MaxChildren: 10,
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if len(res.FlaggedBookingIDs) != 2 {
		t.Fatalf("flagged = %v, want both bookings", res.FlaggedBookingIDs)
	}

	w := e.getWorkshop(t, wid)
	if w.MaxFamilies != 1 {
		t.Errorf("shrink not persisted: MaxFamilies = %d", w.MaxFamilies)
	}
	for _, id := range []int64{b1.BookingID, b2.BookingID} {
		if b := e.getBooking(t, id); !b.NeedsAdminReview {
			t.Errorf("booking %d not flagged for review", id)
		}
	}
}

func TestDeleteWorkshopCascades(t *testing.T) {
	e := newEnv(t)
	wid := e.seedWorkshop(t, 5, 10)
	ids := []int64{
		e.book(t, wid, "one@example.com", "Ada").BookingID,
		e.book(t, wid, "two@example.com", "Ben").BookingID,
		e.book(t, wid, "three@example.com", "Cam").BookingID,
	}

	uc := NewDeleteWorkshop(e.factory, e.authz, e.dispatch, e.log)
	res, err := uc.Execute(context.Background(), DeleteWorkshopInput{WorkshopID: wid})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(res.CancelledBookingIDs) != 3 {
		t.Fatalf("cancelled = %v, want 3 bookings", res.CancelledBookingIDs)
	}

	if w := e.getWorkshop(t, wid); w != nil {
		t.Error("workshop still present after delete")
	}
	for _, id := range ids {
		b := e.getBooking(t, id)
		if b == nil {
			t.Fatalf("booking %d removed, must be kept cancelled", id)
		}
		if !b.IsCancelled() {
			t.Errorf("booking %d status = %s, want cancelled", id, b.Status)
		}
	}

	e.dispatch.Wait()
	if got := len(e.recorder.ByKind(notify.KindCancellationNotice)); got != 3 {
		t.Errorf("cancellation notices = %d, want one per guardian", got)
	}
}

func TestDeleteWorkshopOneNoticePerGuardian(t *testing.T) {
	e := newEnv(t)
	w1 := e.seedWorkshop(t, 5, 10)
	w2 := e.seedWorkshop(t, 5, 10)
	e.book(t, w1, "same@example.com", "Ada")
	e.book(t, w2, "same@example.com", "Ben")
	e.book(t, w2, "same@example.com", "Cam") // second booking at w2 via different child

	uc := NewDeleteWorkshop(e.factory, e.authz, e.dispatch, e.log)
	if _, err := uc.Execute(context.Background(), DeleteWorkshopInput{WorkshopID: w2}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	e.dispatch.Wait()
	if got := len(e.recorder.ByKind(notify.KindCancellationNotice)); got != 1 {
		t.Errorf("cancellation notices = %d, want 1 for the single guardian", got)
	}
}

func TestDeleteWorkshopUnknown(t *testing.T) {
	e := newEnv(t)
	uc := NewDeleteWorkshop(e.factory, e.authz, e.dispatch, e.log)
	_, err := uc.Execute(context.Background(), DeleteWorkshopInput{WorkshopID: 7})
	if !errs.IsKind(err, errs.KindNotFound) {
		t.Fatalf("err = %v, want not_found", err)
	}
}

func TestUpdateAvailability(t *testing.T) {
	e := newEnv(t)
	wid := e.seedWorkshop(t, 5, 10)
	e.book(t, wid, "jo@example.com", "Ada", "Max")

	uc := NewUpdateAvailability(e.factory, e.authz, e.log)

	// consume one more family and two more child slots
	res, err := uc.Execute(context.Background(), UpdateAvailabilityInput{
		WorkshopID:        wid,
		FamilySlotsChange: -1,
		ChildSlotsChange:  -2,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.RemainingFamilySlots != 3 || res.RemainingChildSlots != 6 {
		t.Errorf("remaining families=%d children=%d, want 3 and 6",
			res.RemainingFamilySlots, res.RemainingChildSlots)
	}

	// freeing more than is consumed is rejected
	_, err = uc.Execute(context.Background(), UpdateAvailabilityInput{
		WorkshopID:        wid,
		FamilySlotsChange: 10,
	})
	if !errs.IsKind(err, errs.KindValidation) {
		t.Fatalf("overfree err = %v, want validation", err)
	}

	// consuming beyond capacity is rejected
	_, err = uc.Execute(context.Background(), UpdateAvailabilityInput{
		WorkshopID:        wid,
		FamilySlotsChange: -10,
	})
	if !errs.IsKind(err, errs.KindWorkshopFull) {
		t.Fatalf("overconsume err = %v, want workshop_full", err)
	}

	// a no-op request is rejected before touching the store
	_, err = uc.Execute(context.Background(), UpdateAvailabilityInput{WorkshopID: wid})
	if !errs.IsKind(err, errs.KindValidation) {
		t.Fatalf("no-op err = %v, want validation", err)
	}
}
