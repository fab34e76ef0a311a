package usecase

import (
	"context"
	"testing"

	"workshop-booking/internal/auth"
	"workshop-booking/internal/notify"
	errs "workshop-booking/pkg/errors"
)

func TestCancelBookingReleasesSlots(t *testing.T) {
	e := newEnv(t)
	wid := e.seedWorkshop(t, 5, 10)
	res := e.book(t, wid, "jo@example.com", "Ada", "Max")

	uc := NewCancelBooking(e.factory, e.authz, e.dispatch, e.log)
	out, err := uc.Execute(context.Background(), CancelBookingInput{
		BookingID: res.BookingID,
		Reason:    "family emergency",
	})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if out.FamiliesFreed != 1 || out.ChildrenFreed != 2 {
		t.Errorf("freed families=%d children=%d, want 1 and 2", out.FamiliesFreed, out.ChildrenFreed)
	}

	w := e.getWorkshop(t, wid)
	if w.CurrentFamilies != 0 || w.CurrentChildren != 0 {
		t.Errorf("counters after cancel: families=%d children=%d, want 0 and 0",
			w.CurrentFamilies, w.CurrentChildren)
	}

	b := e.getBooking(t, res.BookingID)
	if b == nil {
		t.Fatal("cancelled booking must be kept for audit")
	}
	if !b.IsCancelled() {
		t.Errorf("status = %s, want cancelled", b.Status)
	}
	if b.CancellationReason != "family emergency" {
		t.Errorf("reason = %q", b.CancellationReason)
	}

	e.dispatch.Wait()
	if got := len(e.recorder.ByKind(notify.KindCancellationNotice)); got != 1 {
		t.Errorf("cancellation notices = %d, want 1", got)
	}
}

func TestCancelBookingTwice(t *testing.T) {
	e := newEnv(t)
	wid := e.seedWorkshop(t, 5, 10)
	res := e.book(t, wid, "jo@example.com", "Ada")

	uc := NewCancelBooking(e.factory, e.authz, e.dispatch, e.log)
	if _, err := uc.Execute(context.Background(), CancelBookingInput{BookingID: res.BookingID}); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	_, err := uc.Execute(context.Background(), CancelBookingInput{BookingID: res.BookingID})
	if !errs.IsKind(err, errs.KindAlreadyCancelled) {
		t.Fatalf("second cancel err = %v, want already_cancelled", err)
	}

	// the double cancel must not free slots twice
	w := e.getWorkshop(t, wid)
	if w.CurrentFamilies != 0 || w.CurrentChildren != 0 {
		t.Errorf("counters went negative or double-freed: families=%d children=%d",
			w.CurrentFamilies, w.CurrentChildren)
	}
}

func TestCancelBookingUnknown(t *testing.T) {
	e := newEnv(t)
	uc := NewCancelBooking(e.factory, e.authz, e.dispatch, e.log)
	_, err := uc.Execute(context.Background(), CancelBookingInput{BookingID: 42})
	if !errs.IsKind(err, errs.KindNotFound) {
		t.Fatalf("err = %v, want not_found", err)
	}
}

func TestCancelBookingGuardianOwnsBooking(t *testing.T) {
	e := newEnv(t)
	wid := e.seedWorkshop(t, 5, 10)
	own := e.book(t, wid, "owner@example.com", "Ada")
	other := e.book(t, wid, "other@example.com", "Ben")

	// no role grants, caller identified only as a guardian
	uc := NewCancelBooking(e.factory, auth.Static{}, e.dispatch, e.log)
	caller := auth.Caller{Key: "guest", GuardianID: &own.GuardianID}

	if _, err := uc.Execute(context.Background(), CancelBookingInput{
		BookingID: own.BookingID,
		Caller:    caller,
	}); err != nil {
		t.Fatalf("own booking cancel: %v", err)
	}

	_, err := uc.Execute(context.Background(), CancelBookingInput{
		BookingID: other.BookingID,
		Caller:    caller,
	})
	if !errs.IsKind(err, errs.KindUnauthorized) {
		t.Fatalf("foreign booking cancel err = %v, want unauthorized", err)
	}
}

func TestCancelBookingAnonymousDenied(t *testing.T) {
	e := newEnv(t)
	wid := e.seedWorkshop(t, 5, 10)
	res := e.book(t, wid, "jo@example.com", "Ada")

	uc := NewCancelBooking(e.factory, auth.Static{}, e.dispatch, e.log)
	_, err := uc.Execute(context.Background(), CancelBookingInput{BookingID: res.BookingID})
	if !errs.IsKind(err, errs.KindUnauthorized) {
		t.Fatalf("err = %v, want unauthorized", err)
	}
}

func TestCancelBookingAdminCanCancelAny(t *testing.T) {
	e := newEnv(t)
	wid := e.seedWorkshop(t, 5, 10)
	res := e.book(t, wid, "jo@example.com", "Ada")

	authz := auth.Static{Roles: map[string]string{"root-key": "admin"}}
	uc := NewCancelBooking(e.factory, authz, e.dispatch, e.log)
	if _, err := uc.Execute(context.Background(), CancelBookingInput{
		BookingID: res.BookingID,
		Caller:    auth.Caller{Key: "root-key"},
	}); err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
}
