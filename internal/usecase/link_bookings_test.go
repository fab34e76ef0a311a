package usecase

import (
	"context"
	"testing"

	errs "workshop-booking/pkg/errors"
)

func TestLinkBookings(t *testing.T) {
	e := newEnv(t)
	wid := e.seedWorkshop(t, 5, 10)
	b1 := e.book(t, wid, "one@example.com", "Ada")
	b2 := e.book(t, wid, "one@example.com", "Ben")

	reg := NewRegisterGuardian(e.factory, e.authz, e.log)
	g, err := reg.Execute(context.Background(), RegisterGuardianInput{
		Name:     "New Guardian",
		Email:    "new@example.com",
		Phone:    "07700900999",
		Postcode: "BS3 2AB",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	uc := NewLinkBookings(e.factory, e.authz, e.log)
	_, err = uc.Execute(context.Background(), LinkBookingsInput{
		GuardianID: g.GuardianID,
		BookingIDs: []int64{b1.BookingID, b2.BookingID},
	})
	// both bookings already belong to the one@example.com guardian
	if !errs.IsKind(err, errs.KindPartialFailure) {
		t.Fatalf("err = %v, want partial_failure", err)
	}
}

func TestLinkBookingsResolvedSubsetCommits(t *testing.T) {
	e := newEnv(t)
	wid := e.seedWorkshop(t, 5, 10)
	owned := e.book(t, wid, "one@example.com", "Ada")

	uc := NewLinkBookings(e.factory, e.authz, e.log)
	res, err := uc.Execute(context.Background(), LinkBookingsInput{
		GuardianID: owned.GuardianID,
		BookingIDs: []int64{owned.BookingID, 999},
	})
	if !errs.IsKind(err, errs.KindPartialFailure) {
		t.Fatalf("err = %v, want partial_failure", err)
	}
	if res == nil {
		t.Fatal("result must accompany a partial failure")
	}
	if len(res.LinkedIDs) != 1 || res.LinkedIDs[0] != owned.BookingID {
		t.Errorf("linked = %v, want only the known booking", res.LinkedIDs)
	}
	if len(res.Failures) != 1 || res.Failures[0].BookingID != 999 {
		t.Errorf("failures = %+v", res.Failures)
	}
	if res.Failures[0].Kind != string(errs.KindNotFound) {
		t.Errorf("failure kind = %s, want not_found", res.Failures[0].Kind)
	}

	b := e.getBooking(t, owned.BookingID)
	if b.GuardianID == nil || *b.GuardianID != owned.GuardianID {
		t.Error("resolved subset was not committed")
	}
}

func TestLinkBookingsAllResolve(t *testing.T) {
	e := newEnv(t)
	wid := e.seedWorkshop(t, 5, 10)
	res1 := e.book(t, wid, "one@example.com", "Ada")

	uc := NewLinkBookings(e.factory, e.authz, e.log)
	out, err := uc.Execute(context.Background(), LinkBookingsInput{
		GuardianID: res1.GuardianID,
		BookingIDs: []int64{res1.BookingID},
	})
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if len(out.LinkedIDs) != 1 || len(out.Failures) != 0 {
		t.Errorf("out = %+v", out)
	}
}

func TestLinkBookingsUnknownGuardianAborts(t *testing.T) {
	e := newEnv(t)
	wid := e.seedWorkshop(t, 5, 10)
	b := e.book(t, wid, "one@example.com", "Ada")

	uc := NewLinkBookings(e.factory, e.authz, e.log)
	_, err := uc.Execute(context.Background(), LinkBookingsInput{
		GuardianID: 404,
		BookingIDs: []int64{b.BookingID},
	})
	if !errs.IsKind(err, errs.KindNotFound) {
		t.Fatalf("err = %v, want not_found", err)
	}
}

func TestRegisterGuardianIdempotentOnEmail(t *testing.T) {
	e := newEnv(t)
	uc := NewRegisterGuardian(e.factory, e.authz, e.log)

	in := RegisterGuardianInput{
		Name:     "Jo Bloggs",
		Email:    "jo@example.com",
		Phone:    "07700900123",
		Postcode: "BS1 4ND",
	}
	first, err := uc.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("first register: %v", err)
	}
	if first.Existing {
		t.Error("first registration reported as existing")
	}

	second, err := uc.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("second register: %v", err)
	}
	if !second.Existing {
		t.Error("second registration not reported as existing")
	}
	if first.GuardianID != second.GuardianID {
		t.Errorf("ids differ: %d vs %d", first.GuardianID, second.GuardianID)
	}
}

func TestRegisterGuardianValidation(t *testing.T) {
	e := newEnv(t)
	uc := NewRegisterGuardian(e.factory, e.authz, e.log)
	_, err := uc.Execute(context.Background(), RegisterGuardianInput{Name: "Jo", Email: "bad"})
	if !errs.IsKind(err, errs.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}
