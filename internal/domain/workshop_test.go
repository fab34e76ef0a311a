package domain

import "testing"

func TestWorkshop_CapacityArithmetic(t *testing.T) {
	w := &Workshop{MaxFamilies: 2, MaxChildren: 3}

	if !w.AddFamily() || !w.AddChildren(2) {
		t.Fatalf("expected first booking to fit")
	}
	if w.CurrentFamilies != 1 || w.CurrentChildren != 2 {
		t.Fatalf("unexpected counters: %d families, %d children", w.CurrentFamilies, w.CurrentChildren)
	}
	if w.RemainingFamilySlots() != 1 || w.RemainingChildSlots() != 1 {
		t.Fatalf("unexpected remaining slots: %d/%d", w.RemainingFamilySlots(), w.RemainingChildSlots())
	}
	if w.AddChildren(2) {
		t.Fatalf("adding 2 children should exceed max 3")
	}
	if !w.AddFamily() {
		t.Fatalf("second family should fit")
	}
	if w.AddFamily() {
		t.Fatalf("third family should be rejected")
	}
}

func TestWorkshop_RemoveClampsAtZero(t *testing.T) {
	w := &Workshop{MaxFamilies: 1, MaxChildren: 2}
	w.RemoveFamily()
	w.RemoveChildren(5)
	if w.CurrentFamilies != 0 || w.CurrentChildren != 0 {
		t.Fatalf("counters must clamp at zero, got %d/%d", w.CurrentFamilies, w.CurrentChildren)
	}
}

func TestBooking_CancelIsTerminal(t *testing.T) {
	b := &Booking{Status: BookingActive, Children: []Child{{FirstName: "Mia", Age: 5}}}
	b.Cancel("family moved away")
	if !b.IsCancelled() || b.IsActive() {
		t.Fatalf("expected cancelled status, got %q", b.Status)
	}
	if b.CancellationReason != "family moved away" {
		t.Fatalf("reason not recorded: %q", b.CancellationReason)
	}
}

func TestBooking_HasChildNamed(t *testing.T) {
	b := &Booking{Children: []Child{{FirstName: "Ada", Age: 6}, {FirstName: "Leo", Age: 4}}}
	if !b.HasChildNamed("ada") {
		t.Fatalf("matching should be case-insensitive")
	}
	if b.HasChildNamed("Noah") {
		t.Fatalf("unexpected match for Noah")
	}
}
