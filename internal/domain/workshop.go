package domain

import "time"

// Workshop is a scheduled session with finite family and child capacity.
// Capacity counters are owned exclusively by booking/cancellation use cases
// running inside a UnitOfWork; nothing else may touch them.
type Workshop struct {
	ID              int64
	Title           string
	Date            time.Time
	StartTime       string // "15:04"
	Location        string
	MaxFamilies     int
	MaxChildren     int
	CurrentFamilies int
	CurrentChildren int

	// Version increments on every committed save. Stale-version writes are
	// rejected at commit time, which is what serializes concurrent bookings
	// of the last slot.
	Version int64
}

func (w *Workshop) HasFamilyCapacity() bool {
	return w.CurrentFamilies < w.MaxFamilies
}

// CanAccommodateChildren reports whether count more children fit.
func (w *Workshop) CanAccommodateChildren(count int) bool {
	return w.CurrentChildren+count <= w.MaxChildren
}

// AddFamily consumes one family slot. One booking always consumes exactly
// one family slot regardless of how many children it brings.
func (w *Workshop) AddFamily() bool {
	if !w.HasFamilyCapacity() {
		return false
	}
	w.CurrentFamilies++
	return true
}

func (w *Workshop) AddChildren(count int) bool {
	if !w.CanAccommodateChildren(count) {
		return false
	}
	w.CurrentChildren += count
	return true
}

// RemoveFamily releases one family slot, clamped at zero.
func (w *Workshop) RemoveFamily() {
	if w.CurrentFamilies > 0 {
		w.CurrentFamilies--
	}
}

// RemoveChildren releases child slots, clamped at zero.
func (w *Workshop) RemoveChildren(count int) {
	w.CurrentChildren -= count
	if w.CurrentChildren < 0 {
		w.CurrentChildren = 0
	}
}

func (w *Workshop) RemainingFamilySlots() int {
	if n := w.MaxFamilies - w.CurrentFamilies; n > 0 {
		return n
	}
	return 0
}

func (w *Workshop) RemainingChildSlots() int {
	if n := w.MaxChildren - w.CurrentChildren; n > 0 {
		return n
	}
	return 0
}
