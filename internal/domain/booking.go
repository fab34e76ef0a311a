package domain

import "strings"

// BookingStatus is the lifecycle state of a booking. The only transition is
// active -> cancelled; cancelled is terminal.
type BookingStatus string

const (
	BookingActive    BookingStatus = "active"
	BookingCancelled BookingStatus = "cancelled"
)

// Child is a value object inside a booking. FirstName identifies the child
// for duplicate detection within a single workshop.
type Child struct {
	FirstName string
	Age       int
}

// Booking reserves one family slot and len(Children) child slots in a
// workshop. It references the workshop and guardian by id; ownership of the
// capacity counters stays with the workshop. The guardian contact fields are
// a snapshot taken at booking time and are not rewritten when the guardian
// record changes later.
type Booking struct {
	ID         int64
	WorkshopID int64
	GuardianID *int64 // nil until linked

	GuardianName     string
	GuardianEmail    string
	GuardianPhone    string
	GuardianPostcode string

	Children []Child
	Status   BookingStatus

	// NeedsAdminReview is set when EditWorkshop shrinks capacity below
	// current usage. Orthogonal to Status; cleared only by an admin.
	NeedsAdminReview bool

	CancellationReason string

	Version int64
}

func (b *Booking) ChildCount() int { return len(b.Children) }

func (b *Booking) IsActive() bool    { return b.Status == BookingActive }
func (b *Booking) IsCancelled() bool { return b.Status == BookingCancelled }

// Cancel flips the booking to cancelled. The record is kept for audit.
func (b *Booking) Cancel(reason string) {
	b.Status = BookingCancelled
	b.CancellationReason = reason
}

// HasChildNamed reports whether the booking contains a child with the given
// first name. Matching is case-insensitive.
func (b *Booking) HasChildNamed(firstName string) bool {
	for _, c := range b.Children {
		if strings.EqualFold(c.FirstName, firstName) {
			return true
		}
	}
	return false
}
