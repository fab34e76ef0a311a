// Package notify carries structured notification intents out of the core.
// Intents are emitted only after a successful commit and delivery is
// fire-and-forget: a failed notification never rolls back the transaction
// that produced it.
package notify

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"workshop-booking/internal/domain"
)

// IntentKind says why the guardian or admin is being contacted.
type IntentKind string

const (
	KindConfirmation       IntentKind = "confirmation"
	KindAdminNotice        IntentKind = "admin_notice"
	KindCancellationNotice IntentKind = "cancellation_notice"
)

// WorkshopInfo is the workshop slice of an intent payload.
type WorkshopInfo struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Location string `json:"location"`
}

// GuardianInfo is the guardian slice of an intent payload.
type GuardianInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Postcode string `json:"postcode"`
}

// ChildInfo is one child in an intent payload.
type ChildInfo struct {
	FirstName string `json:"first_name"`
	Age       int    `json:"age"`
}

// Intent is one notification to be delivered. Keep payloads small and
// JSON-friendly.
type Intent struct {
	ID       string       `json:"id"`
	Kind     IntentKind   `json:"kind"`
	Ts       time.Time    `json:"ts"`
	Workshop WorkshopInfo `json:"workshop"`
	Guardian GuardianInfo `json:"guardian"`
	Children []ChildInfo  `json:"children,omitempty"`
}

func (i Intent) MarshalData() ([]byte, error) { return json.Marshal(i) }

// NewIntent assembles an intent from domain entities. The guardian contact
// comes from the booking snapshot when a booking is involved, so later
// guardian edits do not rewrite what was promised at booking time.
func NewIntent(kind IntentKind, w *domain.Workshop, guardian GuardianInfo, children []domain.Child) Intent {
	ci := make([]ChildInfo, 0, len(children))
	for _, c := range children {
		ci = append(ci, ChildInfo{FirstName: c.FirstName, Age: c.Age})
	}
	return Intent{
		ID:   uuid.NewString(),
		Kind: kind,
		Ts:   time.Now().UTC(),
		Workshop: WorkshopInfo{
			Title:    w.Title,
			Date:     w.Date.Format("2006-01-02"),
			Time:     w.StartTime,
			Location: w.Location,
		},
		Guardian: guardian,
		Children: ci,
	}
}

// GuardianInfoFromBooking snapshots the contact fields stored on a booking.
func GuardianInfoFromBooking(b *domain.Booking) GuardianInfo {
	return GuardianInfo{
		Name:     b.GuardianName,
		Email:    b.GuardianEmail,
		Phone:    b.GuardianPhone,
		Postcode: b.GuardianPostcode,
	}
}

// GuardianInfoFromEntity snapshots a guardian record.
func GuardianInfoFromEntity(g *domain.Guardian) GuardianInfo {
	return GuardianInfo{Name: g.Name, Email: g.Email, Phone: g.Phone, Postcode: g.Postcode}
}

// Notifier delivers one intent. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Notify(intent Intent) error
}
