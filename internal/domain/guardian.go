package domain

// Guardian is the adult responsible for a booking. Shared by reference
// across bookings; its lifetime is independent of any single booking.
type Guardian struct {
	ID       int64
	Name     string
	Email    string
	Phone    string
	Postcode string

	Version int64
}

func (g *Guardian) HasValidContactInfo() bool {
	return g.Name != "" && g.Email != "" && g.Phone != "" && g.Postcode != ""
}
