package domain

import "context"

// Repository contracts. GetByID returns (nil, nil) when the entity is
// absent; callers decide whether absence is an error. Save is an upsert:
// a zero id means create (the implementation assigns the id), otherwise
// overwrite. Delete fails with a not_found error when the id is absent.

// WorkshopRepository defines data access for workshops.
type WorkshopRepository interface {
	GetByID(ctx context.Context, id int64) (*Workshop, error)
	ListAll(ctx context.Context) ([]Workshop, error)
	Save(ctx context.Context, w *Workshop) (*Workshop, error)
	Delete(ctx context.Context, id int64) error
}

// BookingRepository defines data access for bookings. The per-workshop and
// per-guardian listings exist so duplicate detection and cascade operations
// never load the full table.
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*Booking, error)
	ListAll(ctx context.Context) ([]Booking, error)
	ListByWorkshop(ctx context.Context, workshopID int64) ([]Booking, error)
	ListByGuardian(ctx context.Context, guardianID int64) ([]Booking, error)
	Save(ctx context.Context, b *Booking) (*Booking, error)
	Delete(ctx context.Context, id int64) error
}

// GuardianRepository defines data access for guardians.
type GuardianRepository interface {
	GetByID(ctx context.Context, id int64) (*Guardian, error)
	FindByEmail(ctx context.Context, email string) (*Guardian, error)
	ListAll(ctx context.Context) ([]Guardian, error)
	Save(ctx context.Context, g *Guardian) (*Guardian, error)
	Delete(ctx context.Context, id int64) error
}
