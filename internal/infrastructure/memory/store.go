// Package memory is the in-memory reference implementation of the
// repository and UnitOfWork contracts. It exists to validate the core
// deterministically without a real datastore and is interchangeable with
// the SQL implementation.
package memory

import (
	"sync"
	"sync/atomic"

	"workshop-booking/internal/domain"
	"workshop-booking/pkg/metrics"
)

// Store holds the shared entity tables. Only a committing UnitOfWork may
// mutate them; every UnitOfWork works on private copies until commit.
type Store struct {
	// commitMu linearizes commits. It is held only while one write set is
	// validated and applied, which bounds contention.
	commitMu sync.Mutex

	// mu guards the maps for snapshot reads vs. commit writes.
	mu        sync.RWMutex
	workshops map[int64]domain.Workshop
	bookings  map[int64]domain.Booking
	guardians map[int64]domain.Guardian

	// Id sequences are store-wide, like database autoincrements, so two
	// open units of work can never hand out the same id.
	workshopSeq atomic.Int64
	bookingSeq  atomic.Int64
	guardianSeq atomic.Int64

	mCommits   *metrics.Counter
	mConflicts *metrics.Counter
	mRollbacks *metrics.Counter
}

func NewStore() *Store {
	return &Store{
		workshops:  make(map[int64]domain.Workshop),
		bookings:   make(map[int64]domain.Booking),
		guardians:  make(map[int64]domain.Guardian),
		mCommits:   metrics.Default.Counter("uow_commit_total", "Total number of committed units of work"),
		mConflicts: metrics.Default.Counter("uow_commit_conflict_total", "Total number of commits rejected on stale versions"),
		mRollbacks: metrics.Default.Counter("uow_rollback_total", "Total number of rolled back units of work"),
	}
}

func (s *Store) nextWorkshopID() int64 { return s.workshopSeq.Add(1) }
func (s *Store) nextBookingID() int64  { return s.bookingSeq.Add(1) }
func (s *Store) nextGuardianID() int64 { return s.guardianSeq.Add(1) }

// snapshot copies all three tables under the read lock. Entity values are
// deep-copied so a working copy can never alias shared state.
func (s *Store) snapshot() (map[int64]domain.Workshop, map[int64]domain.Booking, map[int64]domain.Guardian) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws := make(map[int64]domain.Workshop, len(s.workshops))
	for id, w := range s.workshops {
		ws[id] = w
	}
	bs := make(map[int64]domain.Booking, len(s.bookings))
	for id, b := range s.bookings {
		bs[id] = cloneBooking(b)
	}
	gs := make(map[int64]domain.Guardian, len(s.guardians))
	for id, g := range s.guardians {
		gs[id] = g
	}
	return ws, bs, gs
}

// cloneBooking copies the slice and pointer fields; Workshop and Guardian
// are plain value types and copy by assignment.
func cloneBooking(b domain.Booking) domain.Booking {
	if b.Children != nil {
		children := make([]domain.Child, len(b.Children))
		copy(children, b.Children)
		b.Children = children
	}
	if b.GuardianID != nil {
		id := *b.GuardianID
		b.GuardianID = &id
	}
	return b
}
