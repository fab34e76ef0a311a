// Package database wraps database/sql for MySQL with pooled connections,
// per-call timeouts and the queries of the booking schema. All writes take
// an explicit *sql.Tx so the SQL UnitOfWork controls transaction scope.
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"workshop-booking/internal/domain"
	"workshop-booking/pkg/config"
	errs "workshop-booking/pkg/errors"
)

const (
	readTimeoutDefault  = 8 * time.Second
	writeTimeoutDefault = 6 * time.Second
)

type DB struct {
	conn         *sql.DB
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func New(databaseURL string) (*DB, error) {
	conn, err := sql.Open("mysql", databaseURL)
	if err != nil {
		return nil, err
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(10)
	conn.SetConnMaxLifetime(10 * time.Minute)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	return &DB{
		conn:         conn,
		readTimeout:  readTimeoutDefault,
		writeTimeout: writeTimeoutDefault,
	}, nil
}

// NewWithConfig creates a database connection with pool settings from config.
func NewWithConfig(databaseURL string, cfg *config.Config) (*DB, error) {
	conn, err := sql.Open("mysql", databaseURL)
	if err != nil {
		return nil, err
	}

	conn.SetMaxOpenConns(cfg.DBMaxOpenConns)
	conn.SetMaxIdleConns(cfg.DBMaxIdleConns)
	conn.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetime) * time.Minute)
	conn.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTime) * time.Minute)

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	rt := cfg.DBReadTimeout
	if rt == 0 {
		rt = readTimeoutDefault
	}
	wt := cfg.DBWriteTimeout
	if wt == 0 {
		wt = writeTimeoutDefault
	}

	return &DB{conn: conn, readTimeout: rt, writeTimeout: wt}, nil
}

func (db *DB) Conn() *sql.DB { return db.conn }

func (db *DB) Close() error { return db.conn.Close() }

func (db *DB) withReadTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, db.readTimeout)
}

func (db *DB) withWriteTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, db.writeTimeout)
}

const workshopColumns = `id, title, date, start_time, location,
        max_families, max_children, current_families, current_children, version`

func scanWorkshop(s interface{ Scan(...any) error }) (*domain.Workshop, error) {
	var w domain.Workshop
	var date string
	if err := s.Scan(&w.ID, &w.Title, &date, &w.StartTime, &w.Location,
		&w.MaxFamilies, &w.MaxChildren, &w.CurrentFamilies, &w.CurrentChildren, &w.Version); err != nil {
		return nil, err
	}
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, err
	}
	w.Date = d
	return &w, nil
}

// GetWorkshopTx reads one workshop inside the transaction with a row lock,
// so capacity checks and the later version bump see a stable row.
func (db *DB) GetWorkshopTx(ctx context.Context, tx *sql.Tx, id int64) (*domain.Workshop, error) {
	ctx, cancel := db.withReadTimeout(ctx)
	defer cancel()

	query := `SELECT ` + workshopColumns + ` FROM workshops WHERE id = ? FOR UPDATE`
	w, err := scanWorkshop(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewDB("database.GetWorkshopTx", "failed to read workshop", err)
	}
	return w, nil
}

func (db *DB) ListWorkshopsTx(ctx context.Context, tx *sql.Tx) ([]domain.Workshop, error) {
	ctx, cancel := db.withReadTimeout(ctx)
	defer cancel()

	query := `SELECT ` + workshopColumns + ` FROM workshops ORDER BY date ASC, start_time ASC`
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, errs.NewDB("database.ListWorkshopsTx", "failed to list workshops", err)
	}
	defer rows.Close()

	var out []domain.Workshop
	for rows.Next() {
		w, err := scanWorkshop(rows)
		if err != nil {
			return nil, errs.NewDB("database.ListWorkshopsTx", "failed to scan workshop", err)
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

func (db *DB) InsertWorkshopTx(ctx context.Context, tx *sql.Tx, w *domain.Workshop) (int64, error) {
	ctx, cancel := db.withWriteTimeout(ctx)
	defer cancel()

	res, err := tx.ExecContext(ctx, `INSERT INTO workshops
        (title, date, start_time, location, max_families, max_children,
         current_families, current_children, version)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		w.Title, w.Date.Format("2006-01-02"), w.StartTime, w.Location,
		w.MaxFamilies, w.MaxChildren, w.CurrentFamilies, w.CurrentChildren)
	if err != nil {
		return 0, errs.NewDB("database.InsertWorkshopTx", "failed to insert workshop", err)
	}
	return res.LastInsertId()
}

// UpdateWorkshopTx writes a workshop with a version check. A zero row count
// means the version moved underneath and the transaction must be abandoned.
func (db *DB) UpdateWorkshopTx(ctx context.Context, tx *sql.Tx, w *domain.Workshop) (bool, error) {
	ctx, cancel := db.withWriteTimeout(ctx)
	defer cancel()

	res, err := tx.ExecContext(ctx, `UPDATE workshops SET
        title = ?, date = ?, start_time = ?, location = ?,
        max_families = ?, max_children = ?, current_families = ?, current_children = ?,
        version = version + 1
        WHERE id = ? AND version = ?`,
		w.Title, w.Date.Format("2006-01-02"), w.StartTime, w.Location,
		w.MaxFamilies, w.MaxChildren, w.CurrentFamilies, w.CurrentChildren,
		w.ID, w.Version)
	if err != nil {
		return false, errs.NewDB("database.UpdateWorkshopTx", "failed to update workshop", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errs.NewDB("database.UpdateWorkshopTx", "failed to read row count", err)
	}
	return n == 1, nil
}

func (db *DB) DeleteWorkshopTx(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	ctx, cancel := db.withWriteTimeout(ctx)
	defer cancel()

	res, err := tx.ExecContext(ctx, `DELETE FROM workshops WHERE id = ?`, id)
	if err != nil {
		return false, errs.NewDB("database.DeleteWorkshopTx", "failed to delete workshop", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errs.NewDB("database.DeleteWorkshopTx", "failed to read row count", err)
	}
	return n == 1, nil
}

const bookingColumns = `id, workshop_id, guardian_id, guardian_name, guardian_email,
        guardian_phone, guardian_postcode, children, status, needs_admin_review,
        cancellation_reason, version`

func scanBooking(s interface{ Scan(...any) error }) (*domain.Booking, error) {
	var b domain.Booking
	var guardianID sql.NullInt64
	var childrenJSON []byte
	var status string
	if err := s.Scan(&b.ID, &b.WorkshopID, &guardianID, &b.GuardianName, &b.GuardianEmail,
		&b.GuardianPhone, &b.GuardianPostcode, &childrenJSON, &status, &b.NeedsAdminReview,
		&b.CancellationReason, &b.Version); err != nil {
		return nil, err
	}
	if guardianID.Valid {
		id := guardianID.Int64
		b.GuardianID = &id
	}
	if len(childrenJSON) > 0 {
		if err := json.Unmarshal(childrenJSON, &b.Children); err != nil {
			return nil, err
		}
	}
	b.Status = domain.BookingStatus(status)
	return &b, nil
}

func (db *DB) GetBookingTx(ctx context.Context, tx *sql.Tx, id int64) (*domain.Booking, error) {
	ctx, cancel := db.withReadTimeout(ctx)
	defer cancel()

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? FOR UPDATE`
	b, err := scanBooking(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewDB("database.GetBookingTx", "failed to read booking", err)
	}
	return b, nil
}

func (db *DB) listBookingsTx(ctx context.Context, tx *sql.Tx, where string, args ...any) ([]domain.Booking, error) {
	ctx, cancel := db.withReadTimeout(ctx)
	defer cancel()

	query := `SELECT ` + bookingColumns + ` FROM bookings ` + where + ` ORDER BY id ASC`
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.NewDB("database.listBookingsTx", "failed to list bookings", err)
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, errs.NewDB("database.listBookingsTx", "failed to scan booking", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (db *DB) ListBookingsTx(ctx context.Context, tx *sql.Tx) ([]domain.Booking, error) {
	return db.listBookingsTx(ctx, tx, "")
}

func (db *DB) ListBookingsByWorkshopTx(ctx context.Context, tx *sql.Tx, workshopID int64) ([]domain.Booking, error) {
	return db.listBookingsTx(ctx, tx, "WHERE workshop_id = ?", workshopID)
}

func (db *DB) ListBookingsByGuardianTx(ctx context.Context, tx *sql.Tx, guardianID int64) ([]domain.Booking, error) {
	return db.listBookingsTx(ctx, tx, "WHERE guardian_id = ?", guardianID)
}

func (db *DB) InsertBookingTx(ctx context.Context, tx *sql.Tx, b *domain.Booking) (int64, error) {
	ctx, cancel := db.withWriteTimeout(ctx)
	defer cancel()

	children, err := json.Marshal(b.Children)
	if err != nil {
		return 0, errs.NewDB("database.InsertBookingTx", "failed to encode children", err)
	}
	var guardianID any
	if b.GuardianID != nil {
		guardianID = *b.GuardianID
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO bookings
        (workshop_id, guardian_id, guardian_name, guardian_email, guardian_phone,
         guardian_postcode, children, status, needs_admin_review, cancellation_reason, version)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		b.WorkshopID, guardianID, b.GuardianName, b.GuardianEmail, b.GuardianPhone,
		b.GuardianPostcode, children, string(b.Status), b.NeedsAdminReview, b.CancellationReason)
	if err != nil {
		return 0, errs.NewDB("database.InsertBookingTx", "failed to insert booking", err)
	}
	return res.LastInsertId()
}

func (db *DB) UpdateBookingTx(ctx context.Context, tx *sql.Tx, b *domain.Booking) (bool, error) {
	ctx, cancel := db.withWriteTimeout(ctx)
	defer cancel()

	children, err := json.Marshal(b.Children)
	if err != nil {
		return false, errs.NewDB("database.UpdateBookingTx", "failed to encode children", err)
	}
	var guardianID any
	if b.GuardianID != nil {
		guardianID = *b.GuardianID
	}
	res, err := tx.ExecContext(ctx, `UPDATE bookings SET
        workshop_id = ?, guardian_id = ?, guardian_name = ?, guardian_email = ?,
        guardian_phone = ?, guardian_postcode = ?, children = ?, status = ?,
        needs_admin_review = ?, cancellation_reason = ?, version = version + 1
        WHERE id = ? AND version = ?`,
		b.WorkshopID, guardianID, b.GuardianName, b.GuardianEmail,
		b.GuardianPhone, b.GuardianPostcode, children, string(b.Status),
		b.NeedsAdminReview, b.CancellationReason, b.ID, b.Version)
	if err != nil {
		return false, errs.NewDB("database.UpdateBookingTx", "failed to update booking", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errs.NewDB("database.UpdateBookingTx", "failed to read row count", err)
	}
	return n == 1, nil
}

func (db *DB) DeleteBookingTx(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	ctx, cancel := db.withWriteTimeout(ctx)
	defer cancel()

	res, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return false, errs.NewDB("database.DeleteBookingTx", "failed to delete booking", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errs.NewDB("database.DeleteBookingTx", "failed to read row count", err)
	}
	return n == 1, nil
}

const guardianColumns = `id, name, email, phone, postcode, version`

func scanGuardian(s interface{ Scan(...any) error }) (*domain.Guardian, error) {
	var g domain.Guardian
	if err := s.Scan(&g.ID, &g.Name, &g.Email, &g.Phone, &g.Postcode, &g.Version); err != nil {
		return nil, err
	}
	return &g, nil
}

func (db *DB) GetGuardianTx(ctx context.Context, tx *sql.Tx, id int64) (*domain.Guardian, error) {
	ctx, cancel := db.withReadTimeout(ctx)
	defer cancel()

	query := `SELECT ` + guardianColumns + ` FROM guardians WHERE id = ?`
	g, err := scanGuardian(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewDB("database.GetGuardianTx", "failed to read guardian", err)
	}
	return g, nil
}

func (db *DB) FindGuardianByEmailTx(ctx context.Context, tx *sql.Tx, email string) (*domain.Guardian, error) {
	ctx, cancel := db.withReadTimeout(ctx)
	defer cancel()

	query := `SELECT ` + guardianColumns + ` FROM guardians WHERE LOWER(email) = LOWER(?)`
	g, err := scanGuardian(tx.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewDB("database.FindGuardianByEmailTx", "failed to find guardian", err)
	}
	return g, nil
}

func (db *DB) ListGuardiansTx(ctx context.Context, tx *sql.Tx) ([]domain.Guardian, error) {
	ctx, cancel := db.withReadTimeout(ctx)
	defer cancel()

	query := `SELECT ` + guardianColumns + ` FROM guardians ORDER BY id ASC`
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, errs.NewDB("database.ListGuardiansTx", "failed to list guardians", err)
	}
	defer rows.Close()

	var out []domain.Guardian
	for rows.Next() {
		g, err := scanGuardian(rows)
		if err != nil {
			return nil, errs.NewDB("database.ListGuardiansTx", "failed to scan guardian", err)
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

func (db *DB) InsertGuardianTx(ctx context.Context, tx *sql.Tx, g *domain.Guardian) (int64, error) {
	ctx, cancel := db.withWriteTimeout(ctx)
	defer cancel()

	res, err := tx.ExecContext(ctx, `INSERT INTO guardians
        (name, email, phone, postcode, version) VALUES (?, ?, ?, ?, 1)`,
		g.Name, g.Email, g.Phone, g.Postcode)
	if err != nil {
		return 0, errs.NewDB("database.InsertGuardianTx", "failed to insert guardian", err)
	}
	return res.LastInsertId()
}

func (db *DB) UpdateGuardianTx(ctx context.Context, tx *sql.Tx, g *domain.Guardian) (bool, error) {
	ctx, cancel := db.withWriteTimeout(ctx)
	defer cancel()

	res, err := tx.ExecContext(ctx, `UPDATE guardians SET
        name = ?, email = ?, phone = ?, postcode = ?, version = version + 1
        WHERE id = ? AND version = ?`,
		g.Name, g.Email, g.Phone, g.Postcode, g.ID, g.Version)
	if err != nil {
		return false, errs.NewDB("database.UpdateGuardianTx", "failed to update guardian", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errs.NewDB("database.UpdateGuardianTx", "failed to read row count", err)
	}
	return n == 1, nil
}

func (db *DB) DeleteGuardianTx(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	ctx, cancel := db.withWriteTimeout(ctx)
	defer cancel()

	res, err := tx.ExecContext(ctx, `DELETE FROM guardians WHERE id = ?`, id)
	if err != nil {
		return false, errs.NewDB("database.DeleteGuardianTx", "failed to delete guardian", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errs.NewDB("database.DeleteGuardianTx", "failed to read row count", err)
	}
	return n == 1, nil
}

// Ping verifies connectivity; used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := db.withReadTimeout(ctx)
	defer cancel()
	return db.conn.PingContext(ctx)
}
