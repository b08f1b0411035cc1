package appointment

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"cherish/internal/adapters/storage"
	domain "cherish/internal/domain/appointment"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const appointmentColumns = `id, parent_name, child_name, email, phone, child_age,
		preferred_date, preferred_time, message, status, submitted_at`

// GetByID retrieves an appointment by ID.
// PRE: id is non-zero
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (domain.Appointment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+appointmentColumns+` FROM appointment WHERE id = ?`, id)
	return scanAppointment(row)
}

// Save inserts or updates an appointment.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, a domain.Appointment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO appointment (id, parent_name, child_name, email, phone, child_age,
		   preferred_date, preferred_time, message, status, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   parent_name=excluded.parent_name, child_name=excluded.child_name,
		   email=excluded.email, phone=excluded.phone, child_age=excluded.child_age,
		   preferred_date=excluded.preferred_date, preferred_time=excluded.preferred_time,
		   message=excluded.message, status=excluded.status, submitted_at=excluded.submitted_at`,
		a.ID, a.ParentName, a.ChildName, a.Email, a.Phone, a.ChildAge,
		a.PreferredDate, a.PreferredTime, a.Message, a.Status,
		a.SubmittedAt.UTC().Format(timeLayout))
	return err
}

// Delete removes an appointment by ID.
// PRE: id is non-zero
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM appointment WHERE id = ?`, id)
	return err
}

// List returns all appointments ordered by submission time, newest first.
// POST: Returns appointments ordered by submitted_at DESC
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Appointment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+appointmentColumns+` FROM appointment ORDER BY submitted_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appointments []domain.Appointment
	for rows.Next() {
		var a domain.Appointment
		var submittedAt string
		if err := rows.Scan(&a.ID, &a.ParentName, &a.ChildName, &a.Email, &a.Phone, &a.ChildAge,
			&a.PreferredDate, &a.PreferredTime, &a.Message, &a.Status, &submittedAt); err != nil {
			return nil, err
		}
		a.SubmittedAt = parseTime(submittedAt, a.ID)
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}

// scanAppointment scans a single row into an Appointment.
func scanAppointment(row *sql.Row) (domain.Appointment, error) {
	var a domain.Appointment
	var submittedAt string
	err := row.Scan(&a.ID, &a.ParentName, &a.ChildName, &a.Email, &a.Phone, &a.ChildAge,
		&a.PreferredDate, &a.PreferredTime, &a.Message, &a.Status, &submittedAt)
	if err != nil {
		return domain.Appointment{}, err
	}
	a.SubmittedAt = parseTime(submittedAt, a.ID)
	return a, nil
}

// parseTime parses a stored timestamp, logging a warning on failure.
func parseTime(raw string, id int64) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		slog.Warn("appointment: failed to parse time", "appointment_id", id, "raw", raw, "error", err)
	}
	return t
}
