package calendar

import (
	"context"
	"database/sql"
	"time"

	"github.com/vipin760/hand-pass-BE/internal/infrastructure/database"
)

type Store struct {
	db database.DBTX
}

func NewStore(db database.DBTX) *Store {
	return &Store{db: db}
}

const calendarColumns = "id, name, start_time, end_time, grace_minutes, weekly_off_days, active, created_at, updated_at"

func scanCalendar(row interface{ Scan(...interface{}) error }) (*WorkCalendar, error) {
	var c WorkCalendar
	var offDays string
	var updatedAt sql.NullTime
	err := row.Scan(&c.ID, &c.Name, &c.StartTime, &c.EndTime, &c.GraceMinutes, &offDays, &c.Active, &c.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.WeeklyOffDays = offDaysFromCSV(offDays)
	if updatedAt.Valid {
		c.UpdatedAt = &updatedAt.Time
	}
	return &c, nil
}

func (s *Store) CreateCalendar(ctx context.Context, c *WorkCalendar) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO work_calendars (id, name, start_time, end_time, grace_minutes, weekly_off_days, active, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		c.ID, c.Name, c.StartTime, c.EndTime, c.GraceMinutes, offDaysToCSV(c.WeeklyOffDays), c.Active, c.CreatedAt,
	)
	return err
}

func (s *Store) GetCalendar(ctx context.Context, id string) (*WorkCalendar, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+calendarColumns+" FROM work_calendars WHERE id = ?", id)
	return scanCalendar(row)
}

// GetActiveCalendar returns the single active calendar, or sql.ErrNoRows
// when none is configured.
func (s *Store) GetActiveCalendar(ctx context.Context) (*WorkCalendar, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+calendarColumns+" FROM work_calendars WHERE active = 1 LIMIT 1")
	return scanCalendar(row)
}

func (s *Store) ListCalendars(ctx context.Context) ([]*WorkCalendar, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+calendarColumns+" FROM work_calendars ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*WorkCalendar
	for rows.Next() {
		c, err := scanCalendar(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// ActivateCalendarTx flips the single-active flag inside a transaction
// so two concurrent activations cannot leave two active calendars.
func ActivateCalendarTx(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, "UPDATE work_calendars SET active = 0 WHERE active = 1"); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "UPDATE work_calendars SET active = 1, updated_at = ? WHERE id = ?", time.Now().UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) DeleteCalendar(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM work_calendars WHERE id = ? AND active = 0", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) CreateHoliday(ctx context.Context, h *Holiday) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO holidays (id, name, date, created_at) VALUES (?, ?, ?, ?)",
		h.ID, h.Name, h.Date, h.CreatedAt,
	)
	return err
}

func (s *Store) ListHolidays(ctx context.Context, from, to string) ([]*Holiday, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, date, created_at FROM holidays WHERE date BETWEEN ? AND ? ORDER BY date ASC",
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Holiday
	for rows.Next() {
		var h Holiday
		// The date column is DATE and the driver runs with parseTime,
		// so it arrives as time.Time and has to be reformatted to keep
		// the plain YYYY-MM-DD value consumers key on.
		var date time.Time
		if err := rows.Scan(&h.ID, &h.Name, &date, &h.CreatedAt); err != nil {
			return nil, err
		}
		h.Date = date.Format("2006-01-02")
		result = append(result, &h)
	}
	return result, rows.Err()
}

func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
