package events

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/vipin760/hand-pass-BE/internal/infrastructure/database"
)

type Store struct {
	db database.DBTX
}

func NewStore(db database.DBTX) *Store {
	return &Store{db: db}
}

const logColumns = "id, sn, user_id, name, palm_type, status, device_date_time, created_at"

func (s *Store) Create(ctx context.Context, e *AccessLog) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO device_access_logs (id, sn, user_id, name, palm_type, status, device_date_time, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.SN, e.UserID, e.Name, e.PalmType, e.Status, e.DeviceDateTime, e.CreatedAt,
	)
	return err
}

func (s *Store) List(ctx context.Context, q ListEventsQuery) ([]*AccessLog, error) {
	var (
		where []string
		args  []interface{}
	)
	if q.SN != "" {
		where = append(where, "sn = ?")
		args = append(args, q.SN)
	}
	if q.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, q.UserID)
	}
	if q.From != "" {
		where = append(where, "device_date_time >= ?")
		args = append(args, q.From+" 00:00:00")
	}
	if q.To != "" {
		where = append(where, "device_date_time <= ?")
		args = append(args, q.To+" 23:59:59")
	}

	query := "SELECT " + logColumns + " FROM device_access_logs"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY device_date_time DESC LIMIT ? OFFSET ?"

	limit := q.Limit
	if limit == 0 {
		limit = 100
	}
	args = append(args, limit, q.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*AccessLog
	for rows.Next() {
		var e AccessLog
		if err := rows.Scan(&e.ID, &e.SN, &e.UserID, &e.Name, &e.PalmType, &e.Status, &e.DeviceDateTime, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &e)
	}
	return result, rows.Err()
}

// EarliestPunchForUserOnDate returns the first granted scan for the user
// on the given date, or sql.ErrNoRows when there is none.
func (s *Store) EarliestPunchForUserOnDate(ctx context.Context, userID, date string) (time.Time, error) {
	var at sql.NullTime
	err := s.db.QueryRowContext(ctx,
		"SELECT MIN(device_date_time) FROM device_access_logs WHERE user_id = ? AND status = 'granted' AND DATE(device_date_time) = ?",
		userID, date,
	).Scan(&at)
	if err != nil {
		return time.Time{}, err
	}
	if !at.Valid {
		return time.Time{}, sql.ErrNoRows
	}
	return at.Time, nil
}

// EarliestPunchesInRange returns the first granted scan per date for one
// user across [from, to], keyed by date string.
func (s *Store) EarliestPunchesInRange(ctx context.Context, userID, from, to string) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DATE(device_date_time) AS d, MIN(device_date_time) FROM device_access_logs WHERE user_id = ? AND status = 'granted' AND DATE(device_date_time) BETWEEN ? AND ? GROUP BY d",
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]time.Time)
	for rows.Next() {
		// DATE() yields a DATE-typed column, which parseTime turns into
		// a time.Time; reformat so the map keys stay plain YYYY-MM-DD.
		var date time.Time
		var at time.Time
		if err := rows.Scan(&date, &at); err != nil {
			return nil, err
		}
		result[date.Format("2006-01-02")] = at
	}
	return result, rows.Err()
}

// EarliestPunchesForDate returns the first granted scan per user for one
// date, keyed by user ID.
func (s *Store) EarliestPunchesForDate(ctx context.Context, date string) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, MIN(device_date_time) FROM device_access_logs WHERE status = 'granted' AND DATE(device_date_time) = ? GROUP BY user_id",
		date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]time.Time)
	for rows.Next() {
		var userID string
		var at time.Time
		if err := rows.Scan(&userID, &at); err != nil {
			return nil, err
		}
		result[userID] = at
	}
	return result, rows.Err()
}

// MissedPunchUsers returns active users, excluding the given roles, with
// no granted scan on the date at or before the cutoff instant. The LEFT
// JOIN keeps users without a matching scan row; a scan after the cutoff
// does not count as a punch-in.
func (s *Store) MissedPunchUsers(ctx context.Context, date string, cutoff time.Time, excludedRoles []string) ([]*AbsentUser, error) {
	query := `SELECT u.id, u.name, u.email
		FROM users u
		LEFT JOIN device_access_logs l
			ON l.user_id = u.id AND l.status = 'granted' AND DATE(l.device_date_time) = ? AND l.device_date_time <= ?
		WHERE u.active = 1 AND l.id IS NULL`
	args := []interface{}{date, cutoff}

	if len(excludedRoles) > 0 {
		placeholders := strings.Repeat("?,", len(excludedRoles))
		query += " AND u.role NOT IN (" + placeholders[:len(placeholders)-1] + ")"
		for _, r := range excludedRoles {
			args = append(args, r)
		}
	}
	query += " ORDER BY u.name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*AbsentUser
	for rows.Next() {
		var u AbsentUser
		if err := rows.Scan(&u.UserID, &u.Name, &u.Email); err != nil {
			return nil, err
		}
		result = append(result, &u)
	}
	return result, rows.Err()
}
