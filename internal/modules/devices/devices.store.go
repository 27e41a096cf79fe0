package devices

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

const deviceColumns = "id, sn, name, location, online, last_heartbeat, created_at, updated_at"

func scanDevice(row interface{ Scan(...interface{}) error }) (*Device, error) {
	var d Device
	var lastHeartbeat, updatedAt sql.NullTime
	err := row.Scan(&d.ID, &d.SN, &d.Name, &d.Location, &d.Online, &lastHeartbeat, &d.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if lastHeartbeat.Valid {
		d.LastHeartbeat = &lastHeartbeat.Time
	}
	if updatedAt.Valid {
		d.UpdatedAt = &updatedAt.Time
	}
	return &d, nil
}

func (s *Store) Create(ctx context.Context, d *Device) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO devices (id, sn, name, location, online, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		d.ID, d.SN, d.Name, d.Location, d.Online, d.CreatedAt,
	)
	return err
}

func (s *Store) GetByID(ctx context.Context, id string) (*Device, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE id = ?", id)
	return scanDevice(row)
}

func (s *Store) GetBySN(ctx context.Context, sn string) (*Device, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE sn = ?", sn)
	return scanDevice(row)
}

func (s *Store) List(ctx context.Context, q ListDevicesQuery) ([]*Device, error) {
	var (
		where []string
		args  []interface{}
	)
	if q.Online != nil {
		where = append(where, "online = ?")
		args = append(args, *q.Online)
	}

	query := "SELECT " + deviceColumns + " FROM devices"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY sn ASC LIMIT ? OFFSET ?"

	limit := q.Limit
	if limit == 0 {
		limit = 50
	}
	args = append(args, limit, q.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

func (s *Store) Update(ctx context.Context, d *Device) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		"UPDATE devices SET name = ?, location = ?, updated_at = ? WHERE id = ?",
		d.Name, d.Location, now, d.ID,
	)
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
	d.UpdatedAt = &now
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM devices WHERE id = ?", id)
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

// RecordHeartbeat stamps the device online with the given time. Returns
// sql.ErrNoRows when the serial number is not registered.
func (s *Store) RecordHeartbeat(ctx context.Context, sn string, seenAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE devices SET online = 1, last_heartbeat = ? WHERE sn = ?",
		seenAt, sn,
	)
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

// MarkOfflineStale flips devices offline whose last heartbeat is older
// than the cutoff. The WHERE clause makes the sweep idempotent: a second
// pass over the same rows matches nothing.
func (s *Store) MarkOfflineStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE devices SET online = 0, updated_at = ? WHERE online = 1 AND last_heartbeat < ?",
		time.Now().UTC(), cutoff,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountOnline returns the number of devices currently marked online.
func (s *Store) CountOnline(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM devices WHERE online = 1").Scan(&n)
	return n, err
}
