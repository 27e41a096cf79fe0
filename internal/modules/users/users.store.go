package users

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/vipin760/hand-pass-BE/internal/infrastructure/database"
)

// Store runs user queries against a DBTX, which may be the pooled
// connection, the circuit breaker wrapper, or a transaction.
type Store struct {
	db database.DBTX
}

func NewStore(db database.DBTX) *Store {
	return &Store{db: db}
}

const userColumns = "id, name, email, password_hash, role, department, active, created_at, updated_at"

func scanUser(row interface{ Scan(...interface{}) error }) (*User, error) {
	var u User
	var updatedAt sql.NullTime
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Department, &u.Active, &u.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if updatedAt.Valid {
		u.UpdatedAt = &updatedAt.Time
	}
	return &u, nil
}

func (s *Store) Create(ctx context.Context, u *User) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash, role, department, active, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Department, u.Active, u.CreatedAt,
	)
	return err
}

func (s *Store) GetByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row)
}

func (s *Store) List(ctx context.Context, q ListUsersQuery) ([]*User, error) {
	var (
		where []string
		args  []interface{}
	)
	if q.Role != "" {
		where = append(where, "role = ?")
		args = append(args, q.Role)
	}
	if q.Active != nil {
		where = append(where, "active = ?")
		args = append(args, *q.Active)
	}

	query := "SELECT " + userColumns + " FROM users"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name ASC LIMIT ? OFFSET ?"

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

	var result []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// ListActive returns active users excluding the given roles. The
// reconciliation engine uses this as its population of attendees.
func (s *Store) ListActive(ctx context.Context, excludedRoles []string) ([]*User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE active = 1"
	var args []interface{}
	if len(excludedRoles) > 0 {
		placeholders := strings.Repeat("?,", len(excludedRoles))
		query += " AND role NOT IN (" + placeholders[:len(placeholders)-1] + ")"
		for _, r := range excludedRoles {
			args = append(args, r)
		}
	}
	query += " ORDER BY name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (s *Store) Update(ctx context.Context, u *User) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET name = ?, role = ?, department = ?, active = ?, updated_at = ? WHERE id = ?",
		u.Name, u.Role, u.Department, u.Active, now, u.ID,
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
	u.UpdatedAt = &now
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
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
