package users

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/observability"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/security"
	apperrors "github.com/vipin760/hand-pass-BE/internal/shared/errors"
	"github.com/vipin760/hand-pass-BE/internal/shared/validator"
	"golang.org/x/crypto/bcrypt"

	"github.com/go-sql-driver/mysql"
)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger, err := observability.NewLogger("error", "console")
	require.NoError(t, err)

	svc := NewService(
		NewStore(db),
		security.NewPasswordService(bcrypt.MinCost),
		validator.New(),
		observability.NewAuditLogger(logger),
		logger,
	)
	return svc, mock
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "email", "password_hash", "role", "department", "active", "created_at", "updated_at",
	})
}

func TestService_Create(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), "Jordan Lee", "jordan@company.com", sqlmock.AnyArg(), "employee", "Engineering", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	resp, err := svc.Create(context.Background(), CreateUserRequest{
		Name:       "Jordan Lee",
		Email:      "jordan@company.com",
		Password:   "Str0ngPass!",
		Role:       "employee",
		Department: "Engineering",
	})
	require.NoError(t, err)
	assert.Equal(t, "Jordan Lee", resp.Name)
	assert.True(t, resp.Active)
	assert.NotEmpty(t, resp.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Create_DuplicateEmail(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Name:     "Jordan Lee",
		Email:    "jordan@company.com",
		Password: "Str0ngPass!",
		Role:     "employee",
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeConflict, appErr.Code)
}

func TestService_Get_NotFound(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs("missing").
		WillReturnRows(userRows())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
}

func TestService_ListActiveAttendees_ExcludesRoles(t *testing.T) {
	svc, mock := newTestService(t)

	now := time.Now()
	rows := userRows().
		AddRow("u-1", "Amina Patel", "amina@company.com", "x", "employee", "Sales", true, now, nil).
		AddRow("u-2", "Chen Wei", "chen@company.com", "x", "manager", "Ops", true, now, nil)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE active = 1 AND role NOT IN").
		WithArgs("admin", "superadmin").
		WillReturnRows(rows)

	list, err := svc.ListActiveAttendees(context.Background(), []string{"admin", "superadmin"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Amina Patel", list[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Update(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs("u-1").
		WillReturnRows(userRows().
			AddRow("u-1", "Amina Patel", "amina@company.com", "x", "employee", "Sales", true, time.Now(), nil))

	mock.ExpectExec("UPDATE users SET").
		WithArgs("Amina P.", "manager", "Sales", true, sqlmock.AnyArg(), "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	resp, err := svc.Update(context.Background(), "u-1", UpdateUserRequest{
		Name: "Amina P.",
		Role: "manager",
	})
	require.NoError(t, err)
	assert.Equal(t, "Amina P.", resp.Name)
	assert.Equal(t, "manager", resp.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Delete_NotFound(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectExec("DELETE FROM users").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
}
