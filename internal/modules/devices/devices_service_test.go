package devices

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/observability"
	apperrors "github.com/vipin760/hand-pass-BE/internal/shared/errors"
	"github.com/vipin760/hand-pass-BE/internal/shared/validator"

	"github.com/go-sql-driver/mysql"
)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger, err := observability.NewLogger("error", "console")
	require.NoError(t, err)

	return NewService(NewStore(db), validator.New(), observability.NewMetrics(), logger), mock
}

func deviceRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "sn", "name", "location", "online", "last_heartbeat", "created_at", "updated_at",
	})
}

func TestService_Register(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectExec("INSERT INTO devices").
		WithArgs(sqlmock.AnyArg(), "PS-1001", "Main entrance", "Building A", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	device, err := svc.Register(context.Background(), RegisterDeviceRequest{
		SN:       "PS-1001",
		Name:     "Main entrance",
		Location: "Building A",
	})
	require.NoError(t, err)
	assert.Equal(t, "PS-1001", device.SN)
	assert.False(t, device.Online)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Register_DuplicateSN(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectExec("INSERT INTO devices").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := svc.Register(context.Background(), RegisterDeviceRequest{
		SN:   "PS-1001",
		Name: "Main entrance",
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeConflict, appErr.Code)
}

func TestService_Heartbeat(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectExec("UPDATE devices SET online = 1, last_heartbeat").
		WithArgs(sqlmock.AnyArg(), "PS-1001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	resp, err := svc.Heartbeat(context.Background(), HeartbeatRequest{SN: "PS-1001"})
	require.NoError(t, err)
	assert.Equal(t, "PS-1001", resp.SN)
	assert.True(t, resp.Online)
	assert.WithinDuration(t, time.Now().UTC(), resp.SeenAt, time.Minute)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Heartbeat_UnknownDevice(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectExec("UPDATE devices SET online = 1, last_heartbeat").
		WithArgs(sqlmock.AnyArg(), "PS-9999").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := svc.Heartbeat(context.Background(), HeartbeatRequest{SN: "PS-9999"})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
}

func TestService_SweepStale(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectExec("UPDATE devices SET online = 0, updated_at = (.+) WHERE online = 1 AND last_heartbeat").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := svc.SweepStale(context.Background(), 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_SweepStale_Idempotent(t *testing.T) {
	svc, mock := newTestService(t)

	// First sweep flips two stale devices
	mock.ExpectExec("UPDATE devices SET online = 0").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	// Second sweep matches nothing: the rows are already offline
	mock.ExpectExec("UPDATE devices SET online = 0").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	n, err := svc.SweepStale(context.Background(), 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = svc.SweepStale(context.Background(), 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Get_NotFound(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT (.+) FROM devices WHERE id").
		WithArgs("missing").
		WillReturnRows(deviceRows())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
}
