package events

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/observability"
	apperrors "github.com/vipin760/hand-pass-BE/internal/shared/errors"
	"github.com/vipin760/hand-pass-BE/internal/shared/validator"
)

func newTestService(t *testing.T) (*Service, *Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger, err := observability.NewLogger("error", "console")
	require.NoError(t, err)

	store := NewStore(db)
	return NewService(store, validator.New(), observability.NewMetrics(), logger), store, mock
}

func TestService_Ingest(t *testing.T) {
	svc, _, mock := newTestService(t)

	mock.ExpectExec("INSERT INTO device_access_logs").
		WithArgs(sqlmock.AnyArg(), "PS-1001", "9a6c3e9a-52d4-4f7b-9a55-1f2d3c4b5a69", "Amina Patel", "left", "granted", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	event, err := svc.Ingest(context.Background(), IngestEventRequest{
		SN:             "PS-1001",
		UserID:         "9a6c3e9a-52d4-4f7b-9a55-1f2d3c4b5a69",
		Name:           "Amina Patel",
		PalmType:       "left",
		Status:         "granted",
		DeviceDateTime: "2024-01-24 09:15:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "PS-1001", event.SN)
	assert.Equal(t, 2024, event.DeviceDateTime.Year())
	assert.Equal(t, 9, event.DeviceDateTime.Hour())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Ingest_BadTimestamp(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Ingest(context.Background(), IngestEventRequest{
		SN:             "PS-1001",
		UserID:         "9a6c3e9a-52d4-4f7b-9a55-1f2d3c4b5a69",
		Name:           "Amina Patel",
		PalmType:       "left",
		Status:         "granted",
		DeviceDateTime: "24/01/2024 09:15",
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeBadRequest, appErr.Code)
}

func TestStore_EarliestPunchForUserOnDate(t *testing.T) {
	_, store, mock := newTestService(t)

	at := time.Date(2024, 1, 24, 9, 15, 0, 0, time.Local)
	mock.ExpectQuery("SELECT MIN\\(device_date_time\\) FROM device_access_logs").
		WithArgs("u-1", "2024-01-24").
		WillReturnRows(sqlmock.NewRows([]string{"min"}).AddRow(at))

	got, err := store.EarliestPunchForUserOnDate(context.Background(), "u-1", "2024-01-24")
	require.NoError(t, err)
	assert.Equal(t, at, got)
}

func TestStore_EarliestPunchForUserOnDate_NoPunch(t *testing.T) {
	_, store, mock := newTestService(t)

	mock.ExpectQuery("SELECT MIN\\(device_date_time\\) FROM device_access_logs").
		WithArgs("u-1", "2024-01-24").
		WillReturnRows(sqlmock.NewRows([]string{"min"}).AddRow(nil))

	_, err := store.EarliestPunchForUserOnDate(context.Background(), "u-1", "2024-01-24")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStore_MissedPunchUsers(t *testing.T) {
	_, store, mock := newTestService(t)

	rows := sqlmock.NewRows([]string{"id", "name", "email"}).
		AddRow("u-1", "Amina Patel", "amina@company.com").
		AddRow("u-2", "Chen Wei", "chen@company.com")

	cutoff := time.Date(2024, 1, 24, 9, 0, 0, 0, time.Local)
	mock.ExpectQuery("LEFT JOIN device_access_logs").
		WithArgs("2024-01-24", cutoff, "admin").
		WillReturnRows(rows)

	absent, err := store.MissedPunchUsers(context.Background(), "2024-01-24", cutoff, []string{"admin"})
	require.NoError(t, err)
	require.Len(t, absent, 2)
	assert.Equal(t, "Amina Patel", absent[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_EarliestPunchesInRange(t *testing.T) {
	_, store, mock := newTestService(t)

	// DATE() columns come back from the driver as midnight time.Time
	// values; the map keys must still be plain dates.
	rows := sqlmock.NewRows([]string{"d", "min"}).
		AddRow(time.Date(2024, 1, 24, 0, 0, 0, 0, time.Local), time.Date(2024, 1, 24, 9, 15, 0, 0, time.Local)).
		AddRow(time.Date(2024, 1, 25, 0, 0, 0, 0, time.Local), time.Date(2024, 1, 25, 8, 45, 0, 0, time.Local))

	mock.ExpectQuery("GROUP BY d").
		WithArgs("u-1", "2024-01-01", "2024-01-31").
		WillReturnRows(rows)

	punches, err := store.EarliestPunchesInRange(context.Background(), "u-1", "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Len(t, punches, 2)
	require.Contains(t, punches, "2024-01-24")
	require.Contains(t, punches, "2024-01-25")
	assert.Equal(t, 9, punches["2024-01-24"].Hour())
	assert.Equal(t, 8, punches["2024-01-25"].Hour())
}
