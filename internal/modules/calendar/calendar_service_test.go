package calendar

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/database"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/observability"
	apperrors "github.com/vipin760/hand-pass-BE/internal/shared/errors"
	"github.com/vipin760/hand-pass-BE/internal/shared/validator"
)

// plainTxRunner runs transactions without retry, for tests.
type plainTxRunner struct {
	db *sql.DB
}

func (r *plainTxRunner) WithTx(ctx context.Context, fn database.TxFunc) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger, err := observability.NewLogger("error", "console")
	require.NoError(t, err)

	return NewService(NewStore(db), &plainTxRunner{db: db}, validator.New(), logger), mock
}

func calendarRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "start_time", "end_time", "grace_minutes", "weekly_off_days", "active", "created_at", "updated_at",
	})
}

func TestService_CreateCalendar(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectExec("INSERT INTO work_calendars").
		WithArgs(sqlmock.AnyArg(), "Standard week", "09:00:00", "18:00:00", 15, "0,6", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	cal, err := svc.CreateCalendar(context.Background(), CreateCalendarRequest{
		Name:          "Standard week",
		StartTime:     "09:00:00",
		EndTime:       "18:00:00",
		GraceMinutes:  15,
		WeeklyOffDays: []int{6, 0, 6},
	})
	require.NoError(t, err)
	assert.False(t, cal.Active)
	assert.Equal(t, []int{6, 0, 6}, cal.WeeklyOffDays)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_CreateCalendar_BadClock(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateCalendar(context.Background(), CreateCalendarRequest{
		Name:      "Broken",
		StartTime: "25:00:00",
		EndTime:   "18:00:00",
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeBadRequest, appErr.Code)
}

func TestService_Activate_SingleActive(t *testing.T) {
	svc, mock := newTestService(t)

	fired := false
	svc.OnActivate(func() { fired = true })

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE work_calendars SET active = 0").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE work_calendars SET active = 1").
		WithArgs(sqlmock.AnyArg(), "cal-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.Activate(context.Background(), "cal-1"))
	assert.True(t, fired, "activation listener should fire after commit")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Activate_UnknownCalendar(t *testing.T) {
	svc, mock := newTestService(t)

	fired := false
	svc.OnActivate(func() { fired = true })

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE work_calendars SET active = 0").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE work_calendars SET active = 1").
		WithArgs(sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := svc.Activate(context.Background(), "missing")
	require.Error(t, err)
	assert.False(t, fired, "listener must not fire on rollback")

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
}

func TestService_GetActive_NoneConfigured(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT (.+) FROM work_calendars WHERE active = 1").
		WillReturnRows(calendarRows())

	cal, err := svc.GetActive(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cal)
}

func TestService_GetActive(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT (.+) FROM work_calendars WHERE active = 1").
		WillReturnRows(calendarRows().
			AddRow("cal-1", "Standard week", "09:00:00", "18:00:00", 15, "0,6", true, time.Now(), nil))

	cal, err := svc.GetActive(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cal)
	assert.Equal(t, "09:00:00", cal.StartTime)
	assert.Equal(t, []int{0, 6}, cal.WeeklyOffDays)
	assert.True(t, cal.IsWeeklyOff(time.Sunday))
	assert.True(t, cal.IsWeeklyOff(time.Saturday))
	assert.False(t, cal.IsWeeklyOff(time.Wednesday))
}

func TestService_HolidaysByDate(t *testing.T) {
	svc, mock := newTestService(t)

	// The driver hands DATE columns back as midnight time.Time values,
	// which must collapse to plain date keys.
	rows := sqlmock.NewRows([]string{"id", "name", "date", "created_at"}).
		AddRow("h-1", "Republic Day", time.Date(2024, 1, 26, 0, 0, 0, 0, time.UTC), time.Now())

	mock.ExpectQuery("SELECT id, name, date, created_at FROM holidays").
		WithArgs("2024-01-01", "2024-01-31").
		WillReturnRows(rows)

	byDate, err := svc.HolidaysByDate(context.Background(), "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Contains(t, byDate, "2024-01-26")
	assert.Equal(t, "Republic Day", byDate["2024-01-26"].Name)
	assert.Equal(t, "2024-01-26", byDate["2024-01-26"].Date)
}

func TestParseClock(t *testing.T) {
	h, m, s, err := parseClock("09:30:15")
	require.NoError(t, err)
	assert.Equal(t, 9, h)
	assert.Equal(t, 30, m)
	assert.Equal(t, 15, s)

	for _, bad := range []string{"", "09:30", "24:00:00", "09:60:00", "09:00:61", "ab:cd:ef"} {
		_, _, _, err := parseClock(bad)
		assert.Error(t, err, "expected error for %q", bad)
	}
}

func TestOffDaysCSVRoundTrip(t *testing.T) {
	assert.Equal(t, "0,6", offDaysToCSV([]int{6, 0, 6}))
	assert.Equal(t, "", offDaysToCSV(nil))
	assert.Equal(t, []int{0, 6}, offDaysFromCSV("0,6"))
	assert.Nil(t, offDaysFromCSV(""))
}
