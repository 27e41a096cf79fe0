package devices

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vipin760/hand-pass-BE/internal/config"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/observability"
)

func TestSweeper_RunSweepsOnTick(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	logger, err := observability.NewLogger("error", "console")
	require.NoError(t, err)
	metrics := observability.NewMetrics()

	svc := NewService(NewStore(db), nil, metrics, logger)
	sweeper := NewSweeper(svc, config.LivenessConfig{
		StaleAfter:   10 * time.Second,
		SweepEvery:   20 * time.Millisecond,
		SweepTimeout: time.Second,
	}, metrics, logger)

	mock.ExpectExec("UPDATE devices SET online = 0").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancellation")
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweeper_SweepErrorIsSkipped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	logger, err := observability.NewLogger("error", "console")
	require.NoError(t, err)
	metrics := observability.NewMetrics()

	svc := NewService(NewStore(db), nil, metrics, logger)
	sweeper := NewSweeper(svc, config.LivenessConfig{
		StaleAfter:   10 * time.Second,
		SweepEvery:   time.Minute,
		SweepTimeout: time.Second,
	}, metrics, logger)

	mock.ExpectExec("UPDATE devices SET online = 0").
		WillReturnError(assert.AnError)

	// A failing sweep must not panic or abort the loop
	sweeper.sweep(context.Background())

	assert.NoError(t, mock.ExpectationsWereMet())
}
