package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vipin760/hand-pass-BE/internal/config"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/database"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/middleware"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/observability"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/security"
	"github.com/vipin760/hand-pass-BE/internal/modules/attendance"
	"github.com/vipin760/hand-pass-BE/internal/modules/auth"
	"github.com/vipin760/hand-pass-BE/internal/modules/calendar"
	"github.com/vipin760/hand-pass-BE/internal/modules/devices"
	"github.com/vipin760/hand-pass-BE/internal/modules/events"
	"github.com/vipin760/hand-pass-BE/internal/modules/health"
	"github.com/vipin760/hand-pass-BE/internal/modules/users"
	"github.com/vipin760/hand-pass-BE/internal/shared/validator"
	"golang.org/x/crypto/bcrypt"
)

type noopTxRunner struct{}

func (noopTxRunner) WithTx(ctx context.Context, fn database.TxFunc) error { return nil }

func testContainer(t *testing.T, cfg *config.Config) *Container {
	t.Helper()

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger, err := observability.NewLogger("error", "console")
	require.NoError(t, err)

	metrics := observability.NewMetrics()
	auditLogger := observability.NewAuditLogger(logger)
	jwtService := security.NewJWTService(&cfg.JWT)
	passwordService := security.NewPasswordService(bcrypt.MinCost)
	validatorInstance := validator.New()

	usersStore := users.NewStore(db)
	devicesStore := devices.NewStore(db)
	eventsStore := events.NewStore(db)
	calendarStore := calendar.NewStore(db)

	usersService := users.NewService(usersStore, passwordService, validatorInstance, auditLogger, logger)
	devicesService := devices.NewService(devicesStore, validatorInstance, metrics, logger)
	eventsService := events.NewService(eventsStore, validatorInstance, metrics, logger)
	calendarService := calendar.NewService(calendarStore, noopTxRunner{}, validatorInstance, logger)
	authService := auth.NewService(usersStore, jwtService, passwordService, validatorInstance, auditLogger, metrics, logger)
	attendanceService := attendance.NewService(cfg.Attendance, calendarService, eventsStore, usersService, validatorInstance, metrics, logger)

	return &Container{
		Config:         cfg,
		Logger:         logger,
		Metrics:        metrics,
		AuditLogger:    auditLogger,
		JWTService:     jwtService,
		AuthMiddleware: middleware.NewAuthMiddleware(jwtService),

		AuthHandler:       auth.NewHandler(authService),
		UsersHandler:      users.NewHandler(usersService),
		DevicesHandler:    devices.NewHandler(devicesService),
		EventsHandler:     events.NewHandler(eventsService),
		CalendarHandler:   calendar.NewHandler(calendarService),
		AttendanceHandler: attendance.NewHandler(attendanceService),
		HealthHandler:     health.NewHandler(db, devicesStore),
	}
}

func testRouterConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Env:         "development",
			CORSOrigins: []string{"*"},
		},
		JWT: config.JWTConfig{
			AccessSecret: "12345678901234567890123456789012",
			AccessExpiry: time.Hour,
		},
		Metrics: config.MetricsConfig{Enabled: true},
	}
}

func TestSetupRouter(t *testing.T) {
	container := testContainer(t, testRouterConfig())
	router := SetupRouter(container)
	require.NotNil(t, router)

	t.Run("alive endpoint is public", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/alive", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("attendance requires auth", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/attendance/day?user_id=x&date=2024-01-24", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("metrics endpoint exposed", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/metrics", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestSetupRouter_ProductionMode(t *testing.T) {
	cfg := testRouterConfig()
	cfg.Server.Env = "production"

	router := SetupRouter(testContainer(t, cfg))
	assert.NotNil(t, router)
}
