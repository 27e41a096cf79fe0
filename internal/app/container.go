package app

import (
	"context"
	"sync"
	"time"

	"github.com/vipin760/hand-pass-BE/internal/config"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/database"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/email"
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
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Container holds every wired component of the application. Background
// workers are started with StartWorkers and stopped through the
// context passed to it.
type Container struct {
	Config         *config.Config
	DB             *database.DB
	Logger         *observability.Logger
	Metrics        *observability.Metrics
	AuditLogger    *observability.AuditLogger
	JWTService     *security.JWTService
	AuthMiddleware *middleware.AuthMiddleware

	AuthHandler       *auth.Handler
	UsersHandler      *users.Handler
	DevicesHandler    *devices.Handler
	EventsHandler     *events.Handler
	CalendarHandler   *calendar.Handler
	AttendanceHandler *attendance.Handler
	HealthHandler     *health.Handler

	Sweeper *devices.Sweeper
	Trigger *attendance.Trigger

	workerWG sync.WaitGroup
}

func NewContainer(ctx context.Context, cfg *config.Config, db *database.DB, logger *observability.Logger) (*Container, error) {
	metrics := observability.NewMetrics()
	auditLogger := observability.NewAuditLogger(logger)
	jwtService := security.NewJWTService(&cfg.JWT)
	passwordService := security.NewPasswordService(bcrypt.DefaultCost)
	validatorInstance := validator.New()
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	var queryDB database.DBTX = db
	if cfg.Database.CircuitBreaker.Enabled {
		logger.Info(ctx, "Initializing database circuit breaker",
			zap.Uint32("max_failures", cfg.Database.CircuitBreaker.MaxFailures),
			zap.Float64("failure_threshold", cfg.Database.CircuitBreaker.FailureThreshold),
			zap.Duration("reset_timeout", cfg.Database.CircuitBreaker.ResetTimeout),
		)
		queryDB = database.NewBreakerDB(db.DB, cfg.Database.CircuitBreaker, metrics, logger)
	}

	usersStore := users.NewStore(queryDB)
	devicesStore := devices.NewStore(queryDB)
	eventsStore := events.NewStore(queryDB)
	calendarStore := calendar.NewStore(queryDB)

	usersService := users.NewService(usersStore, passwordService, validatorInstance, auditLogger, logger)
	devicesService := devices.NewService(devicesStore, validatorInstance, metrics, logger)
	eventsService := events.NewService(eventsStore, validatorInstance, metrics, logger)
	calendarService := calendar.NewService(calendarStore, db, validatorInstance, logger)
	authService := auth.NewService(usersStore, jwtService, passwordService, validatorInstance, auditLogger, metrics, logger)

	attendanceService := attendance.NewService(
		cfg.Attendance,
		calendarService,
		eventsStore,
		usersService,
		validatorInstance,
		metrics,
		logger,
	)

	notifier, err := buildNotifier(ctx, cfg, metrics, logger)
	if err != nil {
		return nil, err
	}

	trigger := attendance.NewTrigger(cfg.Attendance, calendarService, attendanceService, notifier, metrics, logger)
	// Recompute the daily timer whenever a calendar activation commits.
	calendarService.OnActivate(trigger.Reload)

	sweeper := devices.NewSweeper(devicesService, cfg.Liveness, metrics, logger)

	return &Container{
		Config:         cfg,
		DB:             db,
		Logger:         logger,
		Metrics:        metrics,
		AuditLogger:    auditLogger,
		JWTService:     jwtService,
		AuthMiddleware: authMiddleware,

		AuthHandler:       auth.NewHandler(authService),
		UsersHandler:      users.NewHandler(usersService),
		DevicesHandler:    devices.NewHandler(devicesService),
		EventsHandler:     events.NewHandler(eventsService),
		CalendarHandler:   calendar.NewHandler(calendarService),
		AttendanceHandler: attendance.NewHandler(attendanceService),
		HealthHandler:     health.NewHandler(db.DB, devicesStore),

		Sweeper: sweeper,
		Trigger: trigger,
	}, nil
}

func buildNotifier(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *observability.Logger) (attendance.Notifier, error) {
	if !cfg.Email.Enabled {
		logger.Info(ctx, "Email delivery disabled, missed punch-in batches will be logged")
		return attendance.NewLogNotifier(metrics, logger), nil
	}

	sender, err := email.NewSESSender(ctx, &cfg.Email, logger)
	if err != nil {
		return nil, err
	}
	return attendance.NewEmailNotifier(sender, cfg.Email, cfg.Attendance, metrics, logger), nil
}

// StartWorkers launches the liveness sweeper, the daily attendance
// trigger and the connection pool stats collector. They all exit when
// ctx is cancelled; WaitForWorkers blocks until they have.
func (c *Container) StartWorkers(ctx context.Context) {
	c.workerWG.Add(1)
	go func() {
		defer c.workerWG.Done()
		c.Sweeper.Run(ctx)
	}()

	c.workerWG.Add(1)
	go func() {
		defer c.workerWG.Done()
		c.Trigger.Run(ctx)
	}()

	if c.Config.Metrics.Enabled {
		c.workerWG.Add(1)
		go func() {
			defer c.workerWG.Done()
			c.collectDBStats(ctx)
		}()
	}
}

func (c *Container) WaitForWorkers() {
	c.workerWG.Wait()
}

func (c *Container) collectDBStats(ctx context.Context) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats := c.DB.Stats()
			c.Metrics.RecordDatabaseStats(stats.OpenConnections, stats.InUse, stats.Idle)
		case <-ctx.Done():
			return
		}
	}
}
