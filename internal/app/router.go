package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/middleware"
	"github.com/vipin760/hand-pass-BE/internal/modules/attendance"
	"github.com/vipin760/hand-pass-BE/internal/modules/auth"
	"github.com/vipin760/hand-pass-BE/internal/modules/calendar"
	"github.com/vipin760/hand-pass-BE/internal/modules/devices"
	"github.com/vipin760/hand-pass-BE/internal/modules/events"
	"github.com/vipin760/hand-pass-BE/internal/modules/health"
	"github.com/vipin760/hand-pass-BE/internal/modules/users"
)

const maxBodyBytes = 1 << 20

func SetupRouter(container *Container) *gin.Engine {
	if container.Config.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.PanicRecoveryMiddleware(container.Logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(container.Logger))
	router.Use(middleware.TimeoutMiddleware(30 * time.Second))
	router.Use(middleware.NewCORSMiddleware(container.Config.Server.CORSOrigins))
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.BodyLimitMiddleware(maxBodyBytes))
	router.Use(middleware.ErrorHandlingMiddleware(container.Logger, container.Metrics))

	if container.Config.Metrics.Enabled {
		router.Use(middleware.MetricsMiddleware(container.Metrics))
	}

	if len(container.Config.Server.TrustedProxies) > 0 {
		_ = router.SetTrustedProxies(container.Config.Server.TrustedProxies)
	}

	health.RegisterRoutes(router, container.HealthHandler)
	auth.RegisterRoutes(router, container.AuthHandler)
	users.RegisterRoutes(router, container.UsersHandler, container.AuthMiddleware)
	devices.RegisterRoutes(router, container.DevicesHandler, container.AuthMiddleware)
	events.RegisterRoutes(router, container.EventsHandler, container.AuthMiddleware)
	calendar.RegisterRoutes(router, container.CalendarHandler, container.AuthMiddleware)
	attendance.RegisterRoutes(router, container.AttendanceHandler, container.AuthMiddleware)

	if container.Config.Metrics.Enabled {
		router.GET("/api/v1/metrics", gin.WrapH(
			promhttp.HandlerFor(container.Metrics.Gatherer(), promhttp.HandlerOpts{})))
	}

	return router
}
