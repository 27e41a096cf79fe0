package devices

import (
	"github.com/gin-gonic/gin"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/middleware"
)

func RegisterRoutes(router *gin.Engine, handler *Handler, authMiddleware *middleware.AuthMiddleware) {
	// Scanner-facing endpoint, no user auth
	router.POST("/api/v1/devices/heartbeat", handler.Heartbeat)

	devicesGroup := router.Group("/api/v1/devices")
	devicesGroup.Use(authMiddleware.Authenticate())
	{
		devicesGroup.GET("", handler.List)
		devicesGroup.GET("/:id", handler.Get)
	}

	adminGroup := devicesGroup.Group("")
	adminGroup.Use(authMiddleware.Authorize("admin"))
	{
		adminGroup.POST("", handler.Register)
		adminGroup.PUT("/:id", handler.Update)
		adminGroup.DELETE("/:id", handler.Delete)
	}
}
