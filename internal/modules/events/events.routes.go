package events

import (
	"github.com/gin-gonic/gin"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/middleware"
)

func RegisterRoutes(router *gin.Engine, handler *Handler, authMiddleware *middleware.AuthMiddleware) {
	// Scanner-facing ingest, no user auth
	router.POST("/api/v1/events", handler.Ingest)

	eventsGroup := router.Group("/api/v1/events")
	eventsGroup.Use(authMiddleware.Authenticate(), authMiddleware.Authorize("admin", "manager"))
	{
		eventsGroup.GET("", handler.List)
	}
}
