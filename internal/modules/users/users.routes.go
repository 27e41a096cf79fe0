package users

import (
	"github.com/gin-gonic/gin"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/middleware"
)

func RegisterRoutes(router *gin.Engine, handler *Handler, authMiddleware *middleware.AuthMiddleware) {
	usersGroup := router.Group("/api/v1/users")
	usersGroup.Use(authMiddleware.Authenticate())
	{
		usersGroup.GET("/:id", handler.Get)
	}

	adminGroup := usersGroup.Group("")
	adminGroup.Use(authMiddleware.Authorize("admin", "manager"))
	{
		adminGroup.GET("", handler.List)
	}

	// Mutations are admin only
	mutateGroup := usersGroup.Group("")
	mutateGroup.Use(authMiddleware.Authorize("admin"))
	{
		mutateGroup.POST("", handler.Create)
		mutateGroup.PUT("/:id", handler.Update)
		mutateGroup.DELETE("/:id", handler.Delete)
	}
}
