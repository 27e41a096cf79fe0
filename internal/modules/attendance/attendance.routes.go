package attendance

import (
	"github.com/gin-gonic/gin"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/middleware"
)

func RegisterRoutes(router *gin.Engine, handler *Handler, authMiddleware *middleware.AuthMiddleware) {
	attendanceGroup := router.Group("/api/v1/attendance")
	attendanceGroup.Use(authMiddleware.Authenticate())
	{
		attendanceGroup.GET("/day", handler.DayStatus)
		attendanceGroup.GET("/summary", handler.Summary)
	}

	managerGroup := attendanceGroup.Group("")
	managerGroup.Use(authMiddleware.Authorize("admin", "manager"))
	{
		managerGroup.GET("/sheet", handler.Sheet)
		managerGroup.GET("/absentees", handler.Absentees)
	}
}
