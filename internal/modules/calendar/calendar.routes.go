package calendar

import (
	"github.com/gin-gonic/gin"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/middleware"
)

func RegisterRoutes(router *gin.Engine, handler *Handler, authMiddleware *middleware.AuthMiddleware) {
	calendarGroup := router.Group("/api/v1/calendars")
	calendarGroup.Use(authMiddleware.Authenticate())
	{
		calendarGroup.GET("", handler.ListCalendars)
		calendarGroup.GET("/active", handler.GetActive)
	}

	adminCalendars := calendarGroup.Group("")
	adminCalendars.Use(authMiddleware.Authorize("admin"))
	{
		adminCalendars.POST("", handler.CreateCalendar)
		adminCalendars.POST("/:id/activate", handler.Activate)
		adminCalendars.DELETE("/:id", handler.DeleteCalendar)
	}

	holidayGroup := router.Group("/api/v1/holidays")
	holidayGroup.Use(authMiddleware.Authenticate())
	{
		holidayGroup.GET("", handler.ListHolidays)
	}

	adminHolidays := holidayGroup.Group("")
	adminHolidays.Use(authMiddleware.Authorize("admin"))
	{
		adminHolidays.POST("", handler.CreateHoliday)
		adminHolidays.DELETE("/:id", handler.DeleteHoliday)
	}
}
