package calendar

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vipin760/hand-pass-BE/internal/shared/errors"
	"github.com/vipin760/hand-pass-BE/internal/shared/utils"
	"github.com/vipin760/hand-pass-BE/internal/shared/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateCalendar(c *gin.Context) {
	var req CreateCalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	if err := h.service.validator.Validate(req); err != nil {
		validationErrors := validator.TranslateValidationErrors(err)
		utils.Error(c, errors.WithDetails(errors.ErrCodeValidation, "Validation failed", validationErrors))
		return
	}

	cal, err := h.service.CreateCalendar(c.Request.Context(), req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, http.StatusCreated, cal)
}

func (h *Handler) ListCalendars(c *gin.Context) {
	list, err := h.service.ListCalendars(c.Request.Context())
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, http.StatusOK, list)
}

func (h *Handler) GetActive(c *gin.Context) {
	cal, err := h.service.GetActive(c.Request.Context())
	if err != nil {
		utils.Error(c, err)
		return
	}
	if cal == nil {
		utils.Error(c, errors.New(errors.ErrCodeNotFound, "No active calendar configured"))
		return
	}

	utils.Success(c, http.StatusOK, cal)
}

func (h *Handler) Activate(c *gin.Context) {
	if err := h.service.Activate(c.Request.Context(), c.Param("id")); err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, http.StatusOK, gin.H{"activated": true})
}

func (h *Handler) DeleteCalendar(c *gin.Context) {
	if err := h.service.DeleteCalendar(c.Request.Context(), c.Param("id")); err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) CreateHoliday(c *gin.Context) {
	var req CreateHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	if err := h.service.validator.Validate(req); err != nil {
		validationErrors := validator.TranslateValidationErrors(err)
		utils.Error(c, errors.WithDetails(errors.ErrCodeValidation, "Validation failed", validationErrors))
		return
	}

	holiday, err := h.service.CreateHoliday(c.Request.Context(), req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, http.StatusCreated, holiday)
}

func (h *Handler) ListHolidays(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		// Default to the current year
		year := time.Now().Year()
		from = time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		to = time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
	}

	list, err := h.service.ListHolidays(c.Request.Context(), from, to)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, http.StatusOK, list)
}

func (h *Handler) DeleteHoliday(c *gin.Context) {
	if err := h.service.DeleteHoliday(c.Request.Context(), c.Param("id")); err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, http.StatusOK, gin.H{"deleted": true})
}
