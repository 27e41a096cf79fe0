package attendance

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vipin760/hand-pass-BE/internal/shared/errors"
	"github.com/vipin760/hand-pass-BE/internal/shared/utils"
	"github.com/vipin760/hand-pass-BE/internal/shared/validator"
)

// Handler serves the attendance report endpoints.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) DayStatus(c *gin.Context) {
	var q DayQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.Error(c, errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid query parameters"))
		return
	}

	if err := h.service.validator.Validate(q); err != nil {
		validationErrors := validator.TranslateValidationErrors(err)
		utils.Error(c, errors.WithDetails(errors.ErrCodeValidation, "Validation failed", validationErrors))
		return
	}

	rec, err := h.service.DayStatusFor(c.Request.Context(), q)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, http.StatusOK, rec)
}

func (h *Handler) Summary(c *gin.Context) {
	var q SummaryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.Error(c, errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid query parameters"))
		return
	}

	if err := h.service.validator.Validate(q); err != nil {
		validationErrors := validator.TranslateValidationErrors(err)
		utils.Error(c, errors.WithDetails(errors.ErrCodeValidation, "Validation failed", validationErrors))
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), q)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, http.StatusOK, summary)
}

func (h *Handler) Sheet(c *gin.Context) {
	var q SheetQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.Error(c, errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid query parameters"))
		return
	}

	if err := h.service.validator.Validate(q); err != nil {
		validationErrors := validator.TranslateValidationErrors(err)
		utils.Error(c, errors.WithDetails(errors.ErrCodeValidation, "Validation failed", validationErrors))
		return
	}

	sheet, err := h.service.Sheet(c.Request.Context(), q)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, http.StatusOK, sheet)
}

// Absentees reports who has not punched in by the cutoff on the given
// date. An empty list is returned on non-working days.
func (h *Handler) Absentees(c *gin.Context) {
	var q SheetQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.Error(c, errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid query parameters"))
		return
	}

	if err := h.service.validator.Validate(q); err != nil {
		validationErrors := validator.TranslateValidationErrors(err)
		utils.Error(c, errors.WithDetails(errors.ErrCodeValidation, "Validation failed", validationErrors))
		return
	}

	batch, err := h.service.MissedPunchIns(c.Request.Context(), q.Date)
	if err != nil {
		utils.Error(c, err)
		return
	}

	absent := []Absentee{}
	if batch != nil {
		absent = batch.Absent
	}
	utils.Success(c, http.StatusOK, gin.H{"date": q.Date, "absent": absent})
}
