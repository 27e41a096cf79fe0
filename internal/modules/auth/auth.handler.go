package auth

import (
	"net/http"

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

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	if err := h.service.validator.Validate(req); err != nil {
		validationErrors := validator.TranslateValidationErrors(err)
		utils.Error(c, errors.WithDetails(errors.ErrCodeValidation, "Validation failed", validationErrors))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, http.StatusOK, resp)
}
