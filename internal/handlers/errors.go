package handlers

import (
	"errors"
	"net/http"

	"github.com/SAP-F-2025/exam-trainer-service/internal/services"
	"github.com/gin-gonic/gin"
)

// handleServiceError maps service errors onto HTTP responses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, validationErrors)
		return
	}

	switch {
	case errors.Is(err, services.ErrUserIDRequired):
		h.RespondWithError(c, http.StatusBadRequest, "User ID is required.", err)
	case services.IsValidation(err):
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request", err, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		h.RespondWithError(c, http.StatusUnauthorized, "Invalid username or password.", err)
	case services.IsUnauthorized(err):
		h.RespondWithError(c, http.StatusUnauthorized, "User not authenticated", err)
	case errors.Is(err, services.ErrUsernameTaken):
		h.RespondWithError(c, http.StatusConflict, "Username already exists.", err)
	case services.IsConflict(err):
		h.RespondWithError(c, http.StatusConflict, "Resource conflict", err)
	case errors.Is(err, services.ErrResultNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Exam result not found.", err)
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, "Resource not found", err)
	case services.IsContentUnavailable(err):
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to assemble a complete exam.", err, err.Error())
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
