package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArowuTest/mawadha-giveaway-backend/internal/models"
)

// statusFor maps a service error to its HTTP status and public message
func statusFor(err error) (int, string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, "validation failed"
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, models.ErrNoParticipants):
		return http.StatusNotFound, models.ErrNoParticipants.Error()
	case errors.Is(err, models.ErrSelectionFailed):
		return http.StatusConflict, models.ErrSelectionFailed.Error()
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized, models.ErrInvalidCredentials.Error()
	case errors.Is(err, models.ErrStorageUnavailable),
		errors.Is(err, models.ErrCouponExhausted),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "service temporarily unavailable, please try again"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// respondError writes err as a JSON error body. extra fields are merged into the body.
func respondError(c *gin.Context, logger *slog.Logger, err error, extra gin.H) {
	status, message := statusFor(err)
	body := gin.H{"error": message}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		body["fields"] = verr.Fields
	}
	for k, v := range extra {
		body[k] = v
	}
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(c.Request.Context(), "Request failed", "path", c.FullPath(), "status", status, "error", err)
	}
	c.JSON(status, body)
}
