package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArowuTest/mawadha-giveaway-backend/internal/services"
)

// DrawHandler handles lucky draw requests
type DrawHandler struct {
	drawService services.DrawService
	logger      *slog.Logger
}

// NewDrawHandler creates a new DrawHandler
func NewDrawHandler(drawService services.DrawService, logger *slog.Logger) *DrawHandler {
	return &DrawHandler{
		drawService: drawService,
		logger:      logger,
	}
}

// SelectWinner handles POST /admin/draws
func (h *DrawHandler) SelectWinner(c *gin.Context) {
	result, err := h.drawService.SelectWinner(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}
	c.JSON(http.StatusOK, result)
}
