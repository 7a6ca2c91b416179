package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing store is reachable
type Pinger func(ctx context.Context) error

// HealthHandler reports liveness and the configured storage driver
type HealthHandler struct {
	driver string
	ping   Pinger
}

// NewHealthHandler creates a new HealthHandler. ping may be nil.
func NewHealthHandler(driver string, ping Pinger) *HealthHandler {
	return &HealthHandler{driver: driver, ping: ping}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	body := gin.H{"status": "ok", "storage": h.driver, "time": time.Now().UTC()}
	if h.ping != nil {
		if err := h.ping(c.Request.Context()); err != nil {
			body["status"] = "degraded"
			body["storageError"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
	}
	c.JSON(http.StatusOK, body)
}
