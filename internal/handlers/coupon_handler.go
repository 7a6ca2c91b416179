package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ArowuTest/mawadha-giveaway-backend/internal/models"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/services"
)

// Where the client should send the user when a lookup has nothing to show
const (
	couponFallback       = "/coupon-status"
	couponStatusFallback = "/"
)

// CouponHandler handles the coupon display and coupon status lookups
type CouponHandler struct {
	participantService services.ParticipantService
	logger             *slog.Logger
}

// NewCouponHandler creates a new CouponHandler
func NewCouponHandler(participantService services.ParticipantService, logger *slog.Logger) *CouponHandler {
	return &CouponHandler{
		participantService: participantService,
		logger:             logger,
	}
}

// GetCoupon handles GET /coupon?code=
func (h *CouponHandler) GetCoupon(c *gin.Context) {
	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coupon code is required", "fallback": couponFallback})
		return
	}

	participant, err := h.participantService.FindByCouponCode(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "coupon not found", "fallback": couponFallback})
			return
		}
		respondError(c, h.logger, err, gin.H{"fallback": couponFallback})
		return
	}
	c.JSON(http.StatusOK, participant)
}

// GetCouponStatus handles GET /coupon-status?countryCode=&phone=
func (h *CouponHandler) GetCouponStatus(c *gin.Context) {
	countryCode := strings.TrimSpace(c.Query("countryCode"))
	phone := c.Query("phone")
	if countryCode == "" || strings.TrimSpace(phone) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "countryCode and phone are required", "fallback": couponStatusFallback})
		return
	}
	// an unescaped "+" in the query string arrives as a space
	if !strings.HasPrefix(countryCode, "+") {
		countryCode = "+" + countryCode
	}

	participant, err := h.participantService.FindByPhone(c.Request.Context(), countryCode, phone)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no registration found for this number", "fallback": couponStatusFallback})
			return
		}
		respondError(c, h.logger, err, nil)
		return
	}
	c.JSON(http.StatusOK, participant)
}
