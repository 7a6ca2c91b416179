package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ArowuTest/mawadha-giveaway-backend/internal/models"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/services"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/utils"
)

// ParticipantHandler handles registration and the admin participant listing
type ParticipantHandler struct {
	participantService services.ParticipantService
	logger             *slog.Logger
}

// NewParticipantHandler creates a new ParticipantHandler
func NewParticipantHandler(participantService services.ParticipantService, logger *slog.Logger) *ParticipantHandler {
	return &ParticipantHandler{
		participantService: participantService,
		logger:             logger,
	}
}

type countryCodeResponse struct {
	Code    string `json:"code"`
	Country string `json:"country"`
	Pattern string `json:"pattern"`
	Format  string `json:"format"`
}

// GetCountryCodes handles GET /country-codes
func (h *ParticipantHandler) GetCountryCodes(c *gin.Context) {
	rules := utils.CountryCodeRules()
	out := make([]countryCodeResponse, 0, len(rules))
	for _, r := range rules {
		out = append(out, countryCodeResponse{
			Code:    r.Code,
			Country: r.Country,
			Pattern: r.PatternString(),
			Format:  r.Format,
		})
	}
	c.JSON(http.StatusOK, gin.H{"countryCodes": out})
}

// Register handles POST /participants
func (h *ParticipantHandler) Register(c *gin.Context) {
	var req models.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.participantService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}

	status := http.StatusCreated
	if result.AlreadyRegistered {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

// ListParticipants handles GET /admin/participants
func (h *ParticipantHandler) ListParticipants(c *gin.Context) {
	// Unparseable values fall back to the service defaults
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "0"))

	result, err := h.participantService.List(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CountParticipants handles GET /admin/participants/count
func (h *ParticipantHandler) CountParticipants(c *gin.Context) {
	count, err := h.participantService.Count(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}
