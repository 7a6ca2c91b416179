package routes

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/ArowuTest/mawadha-giveaway-backend/internal/config"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/handlers"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/metrics"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/repositories/memory"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/services"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/utils"
)

// RouterSuite drives the full HTTP surface against the in-memory registry
type RouterSuite struct {
	suite.Suite
	router *gin.Engine
}

func TestRouterSuite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein-please"), bcrypt.MinCost)
	s.Require().NoError(err)

	cfg := &config.Config{
		Server:  config.ServerConfig{AllowedHosts: []string{"http://localhost:8080"}},
		Storage: config.StorageConfig{Driver: config.DriverMemory, RequestTimeout: 5 * time.Second},
		JWT:     config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", Issuer: "mawadha-giveaway", ExpiresIn: 600},
		Admin:   config.AdminConfig{Username: "admin", PasswordHash: string(hash)},
		Draw:    config.DrawConfig{CouponAttempts: 3, DefaultPageSize: 10, MaxPageSize: 100},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	repo := memory.NewParticipantRepository()
	opts := []services.Option{services.WithLogger(logger), services.WithMetrics(m)}

	participantService := services.NewParticipantService(repo, utils.NewCouponGenerator(), cfg.Draw, opts...)
	drawService := services.NewDrawService(repo, opts...)
	authService := services.NewAuthService(cfg, opts...)

	s.router = SetupRouter(cfg, HandlerDependencies{
		AuthHandler:        handlers.NewAuthHandler(authService, logger),
		ParticipantHandler: handlers.NewParticipantHandler(participantService, logger),
		CouponHandler:      handlers.NewCouponHandler(participantService, logger),
		DrawHandler:        handlers.NewDrawHandler(drawService, logger),
		HealthHandler:      handlers.NewHealthHandler(cfg.Storage.Driver, nil),
		Metrics:            m,
		Logger:             logger,
	})
}

func (s *RouterSuite) call(method, target, body, token string) (int, map[string]any) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	var out map[string]any
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &out))
	}
	return rr.Code, out
}

func (s *RouterSuite) login() string {
	status, body := s.call(http.MethodPost, "/api/v1/auth/login", `{"username":"admin","password":"letmein-please"}`, "")
	s.Require().Equal(http.StatusOK, status)
	return body["token"].(string)
}

func (s *RouterSuite) TestRegistrationAndCouponFlow() {
	status, body := s.call(http.MethodPost, "/api/v1/participants",
		`{"name":"Aisha Khan","countryCode":"+971","phone":"50 123 4567","age":29,"maritalStatus":"Single"}`, "")
	s.Require().Equal(http.StatusCreated, status)
	participant := body["participant"].(map[string]any)
	coupon := participant["couponCode"].(string)
	s.Regexp(`^AI[0-9]+$`, coupon)
	s.Equal("501234567", participant["phone"])

	status, body = s.call(http.MethodPost, "/api/v1/participants",
		`{"name":"Aisha K","countryCode":"+971","phone":"501234567","age":30,"maritalStatus":"Married"}`, "")
	s.Equal(http.StatusOK, status)
	s.Equal(true, body["alreadyRegistered"])
	s.Equal(coupon, body["participant"].(map[string]any)["couponCode"])

	status, body = s.call(http.MethodGet, "/api/v1/coupon?code="+coupon, "", "")
	s.Equal(http.StatusOK, status)
	s.Equal("Aisha Khan", body["name"])

	status, body = s.call(http.MethodGet, "/api/v1/coupon-status?countryCode=%2B971&phone=50-123-4567", "", "")
	s.Equal(http.StatusOK, status)
	s.Equal(coupon, body["couponCode"])

	status, body = s.call(http.MethodGet, "/api/v1/coupon?code=NOPE", "", "")
	s.Equal(http.StatusNotFound, status)
	s.Equal("/coupon-status", body["fallback"])
}

func (s *RouterSuite) TestValidationErrorsAreReportedPerField() {
	status, body := s.call(http.MethodPost, "/api/v1/participants",
		`{"name":"A","countryCode":"+973","phone":"123","age":0,"maritalStatus":"Single"}`, "")
	s.Equal(http.StatusUnprocessableEntity, status)
	fields := body["fields"].(map[string]any)
	s.Contains(fields, "name")
	s.Contains(fields, "phone")
	s.Contains(fields, "age")
	s.NotContains(fields, "maritalStatus")
}

func (s *RouterSuite) TestAdminRoutesRequireToken() {
	for _, target := range []string{"/api/v1/admin/participants", "/api/v1/admin/participants/count"} {
		status, _ := s.call(http.MethodGet, target, "", "")
		s.Equal(http.StatusUnauthorized, status, target)
	}
	status, _ := s.call(http.MethodPost, "/api/v1/admin/draws", "", "")
	s.Equal(http.StatusUnauthorized, status)

	status, _ = s.call(http.MethodPost, "/api/v1/auth/login", `{"username":"admin","password":"wrong"}`, "")
	s.Equal(http.StatusUnauthorized, status)
}

func (s *RouterSuite) TestAdminListingAndDraw() {
	token := s.login()

	status, body := s.call(http.MethodPost, "/api/v1/admin/draws", "", token)
	s.Equal(http.StatusNotFound, status, "draw on an empty registry")

	phones := []string{"33123456", "33123457", "33123458"}
	for _, phone := range phones {
		status, _ = s.call(http.MethodPost, "/api/v1/participants",
			`{"name":"Fatima","countryCode":"+974","phone":"`+phone+`","age":41,"maritalStatus":"Engaged"}`, "")
		s.Require().Equal(http.StatusCreated, status)
	}

	status, body = s.call(http.MethodGet, "/api/v1/admin/participants/count", "", token)
	s.Equal(http.StatusOK, status)
	s.Equal(3.0, body["count"])

	status, body = s.call(http.MethodGet, "/api/v1/admin/participants?page=2&pageSize=2", "", token)
	s.Equal(http.StatusOK, status)
	s.Equal(2.0, body["totalPages"])
	s.Len(body["items"], 1)
	// newest first: the last page holds the first registration
	s.Equal(phones[0], body["items"].([]any)[0].(map[string]any)["phone"])

	status, body = s.call(http.MethodPost, "/api/v1/admin/draws", "", token)
	s.Equal(http.StatusOK, status)
	winner := body["winner"].(map[string]any)
	s.Contains(phones, winner["phone"])
	s.Equal(3.0, body["totalParticipants"])
}

func (s *RouterSuite) TestHealthAndMetrics() {
	status, body := s.call(http.MethodGet, "/api/v1/health", "", "")
	s.Equal(http.StatusOK, status)
	s.Equal("memory", body["storage"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	s.Equal(http.StatusOK, rr.Code)
	assert.Contains(s.T(), rr.Body.String(), "giveaway_http_requests_total")
}

func TestSetupRouter_CountryCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef"}}
	router := SetupRouter(cfg, HandlerDependencies{
		AuthHandler:        handlers.NewAuthHandler(nil, logger),
		ParticipantHandler: handlers.NewParticipantHandler(nil, logger),
		CouponHandler:      handlers.NewCouponHandler(nil, logger),
		DrawHandler:        handlers.NewDrawHandler(nil, logger),
		HealthHandler:      handlers.NewHealthHandler(config.DriverMemory, nil),
		Metrics:            metrics.New(),
		Logger:             logger,
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/country-codes", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"+91"`)
}
