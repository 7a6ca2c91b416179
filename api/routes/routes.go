package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/ArowuTest/mawadha-giveaway-backend/internal/config"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/handlers"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/metrics"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/middleware"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/services"
)

// HandlerDependencies holds every handler the router mounts
type HandlerDependencies struct {
	AuthHandler        *handlers.AuthHandler
	ParticipantHandler *handlers.ParticipantHandler
	CouponHandler      *handlers.CouponHandler
	DrawHandler        *handlers.DrawHandler
	HealthHandler      *handlers.HealthHandler
	Metrics            *metrics.Metrics
	Logger             *slog.Logger
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.MetricsMiddleware(deps.Metrics))

	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	// Public routes
	public := router.Group("/api/v1")
	public.Use(middleware.TimeoutMiddleware(cfg.Storage.RequestTimeout))
	{
		public.GET("/health", deps.HealthHandler.Health)
		public.GET("/country-codes", deps.ParticipantHandler.GetCountryCodes)

		public.POST("/participants", deps.ParticipantHandler.Register)
		public.GET("/coupon", deps.CouponHandler.GetCoupon)
		public.GET("/coupon-status", deps.CouponHandler.GetCouponStatus)

		auth := public.Group("/auth")
		{
			auth.POST("/login", deps.AuthHandler.Login)
		}
	}

	// Admin routes
	admin := public.Group("/admin")
	admin.Use(middleware.JWTAuthMiddleware(cfg, services.AdminRole, deps.Logger))
	{
		admin.GET("/participants", deps.ParticipantHandler.ListParticipants)
		admin.GET("/participants/count", deps.ParticipantHandler.CountParticipants)
		admin.POST("/draws", deps.DrawHandler.SelectWinner)
	}

	return router
}
