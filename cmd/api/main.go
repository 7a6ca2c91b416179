package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ArowuTest/mawadha-giveaway-backend/api/routes"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/bootstrap"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/config"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/handlers"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/logger"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/metrics"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/services"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/utils"
)

func main() {
	// A missing .env is fine; the environment may already be populated
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry, err := bootstrap.OpenRegistry(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := registry.Close(closeCtx); err != nil {
			log.Error("Error closing storage", "error", err)
		}
	}()

	publisher, err := bootstrap.NewPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	m := metrics.New()
	opts := []services.Option{
		services.WithLogger(log),
		services.WithMetrics(m),
		services.WithPublisher(publisher),
	}

	participantService := services.NewParticipantService(registry.Repo, utils.NewCouponGenerator(), cfg.Draw, opts...)
	drawService := services.NewDrawService(registry.Repo, opts...)
	authService := services.NewAuthService(cfg, opts...)

	router := routes.SetupRouter(cfg, routes.HandlerDependencies{
		AuthHandler:        handlers.NewAuthHandler(authService, log),
		ParticipantHandler: handlers.NewParticipantHandler(participantService, log),
		CouponHandler:      handlers.NewCouponHandler(participantService, log),
		DrawHandler:        handlers.NewDrawHandler(drawService, log),
		HealthHandler:      handlers.NewHealthHandler(cfg.Storage.Driver, registry.Ping),
		Metrics:            m,
		Logger:             log,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", "port", cfg.Server.Port, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("Server exiting")
	return nil
}
