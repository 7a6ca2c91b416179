package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/ArowuTest/mawadha-giveaway-backend/internal/bootstrap"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/config"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/importer"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/logger"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/services"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/utils"
)

// Imports participants from a CSV file into the configured storage.
//
// Usage: import_csv <file.csv>
func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using environment variables")
	}

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: import_csv <file.csv>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	if err := run(context.Background(), cfg, log, os.Args[1]); err != nil {
		log.Error("Failed to import data", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger, path string) error {
	registry, err := bootstrap.OpenRegistry(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer registry.Close(context.Background())

	publisher, err := bootstrap.NewPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	svc := services.NewParticipantService(registry.Repo, utils.NewCouponGenerator(), cfg.Draw,
		services.WithLogger(log),
		services.WithPublisher(publisher),
	)

	result, err := importer.NewCSVImporter(svc, log).ImportFile(ctx, path)
	if result != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	}
	return err
}
