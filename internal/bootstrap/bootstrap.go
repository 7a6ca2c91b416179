// Package bootstrap opens the storage, cache and event backends selected by configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ArowuTest/mawadha-giveaway-backend/internal/config"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/events"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/repositories"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/repositories/cache"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/repositories/memory"
	mongorepo "github.com/ArowuTest/mawadha-giveaway-backend/internal/repositories/mongodb"
	pgrepo "github.com/ArowuTest/mawadha-giveaway-backend/internal/repositories/postgres"
	"github.com/ArowuTest/mawadha-giveaway-backend/pkg/mongodb"
	"github.com/ArowuTest/mawadha-giveaway-backend/pkg/postgres"
	"github.com/ArowuTest/mawadha-giveaway-backend/pkg/redis"
)

// Registry is an opened participant repository with its health check and shutdown hooks
type Registry struct {
	Repo  repositories.ParticipantRepository
	Ping  func(ctx context.Context) error
	close []func(ctx context.Context) error
}

// Close releases every backend opened for the registry, newest first
func (r *Registry) Close(ctx context.Context) error {
	var errs []error
	for i := len(r.close) - 1; i >= 0; i-- {
		if err := r.close[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OpenRegistry connects the configured storage driver, prepares its schema or indexes,
// and wraps it with the Redis lookup cache when Redis.URL is set.
func OpenRegistry(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Registry, error) {
	reg := &Registry{}

	switch cfg.Storage.Driver {
	case config.DriverMongoDB:
		client, err := mongodb.NewClient(ctx, cfg.MongoDB.URI, cfg.Storage.RequestTimeout)
		if err != nil {
			return nil, err
		}
		reg.close = append(reg.close, client.Disconnect)
		repo := mongorepo.NewParticipantRepository(client.Database(cfg.MongoDB.Database))
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = reg.Close(ctx)
			return nil, fmt.Errorf("ensure mongodb indexes: %w", err)
		}
		reg.Repo = repo
		reg.Ping = client.Ping

	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Postgres.URL, cfg.Postgres.MaxConns)
		if err != nil {
			return nil, err
		}
		reg.close = append(reg.close, func(context.Context) error {
			pool.Close()
			return nil
		})
		repo := pgrepo.NewParticipantRepository(pool)
		if err := repo.CreateSchema(ctx); err != nil {
			_ = reg.Close(ctx)
			return nil, err
		}
		reg.Repo = repo
		reg.Ping = pool.Ping

	case config.DriverMemory:
		logger.Warn("Using in-memory participant storage, data is lost on restart")
		reg.Repo = memory.NewParticipantRepository()

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
	logger.Info("Participant storage ready", "driver", cfg.Storage.Driver)

	redisClient, err := redis.New(ctx, cfg.Redis.URL)
	if err != nil {
		_ = reg.Close(ctx)
		return nil, err
	}
	if redisClient != nil {
		reg.close = append(reg.close, func(context.Context) error { return redisClient.Close() })
		reg.Repo = cache.NewParticipantRepository(reg.Repo, redisClient.Client, cfg.Redis.TTL, cache.WithLogger(logger))
		logger.Info("Participant lookup cache enabled", "ttl", cfg.Redis.TTL)
	}

	return reg, nil
}

// NewPublisher returns a Kafka publisher when brokers are configured, otherwise a no-op publisher
func NewPublisher(cfg *config.Config, logger *slog.Logger) (events.Publisher, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info("Event publishing disabled, no Kafka brokers configured")
		return events.NoopPublisher{}, nil
	}
	publisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, err
	}
	logger.Info("Event publishing enabled", "topic", cfg.Kafka.Topic, "brokers", cfg.Kafka.Brokers)
	return publisher, nil
}
