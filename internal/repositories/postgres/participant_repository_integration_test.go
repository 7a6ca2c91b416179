//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ArowuTest/mawadha-giveaway-backend/internal/repositories"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/repositories/postgres"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/repositories/repotest"
	pgclient "github.com/ArowuTest/mawadha-giveaway-backend/pkg/postgres"
)

func TestPostgresParticipantRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("mawadha_test"),
		tcpostgres.WithUsername("mawadha"),
		tcpostgres.WithPassword("mawadha"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgclient.NewPool(ctx, dsn, 4)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo := postgres.NewParticipantRepository(pool)
	require.NoError(t, repo.CreateSchema(ctx))

	suite.Run(t, &repotest.ParticipantRepositorySuite{
		NewRepository: func() repositories.ParticipantRepository {
			_, err := pool.Exec(ctx, "TRUNCATE participants")
			require.NoError(t, err)
			return repo
		},
	})
}
