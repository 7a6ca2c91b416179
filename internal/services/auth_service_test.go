package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ArowuTest/mawadha-giveaway-backend/internal/config"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/models"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/utils"
)

func authConfig(t *testing.T, password string) *config.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:    "0123456789abcdef0123456789abcdef",
			Issuer:    "mawadha-giveaway",
			ExpiresIn: 3600,
		},
		Admin: config.AdminConfig{
			Username:     "admin",
			PasswordHash: string(hash),
		},
	}
}

func TestLogin(t *testing.T) {
	cfg := authConfig(t, "s3cret-pass")
	svc := NewAuthService(cfg, WithLogger(quietLogger()))
	ctx := context.Background()

	t.Run("valid credentials issue a token", func(t *testing.T) {
		resp, err := svc.Login(ctx, &models.LoginRequest{Username: "admin", Password: "s3cret-pass"})
		require.NoError(t, err)
		assert.Equal(t, 3600, resp.ExpiresIn)

		claims, err := utils.ValidateJWT(resp.Token, cfg)
		require.NoError(t, err)
		assert.Equal(t, "admin", claims.Subject)
		assert.Equal(t, AdminRole, claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, &models.LoginRequest{Username: "admin", Password: "guess"})
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	})

	t.Run("wrong username", func(t *testing.T) {
		_, err := svc.Login(ctx, &models.LoginRequest{Username: "root", Password: "s3cret-pass"})
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	})
}

func TestLogin_DisabledWithoutPasswordHash(t *testing.T) {
	cfg := authConfig(t, "unused")
	cfg.Admin.PasswordHash = ""
	svc := NewAuthService(cfg, WithLogger(quietLogger()))

	_, err := svc.Login(context.Background(), &models.LoginRequest{Username: "admin", Password: ""})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}
