package services

import (
	"context"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/ArowuTest/mawadha-giveaway-backend/internal/config"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/models"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/utils"
)

// AdminRole is the role claim carried by admin session tokens
const AdminRole = "admin"

type authService struct {
	cfg *config.Config
	options
}

// NewAuthService creates a new AuthService implementation
func NewAuthService(cfg *config.Config, opts ...Option) AuthService {
	return &authService{
		cfg:     cfg,
		options: newOptions(opts),
	}
}

// Login checks the configured admin credentials and issues a signed session token
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	if s.cfg.Admin.PasswordHash == "" {
		s.logger.WarnContext(ctx, "Admin login rejected, no password hash configured")
		return nil, models.ErrInvalidCredentials
	}

	// bcrypt runs even when the username does not match
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.cfg.Admin.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(s.cfg.Admin.PasswordHash), []byte(req.Password))
	if !userOK || passErr != nil {
		s.logger.WarnContext(ctx, "Admin login failed", "username", req.Username)
		return nil, models.ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(req.Username, AdminRole, s.cfg)
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.InfoContext(ctx, "Admin logged in", "username", req.Username)
	return &models.LoginResponse{Token: token, ExpiresIn: s.cfg.JWT.ExpiresIn}, nil
}
