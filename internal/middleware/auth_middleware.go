package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ArowuTest/mawadha-giveaway-backend/internal/config"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/utils"
)

// Context keys set by JWTAuthMiddleware
const (
	AdminSubjectKey = "adminSubject"
	AdminRoleKey    = "adminRole"
)

// JWTAuthMiddleware creates a gin middleware requiring a valid admin session token
func JWTAuthMiddleware(cfg *config.Config, requiredRole string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const BearerSchema = "Bearer "
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		if !strings.HasPrefix(authHeader, BearerSchema) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer "})
			return
		}

		claims, err := utils.ValidateJWT(strings.TrimSpace(authHeader[len(BearerSchema):]), cfg)
		if err != nil {
			logger.WarnContext(c.Request.Context(), "Token validation failed", "requestId", c.GetString(RequestIDKey), "error", err)
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			return
		}

		if claims.Role != requiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}

		c.Set(AdminSubjectKey, claims.Subject)
		c.Set(AdminRoleKey, claims.Role)
		c.Next()
	}
}
