package middleware

import (
	"strings"

	"companion-chat/backend/pkg/errors"
	"companion-chat/backend/pkg/jwt"
	"companion-chat/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware validates the bearer token and stores the user id and
// claims on the request context.
func JWTAuthMiddleware(jwtService *jwt.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Error(errors.NewUnauthorizedError(errors.CodeUnauthorized, "Authentication required"))
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.Error(errors.NewUnauthorizedError(errors.CodeUnauthorized, "Invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(parts[1])
		if err != nil {
			log.Warn("token validation failed", "error", err.Error())
			c.Error(errors.NewUnauthorizedError(errors.CodeUnauthorized, "Invalid or expired token"))
			c.Abort()
			return
		}

		c.Set("claims", claims)
		c.Set("userId", claims.UserID)

		c.Next()
	}
}

// OptionalJWTAuthMiddleware resolves the user when a valid token is present
// but lets anonymous requests through. Chat supports ephemeral sessions for
// unauthenticated visitors, so the send path cannot hard-require a token.
func OptionalJWTAuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if claims, err := jwtService.ValidateToken(parts[1]); err == nil {
				c.Set("claims", claims)
				c.Set("userId", claims.UserID)
			}
		}

		c.Next()
	}
}

// UserIDFromContext returns the authenticated user id, or 0 for anonymous
// (ephemeral) requests.
func UserIDFromContext(c *gin.Context) uint {
	if v, exists := c.Get("userId"); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
