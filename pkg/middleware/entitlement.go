package middleware

import (
	"context"

	"companion-chat/backend/pkg/errors"
	"companion-chat/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// EntitlementChecker reports whether a user may use paid features.
type EntitlementChecker interface {
	IsSubscribed(ctx context.Context, userID uint) (bool, error)
}

// RequireSubscriber gates a route on subscription status. Anonymous requests
// pass through: ephemeral sessions are the product's free tier and the
// lifecycle core never persists them.
func RequireSubscriber(checker EntitlementChecker, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserIDFromContext(c)
		if userID == 0 {
			c.Next()
			return
		}

		subscribed, err := checker.IsSubscribed(c.Request.Context(), userID)
		if err != nil {
			log.LogError(err, "entitlement check failed", "user_id", userID)
			c.Error(errors.NewForbiddenError(errors.CodeNotEntitled, "Unable to verify subscription"))
			c.Abort()
			return
		}

		if !subscribed {
			c.Error(errors.NewForbiddenError(errors.CodeNotEntitled, "An active subscription is required"))
			c.Abort()
			return
		}

		c.Next()
	}
}
