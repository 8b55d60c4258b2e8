package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	guestCookie       = "guest_session"
	guestCookieMaxAge = 30 * 24 * 60 * 60
)

// GuestSessionMiddleware assigns anonymous visitors a per-client token so
// ephemeral chat sessions are isolated between visitors. The token rides
// in a cookie (or the X-Guest-Session header for non-browser clients) and
// is minted on first contact. Authenticated requests pass through
// untouched.
func GuestSessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserIDFromContext(c) != 0 {
			c.Next()
			return
		}

		token, err := c.Cookie(guestCookie)
		if err != nil || token == "" {
			token = c.GetHeader("X-Guest-Session")
		}
		if token == "" {
			token = uuid.NewString()
			c.SetCookie(guestCookie, token, guestCookieMaxAge, "/", "", false, true)
		}

		c.Header("X-Guest-Session", token)
		c.Set("guestId", token)
		c.Next()
	}
}

// GuestIDFromContext returns the anonymous visitor token, or "" for
// authenticated requests.
func GuestIDFromContext(c *gin.Context) string {
	if v, exists := c.Get("guestId"); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
