package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionCookieName is the cookie carrying the anonymous cart session id.
	SessionCookieName = "cart_session"

	sessionContextKey = "cart_session_id"

	// Cookie lifetime matches the cart TTL.
	sessionMaxAge = 30 * 24 * 60 * 60
)

// CartSession assigns an opaque session id to first-time visitors and makes
// it available to handlers. The id carries no identity; it only scopes the
// cart.
func CartSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookieName)
		if err != nil || !validSessionID(sessionID) {
			sessionID = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookieName, sessionID, sessionMaxAge, "/", "", false, true)
		}
		c.Set(sessionContextKey, sessionID)
		c.Next()
	}
}

// GetSessionID returns the cart session id bound to this request.
func GetSessionID(c *gin.Context) string {
	if v, exists := c.Get(sessionContextKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// validSessionID rejects anything that is not a UUID so a tampered cookie is
// replaced instead of trusted.
func validSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
