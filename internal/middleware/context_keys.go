package middleware

import (
	"github.com/SscSPs/caja_backoffice/internal/core/session"
	"github.com/gin-gonic/gin"
)

// userIDKey is the key used to store the authenticated operator's ID.
const userIDKey = contextKey("userID")

// sessionKey is the key used to store the operator's session.Context.
const sessionKey = contextKey("session")

// GetUserIDFromContext retrieves the authenticated operator ID from the Gin context.
// It returns the ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if v, exists := c.Get(string(userIDKey)); exists {
		userID, ok := v.(string)
		return userID, ok
	}
	// check in the request context as well
	if v, ok := c.Request.Context().Value(userIDKey).(string); ok {
		return v, true
	}
	return "", false
}

// GetSessionFromContext retrieves the operator's session.Context set by AuthMiddleware.
func GetSessionFromContext(c *gin.Context) (session.Context, bool) {
	sess, ok := c.Request.Context().Value(sessionKey).(session.Context)
	return sess, ok
}
