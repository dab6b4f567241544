package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyUserID is the gin context key holding the acting user's ID.
const ContextKeyUserID = "user_id"

// Identity resolves the acting user from the X-User-ID header. The dashboard
// is a single-household deployment; its reverse proxy sets the header after
// its own authentication, so the API trusts it.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-User-ID")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "missing X-User-ID header"},
			})
			return
		}
		userID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "invalid X-User-ID header"},
			})
			return
		}
		c.Set(ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID extracts the acting user's ID set by Identity.
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	v, ok := c.Get(ContextKeyUserID)
	if !ok {
		return uuid.Nil, errors.New("user ID not found in context")
	}
	userID, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("user ID has unexpected type")
	}
	return userID, nil
}
