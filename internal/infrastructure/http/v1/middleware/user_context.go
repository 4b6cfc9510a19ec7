package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	appctx "restostock/internal/core/context"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserName = "X-User-Name"
)

// UserContext puts the caller identity from X-User-ID into the request
// context. The upstream gateway authenticates; ids are taken as given.
func UserContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := strings.TrimSpace(c.GetHeader(HeaderUserID)); userID != "" {
			user := &appctx.UserContext{
				UserID: userID,
				Name:   strings.TrimSpace(c.GetHeader(HeaderUserName)),
			}
			c.Request = c.Request.WithContext(appctx.WithUser(c.Request.Context(), user))
			c.Set("user_id", userID)
		}
		c.Next()
	}
}
