package middleware

import (
	"github.com/gin-gonic/gin"

	"feedboard/cmd/api/auth"
)

// Auth derives the request identity from the Authorization header and
// stores it in the request context. It is a soft gate: it never rejects
// a request, it only degrades to an anonymous identity. Handlers and
// resolvers that require authentication check the identity themselves.
func Auth(mgr *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := auth.DeriveIdentity(c.GetHeader("Authorization"), mgr)
		ctx := auth.WithIdentity(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
