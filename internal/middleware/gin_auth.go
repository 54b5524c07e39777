package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserContextKey is where GinRequireAuth stores the authenticated user.
const UserContextKey = "user"

// GinRequireAuth adapts the net/http AuthMiddleware to Gin.
func GinRequireAuth(auth *AuthMiddleware) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Bridge handler to allow net/http middleware execution
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			if user, ok := UserFromContext(r.Context()); ok {
				c.Set(UserContextKey, user)
			}
			c.Next()
		})

		handler := auth.RequireAuth(next)

		handler.ServeHTTP(c.Writer, c.Request)

		// If auth middleware already handled the response, stop Gin chain
		if c.Writer.Written() {
			c.Abort()
			return
		}
	}
}
