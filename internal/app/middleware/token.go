package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orthodoxrecords/site/pkg/response"
)

// TokenKey is the gin context key holding the caller's GitHub token.
const TokenKey = response.TokenKey

// ExtractToken returns the caller's bearer token from the Authorization
// header, falling back to the access_token query parameter. The query
// fallback exists because the admin page receives its token in the callback
// redirect URL and may replay it the same way.
func ExtractToken(c *gin.Context) string {
	if token := extractBearer(c.GetHeader("Authorization")); token != "" {
		return token
	}
	return strings.TrimSpace(c.Query("access_token"))
}

// RequireToken rejects requests that carry no token with 401.
func RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c)
		if token == "" {
			response.Unauthorized(c, "missing bearer token")
			c.Abort()
			return
		}
		c.Set(TokenKey, token)
		c.Next()
	}
}

// StaticToken guards operator endpoints with a fixed bearer token.
func StaticToken(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := extractBearer(c.GetHeader("Authorization"))
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
			response.Unauthorized(c, "invalid diagnostics token")
			c.Abort()
			return
		}
		c.Next()
	}
}

// extractBearer accepts both "Bearer x" and GitHub's "token x" schemes.
func extractBearer(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") && !strings.EqualFold(parts[0], "token") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
