package response

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Text writes a plain text body. Browser-facing OAuth steps answer in text
// because the user lands on them directly.
func Text(c *gin.Context, status int, body string) {
	c.Data(status, "text/plain; charset=utf-8", []byte(body))
}

// NotFoundText is the catch-all answer for unknown paths.
func NotFoundText(c *gin.Context) {
	Text(c, http.StatusNotFound, "Not Found")
}

// Unauthorized helper.
func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: message})
}

// TooManyRequests helper.
func TooManyRequests(c *gin.Context, reset time.Time) {
	resetSeconds := strconv.FormatInt(reset.Unix(), 10)
	retryAfter := int(time.Until(reset).Seconds())
	if retryAfter < 0 {
		retryAfter = 0
	}
	c.Writer.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	c.Writer.Header().Set("X-RateLimit-Reset", resetSeconds)
	c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate_limited", Message: "slow down"})
}

// UpstreamError writes a 500 carrying the raw error message. Callers must
// only pass errors that have already been scrubbed of credentials.
func UpstreamError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "upstream_error", Message: err.Error()})
	_ = c.Error(err)
}

// TokenKey is the gin context key holding the caller's GitHub token.
const TokenKey = "github_token"

// MustToken returns the caller token stored by the token middleware.
func MustToken(c *gin.Context) string {
	val, exists := c.Get(TokenKey)
	token, ok := val.(string)
	if !exists || !ok || token == "" {
		Unauthorized(c, "missing bearer token")
		c.Abort()
		return ""
	}
	return token
}
