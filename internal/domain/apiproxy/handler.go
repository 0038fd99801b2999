package apiproxy

import (
	"context"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/orthodoxrecords/site/internal/infrastructure/github"
	"github.com/orthodoxrecords/site/pkg/response"
)

// Forwarder relays one API call upstream.
type Forwarder interface {
	Forward(ctx context.Context, req github.ForwardRequest) (*github.ForwardResponse, error)
}

// Prefixes lists the path roots the proxy is willing to forward. "/user*"
// covers both the authenticated user and public profiles under /users.
var Prefixes = []string{"/repos/*path", "/user", "/user/*path", "/users/*path", "/orgs/*path"}

var methods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// relayedHeaders are copied from the upstream response. Rate limit headers
// are left out so they do not clash with the proxy's own.
var relayedHeaders = []string{"Content-Type", "Link", "ETag"}

// Handler forwards allow-listed GitHub REST calls with the caller's token.
type Handler struct {
	forwarder Forwarder
	logger    *zap.Logger
}

// NewHandler returns a Handler.
func NewHandler(forwarder Forwarder, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{forwarder: forwarder, logger: logger}
}

// RegisterRoutes mounts every prefix for every forwarded method behind tokenMW.
func (h *Handler) RegisterRoutes(rg gin.IRoutes, tokenMW gin.HandlerFunc) {
	for _, prefix := range Prefixes {
		for _, method := range methods {
			rg.Handle(method, prefix, tokenMW, h.forward)
		}
	}
}

func (h *Handler) forward(c *gin.Context) {
	token := response.MustToken(c)
	if token == "" {
		return
	}
	escaped := c.Request.URL.EscapedPath()
	if !safePath(c.Request.URL.Path) || !safePath(escaped) {
		response.NotFoundText(c)
		return
	}

	resp, err := h.forwarder.Forward(c.Request.Context(), github.ForwardRequest{
		Method:      c.Request.Method,
		Path:        escaped,
		RawQuery:    stripQueryParam(c.Request.URL.RawQuery, "access_token"),
		Token:       token,
		Body:        c.Request.Body,
		ContentType: c.GetHeader("Content-Type"),
		Accept:      c.GetHeader("Accept"),
	})
	if err != nil {
		h.logger.Warn("api forward failed", zap.String("method", c.Request.Method), zap.String("path", escaped), zap.Error(err))
		response.UpstreamError(c, err)
		return
	}
	defer resp.Body.Close()

	for _, name := range relayedHeaders {
		if v := resp.Header.Get(name); v != "" {
			c.Writer.Header().Set(name, v)
		}
	}
	c.Status(resp.StatusCode)
	if c.Request.Method == http.MethodHead {
		c.Writer.WriteHeaderNow()
		return
	}
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		// status is already on the wire
		_ = c.Error(err)
	}
}

// safePath rejects dot segments and doubled slashes. A trailing slash is
// allowed.
func safePath(p string) bool {
	trimmed := strings.TrimSuffix(p, "/")
	if trimmed == "" {
		return false
	}
	return path.Clean(trimmed) == trimmed && !strings.Contains(strings.ToLower(p), "%2e")
}

// stripQueryParam drops every occurrence of key from raw, keeping the order
// and encoding of the remaining parameters.
func stripQueryParam(raw, key string) string {
	if raw == "" {
		return ""
	}
	parts := strings.Split(raw, "&")
	kept := parts[:0]
	for _, part := range parts {
		if part == "" {
			continue
		}
		name, _, _ := strings.Cut(part, "=")
		if name == key {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, "&")
}
