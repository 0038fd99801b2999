package oauth

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/orthodoxrecords/site/internal/infrastructure/github"
	"github.com/orthodoxrecords/site/internal/infrastructure/monitoring"
	"github.com/orthodoxrecords/site/pkg/response"
)

// Handler wires HTTP routes to the Service.
type Handler struct {
	service *Service
}

// NewHandler returns a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the OAuth flow. Trailing-slash variants are kept
// because CMS backends are configured with either form.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.GET("/auth", h.auth)
	rg.GET("/auth/", h.auth)
	rg.GET("/callback", h.callback)
	rg.GET("/callback/", h.callback)
	rg.POST("/revoke", h.revoke)
}

func (h *Handler) auth(c *gin.Context) {
	forceLogin, _ := strconv.ParseBool(c.Query("force_login"))
	target, _ := h.service.Begin(AuthRequest{
		Origin:     requestOrigin(c),
		State:      c.Query("state"),
		Scope:      c.Query("scope"),
		Login:      c.Query("login"),
		ForceLogin: forceLogin,
	})
	c.Redirect(http.StatusFound, target)
}

func (h *Handler) callback(c *gin.Context) {
	req := CallbackRequest{Code: c.Query("code"), State: c.Query("state")}
	target, _, err := h.service.Complete(c.Request.Context(), req)
	if err != nil {
		h.callbackError(c, err)
		return
	}
	c.Redirect(http.StatusFound, target)
}

func (h *Handler) callbackError(c *gin.Context, err error) {
	var exErr *github.ExchangeError
	switch {
	case errors.Is(err, ErrMissingCode):
		response.Text(c, http.StatusBadRequest, "Missing authorization code")
	case errors.As(err, &exErr):
		response.Text(c, http.StatusBadRequest, "Error: "+h.service.Sanitize(exErr.Message()))
	default:
		report(err, "/callback")
		_ = c.Error(err)
		response.Text(c, http.StatusInternalServerError, "Error: "+h.service.Sanitize(err.Error()))
	}
}

func (h *Handler) revoke(c *gin.Context) {
	var req RevokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, RevokeResponse{Error: ErrMissingToken.Error()})
		return
	}
	if err := h.service.Revoke(c.Request.Context(), req.Value()); err != nil {
		h.revokeError(c, err)
		return
	}
	c.JSON(http.StatusOK, RevokeResponse{Success: true})
}

func (h *Handler) revokeError(c *gin.Context, err error) {
	var revErr *github.RevokeError
	switch {
	case errors.Is(err, ErrMissingToken):
		c.JSON(http.StatusBadRequest, RevokeResponse{Error: err.Error()})
	case errors.As(err, &revErr):
		c.JSON(revErr.Status, RevokeResponse{Error: revErr.Message})
	default:
		report(err, "/revoke")
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, RevokeResponse{Error: err.Error()})
	}
}

// report sends unexpected failures to Sentry. A caller hanging up is not one.
func report(err error, route string) {
	if errors.Is(err, context.Canceled) {
		return
	}
	monitoring.CaptureError(err, map[string]string{"route": route})
}

// requestOrigin rebuilds scheme://host as seen by the caller, honouring the
// forwarding header set by the edge in front of the proxy.
func requestOrigin(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto == "https" || proto == "http" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}
