package app

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/orthodoxrecords/site/internal/app/diagnostics"
	"github.com/orthodoxrecords/site/internal/app/middleware"
	"github.com/orthodoxrecords/site/internal/config"
	"github.com/orthodoxrecords/site/internal/domain/apiproxy"
	"github.com/orthodoxrecords/site/internal/domain/oauth"
	"github.com/orthodoxrecords/site/internal/infrastructure/ratelimit"
	"github.com/orthodoxrecords/site/pkg/response"
)

// RouterDeps aggregates HTTP dependencies.
type RouterDeps struct {
	Config       *config.Config
	OAuthHandler *oauth.Handler
	APIHandler   *apiproxy.Handler
	Diagnostics  *diagnostics.Handler
	Logger       *zap.Logger
	LogBuffer    *diagnostics.LogBuffer
	IPLimiter    ratelimit.Limiter
	TokenLimiter ratelimit.Limiter
}

// NewRouter builds the gin engine.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config != nil && deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(logger, deps.LogBuffer))
	var cors config.CORSConfig
	if deps.Config != nil {
		cors = deps.Config.Cors
	}
	// global so 404s carry the headers too; OPTIONS stops here
	r.Use(middleware.CORS(cors))
	if deps.Config == nil || deps.Config.RateLimit.Enabled {
		// liveness probes must never see a 429
		r.Use(middleware.RateLimit(deps.IPLimiter, deps.TokenLimiter, diagnostics.HealthPaths...))
	}

	r.NoRoute(response.NotFoundText)

	if deps.Diagnostics != nil {
		deps.Diagnostics.RegisterPublic(r)
		if deps.Config != nil && deps.Config.Diagnostics.Token != "" {
			debug := r.Group("", middleware.StaticToken(deps.Config.Diagnostics.Token))
			deps.Diagnostics.RegisterProtected(debug)
		}
	}
	if deps.Config != nil && deps.Config.Monitoring.PrometheusEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	if deps.OAuthHandler != nil {
		deps.OAuthHandler.RegisterRoutes(r)
	}
	if deps.APIHandler != nil {
		deps.APIHandler.RegisterRoutes(r, middleware.RequireToken())
	}

	return r
}
