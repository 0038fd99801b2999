package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/orthodoxrecords/site/internal/app/diagnostics"
	"github.com/orthodoxrecords/site/internal/config"
	"github.com/orthodoxrecords/site/internal/domain/apiproxy"
	"github.com/orthodoxrecords/site/internal/domain/oauth"
	"github.com/orthodoxrecords/site/internal/infrastructure/github"
	"github.com/orthodoxrecords/site/internal/infrastructure/ratelimit"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "test", Env: "test", Port: "8787"},
		GitHub: config.GitHubConfig{
			ClientID:     "client-123",
			ClientSecret: "shh-secret",
			AuthorizeURL: "https://github.test/login/oauth/authorize",
			TokenURL:     "https://github.test/login/oauth/access_token",
			APIURL:       "https://api.github.test",
			DefaultScope: "repo",
			UserAgent:    "test",
		},
		Admin:     config.AdminConfig{SiteURL: "https://site.test", Path: "/admin/"},
		RateLimit: config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2},
		Cors: config.CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		},
		Diagnostics: config.DiagnosticsConfig{Token: "diag-token", MaxLogLines: 10},
	}
}

func newTestRouter(cfg *config.Config, ipLimiter ratelimit.Limiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	client := github.NewClient(cfg.GitHub, nil, nil)
	buffer := diagnostics.NewLogBuffer(cfg.Diagnostics.MaxLogLines)
	return NewRouter(RouterDeps{
		Config:       cfg,
		OAuthHandler: oauth.NewHandler(oauth.NewService(client, cfg.AdminURL(), cfg.App.PublicURL, nil)),
		APIHandler:   apiproxy.NewHandler(client, nil),
		Diagnostics:  diagnostics.NewHandler(buffer),
		LogBuffer:    buffer,
		IPLimiter:    ipLimiter,
	})
}

func do(r http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPreflightAnyPath(t *testing.T) {
	r := newTestRouter(testConfig(), nil)
	for _, path := range []string{"/repos/o/r", "/revoke", "/nowhere"} {
		w := do(r, http.MethodOptions, path, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		require.Empty(t, w.Body.String())
		require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		require.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	}
}

func TestHealthAndNotFound(t *testing.T) {
	r := newTestRouter(testConfig(), nil)

	w := do(r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())

	w = do(r, http.MethodGet, "/does/not/exist", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Not Found", w.Body.String())
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestProxyRequiresToken(t *testing.T) {
	r := newTestRouter(testConfig(), nil)
	w := do(r, http.MethodGet, "/user", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDebugLogsGuarded(t *testing.T) {
	r := newTestRouter(testConfig(), nil)

	require.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/debug/logs", nil).Code)
	w := do(r, http.MethodGet, "/debug/logs", map[string]string{"Authorization": "Bearer diag-token"})
	require.Equal(t, http.StatusOK, w.Code)

	cfg := testConfig()
	cfg.Diagnostics.Token = ""
	require.Equal(t, http.StatusNotFound, do(newTestRouter(cfg, nil), http.MethodGet, "/debug/logs", nil).Code)
}

func TestMetricsToggle(t *testing.T) {
	cfg := testConfig()
	require.Equal(t, http.StatusNotFound, do(newTestRouter(cfg, nil), http.MethodGet, "/metrics", nil).Code)

	cfg.Monitoring.PrometheusEnabled = true
	require.Equal(t, http.StatusOK, do(newTestRouter(cfg, nil), http.MethodGet, "/metrics", nil).Code)
}

func TestRateLimitPerIP(t *testing.T) {
	r := newTestRouter(testConfig(), ratelimit.NewMemoryLimiter(1, 0))

	require.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/user", nil).Code)
	w := do(r, http.MethodGet, "/user", nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestHealthIgnoresRateLimit(t *testing.T) {
	r := newTestRouter(testConfig(), ratelimit.NewMemoryLimiter(2, 0))

	for i := 0; i < 5; i++ {
		w := do(r, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, w.Code, "attempt %d", i+1)
		require.Equal(t, "OK", w.Body.String())
	}
	require.Equal(t, http.StatusOK, do(r, http.MethodGet, "/health/", nil).Code)
}

func TestRejectedRequestsAreLogged(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buffer := diagnostics.NewLogBuffer(10)
	r := NewRouter(RouterDeps{
		Config:      testConfig(),
		Diagnostics: diagnostics.NewHandler(buffer),
		LogBuffer:   buffer,
		IPLimiter:   ratelimit.NewMemoryLimiter(1, 0),
	})

	do(r, http.MethodGet, "/nowhere", nil)
	require.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, "/nowhere", nil).Code)

	lines := buffer.Snapshot()
	require.Len(t, lines, 2)
	require.True(t, strings.HasSuffix(lines[1], "GET /nowhere -> 429"), lines[1])
}
