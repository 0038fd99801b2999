package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("GITHUB_CLIENT_ID", "client-123")
	t.Setenv("GITHUB_CLIENT_SECRET", "shh-secret")
	t.Setenv("SITE_URL", "https://orthodox.test/")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8787", cfg.App.Port)
	require.Equal(t, "https://api.github.com", cfg.GitHub.APIURL)
	require.Equal(t, "repo", cfg.GitHub.DefaultScope)
	require.Equal(t, 15*time.Second, cfg.GitHub.Timeout)
	require.Equal(t, []string{"*"}, cfg.Cors.AllowedOrigins)
	require.Contains(t, cfg.Cors.AllowedMethods, "PATCH")
	require.True(t, cfg.RateLimit.Enabled)
	require.Equal(t, "https://orthodox.test/admin/", cfg.AdminURL())
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("ADMIN_PATH", "/cms/")
	t.Setenv("PUBLIC_URL", "https://auth.orthodox.test/")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("CORS_ORIGINS", "https://a.test, https://b.test")
	t.Setenv("GITHUB_TIMEOUT_SEC", "3")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9000", cfg.App.Port)
	require.Equal(t, "https://auth.orthodox.test", cfg.App.PublicURL)
	require.False(t, cfg.RateLimit.Enabled)
	require.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.Cors.AllowedOrigins)
	require.Equal(t, 3*time.Second, cfg.GitHub.Timeout)
	require.Equal(t, "https://orthodox.test/cms/", cfg.AdminURL())
}

func TestLoadRejectsMissingCredentials(t *testing.T) {
	setRequired(t)
	t.Setenv("GITHUB_CLIENT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "ClientSecret:required")
}

func TestValidateNeverEchoesValues(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_PATH", "no-leading-slash")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "Admin.Path")
	require.NotContains(t, err.Error(), "shh-secret")
	require.NotContains(t, err.Error(), "no-leading-slash")
}
