package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config represents the full runtime configuration tree.
type Config struct {
	App         AppConfig
	GitHub      GitHubConfig
	Admin       AdminConfig
	Redis       RedisConfig
	RateLimit   RateLimitConfig
	Cors        CORSConfig
	Monitoring  MonitoringConfig
	Diagnostics DiagnosticsConfig
}

// AppConfig captures application-level settings.
type AppConfig struct {
	Name    string `validate:"required"`
	Env     string `validate:"oneof=development staging production test"`
	Version string
	Port    string `validate:"required,numeric"`
	// PublicURL overrides the origin used to build the OAuth redirect URI.
	PublicURL string `validate:"omitempty,url"`
}

// GitHubConfig holds the OAuth app credentials and provider endpoints.
type GitHubConfig struct {
	ClientID     string        `validate:"required"`
	ClientSecret string        `validate:"required"`
	AuthorizeURL string        `validate:"required,url"`
	TokenURL     string        `validate:"required,url"`
	APIURL       string        `validate:"required,url"`
	DefaultScope string        `validate:"required"`
	UserAgent    string        `validate:"required"`
	Timeout      time.Duration `validate:"gt=0"`
}

// AdminConfig locates the CMS admin page that receives the token.
type AdminConfig struct {
	SiteURL string `validate:"required,url"`
	Path    string `validate:"required,startswith=/"`
}

// RedisConfig stores redis connectivity info.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	TLS      bool
}

// RateLimitConfig manages throttling parameters.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int `validate:"required_if=Enabled true,gte=0"`
	Burst             int `validate:"gte=0"`
	RedisPrefix       string
}

// CORSConfig declares cross-origin policy.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// MonitoringConfig adds observability tunables.
type MonitoringConfig struct {
	PrometheusEnabled bool
	SentryDSN         string
	SentrySampleRate  float64 `validate:"gte=0,lte=1"`
}

// DiagnosticsConfig governs debug helpers.
type DiagnosticsConfig struct {
	Token       string
	MaxLogLines int
}

// Load reads from environment (optionally .env) and builds Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:      getenv("APP_NAME", "orthodox-oauth-proxy"),
			Env:       getenv("APP_ENV", "development"),
			Version:   getenv("APP_VERSION", "0.1.0"),
			Port:      getenv("PORT", "8787"),
			PublicURL: strings.TrimRight(getenv("PUBLIC_URL", ""), "/"),
		},
		GitHub: GitHubConfig{
			ClientID:     getenv("GITHUB_CLIENT_ID", ""),
			ClientSecret: getenv("GITHUB_CLIENT_SECRET", ""),
			AuthorizeURL: getenv("GITHUB_AUTHORIZE_URL", "https://github.com/login/oauth/authorize"),
			TokenURL:     getenv("GITHUB_TOKEN_URL", "https://github.com/login/oauth/access_token"),
			APIURL:       strings.TrimRight(getenv("GITHUB_API_URL", "https://api.github.com"), "/"),
			DefaultScope: getenv("GITHUB_DEFAULT_SCOPE", "repo"),
			UserAgent:    getenv("GITHUB_USER_AGENT", "orthodox-oauth-proxy"),
			Timeout:      time.Duration(getInt("GITHUB_TIMEOUT_SEC", 15)) * time.Second,
		},
		Admin: AdminConfig{
			SiteURL: strings.TrimRight(getenv("SITE_URL", ""), "/"),
			Path:    getenv("ADMIN_PATH", "/admin/"),
		},
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", ""),
			Username: getenv("REDIS_USER", ""),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
			TLS:      getBool("REDIS_TLS", false),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMinute: getInt("RATE_LIMIT_PER_MIN", 120),
			Burst:             getInt("RATE_LIMIT_BURST", 20),
			RedisPrefix:       getenv("RATE_LIMIT_PREFIX", "oauthproxy"),
		},
		Cors: CORSConfig{
			AllowedOrigins: splitAndTrim(getenv("CORS_ORIGINS", "*")),
			AllowedMethods: splitAndTrim(getenv("CORS_METHODS", "GET,HEAD,POST,PUT,PATCH,DELETE,OPTIONS")),
			AllowedHeaders: splitAndTrim(getenv("CORS_HEADERS", "Authorization,Content-Type,Accept,X-Requested-With")),
		},
		Monitoring: MonitoringConfig{
			PrometheusEnabled: getBool("PROMETHEUS_ENABLED", true),
			SentryDSN:         getenv("SENTRY_DSN", ""),
			SentrySampleRate:  getFloat("SENTRY_SAMPLE_RATE", 0.2),
		},
		Diagnostics: DiagnosticsConfig{
			Token:       getenv("DIAGNOSTICS_TOKEN", ""),
			MaxLogLines: getInt("DEBUG_LOG_LIMIT", 200),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings. Secrets are never echoed in the error.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verr validator.ValidationErrors
		if errors.As(err, &verr) && len(verr) > 0 {
			fields := make([]string, 0, len(verr))
			for _, fe := range verr {
				fields = append(fields, fe.Namespace()+":"+fe.Tag())
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// AdminURL is the absolute URL of the CMS admin page.
func (c *Config) AdminURL() string {
	return c.Admin.SiteURL + c.Admin.Path
}

func getenv(key, def string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	return val
}

func getInt(key string, def int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return i
}

func getBool(key string, def bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return parsed
}

func getFloat(key string, def float64) float64 {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return def
	}
	return parsed
}

func splitAndTrim(val string) []string {
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
