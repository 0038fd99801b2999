package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/orthodoxrecords/site/internal/infrastructure/github"
)

// Sentinel errors for deterministic HTTP mapping.
var (
	ErrMissingCode  = errors.New("missing authorization code")
	ErrMissingToken = errors.New("missing token")
)

// Provider abstracts the identity provider.
type Provider interface {
	AuthorizeURL(p github.AuthorizeParams) string
	ExchangeCode(ctx context.Context, code string) (github.Token, error)
	RevokeToken(ctx context.Context, token string) (github.RevokeOutcome, error)
}

// Service runs the authorization-code flow without keeping any state.
type Service struct {
	provider  Provider
	adminURL  string
	publicURL string
	sanitizer *bluemonday.Policy
	logger    *zap.Logger
	newState  func() string
}

// NewService wires a Service. adminURL receives the token after the
// callback; publicURL, when set, replaces the request origin in the
// redirect URI.
func NewService(provider Provider, adminURL, publicURL string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		provider:  provider,
		adminURL:  adminURL,
		publicURL: strings.TrimRight(publicURL, "/"),
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger,
		newState:  randomState,
	}
}

// Begin returns the provider authorization URL for req.
func (s *Service) Begin(req AuthRequest) (string, Session) {
	state := strings.TrimSpace(req.State)
	if state == "" {
		state = s.newState()
	}
	origin := req.Origin
	if s.publicURL != "" {
		origin = s.publicURL
	}
	target := s.provider.AuthorizeURL(github.AuthorizeParams{
		RedirectURI: origin + "/callback",
		State:       state,
		Scope:       strings.TrimSpace(req.Scope),
		Login:       strings.TrimSpace(req.Login),
		ForceLogin:  req.ForceLogin,
	})
	return target, Session{State: state}
}

// Complete exchanges the code and returns the admin URL carrying the token.
//
// The token travels in the query string because the admin page is served
// from another origin than the proxy: a cookie set here would never reach
// it. The admin page is expected to move the token into its own storage and
// drop it from the address bar.
func (s *Service) Complete(ctx context.Context, req CallbackRequest) (string, Session, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return "", Session{}, ErrMissingCode
	}
	token, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		return "", Session{}, err
	}
	session := Session{
		State:       req.State,
		Code:        code,
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		Scope:       token.Scope,
	}

	target, err := url.Parse(s.adminURL)
	if err != nil {
		return "", Session{}, fmt.Errorf("parse admin url: %w", err)
	}
	q := target.Query()
	q.Set("access_token", session.AccessToken)
	q.Set("token_type", session.TokenType)
	if session.State != "" {
		q.Set("state", session.State)
	}
	target.RawQuery = q.Encode()
	return target.String(), session, nil
}

// Revoke invalidates token at the provider.
func (s *Service) Revoke(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrMissingToken
	}
	outcome, err := s.provider.RevokeToken(ctx, token)
	if err != nil {
		return err
	}
	if outcome == github.AlreadyGone {
		// 404 covers both "revoked earlier" and "never issued"; either way
		// the token cannot be used afterwards.
		s.logger.Info("revoke: provider did not know the token")
	}
	return nil
}

// Sanitize strips markup from provider text before it is echoed to a browser.
func (s *Service) Sanitize(msg string) string {
	return s.sanitizer.Sanitize(msg)
}

func randomState() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
