package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/orthodoxrecords/site/internal/config"
	"github.com/orthodoxrecords/site/internal/infrastructure/monitoring"
)

const maxProviderBody = 64 << 10

// ErrExchangeRejected matches any *ExchangeError.
var ErrExchangeRejected = errors.New("token exchange rejected")

// Token is the result of a successful code exchange.
type Token struct {
	AccessToken string
	TokenType   string
	Scope       string
}

// ExchangeError is a rejection reported by the token endpoint.
type ExchangeError struct {
	Status      int
	Code        string
	Description string
}

func (e *ExchangeError) Error() string {
	return "github: token exchange rejected: " + e.Message()
}

// Message is the provider's own wording, preferring the description.
func (e *ExchangeError) Message() string {
	if e.Description != "" {
		return e.Description
	}
	return e.Code
}

// Is makes errors.Is(err, ErrExchangeRejected) work.
func (e *ExchangeError) Is(target error) bool {
	return target == ErrExchangeRejected
}

// RevokeOutcome tells apart the two statuses treated as a successful revoke.
type RevokeOutcome int

const (
	Revoked RevokeOutcome = iota + 1
	// AlreadyGone means GitHub answered 404: the token was revoked earlier or
	// never existed. Both leave the token unusable.
	AlreadyGone
)

// RevokeError is a non-success answer from the revocation endpoint.
type RevokeError struct {
	Status  int
	Message string
}

func (e *RevokeError) Error() string {
	return fmt.Sprintf("github: revoke failed with status %d: %s", e.Status, e.Message)
}

// AuthorizeParams are the per-request parts of the authorization URL.
type AuthorizeParams struct {
	RedirectURI string
	State       string
	Scope       string
	Login       string
	ForceLogin  bool
}

// ForwardRequest is an API call to relay on behalf of a token holder.
type ForwardRequest struct {
	Method      string
	Path        string
	RawQuery    string
	Token       string
	Body        io.Reader
	ContentType string
	Accept      string
}

// ForwardResponse is the upstream answer. The caller must close Body.
type ForwardResponse struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// Client talks to GitHub with the server-held OAuth app credentials.
type Client struct {
	cfg    config.GitHubConfig
	http   *http.Client
	logger *zap.Logger
}

// NewClient builds a Client. A nil httpClient gets one with cfg.Timeout.
func NewClient(cfg config.GitHubConfig, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger}
}

// AuthorizeURL builds the provider login URL.
func (c *Client) AuthorizeURL(p AuthorizeParams) string {
	scope := p.Scope
	if scope == "" {
		scope = c.cfg.DefaultScope
	}
	q := url.Values{}
	q.Set("client_id", c.cfg.ClientID)
	q.Set("redirect_uri", p.RedirectURI)
	q.Set("state", p.State)
	q.Set("scope", scope)
	if p.Login != "" {
		q.Set("login", p.Login)
	}
	if p.ForceLogin {
		q.Set("prompt", "select_account")
	}
	return c.cfg.AuthorizeURL + "?" + q.Encode()
}

// ExchangeCode trades an authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (Token, error) {
	payload, err := json.Marshal(map[string]string{
		"client_id":     c.cfg.ClientID,
		"client_secret": c.cfg.ClientSecret,
		"code":          code,
	})
	if err != nil {
		return Token{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, bytes.NewReader(payload))
	if err != nil {
		return Token{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.do("exchange", req)
	if err != nil {
		return Token{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProviderBody))
	if err != nil {
		return Token{}, fmt.Errorf("read token response: %w", err)
	}
	if !gjson.ValidBytes(body) {
		if resp.StatusCode >= http.StatusBadRequest {
			return Token{}, &ExchangeError{
				Status:      resp.StatusCode,
				Code:        "http_" + strconv.Itoa(resp.StatusCode),
				Description: c.redact(strings.TrimSpace(string(body))),
			}
		}
		return Token{}, errors.New("malformed token response")
	}

	res := gjson.ParseBytes(body)
	if code := res.Get("error").String(); code != "" {
		return Token{}, &ExchangeError{
			Status:      resp.StatusCode,
			Code:        code,
			Description: c.redact(res.Get("error_description").String()),
		}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		msg := res.Get("message").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return Token{}, &ExchangeError{
			Status:      resp.StatusCode,
			Code:        "http_" + strconv.Itoa(resp.StatusCode),
			Description: c.redact(msg),
		}
	}
	token := Token{
		AccessToken: res.Get("access_token").String(),
		TokenType:   res.Get("token_type").String(),
		Scope:       res.Get("scope").String(),
	}
	if token.AccessToken == "" {
		return Token{}, errors.New("token response missing access_token")
	}
	if token.TokenType == "" {
		token.TokenType = "bearer"
	}
	return token, nil
}

// RevokeToken deletes an OAuth token through the applications API, which
// authenticates the app itself with HTTP Basic.
func (c *Client) RevokeToken(ctx context.Context, token string) (RevokeOutcome, error) {
	payload, err := json.Marshal(map[string]string{"access_token": token})
	if err != nil {
		return 0, err
	}
	endpoint := c.cfg.APIURL + "/applications/" + url.PathEscape(c.cfg.ClientID) + "/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.do("revoke", req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return Revoked, nil
	case resp.StatusCode == http.StatusNotFound:
		return AlreadyGone, nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxProviderBody))
	msg := gjson.GetBytes(body, "message").String()
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return 0, &RevokeError{Status: resp.StatusCode, Message: c.redact(msg)}
}

// Forward relays an API call to the provider with the caller's token.
func (c *Client) Forward(ctx context.Context, fr ForwardRequest) (*ForwardResponse, error) {
	target := c.cfg.APIURL + fr.Path
	if fr.RawQuery != "" {
		target += "?" + fr.RawQuery
	}
	body := fr.Body
	if fr.Method == http.MethodGet || fr.Method == http.MethodHead {
		body = nil
	}
	req, err := http.NewRequestWithContext(ctx, fr.Method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+fr.Token)
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	accept := fr.Accept
	if accept == "" {
		accept = "application/vnd.github+json"
	}
	req.Header.Set("Accept", accept)
	if body != nil && fr.ContentType != "" {
		req.Header.Set("Content-Type", fr.ContentType)
	}

	resp, err := c.do("api", req)
	if err != nil {
		return nil, err
	}
	return &ForwardResponse{StatusCode: resp.StatusCode, Header: resp.Header, Body: resp.Body}, nil
}

func (c *Client) do(operation string, req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		monitoring.ObserveUpstream(operation, "error", elapsed.Seconds())
		c.logger.Warn("github request failed",
			zap.String("operation", operation),
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Duration("latency", elapsed),
		)
		return nil, &redactedError{msg: c.redact(err.Error()), err: err}
	}
	monitoring.ObserveUpstream(operation, strconv.Itoa(resp.StatusCode), elapsed.Seconds())
	c.logger.Debug("github request",
		zap.String("operation", operation),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", elapsed),
	)
	return resp, nil
}

// redactedError hides the secret from Error() while keeping the chain, so
// callers can still match context.Canceled or *url.Error.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.err }

// redact keeps the client secret out of anything relayed to a caller.
func (c *Client) redact(s string) string {
	if c.cfg.ClientSecret == "" {
		return s
	}
	return strings.ReplaceAll(s, c.cfg.ClientSecret, "[redacted]")
}
