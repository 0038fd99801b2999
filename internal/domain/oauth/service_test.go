package oauth

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/orthodoxrecords/site/internal/infrastructure/github"
)

type fakeProvider struct {
	authorize   github.AuthorizeParams
	exchanged   []string
	token       github.Token
	exchangeErr error
	revoked     []string
	outcome     github.RevokeOutcome
	revokeErr   error
}

func (f *fakeProvider) AuthorizeURL(p github.AuthorizeParams) string {
	f.authorize = p
	q := url.Values{}
	q.Set("redirect_uri", p.RedirectURI)
	q.Set("state", p.State)
	return "https://github.test/login/oauth/authorize?" + q.Encode()
}

func (f *fakeProvider) ExchangeCode(_ context.Context, code string) (github.Token, error) {
	f.exchanged = append(f.exchanged, code)
	return f.token, f.exchangeErr
}

func (f *fakeProvider) RevokeToken(_ context.Context, token string) (github.RevokeOutcome, error) {
	f.revoked = append(f.revoked, token)
	return f.outcome, f.revokeErr
}

func newTestService(p *fakeProvider, publicURL string) *Service {
	return NewService(p, "https://site.test/admin/", publicURL, zap.NewNop())
}

func TestBeginKeepsCallerState(t *testing.T) {
	provider := &fakeProvider{}
	service := newTestService(provider, "")

	_, session := service.Begin(AuthRequest{Origin: "https://proxy.test", State: "abc123"})

	require.Equal(t, "abc123", session.State)
	require.Equal(t, "abc123", provider.authorize.State)
	require.Equal(t, "https://proxy.test/callback", provider.authorize.RedirectURI)
}

func TestBeginGeneratesState(t *testing.T) {
	provider := &fakeProvider{}
	service := newTestService(provider, "")
	service.newState = func() string { return "generated" }

	_, session := service.Begin(AuthRequest{Origin: "http://localhost:8787", State: "   "})

	require.Equal(t, "generated", session.State)
}

func TestBeginPrefersPublicURL(t *testing.T) {
	provider := &fakeProvider{}
	service := newTestService(provider, "https://auth.orthodox.test/")

	_, _ = service.Begin(AuthRequest{Origin: "http://10.0.0.4:8787", Login: " octocat ", ForceLogin: true})

	require.Equal(t, "https://auth.orthodox.test/callback", provider.authorize.RedirectURI)
	require.Equal(t, "octocat", provider.authorize.Login)
	require.True(t, provider.authorize.ForceLogin)
}

func TestRandomStateIsUnique(t *testing.T) {
	a, b := randomState(), randomState()
	require.Len(t, a, 32)
	require.NotEqual(t, a, b)
}

func TestCompleteMissingCodeSkipsExchange(t *testing.T) {
	provider := &fakeProvider{}
	service := newTestService(provider, "")

	_, _, err := service.Complete(context.Background(), CallbackRequest{State: "s"})

	require.True(t, errors.Is(err, ErrMissingCode))
	require.Empty(t, provider.exchanged)
}

func TestCompleteRedirectsWithToken(t *testing.T) {
	provider := &fakeProvider{token: github.Token{AccessToken: "gho_abc", TokenType: "bearer", Scope: "repo"}}
	service := newTestService(provider, "")

	target, session, err := service.Complete(context.Background(), CallbackRequest{Code: "the-code", State: "s1"})
	require.NoError(t, err)
	require.Equal(t, []string{"the-code"}, provider.exchanged)
	require.Equal(t, "gho_abc", session.AccessToken)

	u, err := url.Parse(target)
	require.NoError(t, err)
	require.Equal(t, "site.test", u.Host)
	require.Equal(t, "/admin/", u.Path)
	require.Equal(t, "gho_abc", u.Query().Get("access_token"))
	require.Equal(t, "bearer", u.Query().Get("token_type"))
	require.Equal(t, "s1", u.Query().Get("state"))
}

func TestCompletePropagatesExchangeError(t *testing.T) {
	provider := &fakeProvider{exchangeErr: &github.ExchangeError{Code: "bad_verification_code"}}
	service := newTestService(provider, "")

	_, _, err := service.Complete(context.Background(), CallbackRequest{Code: "stale"})

	require.True(t, errors.Is(err, github.ErrExchangeRejected))
}

func TestRevoke(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		provider := &fakeProvider{}
		err := newTestService(provider, "").Revoke(context.Background(), "  ")
		require.True(t, errors.Is(err, ErrMissingToken))
		require.Empty(t, provider.revoked)
	})
	t.Run("already gone counts as success", func(t *testing.T) {
		provider := &fakeProvider{outcome: github.AlreadyGone}
		require.NoError(t, newTestService(provider, "").Revoke(context.Background(), "gho_abc"))
		require.Equal(t, []string{"gho_abc"}, provider.revoked)
	})
	t.Run("provider rejection", func(t *testing.T) {
		provider := &fakeProvider{revokeErr: &github.RevokeError{Status: 422, Message: "Validation Failed"}}
		err := newTestService(provider, "").Revoke(context.Background(), "gho_abc")
		var revErr *github.RevokeError
		require.True(t, errors.As(err, &revErr))
	})
}

func TestSanitizeStripsMarkup(t *testing.T) {
	service := newTestService(&fakeProvider{}, "")
	require.Equal(t, "bad code", service.Sanitize("<script>alert(1)</script>bad code"))
}
