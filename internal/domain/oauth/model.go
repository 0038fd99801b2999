package oauth

// Session is one authorization round trip. It only lives for the duration
// of a request: the proxy keeps no server-side record, and the admin page
// is the sole holder of the token once the callback redirect lands.
type Session struct {
	State       string
	Code        string
	AccessToken string
	TokenType   string
	Scope       string
}

// AuthRequest captures the inputs of GET /auth.
type AuthRequest struct {
	// Origin is the scheme://host the provider redirects back to.
	Origin     string
	State      string
	Scope      string
	Login      string
	ForceLogin bool
}

// CallbackRequest captures the inputs of GET /callback.
type CallbackRequest struct {
	Code  string
	State string
}

// RevokeRequest is the body of POST /revoke. access_token is accepted as an
// alias of token.
type RevokeRequest struct {
	Token       string `json:"token" binding:"required_without=AccessToken"`
	AccessToken string `json:"access_token"`
}

// Value returns whichever token field was supplied.
func (r RevokeRequest) Value() string {
	if r.Token != "" {
		return r.Token
	}
	return r.AccessToken
}

// RevokeResponse is the JSON answer of POST /revoke.
type RevokeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
