package genie

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	sdkconfig "github.com/databricks/databricks-sdk-go/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Authenticator decorates an outgoing request with credentials.
type Authenticator interface {
	Authenticate(r *http.Request) error
}

// TokenAuth authenticates with a static personal access token.
type TokenAuth string

func (t TokenAuth) Authenticate(r *http.Request) error {
	if t == "" {
		return &Error{Op: "authenticate", Err: ErrAuth, Msg: "empty token"}
	}
	r.Header.Set("Authorization", "Bearer "+string(t))
	return nil
}

// tokenSourceAuth authenticates with tokens from an oauth2.TokenSource.
type tokenSourceAuth struct {
	src oauth2.TokenSource
}

// NewOAuthM2MAuth returns an Authenticator using the OAuth client
// credentials flow against the workspace token endpoint.
func NewOAuthM2MAuth(ctx context.Context, host, clientID, clientSecret string) Authenticator {
	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     strings.TrimRight(host, "/") + "/oidc/v1/token",
		Scopes:       []string{"all-apis"},
	}
	return &tokenSourceAuth{src: cc.TokenSource(ctx)}
}

func (a *tokenSourceAuth) Authenticate(r *http.Request) error {
	tok, err := a.src.Token()
	if err != nil {
		return &Error{Op: "authenticate", Err: ErrAuth, Msg: fmt.Sprintf("fetching oauth token: %v", err)}
	}
	tok.SetAuthHeader(r)
	return nil
}

// ProfileAuth authenticates through a named profile in the Databricks CLI
// configuration file, the same way `databricks auth token --profile` does.
type ProfileAuth struct {
	cfg *sdkconfig.Config
}

// NewProfileAuth resolves the profile. host may be empty, in which case the
// profile's host is used.
func NewProfileAuth(profile, host string) (*ProfileAuth, error) {
	cfg := &sdkconfig.Config{
		Profile: profile,
		Host:    host,
	}
	if err := cfg.EnsureResolved(); err != nil {
		return nil, &Error{
			Op:  "authenticate",
			Err: ErrAuth,
			Msg: fmt.Sprintf("resolving profile %q: %v", profile, err),
		}
	}
	return &ProfileAuth{cfg: cfg}, nil
}

// Host returns the workspace host of the resolved profile.
func (a *ProfileAuth) Host() string {
	return a.cfg.Host
}

func (a *ProfileAuth) Authenticate(r *http.Request) error {
	if err := a.cfg.Authenticate(r); err != nil {
		return &Error{Op: "authenticate", Err: ErrAuth, Msg: err.Error()}
	}
	return nil
}
