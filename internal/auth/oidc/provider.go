// Package oidc implements federated sign-in through an OpenID Connect provider
// using the authorization code flow with PKCE.
//
// The state and PKCE verifier travel in short-lived HTTP-only cookies, so no
// server-side table is needed between the redirect and the callback.
package oidc

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/kopiteras/cafe/internal/auth"
)

const (
	stateCookie    = "cafe_oidc_state"
	verifierCookie = "cafe_oidc_verifier"
	flowTTL        = 10 * time.Minute
)

var (
	ErrMissingCode       = errors.New("missing authorization code")
	ErrStateMismatch     = errors.New("invalid or expired state")
	ErrMissingIDToken    = errors.New("no id_token in token response")
	ErrEmailNotVerified  = errors.New("provider did not verify the email address")
	ErrProviderRejection = errors.New("provider returned an error")
)

// Config holds OAuth2/OIDC client configuration.
type Config struct {
	Name         string // provider label recorded on the profile, e.g. "google"
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	CookieSecure bool
	CookiePath   string
}

// Provider runs the authorization code flow against a single issuer.
type Provider struct {
	name         string
	oauth2Config *oauth2.Config
	verifier     *gooidc.IDTokenVerifier
	cookieSecure bool
	cookiePath   string
}

// NewProvider discovers the issuer's configuration from its .well-known endpoint.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid OIDC configuration: %w", err)
	}

	provider, err := gooidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("discovering OIDC provider %s: %w", cfg.Issuer, err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{gooidc.ScopeOpenID, "profile", "email"}
	}

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       scopes,
	}

	verifier := provider.Verifier(&gooidc.Config{ClientID: cfg.ClientID})

	return newProvider(cfg, oauth2Config, verifier), nil
}

func newProvider(cfg Config, oauth2Config *oauth2.Config, verifier *gooidc.IDTokenVerifier) *Provider {
	name := cfg.Name
	if name == "" {
		name = "oidc"
	}
	path := cfg.CookiePath
	if path == "" {
		path = "/"
	}
	return &Provider{
		name:         name,
		oauth2Config: oauth2Config,
		verifier:     verifier,
		cookieSecure: cfg.CookieSecure,
		cookiePath:   path,
	}
}

// Name returns the provider label.
func (p *Provider) Name() string {
	return p.name
}

// Begin stores a fresh state and PKCE verifier in cookies and redirects the
// browser to the provider's authorization endpoint.
func (p *Provider) Begin(w http.ResponseWriter, r *http.Request) {
	state := oauth2.GenerateVerifier()
	codeVerifier := oauth2.GenerateVerifier()

	p.setCookie(w, stateCookie, state, int(flowTTL.Seconds()))
	p.setCookie(w, verifierCookie, codeVerifier, int(flowTTL.Seconds()))

	authURL := p.oauth2Config.AuthCodeURL(state, oauth2.S256ChallengeOption(codeVerifier))
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Complete validates the callback, exchanges the code and verifies the ID token.
// The flow cookies are cleared whatever the outcome.
func (p *Provider) Complete(w http.ResponseWriter, r *http.Request) (*auth.Profile, error) {
	state, stateErr := r.Cookie(stateCookie)
	codeVerifier, verifierErr := r.Cookie(verifierCookie)
	p.setCookie(w, stateCookie, "", -1)
	p.setCookie(w, verifierCookie, "", -1)

	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		return nil, fmt.Errorf("%w: %s", ErrProviderRejection, e)
	}

	code := q.Get("code")
	if code == "" {
		return nil, ErrMissingCode
	}

	if stateErr != nil || verifierErr != nil || state.Value == "" ||
		subtle.ConstantTimeCompare([]byte(state.Value), []byte(q.Get("state"))) != 1 {
		return nil, ErrStateMismatch
	}

	ctx := r.Context()
	token, err := p.oauth2Config.Exchange(ctx, code, oauth2.VerifierOption(codeVerifier.Value))
	if err != nil {
		return nil, fmt.Errorf("exchanging code for token: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, ErrMissingIDToken
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verifying ID token: %w", err)
	}

	var claims struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("parsing ID token claims: %w", err)
	}

	if !claims.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	return &auth.Profile{
		Provider:      p.name,
		Subject:       claims.Sub,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		Picture:       claims.Picture,
	}, nil
}

func (p *Provider) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     p.cookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   p.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func validateConfig(cfg Config) error {
	if cfg.ClientID == "" {
		return errors.New("client ID is required")
	}
	if cfg.ClientSecret == "" {
		return errors.New("client secret is required")
	}
	if cfg.Issuer == "" {
		return errors.New("issuer is required")
	}
	if cfg.RedirectURL == "" {
		return errors.New("redirect URL is required")
	}
	return nil
}
