package folio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// Identity is a signed-in user as reported by the identity provider.
type Identity struct {
	Email string
	Name  string
}

// IdentityProvider runs an OAuth authorization-code flow. redirectURL is
// passed on every call because it depends on the host the request came in on.
type IdentityProvider interface {
	AuthCodeURL(state, redirectURL string) string
	Exchange(ctx context.Context, code, redirectURL string) (Identity, error)
}

// ErrUnverifiedEmail is returned when the provider vouches for an account
// whose email address has not been verified.
var ErrUnverifiedEmail = errors.New("folio: email address not verified")

// GoogleIdentity signs users in with Google and verifies the returned ID token.
type GoogleIdentity struct {
	conf *oauth2.Config

	// validate checks an ID token; replaced in tests.
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

// NewGoogleIdentity returns a provider for the given OAuth client.
func NewGoogleIdentity(cfg GoogleConfig) *GoogleIdentity {
	return &GoogleIdentity{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		validate: idtoken.Validate,
	}
}

func (g *GoogleIdentity) config(redirectURL string) *oauth2.Config {
	c := *g.conf
	c.RedirectURL = redirectURL
	return &c
}

// AuthCodeURL returns the Google consent page URL for state.
func (g *GoogleIdentity) AuthCodeURL(state, redirectURL string) string {
	return g.config(redirectURL).AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Exchange trades code for tokens and returns the identity in the ID token.
func (g *GoogleIdentity) Exchange(ctx context.Context, code, redirectURL string) (Identity, error) {
	tok, err := g.config(redirectURL).Exchange(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("folio: exchange code: %w", err)
	}
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return Identity{}, errors.New("folio: token response has no id_token")
	}
	payload, err := g.validate(ctx, raw, g.conf.ClientID)
	if err != nil {
		return Identity{}, fmt.Errorf("folio: validate id token: %w", err)
	}
	return identityFromClaims(payload.Claims)
}

func identityFromClaims(claims map[string]interface{}) (Identity, error) {
	email, _ := claims["email"].(string)
	if email == "" {
		return Identity{}, errors.New("folio: id token has no email claim")
	}
	if verified, ok := claims["email_verified"].(bool); ok && !verified {
		return Identity{}, ErrUnverifiedEmail
	}
	name, _ := claims["name"].(string)
	return Identity{Email: email, Name: name}, nil
}

// AllowList is the set of emails admitted to the admin dashboard.
type AllowList map[string]struct{}

// NewAllowList normalises emails for case-insensitive matching. Blank
// entries are dropped.
func NewAllowList(emails []string) AllowList {
	l := make(AllowList, len(emails))
	for _, e := range emails {
		if e = normalizeEmail(e); e != "" {
			l[e] = struct{}{}
		}
	}
	return l
}

// Allows reports whether email is on the list.
func (l AllowList) Allows(email string) bool {
	_, ok := l[normalizeEmail(email)]
	return ok
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
