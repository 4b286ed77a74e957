package monzo

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// DefaultAuthURL is the hosted login page users are redirected to.
const DefaultAuthURL = "https://auth.monzo.com"

// Token is the outcome of a code exchange: the bearer credential, its
// expiry, and the opaque user id the upstream includes in the response.
type Token struct {
	AccessToken string
	UserID      string
	Expiry      time.Time
}

// OAuth drives the authorization-code flow against the upstream token
// endpoint.
type OAuth struct {
	cfg *oauth2.Config
}

// NewOAuth builds the flow configuration. authURL and apiURL default to the
// public hosts when empty.
func NewOAuth(clientID, clientSecret, redirectURL, authURL, apiURL string) *OAuth {
	if authURL == "" {
		authURL = DefaultAuthURL
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &OAuth{cfg: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL + "/",
			TokenURL:  apiURL + "/oauth2/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}}
}

// AuthCodeURL returns the login redirect target carrying the given state.
func (o *OAuth) AuthCodeURL(state string) string {
	return o.cfg.AuthCodeURL(state)
}

// Exchange trades an authorization code for a bearer token.
func (o *OAuth) Exchange(ctx context.Context, code string) (Token, error) {
	tok, err := o.cfg.Exchange(ctx, code)
	if err != nil {
		return Token{}, fmt.Errorf("exchange authorization code: %w", err)
	}
	userID, _ := tok.Extra("user_id").(string)
	return Token{
		AccessToken: tok.AccessToken,
		UserID:      userID,
		Expiry:      tok.Expiry,
	}, nil
}
