package netilion

import (
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// Token is a bearer token with the time it was issued and its lifetime.
// A zero TTL means the server did not say, such a token never expires.
type Token struct {
	AccessToken string
	IssuedAt    time.Time
	TTL         time.Duration
}

func hashOf(s string) string {
	sum := sha1.Sum([]byte(s))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// obfuscate the token when stringified
//
func (t Token) String() string {
	return fmt.Sprintf("accessToken [%s]  issuedAt [%s]  ttl [%s]", hashOf(t.AccessToken), t.IssuedAt, t.TTL)
}

// Expiry is the zero time for tokens without a lifetime
func (t Token) Expiry() time.Time {
	if t.TTL <= 0 {
		return time.Time{}
	}

	return t.IssuedAt.Add(t.TTL)
}

// Expired reports whether the token is no longer valid at now
func (t Token) Expired(now time.Time) bool {
	expiry := t.Expiry()
	return !expiry.IsZero() && !now.Before(expiry)
}

// tokenFrom converts an oauth2 token.  Netilion reports the issue time as
// `created_at` seconds, the local clock stands in when that is missing.
// Any refresh token is dropped, the API cannot refresh.
func tokenFrom(tok *oauth2.Token, now time.Time) Token {
	t := Token{AccessToken: tok.AccessToken, IssuedAt: now}

	if createdAt, ok := rawInt(tok.Extra("created_at")); ok {
		t.IssuedAt = time.Unix(createdAt, 0)
	}

	if expiresIn, ok := rawInt(tok.Extra("expires_in")); ok {
		t.TTL = time.Duration(expiresIn) * time.Second
	} else if !tok.Expiry.IsZero() {
		t.TTL = tok.Expiry.Sub(now)
	}

	return t
}
