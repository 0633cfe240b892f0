// ABOUTME: Credential source merged into every REST request and stream dial
// ABOUTME: Maps provider API keys to X-*-Key headers and checks bearer token expiry

package credentials

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors
var (
	ErrExpiredToken = errors.New("token expired")
	ErrUnknownKey   = errors.New("unknown provider")
)

// Provider names an LLM vendor whose key the backend accepts per request.
type Provider string

// Supported providers.
const (
	OpenAI    Provider = "openai"
	Anthropic Provider = "anthropic"
	Google    Provider = "google"
)

var headerNames = map[Provider]string{
	OpenAI:    "X-OpenAI-Key",
	Anthropic: "X-Anthropic-Key",
	Google:    "X-Google-Key",
}

// HeaderName returns the request header carrying p's key.
func HeaderName(p Provider) (string, bool) {
	h, ok := headerNames[p]
	return h, ok
}

// Source supplies headers for each outbound request.
type Source interface {
	Headers() (http.Header, error)
}

// Static is a fixed set of credentials.
type Static struct {
	// Token is sent as a bearer token when set.
	Token string
	Keys  map[Provider]string
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewStatic builds a Static source from provider-name keyed strings, as read
// from configuration.
func NewStatic(token string, keys map[string]string) (*Static, error) {
	s := &Static{Token: token, Keys: make(map[Provider]string, len(keys))}
	for name, key := range keys {
		p := Provider(strings.ToLower(name))
		if _, ok := headerNames[p]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKey, name)
		}
		s.Keys[p] = key
	}
	return s, nil
}

// Headers returns the bearer token and every non-empty provider key.
func (s *Static) Headers() (http.Header, error) {
	h := http.Header{}
	if s == nil {
		return h, nil
	}
	if s.Token != "" {
		now := time.Now
		if s.Now != nil {
			now = s.Now
		}
		if _, err := Inspect(s.Token, now()); err != nil {
			return nil, err
		}
		h.Set("Authorization", "Bearer "+s.Token)
	}
	for p, key := range s.Keys {
		if key == "" {
			continue
		}
		h.Set(headerNames[p], key)
	}
	return h, nil
}

// Claims is what the client can learn from a bearer token without the signing key.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
	// Opaque is set when the token is not a JWT.
	Opaque bool
}

// Inspect decodes a bearer token without verifying its signature, which only
// the server can do. Opaque tokens are accepted as-is. A JWT whose exp is at
// or before now yields ErrExpiredToken.
func Inspect(token string, now time.Time) (Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Claims{Opaque: true}, nil
	}

	var c Claims
	if sub, err := claims.GetSubject(); err == nil {
		c.Subject = sub
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return c, fmt.Errorf("reading exp claim: %w", err)
	}
	if exp != nil {
		c.ExpiresAt = exp.Time
		if !now.Before(exp.Time) {
			return c, fmt.Errorf("%w at %s", ErrExpiredToken, exp.Time.UTC().Format(time.RFC3339))
		}
	}
	return c, nil
}

// ReadTokenFile loads a bearer token from path, trimming surrounding whitespace.
func ReadTokenFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
