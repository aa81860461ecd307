// Package provider talks to the OAuth and content APIs of the supported
// social platforms. Each platform implements Provider.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/vipul43/blogforge/internal/apperr"
	"github.com/vipul43/blogforge/internal/config"
	"github.com/vipul43/blogforge/internal/models"
	"github.com/vipul43/blogforge/internal/upstream"
)

// Token is the result of an authorization code exchange. Raw holds the
// provider payload as returned.
type Token struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time
	Raw          map[string]any
}

// Profile is the identity behind an access token.
type Profile struct {
	ID       string
	Name     string
	Username string
	Email    string
	Raw      map[string]any
}

// ContentQuery selects whose posts to fetch. Username is required by
// Twitter, MemberID is optional for LinkedIn.
type ContentQuery struct {
	Username string
	MemberID string
}

// Content is a provider-native post listing plus the posts parsed out of it.
type Content struct {
	Raw   json.RawMessage
	Posts []models.Post
}

type Provider interface {
	Name() models.Provider
	AuthCodeURL(state, verifier string) (string, error)
	Exchange(ctx context.Context, code, verifier string) (*Token, error)
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)
	FetchContent(ctx context.Context, accessToken string, q ContentQuery) (*Content, error)
}

// Endpoints are the base URLs a provider talks to.
type Endpoints struct {
	AuthURL    string
	TokenURL   string
	APIBaseURL string
}

// Registry selects a Provider by name.
type Registry struct {
	providers map[models.Provider]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[models.Provider]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

func (r *Registry) Get(name models.Provider) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, apperr.Validation(fmt.Sprintf("Unsupported provider: %s", name))
	}
	return p, nil
}

// oauthClient holds what both providers share: the OAuth2 config and the
// upstream client used for the exchange and API calls.
type oauthClient struct {
	name      models.Provider
	creds     config.ProviderCredentials
	scopes    []string
	authStyle oauth2.AuthStyle
	endpoints Endpoints
	client    *upstream.Client
}

func (c *oauthClient) configured() error {
	if c.creds.ClientID == "" || c.creds.ClientSecret == "" || c.creds.RedirectURI == "" {
		return apperr.Configuration(fmt.Sprintf("%s OAuth credentials are not configured", c.name))
	}
	return nil
}

func (c *oauthClient) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.creds.ClientID,
		ClientSecret: c.creds.ClientSecret,
		RedirectURL:  c.creds.RedirectURI,
		Scopes:       c.scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.endpoints.AuthURL,
			TokenURL:  c.endpoints.TokenURL,
			AuthStyle: c.authStyle,
		},
	}
}

func (c *oauthClient) authCodeURL(state string, opts ...oauth2.AuthCodeOption) (string, error) {
	if err := c.configured(); err != nil {
		return "", err
	}
	return c.oauthConfig().AuthCodeURL(state, opts...), nil
}

// exchange trades the code for a token. Authorization codes are single use,
// so the exchange never retries regardless of the upstream policy.
func (c *oauthClient) exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*Token, error) {
	if err := c.configured(); err != nil {
		return nil, err
	}

	policy := c.client.Policy()
	policy.MaxRetries = 0

	rec := &tokenRecorder{}
	httpClient := *c.client.HTTPClient()
	rec.base, httpClient.Transport = httpClient.Transport, rec

	ctx = context.WithValue(ctx, oauth2.HTTPClient, &httpClient)
	tok, err := upstream.Do(ctx, policy, func(ctx context.Context) (*oauth2.Token, error) {
		return c.oauthConfig().Exchange(ctx, code, opts...)
	})
	if err != nil {
		return nil, apperr.Upstream("Failed to exchange authorization code", err)
	}

	return newToken(tok, rec.payload()), nil
}

// tokenRecorder keeps the body of the token endpoint response so the payload
// can be handed back exactly as the provider sent it.
type tokenRecorder struct {
	base http.RoundTripper

	mu   sync.Mutex
	body []byte
}

func (r *tokenRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	base := r.base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	r.mu.Lock()
	r.body = body
	r.mu.Unlock()
	return resp, nil
}

// payload decodes the recorded body. Non-JSON bodies yield nil.
func (r *tokenRecorder) payload() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()

	var raw map[string]any
	if err := json.Unmarshal(r.body, &raw); err != nil {
		return nil
	}
	return raw
}

func newToken(tok *oauth2.Token, raw map[string]any) *Token {
	if raw == nil {
		raw = map[string]any{
			"access_token": tok.AccessToken,
			"token_type":   tok.TokenType,
		}
		if tok.RefreshToken != "" {
			raw["refresh_token"] = tok.RefreshToken
		}
	}

	return &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
		Raw:          raw,
	}
}

// getJSON performs an authenticated GET and decodes the body into out when
// out is non-nil. The raw body is always returned.
func (c *oauthClient) getJSON(ctx context.Context, url, accessToken string, headers map[string]string, out any) ([]byte, error) {
	h := map[string]string{"Authorization": "Bearer " + accessToken}
	for k, v := range headers {
		h[k] = v
	}

	body, err := c.client.Get(ctx, url, h)
	if err != nil {
		return nil, err
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return body, nil
}

// upstreamError keeps typed errors intact and wraps everything else.
func upstreamError(msg string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Upstream(msg, err)
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
