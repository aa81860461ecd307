package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/vipul43/blogforge/internal/apperr"
	"github.com/vipul43/blogforge/internal/logging"
	"github.com/vipul43/blogforge/internal/models"
	"github.com/vipul43/blogforge/internal/oauthstate"
	"github.com/vipul43/blogforge/internal/provider"
)

const (
	ModeAuthorize = "authorize"
	ModeToken     = "token"
)

var errStateMismatch = apperr.Authentication("OAuth state mismatch")

// Providers resolves a provider implementation by name
type Providers interface {
	Get(name models.Provider) (provider.Provider, error)
}

// LinkStore persists social account links
type LinkStore interface {
	Upsert(ctx context.Context, link models.SocialAccountLink) error
}

// OAuthRecorder observes OAuth outcomes
type OAuthRecorder interface {
	ObserveOAuth(provider, mode, outcome string)
}

type AuthorizeResult struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

type ConnectRequest struct {
	Provider models.Provider
	Code     string
	State    string
	UserID   string
}

// ConnectResult mirrors the provider payloads.
type ConnectResult struct {
	Token    map[string]any  `json:"token"`
	User     map[string]any  `json:"user"`
	Provider models.Provider `json:"provider"`
}

type ConnectService struct {
	providers Providers
	states    oauthstate.Store
	links     LinkStore // optional
	stateTTL  time.Duration
	recorder  OAuthRecorder
	logger    logging.Logger
}

func NewConnectService(providers Providers, states oauthstate.Store, links LinkStore, stateTTL time.Duration, recorder OAuthRecorder, logger logging.Logger) *ConnectService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &ConnectService{
		providers: providers,
		states:    states,
		links:     links,
		stateTTL:  stateTTL,
		recorder:  recorder,
		logger:    logger,
	}
}

// Authorize issues a new state and returns the provider consent URL
func (s *ConnectService) Authorize(ctx context.Context, name models.Provider) (result *AuthorizeResult, err error) {
	defer func() { s.recorder.ObserveOAuth(string(name), ModeAuthorize, outcome(err)) }()

	p, err := s.providers.Get(name)
	if err != nil {
		return nil, err
	}

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	authURL, err := p.AuthCodeURL(state, verifier)
	if err != nil {
		return nil, err
	}

	entry := oauthstate.Entry{
		State:     state,
		Provider:  name,
		Verifier:  verifier,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.states.Save(ctx, entry, s.stateTTL); err != nil {
		return nil, fmt.Errorf("failed to save oauth state: %w", err)
	}

	s.logger.WithFields(logging.Fields{"provider": name}).Debug("Issued OAuth state")

	return &AuthorizeResult{URL: authURL, State: state}, nil
}

// Connect validates the state, exchanges the code and loads the profile.
// The token endpoint is never contacted when the state does not match.
func (s *ConnectService) Connect(ctx context.Context, req ConnectRequest) (result *ConnectResult, err error) {
	defer func() { s.recorder.ObserveOAuth(string(req.Provider), ModeToken, outcome(err)) }()

	if req.Code == "" {
		return nil, apperr.Validation("Authorization code is required")
	}

	p, err := s.providers.Get(req.Provider)
	if err != nil {
		return nil, err
	}

	entry, err := s.consumeState(ctx, req.Provider, req.State)
	if err != nil {
		return nil, err
	}

	token, err := p.Exchange(ctx, req.Code, entry.Verifier)
	if err != nil {
		s.logger.WithError(err).WithField("provider", req.Provider).Warn("Token exchange failed")
		return nil, err
	}

	profile, err := p.FetchProfile(ctx, token.AccessToken)
	if err != nil {
		s.logger.WithError(err).WithField("provider", req.Provider).Warn("Profile fetch failed")
		return nil, err
	}

	if req.UserID != "" && s.links != nil {
		if err := s.links.Upsert(ctx, newLink(req.UserID, req.Provider, token, profile)); err != nil {
			return nil, fmt.Errorf("failed to save social account: %w", err)
		}
	}

	s.logger.WithFields(logging.Fields{
		"provider":   req.Provider,
		"account_id": profile.ID,
		"linked":     req.UserID != "" && s.links != nil,
	}).Info("Connected social account")

	return &ConnectResult{Token: token.Raw, User: profile.Raw, Provider: req.Provider}, nil
}

func (s *ConnectService) consumeState(ctx context.Context, name models.Provider, state string) (*oauthstate.Entry, error) {
	if state == "" {
		return nil, errStateMismatch
	}

	entry, err := s.states.Consume(ctx, state)
	if err != nil {
		if errors.Is(err, oauthstate.ErrNotFound) {
			return nil, errStateMismatch
		}
		return nil, fmt.Errorf("failed to read oauth state: %w", err)
	}
	if entry.Provider != name {
		return nil, errStateMismatch
	}
	return entry, nil
}

func newLink(userID string, name models.Provider, token *provider.Token, profile *provider.Profile) models.SocialAccountLink {
	link := models.SocialAccountLink{
		UserID:            userID,
		Provider:          name,
		ProviderAccountID: profile.ID,
		AccessToken:       token.AccessToken,
	}
	if token.RefreshToken != "" {
		refresh := token.RefreshToken
		link.RefreshToken = &refresh
	}
	if !token.Expiry.IsZero() {
		expires := token.Expiry
		link.ExpiresAt = &expires
	}
	return link
}
