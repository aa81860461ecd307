package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vipul43/blogforge/internal/aggregate"
	"github.com/vipul43/blogforge/internal/apperr"
	"github.com/vipul43/blogforge/internal/logging"
	"github.com/vipul43/blogforge/internal/models"
	"github.com/vipul43/blogforge/internal/provider"
	"github.com/vipul43/blogforge/internal/repository"
)

// Generator turns text into an article
type Generator interface {
	Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error)
}

// TokenLookup reads stored links so callers can fetch by user id
type TokenLookup interface {
	GetByUserAndProvider(ctx context.Context, userID string, provider models.Provider) (*models.SocialAccountLink, error)
}

// FetchRecorder observes content fetch outcomes
type FetchRecorder interface {
	ObserveFetch(provider, outcome string)
}

type FetchRequest struct {
	Provider    models.Provider
	AccessToken string
	UserID      string // used when AccessToken is empty
	Query       provider.ContentQuery
}

type ImportService struct {
	providers Providers
	generator Generator
	tokens    TokenLookup // optional
	recorder  FetchRecorder
	logger    logging.Logger
}

func NewImportService(providers Providers, generator Generator, tokens TokenLookup, recorder FetchRecorder, logger logging.Logger) *ImportService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &ImportService{
		providers: providers,
		generator: generator,
		tokens:    tokens,
		recorder:  recorder,
		logger:    logger,
	}
}

// Fetch returns the provider-native listing of recent posts
func (s *ImportService) Fetch(ctx context.Context, req FetchRequest) (content *provider.Content, err error) {
	defer func() { s.recorder.ObserveFetch(string(req.Provider), outcome(err)) }()

	p, err := s.providers.Get(req.Provider)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.resolveToken(ctx, req)
	if err != nil {
		return nil, err
	}

	content, err = p.FetchContent(ctx, accessToken, req.Query)
	if err != nil {
		s.logger.WithError(err).WithField("provider", req.Provider).Warn("Content fetch failed")
		return nil, err
	}

	s.logger.WithFields(logging.Fields{
		"provider": req.Provider,
		"posts":    len(content.Posts),
	}).Info("Fetched provider content")

	return content, nil
}

// Import fetches recent posts, aggregates them and generates an article
func (s *ImportService) Import(ctx context.Context, req FetchRequest) (*models.GenerationResult, error) {
	content, err := s.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	text := aggregate.Posts(content.Posts)
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Validation("No content to import")
	}

	return s.generator.Generate(ctx, models.GenerationRequest{Content: text, Source: req.Provider})
}

func (s *ImportService) resolveToken(ctx context.Context, req FetchRequest) (string, error) {
	if req.AccessToken != "" {
		return req.AccessToken, nil
	}
	if req.UserID == "" || s.tokens == nil {
		return "", apperr.Validation("Access token is required")
	}

	link, err := s.tokens.GetByUserAndProvider(ctx, req.UserID, req.Provider)
	if err != nil {
		if errors.Is(err, repository.ErrSocialAccountNotFound) {
			return "", apperr.NotFound(fmt.Sprintf("No %s account linked for user", req.Provider))
		}
		return "", fmt.Errorf("failed to load social account: %w", err)
	}
	return link.AccessToken, nil
}
