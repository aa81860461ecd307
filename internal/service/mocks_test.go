package service

import (
	"context"

	"github.com/vipul43/blogforge/internal/apperr"
	"github.com/vipul43/blogforge/internal/models"
	"github.com/vipul43/blogforge/internal/provider"
)

type mockProvider struct {
	name             models.Provider
	authCodeURLFunc  func(state, verifier string) (string, error)
	exchangeFunc     func(ctx context.Context, code, verifier string) (*provider.Token, error)
	fetchProfileFunc func(ctx context.Context, accessToken string) (*provider.Profile, error)
	fetchContentFunc func(ctx context.Context, accessToken string, q provider.ContentQuery) (*provider.Content, error)

	exchangeCalls int
}

func (m *mockProvider) Name() models.Provider { return m.name }

func (m *mockProvider) AuthCodeURL(state, verifier string) (string, error) {
	if m.authCodeURLFunc != nil {
		return m.authCodeURLFunc(state, verifier)
	}
	return "https://example.com/authorize?state=" + state, nil
}

func (m *mockProvider) Exchange(ctx context.Context, code, verifier string) (*provider.Token, error) {
	m.exchangeCalls++
	if m.exchangeFunc != nil {
		return m.exchangeFunc(ctx, code, verifier)
	}
	return &provider.Token{AccessToken: "access", Raw: map[string]any{"access_token": "access"}}, nil
}

func (m *mockProvider) FetchProfile(ctx context.Context, accessToken string) (*provider.Profile, error) {
	if m.fetchProfileFunc != nil {
		return m.fetchProfileFunc(ctx, accessToken)
	}
	return &provider.Profile{ID: "42", Raw: map[string]any{"id": "42"}}, nil
}

func (m *mockProvider) FetchContent(ctx context.Context, accessToken string, q provider.ContentQuery) (*provider.Content, error) {
	if m.fetchContentFunc != nil {
		return m.fetchContentFunc(ctx, accessToken, q)
	}
	return &provider.Content{}, nil
}

type mockProviders map[models.Provider]provider.Provider

func (m mockProviders) Get(name models.Provider) (provider.Provider, error) {
	p, ok := m[name]
	if !ok {
		return nil, apperr.Validation("Unsupported provider: " + string(name))
	}
	return p, nil
}

type mockLinkStore struct {
	upsertFunc func(ctx context.Context, link models.SocialAccountLink) error
	links      []models.SocialAccountLink
}

func (m *mockLinkStore) Upsert(ctx context.Context, link models.SocialAccountLink) error {
	m.links = append(m.links, link)
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, link)
	}
	return nil
}

type mockTokenLookup struct {
	getByUserAndProviderFunc func(ctx context.Context, userID string, p models.Provider) (*models.SocialAccountLink, error)
}

func (m *mockTokenLookup) GetByUserAndProvider(ctx context.Context, userID string, p models.Provider) (*models.SocialAccountLink, error) {
	return m.getByUserAndProviderFunc(ctx, userID, p)
}

type mockGenerator struct {
	generateFunc func(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error)
	requests     []models.GenerationRequest
}

func (m *mockGenerator) Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error) {
	m.requests = append(m.requests, req)
	if m.generateFunc != nil {
		return m.generateFunc(ctx, req)
	}
	return &models.GenerationResult{Title: "Title", Content: "<h1>Title</h1>", SEOScore: 70, Topics: []string{}}, nil
}

type outcomeRecord struct {
	provider, mode, outcome string
}

type mockRecorder struct {
	oauth   []outcomeRecord
	fetches []outcomeRecord
}

func (m *mockRecorder) ObserveOAuth(provider, mode, outcome string) {
	m.oauth = append(m.oauth, outcomeRecord{provider, mode, outcome})
}

func (m *mockRecorder) ObserveFetch(provider, outcome string) {
	m.fetches = append(m.fetches, outcomeRecord{provider: provider, outcome: outcome})
}
