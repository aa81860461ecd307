// Package app wires configuration into the services shared by the API
// server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vipul43/blogforge/internal/config"
	"github.com/vipul43/blogforge/internal/database"
	"github.com/vipul43/blogforge/internal/gemini"
	"github.com/vipul43/blogforge/internal/generator"
	"github.com/vipul43/blogforge/internal/handler"
	"github.com/vipul43/blogforge/internal/logging"
	"github.com/vipul43/blogforge/internal/metrics"
	"github.com/vipul43/blogforge/internal/oauthstate"
	"github.com/vipul43/blogforge/internal/openaillm"
	"github.com/vipul43/blogforge/internal/openrouter"
	"github.com/vipul43/blogforge/internal/provider"
	"github.com/vipul43/blogforge/internal/repository"
	"github.com/vipul43/blogforge/internal/scorer"
	"github.com/vipul43/blogforge/internal/service"
	"github.com/vipul43/blogforge/internal/upstream"
)

type App struct {
	Config    *config.Config
	Logger    logging.Logger
	Metrics   *metrics.Collector
	Providers *provider.Registry
	Connect   *service.ConnectService
	Import    *service.ImportService
	Generator *generator.Service

	closers []func() error
}

// Options override infrastructure that tests replace.
type Options struct {
	HTTPClient *http.Client
	States     oauthstate.Store
}

func New(ctx context.Context, cfg *config.Config, logger logging.Logger, opts Options) (*App, error) {
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
	}

	policy := Policy(cfg)
	client := upstream.NewClient(opts.HTTPClient, policy)

	a.Providers = provider.NewRegistry(
		provider.NewTwitter(cfg.Twitter, client),
		provider.NewLinkedIn(cfg.LinkedIn, client),
	)

	states := opts.States
	if states == nil {
		var err error
		states, err = a.stateStore(ctx)
		if err != nil {
			return nil, err
		}
	}

	var links service.LinkStore
	var tokens service.TokenLookup
	if cfg.DatabaseURL != "" {
		repo, err := a.socialAccounts()
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		links, tokens = repo, repo
	}

	llm, err := NewLLM(ctx, cfg, policy, opts.HTTPClient)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Generator = generator.NewService(llm, cfg.LLMProvider, NewScorer(cfg.LLMProvider), a.Metrics, logger)
	a.Connect = service.NewConnectService(a.Providers, states, links, cfg.OAuthStateTTL, a.Metrics, logger)
	a.Import = service.NewImportService(a.Providers, a.Generator, tokens, a.Metrics, logger)

	logger.WithFields(logging.Fields{
		"llm_provider": cfg.LLMProvider,
		"persistence":  cfg.DatabaseURL != "",
		"redis_state":  cfg.RedisURL != "" && opts.States == nil,
		"max_retries":  policy.MaxRetries,
	}).Info("Application initialized")

	return a, nil
}

// Router returns the HTTP surface of the app.
func (a *App) Router() *gin.Engine {
	h := handler.New(a.Connect, a.Import, a.Generator, a.Logger)
	return handler.NewRouter(h, a.Metrics, a.Logger)
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) stateStore(ctx context.Context) (oauthstate.Store, error) {
	if a.Config.RedisURL == "" {
		return oauthstate.NewMemoryStore(), nil
	}

	store, err := oauthstate.NewRedisStoreFromURL(ctx, a.Config.RedisURL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)
	a.Logger.Info("Redis state store connected")
	return store, nil
}

func (a *App) socialAccounts() (*repository.SocialAccountRepository, error) {
	db, err := database.Connect(a.Config.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error { return database.Close(db) })
	a.Logger.Info("Database connected successfully")

	a.Logger.Info("Running database migrations...")
	if err := database.RunMigrations(db); err != nil {
		return nil, err
	}
	a.Logger.Info("Migrations completed successfully")

	return repository.NewSocialAccountRepository(db), nil
}

// Policy derives the upstream call policy from configuration.
func Policy(cfg *config.Config) upstream.Policy {
	p := upstream.DefaultPolicy()
	if cfg.UpstreamTimeout > 0 {
		p.Timeout = cfg.UpstreamTimeout
	}
	p.MaxRetries = cfg.UpstreamMaxRetries
	return p
}

// NewLLM builds the generation backend named by cfg.LLMProvider.
func NewLLM(ctx context.Context, cfg *config.Config, policy upstream.Policy, httpClient *http.Client) (generator.LLMClient, error) {
	switch cfg.LLMProvider {
	case config.LLMGemini:
		return gemini.New(ctx, gemini.Config{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiModel,
			HTTPClient: httpClient,
		}, policy)

	case config.LLMOpenRouter:
		client := openrouter.NewClient(cfg.OpenRouterAPIKey, upstream.NewClient(httpClient, policy))
		if cfg.OpenRouterModel != "" {
			client.SetModel(cfg.OpenRouterModel)
		}
		return client, nil

	case config.LLMOpenAI:
		return openaillm.New(openaillm.Settings{
			APIKey:     cfg.OpenAIAPIKey,
			Model:      cfg.OpenAIModel,
			BaseURL:    cfg.OpenAIBaseURL,
			HTTPClient: httpClient,
		}, policy)

	case config.LLMTemplate:
		return generator.NewTemplateLLM(), nil

	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLMProvider)
	}
}

// NewScorer counts images for model output. Template articles never
// carry images.
func NewScorer(backend string) *scorer.Scorer {
	if backend == config.LLMTemplate {
		return scorer.New()
	}
	return scorer.New(scorer.WithImages())
}
