// Package generator turns social post text into a blog article through an
// LLM backend and scores the result.
package generator

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/vipul43/blogforge/internal/apperr"
	"github.com/vipul43/blogforge/internal/logging"
	"github.com/vipul43/blogforge/internal/models"
)

// MinContentLength is the advised minimum input size. Shorter input is
// accepted but logged.
const MinContentLength = 30

var ErrEmptyResponse = errors.New("model response has no content")

// Scorer rates generated HTML.
type Scorer interface {
	Score(html string) int
}

// Recorder observes generation outcomes.
type Recorder interface {
	ObserveGeneration(backend, outcome string, score int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveGeneration(string, string, int) {}

type Service struct {
	llm      LLMClient
	backend  string
	scorer   Scorer
	recorder Recorder
	logger   logging.Logger
}

func NewService(llm LLMClient, backend string, scorer Scorer, recorder Recorder, logger logging.Logger) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{
		llm:      llm,
		backend:  backend,
		scorer:   scorer,
		recorder: recorder,
		logger:   logger,
	}
}

// Generate converts req.Content into an article. Empty content is rejected
// before the backend is called.
func (s *Service) Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error) {
	content := req.Content
	if strings.TrimSpace(content) == "" {
		s.recorder.ObserveGeneration(s.backend, "invalid", 0)
		return nil, apperr.Validation("Content is required")
	}

	source, err := models.ParseProvider(string(req.Source))
	if err != nil {
		s.recorder.ObserveGeneration(s.backend, "invalid", 0)
		return nil, apperr.Validation("Invalid source: " + string(req.Source))
	}

	if n := utf8.RuneCountInString(strings.TrimSpace(content)); n < MinContentLength {
		s.logger.WithFields(logging.Fields{
			"length":  n,
			"minimum": MinContentLength,
			"source":  source,
		}).Warn("Content is shorter than recommended")
	}

	topics := ExtractTopics(content)

	raw, err := s.llm.Complete(ctx, BuildBlogPrompt(source, content))
	if err != nil {
		s.recorder.ObserveGeneration(s.backend, "error", 0)
		s.logger.WithError(err).WithField("backend", s.backend).Warn("Generation backend failed")
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperr.Upstream("Failed to generate blog post", err)
	}

	html, err := CleanResponse(raw)
	if err != nil {
		s.recorder.ObserveGeneration(s.backend, "error", 0)
		return nil, apperr.Upstream("Invalid response from model", err)
	}
	if html == "" {
		s.recorder.ObserveGeneration(s.backend, "error", 0)
		return nil, apperr.Upstream("Invalid response from model", ErrEmptyResponse)
	}

	title := ExtractTitle(html)
	if title == "" {
		title = FirstSentence(content)
	}

	score := s.scorer.Score(html)
	s.recorder.ObserveGeneration(s.backend, "success", score)

	s.logger.WithFields(logging.Fields{
		"backend":   s.backend,
		"source":    source,
		"seo_score": score,
		"topics":    len(topics),
	}).Info("Generated blog post")

	return &models.GenerationResult{
		Title:    title,
		Content:  html,
		SEOScore: score,
		Topics:   topics,
	}, nil
}
