// Package openaillm is a generation backend for OpenAI-compatible chat
// completion APIs.
package openaillm

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/vipul43/blogforge/internal/generator"
	"github.com/vipul43/blogforge/internal/upstream"
)

const DefaultModel = "gpt-4o-mini"

type Settings struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// LLM implements generator.LLMClient with the openai-go SDK.
type LLM struct {
	client openai.Client
	model  string
	policy upstream.Policy
}

func New(cfg Settings, policy upstream.Policy) (*LLM, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	// Retries are owned by the upstream policy.
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &LLM{client: openai.NewClient(opts...), model: model, policy: policy}, nil
}

func (l *LLM) Complete(ctx context.Context, prompt generator.Prompt) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(l.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt.Text),
		},
		Temperature:         openai.Float(generator.Temperature),
		TopP:                openai.Float(generator.TopP),
		MaxCompletionTokens: openai.Int(generator.MaxOutputTokens),
	}

	resp, err := upstream.Do(ctx, l.policy, func(ctx context.Context) (*openai.ChatCompletion, error) {
		resp, err := l.client.Chat.Completions.New(ctx, params)
		return resp, statusError(err)
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func statusError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &upstream.StatusError{StatusCode: apiErr.StatusCode, Body: apiErr.Message, Err: err}
	}
	return err
}
