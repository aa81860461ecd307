// Package gemini is the Google Gemini generation backend.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/vipul43/blogforge/internal/generator"
	"github.com/vipul43/blogforge/internal/upstream"
)

const DefaultModel = "gemini-1.5-pro"

type Config struct {
	APIKey string
	Model  string
	// BaseURL and HTTPClient are optional overrides.
	BaseURL    string
	HTTPClient *http.Client
}

type Client struct {
	client *genai.Client
	model  string
	policy upstream.Policy
}

func New(ctx context.Context, cfg Config, policy upstream.Policy) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{client: client, model: model, policy: policy}, nil
}

func (c *Client) Complete(ctx context.Context, prompt generator.Prompt) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](generator.Temperature),
		TopK:            genai.Ptr[float32](generator.TopK),
		TopP:            genai.Ptr[float32](generator.TopP),
		MaxOutputTokens: generator.MaxOutputTokens,
	}
	contents := []*genai.Content{
		genai.NewContentFromText(prompt.Text, genai.RoleUser),
	}

	resp, err := upstream.Do(ctx, c.policy, func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
		return resp, statusError(err)
	})
	if err != nil {
		return "", fmt.Errorf("gemini api error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("invalid response from Gemini API: no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("invalid response from Gemini API: empty text")
	}
	return sb.String(), nil
}

// statusError exposes the HTTP status of a Gemini API error so the upstream
// policy can retry 429 and 5xx answers.
func statusError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		return &upstream.StatusError{StatusCode: apiErr.Code, Body: apiErr.Message, Err: err}
	}
	return err
}
