package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/vipul43/blogforge/internal/generator"
	"github.com/vipul43/blogforge/internal/upstream"
)

const (
	OpenRouterAPIURL = "https://openrouter.ai/api/v1/chat/completions"
)

type Client struct {
	apiKey   string
	client   *upstream.Client
	endpoint string
	model    *string // Optional: if nil, uses OpenRouter account default
}

func NewClient(apiKey string, client *upstream.Client) *Client {
	return &Client{
		apiKey:   apiKey,
		client:   client,
		endpoint: OpenRouterAPIURL,
		model:    nil, // Use OpenRouter account default
	}
}

// SetModel sets a specific model to use (optional)
func (c *Client) SetModel(model string) {
	c.model = &model
}

// SetEndpoint points the client at another chat completions URL
func (c *Client) SetEndpoint(endpoint string) {
	c.endpoint = endpoint
}

type chatRequest struct {
	Model       *string       `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	TopK        int           `json:"top_k"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Complete sends the blog prompt as a single user message
func (c *Client) Complete(ctx context.Context, prompt generator.Prompt) (string, error) {
	jsonData, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt.Text}},
		Temperature: generator.Temperature,
		TopP:        generator.TopP,
		TopK:        generator.TopK,
		MaxTokens:   generator.MaxOutputTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	body, err := c.client.Send(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return "", fmt.Errorf("openrouter request failed: %w", err)
	}

	// Parse OpenRouter response
	var apiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("failed to parse API response: %w", err)
	}

	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return c.cleanHTMLResponse(apiResp.Choices[0].Message.Content), nil
}

// cleanHTMLResponse drops chatter the model wrapped around the HTML
func (c *Client) cleanHTMLResponse(content string) string {
	content = strings.TrimSpace(content)

	// Fenced output is left to the generator
	if strings.HasPrefix(content, "```") {
		return content
	}

	startIdx := strings.Index(content, "<")
	endIdx := strings.LastIndex(content, ">")

	if startIdx == -1 || endIdx == -1 || startIdx > endIdx {
		// No markup, probably Markdown
		return content
	}

	return strings.TrimSpace(content[startIdx : endIdx+1])
}
