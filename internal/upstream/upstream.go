// Package upstream runs outbound HTTP calls to third-party APIs under a
// shared timeout and retry policy.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/failsafe-go/failsafe-go/timeout"
)

const maxBodyBytes = 4 << 20

// StatusError is returned when an upstream API answers with a non-2xx status.
// SDK-backed clients set Err to the error their SDK reported.
type StatusError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// Policy bounds every outbound call. MaxRetries of zero disables retries.
type Policy struct {
	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		Timeout:   30 * time.Second,
		BaseDelay: 200 * time.Millisecond,
		MaxDelay:  2 * time.Second,
	}
}

// Do runs fn through the policy. The context handed to fn is cancelled when
// the per-attempt timeout elapses.
func Do[R any](ctx context.Context, p Policy, fn func(ctx context.Context) (R, error)) (R, error) {
	var policies []failsafe.Policy[R]

	if p.MaxRetries > 0 {
		baseDelay, maxDelay := p.BaseDelay, p.MaxDelay
		if baseDelay <= 0 {
			baseDelay = 200 * time.Millisecond
		}
		if maxDelay < baseDelay {
			maxDelay = baseDelay
		}
		policies = append(policies, retrypolicy.NewBuilder[R]().
			WithBackoff(baseDelay, maxDelay).
			WithMaxRetries(p.MaxRetries).
			HandleIf(func(_ R, err error) bool { return Retryable(err) }).
			ReturnLastFailure().
			Build())
	}
	if p.Timeout > 0 {
		policies = append(policies, timeout.New[R](p.Timeout))
	}

	if len(policies) == 0 {
		return fn(ctx)
	}

	return failsafe.With(policies...).WithContext(ctx).GetWithExecution(func(exec failsafe.Execution[R]) (R, error) {
		return fn(exec.Context())
	})
}

// Retryable reports whether err is worth another attempt: transport
// failures, 429 and 5xx.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, timeout.ErrExceeded)
}

// Client sends JSON requests to upstream APIs.
type Client struct {
	httpClient *http.Client
	policy     Policy
}

func NewClient(httpClient *http.Client, policy Policy) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{httpClient: httpClient, policy: policy}
}

func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

func (c *Client) Policy() Policy {
	return c.policy
}

// Get performs a GET and returns the raw response body of a 2xx answer.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	return Do(ctx, c.policy, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return c.send(req)
	})
}

// Send performs an arbitrary request built by newReq for every attempt.
func (c *Client) Send(ctx context.Context, newReq func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	return Do(ctx, c.policy, func(ctx context.Context) ([]byte, error) {
		req, err := newReq(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		return c.send(req)
	})
}

func (c *Client) send(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
