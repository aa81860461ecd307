// Package watcher waits for an OAuth redirect to land on a location the
// caller can observe, such as a loopback listener started by the CLI.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/vipul43/blogforge/internal/apperr"
)

// DefaultInterval is how often the location is checked.
const DefaultInterval = 500 * time.Millisecond

var ErrClosed = errors.New("redirect location closed before authorization completed")

// Location is anything whose current URL can be read while the user
// completes the consent screen.
type Location interface {
	URL() string
	Closed() bool
}

type Watcher struct {
	interval time.Duration
}

func New(interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{interval: interval}
}

// Wait polls loc until its URL carries an authorization result. It returns
// ErrClosed when loc is closed first and ctx.Err() when ctx ends first.
func (w *Watcher) Wait(ctx context.Context, loc Location) (string, error) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if u := loc.URL(); isRedirect(u) {
			return u, nil
		}
		if loc.Closed() {
			return "", ErrClosed
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

// Wait uses a watcher with the default interval.
func Wait(ctx context.Context, loc Location) (string, error) {
	return New(DefaultInterval).Wait(ctx, loc)
}

func isRedirect(u string) bool {
	return strings.Contains(u, "code=") || strings.Contains(u, "error=")
}

// ParseRedirect extracts the authorization code and state from a redirect
// URL. A provider-reported error becomes an authentication error.
func ParseRedirect(raw string) (code, state string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", apperr.Validation("Invalid redirect URL")
	}

	q := u.Query()
	if providerErr := q.Get("error"); providerErr != "" {
		msg := fmt.Sprintf("Authorization failed: %s", providerErr)
		if desc := q.Get("error_description"); desc != "" {
			msg += " (" + desc + ")"
		}
		return "", "", apperr.Authentication(msg)
	}

	code = q.Get("code")
	if code == "" {
		return "", "", apperr.Validation("Authorization code is required")
	}
	return code, q.Get("state"), nil
}
