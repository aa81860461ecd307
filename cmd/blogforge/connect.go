package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/vipul43/blogforge/internal/app"
	"github.com/vipul43/blogforge/internal/config"
	"github.com/vipul43/blogforge/internal/models"
	"github.com/vipul43/blogforge/internal/service"
	"github.com/vipul43/blogforge/internal/watcher"
)

func newConnectCmd(load loader) *cobra.Command {
	var (
		providerName string
		userID       string
		timeout      time.Duration
		interval     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Authorize an account through the browser and print the token",
		Long: `connect serves the provider's redirect URI on a local listener, prints the
consent URL and waits until the provider redirects back with a code. The code
is exchanged for a token after the returned state has been verified.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := models.ParseProvider(providerName)
			if err != nil {
				return err
			}
			return withApp(cmd, load, func(a *app.App) error {
				ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
				defer cancel()

				return connect(ctx, cmd, a, p, userID, interval)
			})
		},
	}
	cmd.Flags().StringVarP(&providerName, "provider", "p", "", "provider: twitter|linkedin")
	cmd.Flags().StringVar(&userID, "user-id", "", "store the connected account for this user (requires DATABASE_URL)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "how long to wait for the authorization")
	cmd.Flags().DurationVar(&interval, "poll-interval", watcher.DefaultInterval, "how often to check for the redirect")
	_ = cmd.MarkFlagRequired("provider")
	return cmd
}

func connect(ctx context.Context, cmd *cobra.Command, a *app.App, p models.Provider, userID string, interval time.Duration) error {
	redirect, err := url.Parse(redirectURI(a.Config, p))
	if err != nil || redirect.Host == "" {
		return fmt.Errorf("invalid redirect uri for %s", p)
	}

	loop := watcher.NewLoopback()
	defer loop.Close()

	mux := http.NewServeMux()
	mux.Handle(callbackPath(redirect), loop)

	listener, err := net.Listen("tcp", listenAddr(redirect))
	if err != nil {
		return fmt.Errorf("failed to listen for the redirect: %w", err)
	}
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.WithError(err).Warn("Redirect listener stopped")
			loop.Close()
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	auth, err := a.Connect.Authorize(ctx, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Open this URL in your browser to authorize %s:\n\n  %s\n\n", p, auth.URL)

	location, err := watcher.New(interval).Wait(ctx, loop)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return errors.New("timed out waiting for the authorization redirect")
		}
		return err
	}

	code, state, err := watcher.ParseRedirect(location)
	if err != nil {
		return err
	}

	result, err := a.Connect.Connect(ctx, service.ConnectRequest{
		Provider: p,
		Code:     code,
		State:    state,
		UserID:   userID,
	})
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func redirectURI(cfg *config.Config, p models.Provider) string {
	if p == models.ProviderTwitter {
		return cfg.Twitter.RedirectURI
	}
	return cfg.LinkedIn.RedirectURI
}

// listenAddr is the host and port of the redirect URI, with the scheme's
// default port when none is given.
func listenAddr(u *url.URL) string {
	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}
	return net.JoinHostPort(u.Hostname(), port)
}

func callbackPath(u *url.URL) string {
	if u.Path == "" {
		return "/"
	}
	return u.Path
}
