package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/vipul43/blogforge/internal/app"
	"github.com/vipul43/blogforge/internal/config"
	"github.com/vipul43/blogforge/internal/logging"
)

// loader builds the application for one command run. Logs go to w so that
// stdout only carries command output.
type loader func(ctx context.Context, w io.Writer) (*app.App, error)

func defaultLoader(ctx context.Context, w io.Writer) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.LogLevel)
	logger.SetOutput(w)
	return app.New(ctx, cfg, logger, app.Options{})
}

func newRootCmd(load loader) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "blogforge",
		Short:         "Turn social posts into blog articles",
		Long:          "blogforge connects Twitter and LinkedIn accounts, imports recent posts and generates an SEO-scored blog article from them.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newConnectCmd(load))
	rootCmd.AddCommand(newFetchCmd(load))
	rootCmd.AddCommand(newImportCmd(load))
	rootCmd.AddCommand(newGenerateCmd(load))

	return rootCmd
}

// withApp runs fn with a freshly loaded app and releases it afterwards.
func withApp(cmd *cobra.Command, load loader, fn func(a *app.App) error) error {
	a, err := load(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
