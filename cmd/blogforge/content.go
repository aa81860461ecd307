package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vipul43/blogforge/internal/app"
	"github.com/vipul43/blogforge/internal/models"
	"github.com/vipul43/blogforge/internal/provider"
	"github.com/vipul43/blogforge/internal/service"
)

type fetchFlags struct {
	provider    string
	accessToken string
	username    string
	memberID    string
	userID      string
}

func (f *fetchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.provider, "provider", "p", "", "provider: twitter|linkedin")
	cmd.Flags().StringVar(&f.accessToken, "access-token", "", "provider access token")
	cmd.Flags().StringVar(&f.username, "username", "", "Twitter handle whose tweets are fetched")
	cmd.Flags().StringVar(&f.memberID, "member-id", "", "LinkedIn member id (resolved from the token when empty)")
	cmd.Flags().StringVar(&f.userID, "user-id", "", "use the token stored for this user instead of --access-token")
	_ = cmd.MarkFlagRequired("provider")
}

func (f *fetchFlags) request() (service.FetchRequest, error) {
	p, err := models.ParseProvider(f.provider)
	if err != nil {
		return service.FetchRequest{}, err
	}
	return service.FetchRequest{
		Provider:    p,
		AccessToken: f.accessToken,
		UserID:      f.userID,
		Query:       provider.ContentQuery{Username: f.username, MemberID: f.memberID},
	}, nil
}

func newFetchCmd(load loader) *cobra.Command {
	var flags fetchFlags
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Print the recent posts of an account as returned by the provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}
			return withApp(cmd, load, func(a *app.App) error {
				content, err := a.Import.Fetch(cmd.Context(), req)
				if err != nil {
					return err
				}

				if len(content.Raw) == 0 {
					return printJSON(cmd.OutOrStdout(), map[string]any{"data": []any{}})
				}

				var out bytes.Buffer
				if err := json.Indent(&out, content.Raw, "", "  "); err != nil {
					return fmt.Errorf("failed to format provider response: %w", err)
				}
				out.WriteByte('\n')
				_, err = out.WriteTo(cmd.OutOrStdout())
				return err
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newImportCmd(load loader) *cobra.Command {
	var flags fetchFlags
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Fetch recent posts and generate a blog article from them",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}
			return withApp(cmd, load, func(a *app.App) error {
				result, err := a.Import.Import(cmd.Context(), req)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	flags.register(cmd)
	return cmd
}
