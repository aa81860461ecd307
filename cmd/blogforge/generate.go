package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vipul43/blogforge/internal/app"
	"github.com/vipul43/blogforge/internal/models"
)

func newGenerateCmd(load loader) *cobra.Command {
	var content, file, source string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a blog article from text",
		Example: `  blogforge generate --source linkedin --content "Excited to share my thoughts on #AI"
  cat post.txt | blogforge generate --file -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readContent(cmd.InOrStdin(), content, file)
			if err != nil {
				return err
			}
			p, err := models.ParseProvider(source)
			if err != nil {
				return err
			}
			return withApp(cmd, load, func(a *app.App) error {
				result, err := a.Generator.Generate(cmd.Context(), models.GenerationRequest{Content: text, Source: p})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "text to turn into an article")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the text from a file, - for stdin")
	cmd.Flags().StringVar(&source, "source", string(models.ProviderLinkedIn), "source platform: twitter|linkedin")
	cmd.MarkFlagsMutuallyExclusive("content", "file")
	return cmd
}

func readContent(stdin io.Reader, content, file string) (string, error) {
	switch file {
	case "":
		return content, nil
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		return string(data), nil
	}
}
