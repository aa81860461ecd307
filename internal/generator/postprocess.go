package generator

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	htmlTagPattern = regexp.MustCompile(`(?i)<(h[1-6]|p|ul|ol|li|div|article|section)[\s>]`)
	fencePattern   = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\\n(.*?)\\n?```$")

	articlePolicy = bluemonday.UGCPolicy()
)

// CleanResponse turns raw model output into sanitized article HTML.
// Code fences are stripped and Markdown is rendered when the model ignored
// the HTML instruction. Returns an empty string when nothing usable is left.
func CleanResponse(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(content); m != nil {
		content = strings.TrimSpace(m[1])
	}
	if content == "" {
		return "", nil
	}

	if !htmlTagPattern.MatchString(content) {
		rendered, err := RenderMarkdown(content)
		if err != nil {
			return "", err
		}
		content = rendered
	}

	return strings.TrimSpace(articlePolicy.Sanitize(content)), nil
}

// RenderMarkdown converts Markdown to HTML.
func RenderMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

// ExtractTitle returns the text of the first <h1>, or "" when there is none.
func ExtractTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Find("h1").First().Text()), " ")
}
