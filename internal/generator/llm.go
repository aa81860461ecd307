package generator

import (
	"context"
	"fmt"

	"github.com/vipul43/blogforge/internal/models"
)

// LLMClient is a text generation backend.
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// Sampling parameters shared by every model backend.
const (
	Temperature     = 0.7
	TopK            = 40
	TopP            = 0.95
	MaxOutputTokens = 8192
)

// Prompt is the instruction sent to a backend. Source and Content are the
// raw inputs the instruction was built from.
type Prompt struct {
	Text    string
	Source  models.Provider
	Content string
}

// BuildBlogPrompt embeds the post in the fixed article instruction.
func BuildBlogPrompt(source models.Provider, content string) Prompt {
	text := fmt.Sprintf(`Please convert the following %s post into a well-structured blog post with HTML formatting.
Add proper headings (h1, h2), paragraphs, lists, and other formatting as needed.
Expand on the content to make it more comprehensive.
Original content: %s

The blog post should have the following structure:
1. A catchy title (wrapped in h1 tags)
2. An introduction section (with h2)
3. 2-3 main content sections with appropriate headings (h2)
4. Lists where appropriate (ul or ol)
5. A conclusion section (with h2)

IMPORTANT: Return only the formatted HTML content of the blog post with no additional commentary.`, source, content)

	return Prompt{Text: text, Source: source, Content: content}
}
