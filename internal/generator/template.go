package generator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var titleTemplates = []string{
	"How [Topic] Is Transforming [Industry]",
	"The Ultimate Guide to [Topic]: Strategies for Success",
	"[Number] Ways [Topic] Can Revolutionize Your Business",
	"Why [Topic] Matters More Than Ever in [Current Year]",
	"The Future of [Topic]: Trends and Predictions",
}

var titleReplacer = strings.NewReplacer(
	"[Industry]", "the Digital Landscape",
	"[Number]", "5",
	"[Current Year]", "2025",
)

const (
	defaultIntroduction = "In today's rapidly evolving digital landscape, staying ahead of technological trends isn't just advantageous. It's essential."
	defaultContext      = "When we examine the current state of the industry, several key factors emerge that warrant careful consideration and analysis."
	defaultPerspective  = "Experts across the industry have noted significant shifts in how organizations approach these challenges."
)

// TemplateLLM fills a fixed article skeleton from the post itself. It needs
// no network access and backs local runs and tests.
type TemplateLLM struct {
	pick func(n int) int
}

func NewTemplateLLM() *TemplateLLM {
	return &TemplateLLM{pick: rand.IntN}
}

// NewTemplateLLMWithPicker makes title selection deterministic.
func NewTemplateLLMWithPicker(pick func(n int) int) *TemplateLLM {
	return &TemplateLLM{pick: pick}
}

func (t *TemplateLLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	topics := ExtractTopics(prompt.Content)
	title := t.Title(FirstSentence(prompt.Content), topics)
	md := buildArticle(prompt.Content, title, topics)

	return RenderMarkdown(md)
}

// Title picks a headline template for the first topic, or builds one from
// the opening words when there are no topics.
func (t *TemplateLLM) Title(firstSentence string, topics []string) string {
	if len(topics) == 0 {
		words := strings.Split(firstSentence, " ")
		return "The Complete Guide to " + strings.Join(words[:min(5, len(words))], " ")
	}

	tmpl := titleTemplates[t.pick(len(titleTemplates))]
	return titleReplacer.Replace(strings.Replace(tmpl, "[Topic]", capitalize(topics[0]), 1))
}

func buildArticle(content, title string, topics []string) string {
	var paragraphs []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) != "" {
			paragraphs = append(paragraphs, line)
		}
	}
	paragraph := func(i int, fallback string) string {
		if i < len(paragraphs) {
			return escapeMarkdown(paragraphs[i])
		}
		return fallback
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(title))

	sb.WriteString("## Introduction\n\n")
	fmt.Fprintf(&sb, "%s\n\n", paragraph(0, defaultIntroduction))
	sb.WriteString("As professionals across industries seek to maximize efficiency without compromising quality, new approaches and strategies have emerged as powerful solutions to common challenges.\n\n")

	sb.WriteString("## Understanding the Context\n\n")
	fmt.Fprintf(&sb, "%s\n\n", paragraph(1, defaultContext))
	sb.WriteString("To fully appreciate the implications, we need to consider historical context alongside emerging trends and technologies that are reshaping expectations and possibilities.\n\n")

	sb.WriteString("## Key Insights\n\n")
	for _, topic := range topics {
		fmt.Fprintf(&sb, "- The impact of %s on productivity and innovation\n", escapeMarkdown(topic))
	}
	sb.WriteString("- How leading organizations are implementing these strategies\n")
	sb.WriteString("- Measuring success and ROI in practical terms\n\n")

	sb.WriteString("## Strategic Applications\n\n")
	sb.WriteString("For professionals looking to implement these insights, consider the following approaches:\n\n")
	sb.WriteString("1. Start with small, measurable pilot projects\n")
	sb.WriteString("2. Focus on areas with highest potential impact\n")
	sb.WriteString("3. Establish clear metrics for success\n")
	sb.WriteString("4. Iterate based on feedback and results\n\n")

	sb.WriteString("## Industry Perspective\n\n")
	fmt.Fprintf(&sb, "%s The consensus points toward a more integrated, strategic approach that balances innovation with practical implementation.\n\n", paragraph(2, defaultPerspective))

	sb.WriteString("## Looking Forward\n\n")
	sb.WriteString("As we look to the future, several trends are likely to shape the evolution of this space:\n\n")
	sb.WriteString("- Increased automation and AI integration\n")
	sb.WriteString("- Greater emphasis on data-driven decision making\n")
	sb.WriteString("- More collaborative approaches to problem-solving\n\n")

	sb.WriteString("## Conclusion\n\n")
	sb.WriteString("The landscape continues to evolve rapidly, and staying informed about best practices and emerging trends is essential for long-term success. By thoughtfully implementing the strategies outlined above, organizations can position themselves at the forefront of innovation while delivering measurable results.\n")

	return sb.String()
}

var (
	markdownEscaper      = strings.NewReplacer(`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`, "#", `\#`, "<", `\<`, ">", `\>`)
	orderedMarkerPattern = regexp.MustCompile(`^(\s*\d+)([.)])`)
)

// escapeMarkdown keeps user text literal when rendered.
func escapeMarkdown(s string) string {
	s = markdownEscaper.Replace(strings.TrimSpace(s))
	s = orderedMarkerPattern.ReplaceAllString(s, `$1\$2`)
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "=") {
		s = `\` + s
	}
	return s
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
