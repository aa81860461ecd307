// Package scorer rates generated HTML with a structural heuristic. The
// score is a UX signal only and not a search-ranking prediction.
package scorer

import (
	"math/rand/v2"
	"regexp"
	"strings"
)

const (
	MinScore = 50
	MaxScore = 98

	jitterSpan   = 20
	jitterOffset = -10
)

var (
	headingPattern   = regexp.MustCompile(`<h[1-3][^>]*>`)
	paragraphPattern = regexp.MustCompile(`<p>`)
	listPattern      = regexp.MustCompile(`<[ou]l>`)
	imagePattern     = regexp.MustCompile(`<img`)
)

// Counts are the structural features of an HTML document.
type Counts struct {
	Words      int
	Headings   int
	Paragraphs int
	Lists      int
	Images     int
}

// Jitter returns a value in [-10, 9].
type Jitter func() int

// RandomJitter draws from a uniform distribution.
func RandomJitter() int {
	return rand.IntN(jitterSpan) + jitterOffset
}

// FixedJitter always returns n, clamped to the jitter range.
func FixedJitter(n int) Jitter {
	n = max(jitterOffset, min(n, jitterOffset+jitterSpan-1))
	return func() int { return n }
}

type Option func(*Scorer)

// WithImages adds up to 10 points for <img> tags.
func WithImages() Option {
	return func(s *Scorer) { s.countImages = true }
}

// WithJitter replaces the random jitter source.
func WithJitter(j Jitter) Option {
	return func(s *Scorer) { s.jitter = j }
}

type Scorer struct {
	countImages bool
	jitter      Jitter
}

func New(opts ...Option) *Scorer {
	s := &Scorer{jitter: RandomJitter}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Count extracts the features the score is computed from.
func Count(html string) Counts {
	return Counts{
		Words:      len(strings.Fields(html)),
		Headings:   len(headingPattern.FindAllStringIndex(html, -1)),
		Paragraphs: len(paragraphPattern.FindAllStringIndex(html, -1)),
		Lists:      len(listPattern.FindAllStringIndex(html, -1)),
		Images:     len(imagePattern.FindAllStringIndex(html, -1)),
	}
}

// Structural is the score before jitter and clamping.
func (s *Scorer) Structural(html string) int {
	c := Count(html)

	score := 0
	if c.Words > 300 {
		score += 10
	}
	if c.Words > 500 {
		score += 10
	}
	if c.Words > 800 {
		score += 10
	}

	score += min(c.Headings*5, 20)
	score += min(c.Paragraphs*2, 10)
	score += min(c.Lists*5, 10)
	if s.countImages {
		score += min(c.Images*5, 10)
	}
	return score
}

// Score returns the final value in [MinScore, MaxScore].
func (s *Scorer) Score(html string) int {
	return clamp(s.Structural(html) + s.jitter())
}

func clamp(score int) int {
	return max(MinScore, min(MaxScore, score))
}
