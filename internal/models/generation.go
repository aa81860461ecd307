package models

import "time"

// Post is one provider post reduced to what aggregation needs.
type Post struct {
	ID        string
	Text      string
	CreatedAt time.Time
}

// GenerationRequest is the input of blog generation.
type GenerationRequest struct {
	Content string   `json:"content"`
	Source  Provider `json:"source"`
}

// GenerationResult is the generated article. SEOScore is always within
// [50, 98].
type GenerationResult struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	SEOScore int      `json:"seo_score"`
	Topics   []string `json:"topics"`
}
