// Package aggregate merges fetched posts into one generation input.
package aggregate

import (
	"slices"
	"strings"

	"github.com/vipul43/blogforge/internal/models"
)

const separator = "\n\n"

// Posts orders posts oldest first, keeping the fetched order for equal
// timestamps, and joins their non-blank bodies with a blank line. The input
// slice is not modified. No posts yields an empty string.
func Posts(posts []models.Post) string {
	if len(posts) == 0 {
		return ""
	}

	sorted := Sort(posts)
	bodies := make([]string, 0, len(sorted))
	for _, p := range sorted {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		bodies = append(bodies, p.Text)
	}

	return strings.TrimRight(strings.Join(bodies, separator), " \t\r\n")
}

// Sort returns a copy of posts in non-decreasing creation order.
func Sort(posts []models.Post) []models.Post {
	sorted := slices.Clone(posts)
	slices.SortStableFunc(sorted, func(a, b models.Post) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return sorted
}
