package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vipul43/blogforge/internal/models"
)

func TestPosts(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		posts []models.Post
		want  string
	}{
		{
			name:  "empty",
			posts: nil,
			want:  "",
		},
		{
			name: "sorted ascending",
			posts: []models.Post{
				{ID: "3", Text: "third", CreatedAt: base.Add(2 * time.Hour)},
				{ID: "1", Text: "first", CreatedAt: base},
				{ID: "2", Text: "second", CreatedAt: base.Add(time.Hour)},
			},
			want: "first\n\nsecond\n\nthird",
		},
		{
			name: "ties keep fetched order",
			posts: []models.Post{
				{ID: "b", Text: "b", CreatedAt: base},
				{ID: "a", Text: "a", CreatedAt: base},
				{ID: "early", Text: "early", CreatedAt: base.Add(-time.Minute)},
			},
			want: "early\n\nb\n\na",
		},
		{
			name: "trailing whitespace trimmed",
			posts: []models.Post{
				{ID: "1", Text: "  leading kept", CreatedAt: base},
				{ID: "2", Text: "last  \n\n", CreatedAt: base.Add(time.Second)},
			},
			want: "  leading kept\n\nlast",
		},
		{
			name: "blank bodies skipped",
			posts: []models.Post{
				{ID: "1", Text: "a", CreatedAt: base},
				{ID: "2", Text: "", CreatedAt: base.Add(time.Second)},
				{ID: "3", Text: " \n\t", CreatedAt: base.Add(2 * time.Second)},
				{ID: "4", Text: "b", CreatedAt: base.Add(3 * time.Second)},
			},
			want: "a\n\nb",
		},
		{
			name: "only blank bodies",
			posts: []models.Post{
				{ID: "1", Text: "", CreatedAt: base},
			},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Posts(tt.posts))
		})
	}
}

func TestSort_DoesNotModifyInput(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	posts := []models.Post{
		{ID: "2", CreatedAt: base.Add(time.Hour)},
		{ID: "1", CreatedAt: base},
	}

	sorted := Sort(posts)

	assert.Equal(t, "1", sorted[0].ID)
	assert.Equal(t, "2", posts[0].ID)
	for i := 1; i < len(sorted); i++ {
		assert.False(t, sorted[i].CreatedAt.Before(sorted[i-1].CreatedAt))
	}
}
