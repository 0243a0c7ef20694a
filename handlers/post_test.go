package handlers

import (
	"testing"
	"time"

	"github.com/Jiranon-K/hoshinote/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePublishedAt(t *testing.T) {
	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	earlier := now.Add(-48 * time.Hour)

	t.Run("first publish stamps now", func(t *testing.T) {
		got := resolvePublishedAt(nil, models.PostStatusPublished, now)
		require.NotNil(t, got)
		assert.Equal(t, now, *got)
	})

	t.Run("draft stays unstamped", func(t *testing.T) {
		assert.Nil(t, resolvePublishedAt(nil, models.PostStatusDraft, now))
		assert.Nil(t, resolvePublishedAt(nil, models.PostStatusArchived, now))
	})

	t.Run("existing stamp survives edits", func(t *testing.T) {
		got := resolvePublishedAt(&earlier, models.PostStatusPublished, now)
		require.NotNil(t, got)
		assert.Equal(t, earlier, *got)
	})

	t.Run("unpublishing keeps the original stamp", func(t *testing.T) {
		got := resolvePublishedAt(&earlier, models.PostStatusDraft, now)
		require.NotNil(t, got)
		assert.Equal(t, earlier, *got)
	})
}

func TestNormalizeTerms(t *testing.T) {
	assert.Equal(t, []string{"go", "mongodb"}, normalizeTerms([]string{" Go ", "MongoDB"}))
	assert.Equal(t, []string{"go"}, normalizeTerms([]string{"go", "  ", ""}))
	assert.Empty(t, normalizeTerms(nil))
}

func TestPostRequestNormalize(t *testing.T) {
	req := PostRequest{
		Title:   "Hello",
		Slug:    "  My-Post  ",
		Excerpt: "intro",
		Tags:    []string{" Go "},
	}
	req.normalize()

	assert.Equal(t, "my-post", req.Slug)
	assert.Equal(t, models.PostStatusDraft, req.Status)
	assert.Equal(t, "<p></p>", req.Content)
	assert.Equal(t, []string{"go"}, req.Tags)
	assert.Empty(t, req.Categories)
}

func TestPostRequestValidate(t *testing.T) {
	valid := PostRequest{Slug: "my-post-1", Status: models.PostStatusPublished}
	assert.Empty(t, valid.validate())

	tests := []struct {
		name string
		req  PostRequest
	}{
		{"uppercase slug", PostRequest{Slug: "My-Post", Status: models.PostStatusDraft}},
		{"spaces in slug", PostRequest{Slug: "my post", Status: models.PostStatusDraft}},
		{"empty slug", PostRequest{Slug: "", Status: models.PostStatusDraft}},
		{"unknown status", PostRequest{Slug: "my-post", Status: "pending"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEmpty(t, tt.req.validate())
		})
	}
}
