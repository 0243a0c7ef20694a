package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Jiranon-K/hoshinote/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func makeComment(post primitive.ObjectID, parent *primitive.ObjectID, createdAt time.Time) models.Comment {
	return models.Comment{
		ID:            primitive.NewObjectID(),
		Post:          post,
		Author:        primitive.NewObjectID(),
		Content:       "hello",
		ParentComment: parent,
		Status:        models.CommentStatusApproved,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func TestBuildCommentTreeOrdering(t *testing.T) {
	post := primitive.NewObjectID()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	older := makeComment(post, nil, base)
	newer := makeComment(post, nil, base.Add(time.Hour))

	replyLate := makeComment(post, &older.ID, base.Add(30*time.Minute))
	replyEarly := makeComment(post, &older.ID, base.Add(10*time.Minute))

	tree := buildCommentTree(
		[]models.Comment{older, replyLate, newer, replyEarly},
		map[primitive.ObjectID]models.User{},
	)

	require.Len(t, tree, 2)
	// Top-level comments come newest-first.
	assert.Equal(t, newer.ID.Hex(), tree[0].ID)
	assert.Equal(t, older.ID.Hex(), tree[1].ID)
	assert.Empty(t, tree[0].Replies)

	// Replies read oldest-first under their parent.
	require.Len(t, tree[1].Replies, 2)
	assert.Equal(t, replyEarly.ID.Hex(), tree[1].Replies[0].ID)
	assert.Equal(t, replyLate.ID.Hex(), tree[1].Replies[1].ID)
	assert.Equal(t, older.ID.Hex(), tree[1].Replies[0].ParentComment)
}

func TestBuildCommentTreeDropsOrphanReplies(t *testing.T) {
	post := primitive.NewObjectID()
	missingParent := primitive.NewObjectID()

	top := makeComment(post, nil, time.Now())
	orphan := makeComment(post, &missingParent, time.Now())

	tree := buildCommentTree([]models.Comment{top, orphan}, map[primitive.ObjectID]models.User{})

	require.Len(t, tree, 1)
	assert.Equal(t, top.ID.Hex(), tree[0].ID)
	assert.Empty(t, tree[0].Replies)
}

func TestBuildCommentTreeEmpty(t *testing.T) {
	tree := buildCommentTree(nil, nil)
	assert.NotNil(t, tree)
	assert.Empty(t, tree)
}

func TestValidCommentContent(t *testing.T) {
	t.Run("trims surrounding whitespace", func(t *testing.T) {
		content, ok := validCommentContent("  hello  ")
		require.True(t, ok)
		assert.Equal(t, "hello", content)
	})

	t.Run("rejects empty and whitespace-only", func(t *testing.T) {
		_, ok := validCommentContent("")
		assert.False(t, ok)
		_, ok = validCommentContent("   \n\t ")
		assert.False(t, ok)
	})

	t.Run("length counts characters not bytes", func(t *testing.T) {
		// 300 Thai characters occupy 900 bytes but are well under the
		// 500-character limit.
		thai := strings.Repeat("ก", 300)
		content, ok := validCommentContent(thai)
		require.True(t, ok)
		assert.Equal(t, thai, content)
	})

	t.Run("boundary at 500 characters", func(t *testing.T) {
		_, ok := validCommentContent(strings.Repeat("字", 500))
		assert.True(t, ok)
		_, ok = validCommentContent(strings.Repeat("字", 501))
		assert.False(t, ok)
		_, ok = validCommentContent(strings.Repeat("a", 501))
		assert.False(t, ok)
	})
}

func TestCommentPatch(t *testing.T) {
	now := time.Now()

	t.Run("admin may rewrite another user's content", func(t *testing.T) {
		update, _, msg := commentPatch(UpdateCommentRequest{Content: "moderated wording"}, true, now)
		require.Empty(t, msg)
		assert.Equal(t, "moderated wording", update["content"])
	})

	t.Run("author edits own content", func(t *testing.T) {
		update, _, msg := commentPatch(UpdateCommentRequest{Content: "second thoughts"}, false, now)
		require.Empty(t, msg)
		assert.Equal(t, "second thoughts", update["content"])
		assert.Equal(t, now, update["updatedAt"])
	})

	t.Run("status change is admin-only", func(t *testing.T) {
		_, status, msg := commentPatch(UpdateCommentRequest{Status: models.CommentStatusSpam}, false, now)
		assert.Equal(t, http.StatusForbidden, status)
		assert.NotEmpty(t, msg)
	})

	t.Run("admin moderates status", func(t *testing.T) {
		update, _, msg := commentPatch(UpdateCommentRequest{Status: models.CommentStatusSpam}, true, now)
		require.Empty(t, msg)
		assert.Equal(t, models.CommentStatusSpam, update["status"])
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		_, status, msg := commentPatch(UpdateCommentRequest{Status: "hidden"}, true, now)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.NotEmpty(t, msg)
	})

	t.Run("overlong content rejected", func(t *testing.T) {
		_, status, msg := commentPatch(UpdateCommentRequest{Content: strings.Repeat("ก", 501)}, false, now)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.NotEmpty(t, msg)
	})

	t.Run("multibyte content within limit accepted", func(t *testing.T) {
		update, _, msg := commentPatch(UpdateCommentRequest{Content: strings.Repeat("ก", 500)}, false, now)
		require.Empty(t, msg)
		assert.Equal(t, strings.Repeat("ก", 500), update["content"])
	})
}

func TestCommentViewAuthorPopulation(t *testing.T) {
	post := primitive.NewObjectID()
	cm := makeComment(post, nil, time.Now())

	t.Run("known author with avatar", func(t *testing.T) {
		authors := map[primitive.ObjectID]models.User{
			cm.Author: {ID: cm.Author, Name: "Hoshi", Avatar: "https://cdn.example.com/hoshi.png"},
		}
		view := commentView(cm, authors)
		assert.Equal(t, "Hoshi", view.Author.Name)
		assert.Equal(t, "https://cdn.example.com/hoshi.png", view.Author.Avatar)
	})

	t.Run("known author without avatar gets placeholder", func(t *testing.T) {
		authors := map[primitive.ObjectID]models.User{
			cm.Author: {ID: cm.Author, Name: "Hoshi"},
		}
		view := commentView(cm, authors)
		assert.Equal(t, "Hoshi", view.Author.Name)
		assert.Equal(t, fallbackAvatar, view.Author.Avatar)
	})

	t.Run("missing author falls back", func(t *testing.T) {
		view := commentView(cm, map[primitive.ObjectID]models.User{})
		assert.Equal(t, "Unknown User", view.Author.Name)
		assert.Equal(t, fallbackAvatar, view.Author.Avatar)
		assert.Equal(t, cm.Author.Hex(), view.Author.ID)
	})
}
