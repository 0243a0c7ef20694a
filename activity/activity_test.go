package activity

import (
	"testing"

	"github.com/Jiranon-K/hoshinote/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestDescribe(t *testing.T) {
	meta := bson.M{
		"postTitle": "Hello World",
		"oldRole":   "reader",
		"newRole":   "author",
	}

	tests := []struct {
		activityType string
		expected     string
	}{
		{models.ActivityPostCreated, `Created new post "Hello World"`},
		{models.ActivityPostUpdated, `Updated post "Hello World"`},
		{models.ActivityPostDeleted, `Deleted post "Hello World"`},
		{models.ActivityPostPublished, `Published post "Hello World"`},
		{models.ActivityCommentCreated, `Added a comment on "Hello World"`},
		{models.ActivityCommentDeleted, `Deleted a comment on "Hello World"`},
		{models.ActivityProfileUpdated, "Updated profile information"},
		{models.ActivityRoleUpgraded, "Role upgraded from reader to author"},
	}

	for _, tt := range tests {
		t.Run(tt.activityType, func(t *testing.T) {
			assert.Equal(t, tt.expected, Describe(tt.activityType, meta))
		})
	}
}

func TestDescribeEveryTypeNonEmpty(t *testing.T) {
	types := []string{
		models.ActivityPostCreated,
		models.ActivityPostUpdated,
		models.ActivityPostDeleted,
		models.ActivityPostPublished,
		models.ActivityCommentCreated,
		models.ActivityCommentDeleted,
		models.ActivityProfileUpdated,
		models.ActivityRoleUpgraded,
	}

	for _, activityType := range types {
		assert.NotEmpty(t, Describe(activityType, nil))
		assert.NotEmpty(t, Describe(activityType, bson.M{}))
	}
}

func TestDescribeUnknownType(t *testing.T) {
	assert.Equal(t, "Performed an action", Describe("something_else", bson.M{}))
	assert.NotEmpty(t, Describe("", nil))
}

func TestDescribeNonStringMetadata(t *testing.T) {
	// A metadata bag with the wrong value type must not panic.
	assert.Equal(t, `Created new post ""`, Describe(models.ActivityPostCreated, bson.M{"postTitle": 42}))
}
