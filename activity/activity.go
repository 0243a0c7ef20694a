// Package activity writes the append-only audit trail behind the
// dashboard's recent-activity feed.
package activity

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Jiranon-K/hoshinote/database"
	"github.com/Jiranon-K/hoshinote/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Log appends one activity record. Failures are logged and swallowed:
// recording an action must never fail the action itself.
func Log(ctx context.Context, userID primitive.ObjectID, activityType string, metadata bson.M) {
	if metadata == nil {
		metadata = bson.M{}
	}

	entry := models.Activity{
		ID:          primitive.NewObjectID(),
		User:        userID,
		Type:        activityType,
		Description: Describe(activityType, metadata),
		Metadata:    metadata,
		CreatedAt:   time.Now(),
	}

	if _, err := database.Activities.InsertOne(ctx, entry); err != nil {
		log.Printf("activity log write failed (type=%s user=%s): %v", activityType, userID.Hex(), err)
	}
}

// Describe maps an activity type plus metadata to a human-readable
// sentence. Unknown types get a generic fallback rather than an error.
func Describe(activityType string, metadata bson.M) string {
	switch activityType {
	case models.ActivityPostCreated:
		return fmt.Sprintf("Created new post %q", str(metadata, "postTitle"))
	case models.ActivityPostUpdated:
		return fmt.Sprintf("Updated post %q", str(metadata, "postTitle"))
	case models.ActivityPostDeleted:
		return fmt.Sprintf("Deleted post %q", str(metadata, "postTitle"))
	case models.ActivityPostPublished:
		return fmt.Sprintf("Published post %q", str(metadata, "postTitle"))
	case models.ActivityCommentCreated:
		return fmt.Sprintf("Added a comment on %q", str(metadata, "postTitle"))
	case models.ActivityCommentDeleted:
		return fmt.Sprintf("Deleted a comment on %q", str(metadata, "postTitle"))
	case models.ActivityProfileUpdated:
		return "Updated profile information"
	case models.ActivityRoleUpgraded:
		return fmt.Sprintf("Role upgraded from %s to %s", str(metadata, "oldRole"), str(metadata, "newRole"))
	default:
		return "Performed an action"
	}
}

func str(metadata bson.M, key string) string {
	if v, ok := metadata[key].(string); ok {
		return v
	}
	return ""
}
