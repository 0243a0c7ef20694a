package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity event types.
const (
	ActivityPostCreated    = "post_created"
	ActivityPostUpdated    = "post_updated"
	ActivityPostDeleted    = "post_deleted"
	ActivityPostPublished  = "post_published"
	ActivityCommentCreated = "comment_created"
	ActivityCommentDeleted = "comment_deleted"
	ActivityProfileUpdated = "profile_updated"
	ActivityRoleUpgraded   = "role_upgraded"
)

// Activity is an append-only audit record. Normal flows never mutate or
// delete one.
type Activity struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User        primitive.ObjectID `bson:"user" json:"user"`
	Type        string             `bson:"type" json:"type"`
	Description string             `bson:"description" json:"description"`
	Metadata    bson.M             `bson:"metadata" json:"metadata"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
