package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CommentStatusPending  = "pending"
	CommentStatusApproved = "approved"
	CommentStatusSpam     = "spam"
)

const MaxCommentLength = 500

type Comment struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Post          primitive.ObjectID  `bson:"post" json:"post"`
	Author        primitive.ObjectID  `bson:"author" json:"author"`
	Content       string              `bson:"content" json:"content"`
	ParentComment *primitive.ObjectID `bson:"parentComment,omitempty" json:"parentComment,omitempty"`
	Status        string              `bson:"status" json:"status"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}

func ValidCommentStatus(status string) bool {
	switch status {
	case CommentStatusPending, CommentStatusApproved, CommentStatusSpam:
		return true
	}
	return false
}
