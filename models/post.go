package models

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusArchived  = "archived"
)

// SlugPattern constrains slugs to lowercase alphanumerics and hyphens.
var SlugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

type Post struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Slug        string             `bson:"slug" json:"slug"`
	Content     string             `bson:"content" json:"content"`
	Excerpt     string             `bson:"excerpt" json:"excerpt"`
	CoverImage  string             `bson:"coverImage" json:"coverImage"`
	Author      primitive.ObjectID `bson:"author" json:"author"`
	Tags        []string           `bson:"tags" json:"tags"`
	Categories  []string           `bson:"categories" json:"categories"`
	Status      string             `bson:"status" json:"status"`
	PublishedAt *time.Time         `bson:"publishedAt,omitempty" json:"publishedAt,omitempty"`
	Views       int64              `bson:"views" json:"views"`
	Likes       int64              `bson:"likes" json:"likes"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func ValidPostStatus(status string) bool {
	switch status {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived:
		return true
	}
	return false
}
