package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostLike is the (user, post) join ledger behind the denormalized
// Post.Likes counter. The unique index on the pair lives in database.EnsureIndexes.
type PostLike struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Post      primitive.ObjectID `bson:"post" json:"post"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
