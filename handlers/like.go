package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/Jiranon-K/hoshinote/database"
	"github.com/Jiranon-K/hoshinote/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ToggleLike flips the caller's (user, post) like. The unique index on the
// pair is what makes concurrent duplicate toggles safe; the counter moves
// only via $inc, and the returned count is re-read rather than derived
// from the optimistic delta.
func ToggleLike(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	postID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := database.Posts.CountDocuments(ctx, bson.M{"_id": postID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var existing models.PostLike
	err = database.PostLikes.FindOne(ctx, bson.M{"user": userID, "post": postID}).Decode(&existing)

	var isLiked bool
	switch {
	case err == nil:
		// Unlike: drop the ledger row, then decrement.
		result, err := database.PostLikes.DeleteOne(ctx, bson.M{"_id": existing.ID})
		if err != nil {
			log.Printf("ToggleLike delete error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle like"})
			return
		}
		// A racing unlike may have removed the row already; only the
		// request that actually deleted it moves the counter.
		if result.DeletedCount > 0 {
			if _, err := database.Posts.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$inc": bson.M{"likes": -1}}); err != nil {
				log.Printf("ToggleLike decrement error: %v", err)
			}
		}
		isLiked = false

	case err == mongo.ErrNoDocuments:
		like := models.PostLike{
			ID:        primitive.NewObjectID(),
			User:      userID,
			Post:      postID,
			CreatedAt: time.Now(),
		}
		_, err := database.PostLikes.InsertOne(ctx, like)
		if mongo.IsDuplicateKeyError(err) {
			// A concurrent request inserted the pair first; the unique
			// index held, so no second row and no double increment.
			isLiked = true
			break
		}
		if err != nil {
			log.Printf("ToggleLike insert error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle like"})
			return
		}
		if _, err := database.Posts.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$inc": bson.M{"likes": 1}}); err != nil {
			log.Printf("ToggleLike increment error: %v", err)
		}
		isLiked = true

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	// Authoritative count comes from a fresh read.
	var post models.Post
	if err := database.Posts.FindOne(ctx, bson.M{"_id": postID}).Decode(&post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch post"})
		return
	}

	message := "Post unliked"
	if isLiked {
		message = "Post liked"
	}

	c.JSON(http.StatusOK, gin.H{
		"isLiked":    isLiked,
		"likesCount": post.Likes,
		"message":    message,
	})
}

// GetLikeStatus returns the caller's like state plus the most recent
// likers for display.
func GetLikeStatus(c *gin.Context) {
	postID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var post models.Post
	err := database.Posts.FindOne(ctx, bson.M{"_id": postID}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	isLiked := false
	if userID, ok := currentUserID(c); ok {
		n, err := database.PostLikes.CountDocuments(ctx, bson.M{"user": userID, "post": postID})
		if err == nil && n > 0 {
			isLiked = true
		}
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(10)
	cursor, err := database.PostLikes.Find(ctx, bson.M{"post": postID}, findOptions)
	if err != nil {
		log.Printf("GetLikeStatus likers error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch likes"})
		return
	}
	defer cursor.Close(ctx)

	var likes []models.PostLike
	if err := cursor.All(ctx, &likes); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode likes"})
		return
	}

	// Batch-load the likers' display fields.
	var likerIDs []primitive.ObjectID
	for _, l := range likes {
		likerIDs = append(likerIDs, l.User)
	}

	users := map[primitive.ObjectID]models.User{}
	if len(likerIDs) > 0 {
		userCursor, err := database.Users.Find(ctx, bson.M{"_id": bson.M{"$in": likerIDs}})
		if err == nil {
			var docs []models.User
			if err := userCursor.All(ctx, &docs); err == nil {
				for _, u := range docs {
					users[u.ID] = u
				}
			}
		}
	}

	likedUsers := make([]gin.H, 0, len(likes))
	for _, l := range likes {
		entry := gin.H{
			"id":      l.User.Hex(),
			"name":    "Unknown User",
			"avatar":  fallbackAvatar,
			"likedAt": l.CreatedAt,
		}
		if u, ok := users[l.User]; ok {
			entry["name"] = u.Name
			if u.Avatar != "" {
				entry["avatar"] = u.Avatar
			}
		}
		likedUsers = append(likedUsers, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"isLiked":    isLiked,
		"likesCount": post.Likes,
		"likedUsers": likedUsers,
	})
}
