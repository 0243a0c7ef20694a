package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/Jiranon-K/hoshinote/analytics"
	"github.com/Jiranon-K/hoshinote/database"
	"github.com/Jiranon-K/hoshinote/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// sumField runs a $match + $group/$sum pipeline and unwraps the single
// result row (zero when no documents match).
func sumField(ctx context.Context, coll *mongo.Collection, match bson.M, field string) (int64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$" + field}}},
		}}},
	}

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

// scopeFilter restricts aggregation to the caller's authored posts unless
// they are an admin.
func scopeFilter(c *gin.Context, userID primitive.ObjectID) bson.M {
	if isAdmin(c) {
		return bson.M{}
	}
	return bson.M{"author": userID}
}

func merged(base bson.M, extra bson.M) bson.M {
	out := bson.M{}
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func GetDashboardStats(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	scope := scopeFilter(c, userID)

	totalPosts, err := database.Posts.CountDocuments(ctx, scope)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dashboard stats"})
		return
	}
	publishedPosts, err := database.Posts.CountDocuments(ctx, merged(scope, bson.M{"status": models.PostStatusPublished}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dashboard stats"})
		return
	}
	draftPosts, err := database.Posts.CountDocuments(ctx, merged(scope, bson.M{"status": models.PostStatusDraft}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dashboard stats"})
		return
	}

	// Non-admins see counts over their own comments, admins over all.
	commentScope := bson.M{}
	if !isAdmin(c) {
		commentScope["author"] = userID
	}
	totalComments, err := database.Comments.CountDocuments(ctx, commentScope)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dashboard stats"})
		return
	}

	totalViews, err := sumField(ctx, database.Posts, scope, "views")
	if err != nil {
		log.Printf("GetDashboardStats views sum error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dashboard stats"})
		return
	}
	totalLikes, err := sumField(ctx, database.Posts, scope, "likes")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dashboard stats"})
		return
	}

	stats := gin.H{
		"totalPosts":     totalPosts,
		"publishedPosts": publishedPosts,
		"draftPosts":     draftPosts,
		"totalComments":  totalComments,
		"totalViews":     totalViews,
		"totalLikes":     totalLikes,
	}

	if isAdmin(c) {
		pendingComments, err := database.Comments.CountDocuments(ctx, bson.M{"status": models.CommentStatusPending})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dashboard stats"})
			return
		}
		stats["pendingComments"] = pendingComments
	}

	c.JSON(http.StatusOK, stats)
}

func GetTrendingPosts(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sevenDaysAgo := time.Now().AddDate(0, 0, -7)

	filter := merged(scopeFilter(c, userID), bson.M{
		"status":      models.PostStatusPublished,
		"views":       bson.M{"$gt": 0},
		"publishedAt": bson.M{"$gte": sevenDaysAgo},
	})

	// Deterministic order: views desc, then most recently published.
	findOptions := options.Find().
		SetSort(bson.D{{Key: "views", Value: -1}, {Key: "publishedAt", Value: -1}}).
		SetLimit(5)

	cursor, err := database.Posts.Find(ctx, filter, findOptions)
	if err != nil {
		log.Printf("GetTrendingPosts error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trending posts"})
		return
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode trending posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": summarizePosts(posts)})
}

func GetViewsAnalytics(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	scope := scopeFilter(c, userID)
	now := time.Now()
	sevenDaysAgo := now.AddDate(0, 0, -7)
	fourteenDaysAgo := now.AddDate(0, 0, -14)

	totalViews, err := sumField(ctx, database.Posts, scope, "views")
	if err != nil {
		log.Printf("GetViewsAnalytics total error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch views analytics"})
		return
	}

	// The trend windows bucket by update time, not publish time.
	recentViews, err := sumField(ctx, database.Posts,
		merged(scope, bson.M{"updatedAt": bson.M{"$gte": sevenDaysAgo}}), "views")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch views analytics"})
		return
	}
	previousWeekViews, err := sumField(ctx, database.Posts,
		merged(scope, bson.M{"updatedAt": bson.M{"$gte": fourteenDaysAgo, "$lt": sevenDaysAgo}}), "views")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch views analytics"})
		return
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "views", Value: -1}, {Key: "publishedAt", Value: -1}}).
		SetLimit(10)
	cursor, err := database.Posts.Find(ctx, merged(scope, bson.M{
		"status": models.PostStatusPublished,
		"views":  bson.M{"$gt": 0},
	}), findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch views analytics"})
		return
	}
	defer cursor.Close(ctx)

	var topPosts []models.Post
	if err := cursor.All(ctx, &topPosts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode views analytics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalViews":        totalViews,
		"recentViews":       recentViews,
		"previousWeekViews": previousWeekViews,
		"topPosts":          summarizePosts(topPosts),
		"viewsTrend":        analytics.ViewsTrend(recentViews, previousWeekViews),
	})
}

// summarizePosts trims posts down to the card fields the dashboard shows.
func summarizePosts(posts []models.Post) []gin.H {
	out := make([]gin.H, len(posts))
	for i, p := range posts {
		entry := gin.H{
			"id":         p.ID.Hex(),
			"title":      p.Title,
			"slug":       p.Slug,
			"excerpt":    p.Excerpt,
			"coverImage": p.CoverImage,
			"views":      p.Views,
			"status":     p.Status,
		}
		if p.PublishedAt != nil {
			entry["publishedAt"] = p.PublishedAt
		}
		out[i] = entry
	}
	return out
}
