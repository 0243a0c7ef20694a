package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Jiranon-K/hoshinote/activity"
	"github.com/Jiranon-K/hoshinote/database"
	"github.com/Jiranon-K/hoshinote/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type PostRequest struct {
	Title      string   `json:"title" binding:"required,max=100"`
	Slug       string   `json:"slug" binding:"required"`
	Content    string   `json:"content"`
	Excerpt    string   `json:"excerpt" binding:"required,max=200"`
	CoverImage string   `json:"coverImage"`
	Tags       []string `json:"tags"`
	Categories []string `json:"categories"`
	Status     string   `json:"status"`
}

func (r *PostRequest) normalize() {
	r.Slug = strings.ToLower(strings.TrimSpace(r.Slug))
	if r.Status == "" {
		r.Status = models.PostStatusDraft
	}
	if r.Content == "" {
		r.Content = "<p></p>"
	}
	r.Tags = normalizeTerms(r.Tags)
	r.Categories = normalizeTerms(r.Categories)
}

func (r *PostRequest) validate() string {
	if !models.SlugPattern.MatchString(r.Slug) {
		return "Slug can only contain lowercase letters, numbers, and hyphens"
	}
	if !models.ValidPostStatus(r.Status) {
		return "Invalid status"
	}
	return ""
}

// normalizeTerms lowercases and trims tag/category terms, dropping empties.
func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// resolvePublishedAt keeps publishedAt write-once: the first transition to
// published stamps it, later edits leave it alone, and it never resets.
func resolvePublishedAt(existing *time.Time, status string, now time.Time) *time.Time {
	if existing != nil {
		return existing
	}
	if status == models.PostStatusPublished {
		return &now
	}
	return nil
}

// populatedPost is a post with its author joined in via $lookup. The
// join decodes only the display subset of the user document.
type populatedPost struct {
	models.Post `bson:",inline"`
	AuthorDoc   *models.AuthorRef `bson:"authorDoc"`
}

func postResponse(p populatedPost) gin.H {
	authorMap := gin.H{
		"id":     p.Author.Hex(),
		"name":   "Unknown User",
		"avatar": fallbackAvatar,
	}
	if p.AuthorDoc != nil {
		authorMap["name"] = p.AuthorDoc.Name
		authorMap["email"] = p.AuthorDoc.Email
		if p.AuthorDoc.Avatar != "" {
			authorMap["avatar"] = p.AuthorDoc.Avatar
		}
	}

	resp := gin.H{
		"id":         p.ID.Hex(),
		"title":      p.Title,
		"slug":       p.Slug,
		"content":    p.Content,
		"excerpt":    p.Excerpt,
		"coverImage": p.CoverImage,
		"author":     authorMap,
		"tags":       p.Tags,
		"categories": p.Categories,
		"status":     p.Status,
		"views":      p.Views,
		"likes":      p.Likes,
		"createdAt":  p.CreatedAt,
		"updatedAt":  p.UpdatedAt,
	}
	if p.PublishedAt != nil {
		resp["publishedAt"] = p.PublishedAt
	}
	return resp
}

var authorLookupStages = []bson.D{
	{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: "users"},
		{Key: "localField", Value: "author"},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: "authorDoc"},
	}}},
	{{Key: "$unwind", Value: bson.D{
		{Key: "path", Value: "$authorDoc"},
		{Key: "preserveNullAndEmptyArrays", Value: true},
	}}},
}

func ListPosts(c *gin.Context) {
	page, limit, skip := parsePagination(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"status": c.DefaultQuery("status", models.PostStatusPublished)}

	if category := c.Query("category"); category != "" {
		filter["categories"] = bson.M{"$in": []string{strings.ToLower(category)}}
	}
	if tag := c.Query("tag"); tag != "" {
		filter["tags"] = bson.M{"$in": []string{strings.ToLower(tag)}}
	}
	if search := c.Query("search"); search != "" {
		regex := primitive.Regex{Pattern: search, Options: "i"}
		filter["$or"] = []bson.M{
			{"title": regex},
			{"content": regex},
			{"excerpt": regex},
		}
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: filter}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "publishedAt", Value: -1},
			{Key: "createdAt", Value: -1},
		}}},
		bson.D{{Key: "$skip", Value: skip}},
		bson.D{{Key: "$limit", Value: limit}},
	}
	pipeline = append(pipeline, authorLookupStages...)

	cursor, err := database.Posts.Aggregate(ctx, pipeline)
	if err != nil {
		log.Printf("ListPosts aggregate error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}
	defer cursor.Close(ctx)

	var posts []populatedPost
	if err := cursor.All(ctx, &posts); err != nil {
		log.Printf("ListPosts decode error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode posts"})
		return
	}

	total, err := database.Posts.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count posts"})
		return
	}

	// One batch query resolves isLiked for the whole page.
	liked := map[primitive.ObjectID]bool{}
	if userID, ok := currentUserID(c); ok && len(posts) > 0 {
		postIDs := make([]primitive.ObjectID, len(posts))
		for i, p := range posts {
			postIDs[i] = p.ID
		}

		likeCursor, err := database.PostLikes.Find(ctx, bson.M{
			"user": userID,
			"post": bson.M{"$in": postIDs},
		})
		if err == nil {
			var likes []models.PostLike
			if err := likeCursor.All(ctx, &likes); err == nil {
				for _, l := range likes {
					liked[l.Post] = true
				}
			}
		}
	}

	response := make([]gin.H, len(posts))
	for i, p := range posts {
		view := postResponse(p)
		view["isLiked"] = liked[p.ID]
		response[i] = view
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":      response,
		"pagination": paginationMeta(page, limit, total),
	})
}

func CreatePost(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}
	req.normalize()
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := database.Posts.CountDocuments(ctx, bson.M{"slug": req.Slug})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Post with this slug already exists"})
		return
	}

	now := time.Now()
	post := models.Post{
		ID:          primitive.NewObjectID(),
		Title:       req.Title,
		Slug:        req.Slug,
		Content:     req.Content,
		Excerpt:     req.Excerpt,
		CoverImage:  req.CoverImage,
		Author:      userID,
		Tags:        req.Tags,
		Categories:  req.Categories,
		Status:      req.Status,
		PublishedAt: resolvePublishedAt(nil, req.Status, now),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := database.Posts.InsertOne(ctx, post); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Post with this slug already exists"})
			return
		}
		log.Printf("CreatePost insert error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	activity.Log(ctx, userID, models.ActivityPostCreated, bson.M{
		"postId":    post.ID.Hex(),
		"postTitle": post.Title,
	})

	c.JSON(http.StatusCreated, post)
}

func GetPost(c *gin.Context) {
	postID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	post, ok := findPopulatedPost(ctx, c, bson.M{"_id": postID})
	if !ok {
		return
	}

	// Counter bump is atomic at the storage layer, never read-then-write.
	if _, err := database.Posts.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$inc": bson.M{"views": 1}}); err != nil {
		log.Printf("GetPost view increment error: %v", err)
	}

	c.JSON(http.StatusOK, postResponse(*post))
}

func GetPostBySlug(c *gin.Context) {
	slug := c.Param("slug")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	post, ok := findPopulatedPost(ctx, c, bson.M{"slug": slug, "status": models.PostStatusPublished})
	if !ok {
		return
	}

	if _, err := database.Posts.UpdateOne(ctx, bson.M{"slug": slug}, bson.M{"$inc": bson.M{"views": 1}}); err != nil {
		log.Printf("GetPostBySlug view increment error: %v", err)
	}

	c.JSON(http.StatusOK, postResponse(*post))
}

// findPopulatedPost fetches a single post with its author joined, writing
// the 404/500 reply itself when the lookup fails.
func findPopulatedPost(ctx context.Context, c *gin.Context, match bson.M) (*populatedPost, bool) {
	pipeline := mongo.Pipeline{bson.D{{Key: "$match", Value: match}}}
	pipeline = append(pipeline, authorLookupStages...)

	cursor, err := database.Posts.Aggregate(ctx, pipeline)
	if err != nil {
		log.Printf("post lookup aggregate error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch post"})
		return nil, false
	}
	defer cursor.Close(ctx)

	var posts []populatedPost
	if err := cursor.All(ctx, &posts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode post"})
		return nil, false
	}
	if len(posts) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return nil, false
	}
	return &posts[0], true
}

func UpdatePost(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	postID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}
	req.normalize()
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
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

	if post.Author != userID && !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to update this post"})
		return
	}

	if req.Slug != post.Slug {
		count, err := database.Posts.CountDocuments(ctx, bson.M{"slug": req.Slug, "_id": bson.M{"$ne": postID}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Post with this slug already exists"})
			return
		}
	}

	now := time.Now()
	publishedAt := resolvePublishedAt(post.PublishedAt, req.Status, now)
	justPublished := post.PublishedAt == nil && publishedAt != nil

	update := bson.M{
		"title":      req.Title,
		"slug":       req.Slug,
		"content":    req.Content,
		"excerpt":    req.Excerpt,
		"coverImage": req.CoverImage,
		"tags":       req.Tags,
		"categories": req.Categories,
		"status":     req.Status,
		"updatedAt":  now,
	}
	if publishedAt != nil {
		update["publishedAt"] = publishedAt
	}

	if _, err := database.Posts.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$set": update}); err != nil {
		log.Printf("UpdatePost error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}

	activityType := models.ActivityPostUpdated
	if justPublished {
		activityType = models.ActivityPostPublished
	}
	activity.Log(ctx, userID, activityType, bson.M{
		"postId":    postID.Hex(),
		"postTitle": req.Title,
		"oldStatus": post.Status,
		"newStatus": req.Status,
	})

	updated, ok := findPopulatedPost(ctx, c, bson.M{"_id": postID})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, postResponse(*updated))
}

func DeletePost(c *gin.Context) {
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

	if post.Author != userID && !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to delete this post"})
		return
	}

	// Post deletion cascades to its entire comment thread and like ledger.
	if _, err := database.Comments.DeleteMany(ctx, bson.M{"post": postID}); err != nil {
		log.Printf("DeletePost comment cascade error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}
	if _, err := database.PostLikes.DeleteMany(ctx, bson.M{"post": postID}); err != nil {
		log.Printf("DeletePost like cascade error: %v", err)
	}
	if _, err := database.Posts.DeleteOne(ctx, bson.M{"_id": postID}); err != nil {
		log.Printf("DeletePost error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	activity.Log(ctx, userID, models.ActivityPostDeleted, bson.M{
		"postId":    postID.Hex(),
		"postTitle": post.Title,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// GetMyPosts lists the caller's own posts; admins see every author.
func GetMyPosts(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	page, limit, skip := parsePagination(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if !isAdmin(c) {
		filter["author"] = userID
	}
	if status := c.Query("status"); status != "" && status != "all" {
		filter["status"] = status
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: filter}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		bson.D{{Key: "$skip", Value: skip}},
		bson.D{{Key: "$limit", Value: limit}},
	}
	pipeline = append(pipeline, authorLookupStages...)

	cursor, err := database.Posts.Aggregate(ctx, pipeline)
	if err != nil {
		log.Printf("GetMyPosts aggregate error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}
	defer cursor.Close(ctx)

	var posts []populatedPost
	if err := cursor.All(ctx, &posts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode posts"})
		return
	}

	total, err := database.Posts.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count posts"})
		return
	}

	response := make([]gin.H, len(posts))
	for i, p := range posts {
		response[i] = postResponse(p)
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":      response,
		"pagination": paginationMeta(page, limit, total),
	})
}
