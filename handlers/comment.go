package handlers

import (
	"context"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Jiranon-K/hoshinote/activity"
	"github.com/Jiranon-K/hoshinote/database"
	"github.com/Jiranon-K/hoshinote/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type CreateCommentRequest struct {
	Content         string `json:"content" binding:"required"`
	ParentCommentID string `json:"parentCommentId"`
}

type UpdateCommentRequest struct {
	Content string `json:"content"`
	Status  string `json:"status"`
}

// validCommentContent trims the submitted content and enforces the
// 1..MaxCommentLength bound. The bound counts characters, not bytes, so
// multibyte scripts get the full length.
func validCommentContent(raw string) (string, bool) {
	content := strings.TrimSpace(raw)
	if content == "" || utf8.RuneCountInString(content) > models.MaxCommentLength {
		return "", false
	}
	return content, true
}

// commentPatch builds the $set document for an edit request: status
// changes are admin-only, content may be rewritten by the author or an
// admin. Returns a non-empty message (with its HTTP status) on rejection.
func commentPatch(req UpdateCommentRequest, admin bool, now time.Time) (bson.M, int, string) {
	update := bson.M{"updatedAt": now}

	if req.Status != "" {
		if !admin {
			return nil, http.StatusForbidden, "Only admins can change comment status"
		}
		if !models.ValidCommentStatus(req.Status) {
			return nil, http.StatusBadRequest, "Invalid status"
		}
		update["status"] = req.Status
	}

	if req.Content != "" {
		content, ok := validCommentContent(req.Content)
		if !ok {
			return nil, http.StatusBadRequest, "Comment must be between 1 and 500 characters"
		}
		update["content"] = content
	}

	return update, 0, ""
}

// commentAuthor is the populated display subset of a comment's author.
type commentAuthor struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// CommentView is one node of the threaded tree: a top-level comment with
// its direct replies. Nesting is exactly one level deep.
type CommentView struct {
	ID            string        `json:"id"`
	Post          string        `json:"post"`
	Author        commentAuthor `json:"author"`
	Content       string        `json:"content"`
	ParentComment string        `json:"parentComment,omitempty"`
	Status        string        `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	Replies       []CommentView `json:"replies,omitempty"`
}

func commentView(cm models.Comment, authors map[primitive.ObjectID]models.User) CommentView {
	author := commentAuthor{
		ID:     cm.Author.Hex(),
		Name:   "Unknown User",
		Avatar: fallbackAvatar,
	}
	if u, ok := authors[cm.Author]; ok {
		author.Name = u.Name
		if u.Avatar != "" {
			author.Avatar = u.Avatar
		}
	}

	view := CommentView{
		ID:        cm.ID.Hex(),
		Post:      cm.Post.Hex(),
		Author:    author,
		Content:   cm.Content,
		Status:    cm.Status,
		CreatedAt: cm.CreatedAt,
		UpdatedAt: cm.UpdatedAt,
	}
	if cm.ParentComment != nil {
		view.ParentComment = cm.ParentComment.Hex()
	}
	return view
}

// buildCommentTree assembles the threaded view: top-level comments
// newest-first, each carrying its direct replies oldest-first (the
// chronological reading order of a thread). Replies whose parent is
// missing from the input are dropped.
func buildCommentTree(comments []models.Comment, authors map[primitive.ObjectID]models.User) []CommentView {
	var topLevel []models.Comment
	replies := map[primitive.ObjectID][]models.Comment{}

	for _, cm := range comments {
		if cm.ParentComment == nil {
			topLevel = append(topLevel, cm)
		} else {
			replies[*cm.ParentComment] = append(replies[*cm.ParentComment], cm)
		}
	}

	sort.SliceStable(topLevel, func(i, j int) bool {
		return topLevel[i].CreatedAt.After(topLevel[j].CreatedAt)
	})

	tree := make([]CommentView, 0, len(topLevel))
	for _, cm := range topLevel {
		node := commentView(cm, authors)

		children := replies[cm.ID]
		sort.SliceStable(children, func(i, j int) bool {
			return children[i].CreatedAt.Before(children[j].CreatedAt)
		})
		for _, reply := range children {
			node.Replies = append(node.Replies, commentView(reply, authors))
		}

		tree = append(tree, node)
	}
	return tree
}

// fetchCommentAuthors batch-loads every referenced author in one query to
// avoid an N+1 lookup per comment.
func fetchCommentAuthors(ctx context.Context, comments []models.Comment) (map[primitive.ObjectID]models.User, error) {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, cm := range comments {
		if !seen[cm.Author] {
			seen[cm.Author] = true
			ids = append(ids, cm.Author)
		}
	}

	authors := map[primitive.ObjectID]models.User{}
	if len(ids) == 0 {
		return authors, nil
	}

	cursor, err := database.Users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		authors[u.ID] = u
	}
	return authors, nil
}

func GetComments(c *gin.Context) {
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

	cursor, err := database.Comments.Find(ctx, bson.M{
		"post":   postID,
		"status": models.CommentStatusApproved,
	})
	if err != nil {
		log.Printf("GetComments error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode comments"})
		return
	}

	authors, err := fetchCommentAuthors(ctx, comments)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comment authors"})
		return
	}

	c.JSON(http.StatusOK, buildCommentTree(comments, authors))
}

func CreateComment(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	postID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}

	content, ok := validCommentContent(req.Content)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment must be between 1 and 500 characters"})
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

	var parentID *primitive.ObjectID
	if req.ParentCommentID != "" {
		id, err := primitive.ObjectIDFromHex(req.ParentCommentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid parent comment ID"})
			return
		}

		var parent models.Comment
		err = database.Comments.FindOne(ctx, bson.M{"_id": id}).Decode(&parent)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid parent comment"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		// Replies only attach to top-level comments on the same post.
		if parent.Post != postID || parent.ParentComment != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid parent comment"})
			return
		}
		parentID = &id
	}

	now := time.Now()
	comment := models.Comment{
		ID:            primitive.NewObjectID(),
		Post:          postID,
		Author:        userID,
		Content:       content,
		ParentComment: parentID,
		Status:        models.CommentStatusApproved,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := database.Comments.InsertOne(ctx, comment); err != nil {
		log.Printf("CreateComment insert error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	activity.Log(ctx, userID, models.ActivityCommentCreated, bson.M{
		"postId":    postID.Hex(),
		"postTitle": post.Title,
		"commentId": comment.ID.Hex(),
	})

	authors, err := fetchCommentAuthors(ctx, []models.Comment{comment})
	if err != nil {
		authors = map[primitive.ObjectID]models.User{}
	}

	c.JSON(http.StatusCreated, commentView(comment, authors))
}

func UpdateComment(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	commentID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var comment models.Comment
	err := database.Comments.FindOne(ctx, bson.M{"_id": commentID}).Decode(&comment)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if comment.Author != userID && !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to update this comment"})
		return
	}

	update, status, msg := commentPatch(req, isAdmin(c), time.Now())
	if msg != "" {
		c.JSON(status, gin.H{"error": msg})
		return
	}

	if _, err := database.Comments.UpdateOne(ctx, bson.M{"_id": commentID}, bson.M{"$set": update}); err != nil {
		log.Printf("UpdateComment error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}

	if err := database.Comments.FindOne(ctx, bson.M{"_id": commentID}).Decode(&comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comment"})
		return
	}

	authors, err := fetchCommentAuthors(ctx, []models.Comment{comment})
	if err != nil {
		authors = map[primitive.ObjectID]models.User{}
	}

	c.JSON(http.StatusOK, commentView(comment, authors))
}

func DeleteComment(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	commentID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var comment models.Comment
	err := database.Comments.FindOne(ctx, bson.M{"_id": commentID}).Decode(&comment)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if comment.Author != userID && !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to delete this comment"})
		return
	}

	// A top-level comment takes its direct replies with it; nesting is
	// capped at one level, so this is the whole subtree.
	if comment.ParentComment == nil {
		if _, err := database.Comments.DeleteMany(ctx, bson.M{"parentComment": commentID}); err != nil {
			log.Printf("DeleteComment reply cascade error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
			return
		}
	}

	if _, err := database.Comments.DeleteOne(ctx, bson.M{"_id": commentID}); err != nil {
		log.Printf("DeleteComment error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	metadata := bson.M{"commentId": commentID.Hex(), "postId": comment.Post.Hex()}
	var post models.Post
	if err := database.Posts.FindOne(ctx, bson.M{"_id": comment.Post}).Decode(&post); err == nil {
		metadata["postTitle"] = post.Title
	}
	activity.Log(ctx, userID, models.ActivityCommentDeleted, metadata)

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
