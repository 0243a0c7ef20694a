package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Jiranon-K/hoshinote/database"
	"github.com/Jiranon-K/hoshinote/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// viewWindow is how long a client's view marker suppresses re-counting.
const viewWindow = time.Hour

// signViewMarker produces the cookie value "unix.hexmac" binding the
// timestamp to the (post, client IP) pair.
func signViewMarker(secret []byte, postID, ip string, ts time.Time) string {
	unix := strconv.FormatInt(ts.Unix(), 10)
	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%s|%s|%s", postID, ip, unix)
	return unix + "." + hex.EncodeToString(mac.Sum(nil))
}

// verifyViewMarker reports whether value is an authentic, unexpired marker
// for the (post, client IP) pair. Tampered or stale markers read as absent.
func verifyViewMarker(secret []byte, postID, ip, value string, now time.Time) bool {
	parts := strings.SplitN(value, ".", 2)
	if len(parts) != 2 {
		return false
	}

	unix, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return false
	}

	issued := time.Unix(unix, 0)
	if now.Sub(issued) >= viewWindow || issued.After(now) {
		return false
	}

	expected := signViewMarker(secret, postID, ip, issued)
	return hmac.Equal([]byte(value), []byte(expected))
}

// IncrementViews counts a view at most once per (post, client) per hour.
// This is a best-effort anti-spam heuristic: cleared cookies or a new IP
// count again, which is acceptable for a vanity metric.
func IncrementViews(c *gin.Context) {
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

	if post.Status != models.PostStatusPublished {
		c.JSON(http.StatusForbidden, gin.H{"error": "Post not published"})
		return
	}

	clientIP := c.ClientIP()
	cookieName := "view_" + postID.Hex()
	now := time.Now()

	if marker, err := c.Cookie(cookieName); err == nil {
		if verifyViewMarker(viewSecret, postID.Hex(), clientIP, marker, now) {
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"views":   post.Views,
				"message": "View already counted",
			})
			return
		}
	}

	var updated models.Post
	err = database.Posts.FindOneAndUpdate(
		ctx,
		bson.M{"_id": postID},
		bson.M{"$inc": bson.M{"views": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		log.Printf("IncrementViews error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to increment views"})
		return
	}

	c.SetCookie(cookieName, signViewMarker(viewSecret, postID.Hex(), clientIP, now),
		int(viewWindow.Seconds()), "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"views":   updated.Views,
	})
}
