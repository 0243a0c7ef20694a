package handlers

import (
	"net/http"
	"strconv"

	"github.com/Jiranon-K/hoshinote/config"
	"github.com/Jiranon-K/hoshinote/models"
	"github.com/Jiranon-K/hoshinote/ratelimit"
	"github.com/Jiranon-K/hoshinote/storage"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const fallbackAvatar = "https://upload.wikimedia.org/wikipedia/commons/8/89/Portrait_Placeholder.png"

// Every list endpoint clamps the client-requested page size to this.
const maxPageLimit = 50
const defaultPageLimit = 10

var (
	jwtSecret    string
	viewSecret   []byte
	loginLimiter ratelimit.Limiter
	uploads      storage.Uploader
)

// Init wires the handler package's collaborators. Called once from main.
func Init(cfg *config.Config, limiter ratelimit.Limiter, uploader storage.Uploader) {
	jwtSecret = cfg.JWTSecret
	viewSecret = []byte(cfg.ViewSecret)
	loginLimiter = limiter
	uploads = uploader
}

// parsePagination reads page/limit query params, clamping limit to
// maxPageLimit regardless of what the client asks for.
func parsePagination(c *gin.Context) (page, limit, skip int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	return page, limit, (page - 1) * limit
}

// paginationMeta builds the {page, limit, total, pages} envelope.
func paginationMeta(page, limit int, total int64) gin.H {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return gin.H{
		"page":  page,
		"limit": limit,
		"total": total,
		"pages": pages,
	}
}

// currentUserID returns the authenticated caller's id, or false when the
// request is anonymous or carries a malformed id.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userIDStr := c.GetString("userId")
	if userIDStr == "" {
		return primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return userID, true
}

// requireUserID is currentUserID plus the 401 reply.
func requireUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	}
	return userID, ok
}

func isAdmin(c *gin.Context) bool {
	return c.GetString("role") == models.RoleAdmin
}

// objectIDParam parses a path parameter as an ObjectID, replying 400 on
// malformed input.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return primitive.NilObjectID, false
	}
	return id, true
}
