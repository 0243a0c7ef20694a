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
	"go.mongodb.org/mongo-driver/mongo"
)

type UpdateProfileRequest struct {
	Name   string `json:"name" binding:"omitempty,min=2,max=50"`
	Avatar string `json:"avatar"`
	Bio    string `json:"bio" binding:"omitempty,max=500"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func GetProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func UpdateProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	update := bson.M{"updatedAt": time.Now()}
	if req.Name != "" {
		update["name"] = strings.TrimSpace(req.Name)
	}
	if req.Avatar != "" {
		update["avatar"] = req.Avatar
	}
	if req.Bio != "" {
		update["bio"] = req.Bio
	}

	result, err := database.Users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": update})
	if err != nil {
		log.Printf("UpdateProfile error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	activity.Log(ctx, userID, models.ActivityProfileUpdated, bson.M{})

	var user models.User
	if err := database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUserRole lets an admin promote or demote another user. The change
// lands in the target user's activity feed.
func UpdateUserRole(c *gin.Context) {
	adminID, ok := requireUserID(c)
	if !ok {
		return
	}
	if !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only admins can change roles"})
		return
	}

	targetID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}
	switch req.Role {
	case models.RoleReader, models.RoleAuthor, models.RoleAdmin:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var target models.User
	err := database.Users.FindOne(ctx, bson.M{"_id": targetID}).Decode(&target)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if target.Role == req.Role {
		c.JSON(http.StatusOK, target)
		return
	}

	_, err = database.Users.UpdateOne(ctx, bson.M{"_id": targetID}, bson.M{"$set": bson.M{
		"role":      req.Role,
		"updatedAt": time.Now(),
	}})
	if err != nil {
		log.Printf("UpdateUserRole error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}

	activity.Log(ctx, targetID, models.ActivityRoleUpgraded, bson.M{
		"oldRole": target.Role,
		"newRole": req.Role,
		"trigger": adminID.Hex(),
	})

	target.Role = req.Role
	c.JSON(http.StatusOK, target)
}
