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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetActivities returns the caller's own activity feed, newest-first.
// There is no cross-user visibility.
func GetActivities(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	page, limit, skip := parsePagination(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"user": userID}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := database.Activities.Find(ctx, filter, findOptions)
	if err != nil {
		log.Printf("GetActivities error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch activities"})
		return
	}
	defer cursor.Close(ctx)

	var activities []models.Activity
	if err := cursor.All(ctx, &activities); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode activities"})
		return
	}
	if activities == nil {
		activities = []models.Activity{}
	}

	total, err := database.Activities.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count activities"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activities": activities,
		"pagination": paginationMeta(page, limit, total),
	})
}
