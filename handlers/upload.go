package handlers

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/Jiranon-K/hoshinote/models"

	"github.com/gin-gonic/gin"
)

const maxUploadSize = 5 << 20 // 5 MB

var allowedUploadTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// UploadImage accepts a multipart image and returns its public URL.
// Restricted to authors and admins since only they attach media to posts.
func UploadImage(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}
	role := c.GetString("role")
	if role != models.RoleAuthor && role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to upload files"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File exceeds the 5 MB limit"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedUploadTypes[contentType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file type"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	url, err := uploads.Upload(ctx, data, fileHeader.Filename, contentType)
	if err != nil {
		log.Printf("UploadImage error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}
