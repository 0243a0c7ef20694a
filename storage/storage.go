// Package storage uploads user-submitted images (cover images, avatars)
// to an object store and hands back a public URL.
package storage

import (
	"context"
	"fmt"

	"github.com/Jiranon-K/hoshinote/config"
)

type Uploader interface {
	Upload(ctx context.Context, data []byte, filename, contentType string) (string, error)
}

// New picks the backend from config: "s3" (also R2/MinIO via a custom
// endpoint) or "cloudinary".
func New(cfg *config.Config) (Uploader, error) {
	switch cfg.StorageProvider {
	case "s3":
		return NewS3Uploader(cfg)
	case "cloudinary":
		return NewCloudinaryUploader(cfg)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.StorageProvider)
	}
}
