package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port    string
	GinMode string

	// Database
	MongoURI string
	MongoDB  string

	// Sessions
	JWTSecret string

	// View counting marker
	ViewSecret string

	// Login rate limiting. RedisAddr empty means in-process limiter.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Object storage: "s3" or "cloudinary"
	StorageProvider string

	// S3 / R2
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	// Cloudinary
	CloudinaryURL string
}

func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		MongoURI: getEnv("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:  getEnv("MONGODB_DB", "hoshinote"),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		ViewSecret: getEnv("VIEW_SECRET", os.Getenv("JWT_SECRET")),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		StorageProvider: getEnv("STORAGE_PROVIDER", "s3"),

		S3Region:    getEnv("S3_REGION", "auto"),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Bucket:    getEnv("S3_BUCKET", "hoshinote-uploads"),
		S3PublicURL: getEnv("S3_PUBLIC_URL", ""),

		CloudinaryURL: getEnv("CLOUDINARY_URL", ""),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
