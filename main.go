package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jiranon-K/hoshinote/config"
	"github.com/Jiranon-K/hoshinote/database"
	"github.com/Jiranon-K/hoshinote/handlers"
	"github.com/Jiranon-K/hoshinote/ratelimit"
	"github.com/Jiranon-K/hoshinote/routes"
	"github.com/Jiranon-K/hoshinote/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	loginAttemptLimit  = 5
	loginAttemptWindow = 15 * time.Minute
)

func main() {
	log.Println("Starting hoshinote API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	// Connect to MongoDB with retry
	var dbErr error
	for i := 1; i <= 3; i++ {
		if err := database.Connect(cfg.MongoURI, cfg.MongoDB); err != nil {
			dbErr = err
			log.Printf("MongoDB connection attempt %d failed: %v", i, err)
			time.Sleep(2 * time.Second)
			continue
		}
		dbErr = nil
		break
	}
	if dbErr != nil {
		log.Fatal("Failed to connect to MongoDB:", dbErr)
	}

	indexCtx, indexCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(indexCtx); err != nil {
		indexCancel()
		log.Fatal("Failed to create indexes:", err)
	}
	indexCancel()

	// Login limiter: Redis when configured, process memory otherwise.
	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		limiter = ratelimit.NewRedisLimiter(client, loginAttemptLimit, loginAttemptWindow)
		log.Println("Using Redis-backed login rate limiter")
	} else {
		limiter = ratelimit.NewMemoryLimiter(loginAttemptLimit, loginAttemptWindow)
		log.Println("Using in-memory login rate limiter")
	}

	uploader, err := storage.New(cfg)
	if err != nil {
		log.Fatal("Failed to configure storage:", err)
	}

	handlers.Init(cfg, limiter, uploader)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := routes.SetupRouter(cfg)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "hoshinote API running"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error:", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("Forced shutdown:", err)
	}
	if err := database.Disconnect(); err != nil {
		log.Println("MongoDB disconnect error:", err)
	}

	log.Println("Server stopped gracefully")
}
