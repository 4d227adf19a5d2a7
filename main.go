package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"improve-my-city-be/config"
	"improve-my-city-be/controllers"
	"improve-my-city-be/middlewares"
	"improve-my-city-be/repository"
	"improve-my-city-be/routes"
	"improve-my-city-be/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var issues repository.IssueRepository
	var users repository.UserRepository

	switch os.Getenv("STORAGE_BACKEND") {
	case "memory":
		issues = repository.NewMemoryIssueRepository()
		users = repository.NewMemoryUserRepository()
		log.Println("Using in-memory storage backend")
	default:
		db := config.ConnectDB()
		if db == nil {
			log.Fatal("Failed to connect to MongoDB")
		}
		issues = repository.NewMongoIssueRepository(db.Collection("issues"))
		users = repository.NewMongoUserRepository(db.Collection("users"))
		log.Println("MongoDB connection established successfully!")
	}

	var photos services.PhotoStore
	switch os.Getenv("PHOTO_BACKEND") {
	case "minio":
		store, err := services.NewMinioPhotoStore(
			os.Getenv("MINIO_ENDPOINT"),
			os.Getenv("MINIO_ACCESS_KEY"),
			os.Getenv("MINIO_SECRET_KEY"),
			os.Getenv("MINIO_BUCKET"),
			os.Getenv("MINIO_PUBLIC_URL"),
			os.Getenv("MINIO_USE_SSL") == "true",
		)
		if err != nil {
			log.Fatalf("Failed to configure object storage: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := store.EnsureBucket(ctx); err != nil {
			cancel()
			log.Fatalf("Failed to ensure photo bucket: %v", err)
		}
		cancel()
		photos = store
		log.Println("Using MinIO photo storage")
	default:
		photos = services.InlinePhotoStore{}
		log.Println("Using inline photo storage")
	}

	ai := services.NewAIClient(
		os.Getenv("OPENAI_API_KEY"),
		os.Getenv("OPENAI_BASE_URL"),
		os.Getenv("OPENAI_MODEL"),
	)

	var createLimiter gin.HandlerFunc
	if os.Getenv("REDIS_ADDRESS") != "" {
		config.ConnectRedis()
		createLimiter = middlewares.IssueRateLimiter(10)
	}

	frontendOrigin := os.Getenv("FRONTEND_ORIGIN")
	if frontendOrigin == "" {
		frontendOrigin = "http://localhost:5173"
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{frontendOrigin},
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	routes.AuthRoutes(r, controllers.NewAuthController(users))
	routes.IssueRoutes(r, controllers.NewIssueController(issues, ai, photos), users, createLimiter)
	routes.ChatbotRoutes(r, controllers.NewChatbotController(issues))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
