package main

import (
	"context"
	"log"
	"strconv"
	"time"

	"lingohub/config"
	"lingohub/controllers"
	"lingohub/db"
	"lingohub/middlewares"
	"lingohub/services"
	"lingohub/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load the configuration from the specified YAML file
	cfg, err := config.LoadConfig("./config/config.yml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// Connect to MongoDB using the URI from the configuration
	database, err := db.Connect(ctx, cfg.Database.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Println("Connected to MongoDB")

	if err := database.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	// External collaborators. Stream and Gemini back core features and are
	// required; Cloudinary, Deepgram and Redis degrade gracefully when absent.
	streamService, err := services.NewStreamService(cfg.Stream.ApiKey, cfg.Stream.ApiSecret)
	if err != nil {
		log.Fatalf("Failed to create Stream client: %v", err)
	}

	tutorService, err := services.NewTutorService(ctx, cfg.Gemini.ApiKey)
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}
	defer tutorService.Close()

	var mediaService *services.MediaService
	if cfg.Cloudinary.CloudName != "" {
		mediaService, err = services.NewMediaService(cfg.Cloudinary.CloudName, cfg.Cloudinary.ApiKey, cfg.Cloudinary.ApiSecret)
		if err != nil {
			log.Fatalf("Failed to create Cloudinary client: %v", err)
		}
	} else {
		log.Println("Cloudinary not configured, image uploads disabled")
	}

	transcriptionService := services.NewTranscriptionService(cfg.Deepgram.ApiKey)
	if !transcriptionService.Configured() {
		log.Println("Deepgram not configured, transcription disabled")
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
	} else {
		log.Println("Redis not configured, friend-request rate limiting disabled")
	}

	hub := websocket.NewHub()
	tokenExpiry := time.Duration(cfg.JWT.ExpiryHours) * time.Hour

	authController := &controllers.AuthController{
		DB:          database,
		Stream:      streamService,
		Media:       mediaService,
		JWTSecret:   cfg.JWT.Secret,
		TokenExpiry: tokenExpiry,
	}
	userController := &controllers.UserController{
		DB:      database,
		Friends: services.NewFriendService(database),
		Hub:     hub,
		Redis:   redisClient,
	}
	gamificationController := &controllers.GamificationController{DB: database}
	notificationController := &controllers.NotificationController{DB: database, Hub: hub}
	momentController := &controllers.MomentController{DB: database, Media: mediaService}
	chatController := &controllers.ChatController{DB: database, Stream: streamService}
	aiController := &controllers.AIController{
		DB:         database,
		Tutor:      tutorService,
		Transcribe: transcriptionService,
	}

	router := setupRouter(cfg, hub, authController, userController, gamificationController,
		notificationController, momentController, chatController, aiController)

	port := strconv.Itoa(cfg.Server.Port)
	log.Printf("Server starting on port %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRouter(
	cfg *config.Config,
	hub *websocket.Hub,
	auth *controllers.AuthController,
	users *controllers.UserController,
	gamification *controllers.GamificationController,
	notifications *controllers.NotificationController,
	moments *controllers.MomentController,
	chat *controllers.ChatController,
	ai *controllers.AIController,
) *gin.Engine {
	router := gin.Default()

	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	clientURL := cfg.Server.ClientURL
	if clientURL == "" {
		clientURL = "http://localhost:5173"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{clientURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Public routes for authentication
	router.POST("/api/auth/signup", auth.Signup)
	router.POST("/api/auth/login", auth.Login)
	router.POST("/api/auth/logout", auth.Logout)

	// Protected routes (JWT auth)
	authorized := router.Group("/api")
	authorized.Use(middlewares.AuthMiddleware(cfg.JWT.Secret))
	{
		authorized.POST("/auth/onboard", auth.Onboard)
		authorized.PUT("/auth/update-profile", auth.UpdateProfile)
		authorized.GET("/auth/me", auth.Me)

		authorized.GET("/users/recommended", users.GetRecommendedUsers)
		authorized.GET("/users/friends", users.GetFriends)
		authorized.GET("/users/map-users", users.GetMapUsers)
		authorized.POST("/users/send-request/:recipientId", users.SendFriendRequest)
		authorized.GET("/users/friend-requests", users.GetPendingRequests)
		authorized.GET("/users/friend-requests/pending", users.GetAllPendingRequests)
		authorized.POST("/users/friend-requests/accept/:requestId", users.AcceptFriendRequest)
		authorized.POST("/users/friend-requests/reject/:requestId", users.RejectFriendRequest)

		authorized.POST("/gamification/update-streak", gamification.UpdateStreak)
		authorized.GET("/gamification/leaderboard", gamification.GetLeaderboard)

		authorized.GET("/notifications", notifications.GetNotifications)
		authorized.PUT("/notifications/:id/read", notifications.MarkNotificationRead)
		authorized.DELETE("/notifications/:id", notifications.DeleteNotification)
		authorized.POST("/notifications/send-call-invite", notifications.SendCallInvite)

		// Live notification push; polling endpoints stay authoritative
		authorized.GET("/ws/notifications", websocket.NotificationsHandler(hub))

		authorized.POST("/moments/create", moments.CreateMoment)
		authorized.GET("/moments", moments.GetMomentsFeed)
		authorized.DELETE("/moments/:id", moments.DeleteMoment)

		authorized.GET("/chat/token", chat.GetStreamToken)
		authorized.POST("/chat/ensure-user/:userId", chat.EnsureStreamUser)

		authorized.POST("/ai/chat", ai.ChatWithTutor)
		authorized.POST("/ai/transcribe", ai.TranscribeAudio)
	}

	return router
}
