package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"reading-club/internal/auth"
	"reading-club/internal/config"
	"reading-club/internal/database"
	"reading-club/internal/handlers"
	"reading-club/internal/jobs"
	"reading-club/internal/repository"
	"reading-club/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	db, err := database.Connect(cfg.GetDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repository and services
	repo := repository.NewRepository(db)
	userService := services.NewUserService(repo)
	groupService := services.NewGroupService(repo)
	weekService := services.NewWeekService(repo)
	discussionService := services.NewDiscussionService(repo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	groupHandler := handlers.NewGroupHandler(groupService, weekService)
	weekHandler := handlers.NewWeekHandler(weekService)
	discussionHandler := handlers.NewDiscussionHandler(discussionService)

	// Start the rollover job so overdue weeks resolve without traffic
	rolloverJob := jobs.NewRolloverJob(weekService)
	rolloverJob.Start(cfg.App.RolloverInterval)
	log.Println("Week rollover job started")

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := strings.Split(cfg.Server.CORSOrigins, ",")
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Authentication routes (public)
	authRoutes := router.Group("/api/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
	}

	// Invite preview is public so links render before login
	router.GET("/api/invites/:token", groupHandler.PreviewInvite)

	// Authenticated /auth/me route
	authProtected := router.Group("/api/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/me", authHandler.Me)
	}

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// Group endpoints
		api.POST("/groups", groupHandler.CreateGroup)
		api.GET("/groups", groupHandler.ListGroups)
		api.GET("/groups/:groupId/snapshot", groupHandler.GetSnapshot)
		api.PATCH("/groups/:groupId/settings", groupHandler.UpdateSettings)
		api.POST("/groups/:groupId/invites", groupHandler.CreateInvite)
		api.GET("/groups/:groupId/invites", groupHandler.ListInvites)
		api.DELETE("/groups/:groupId/invites/:inviteId", groupHandler.CancelInvite)
		api.PUT("/groups/:groupId/members/:userId/role", groupHandler.SetMemberRole)
		api.POST("/invites/:token/join", groupHandler.JoinGroup)

		// Voting endpoints
		api.POST("/groups/:groupId/proposals", weekHandler.AddProposal)
		api.DELETE("/groups/:groupId/proposals/:proposalId", weekHandler.RemoveProposal)
		api.POST("/groups/:groupId/votes", weekHandler.CastVote)
		api.POST("/groups/:groupId/resolve", weekHandler.ResolveWeek)
		api.POST("/groups/:groupId/reroll", weekHandler.RerollSeed)
		api.POST("/groups/:groupId/start-new-vote", weekHandler.StartNewVote)
		api.POST("/cron/rollover", weekHandler.TriggerRollover)

		// Reading discussion endpoints
		api.POST("/readings/:itemId/comments", discussionHandler.CreateComment)
		api.GET("/readings/:itemId/comments", discussionHandler.GetComments)
		api.POST("/readings/:itemId/annotations", discussionHandler.CreateAnnotation)
		api.GET("/readings/:itemId/annotations", discussionHandler.GetAnnotations)
		api.PUT("/readings/:itemId/read-mark", discussionHandler.SetReadMark)
		api.PATCH("/comments/:commentId", discussionHandler.EditComment)
		api.DELETE("/comments/:commentId", discussionHandler.DeleteComment)
		api.POST("/proposals/:proposalId/comments", discussionHandler.CommentOnProposal)
		api.GET("/proposals/:proposalId/comments", discussionHandler.GetProposalComments)
		api.POST("/annotations/:annotationId/replies", discussionHandler.ReplyToAnnotation)

		// Profile endpoints
		api.PATCH("/profile", userHandler.UpdateProfile)
		api.GET("/profile/read-history", userHandler.GetReadHistory)
		api.GET("/profile/comments", userHandler.GetCommentHistory)
		api.GET("/notifications", userHandler.GetNotifications)
		api.POST("/notifications/read", userHandler.MarkNotificationsRead)
	}

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
