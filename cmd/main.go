package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"translation-market/internal/auth"
	"translation-market/internal/config"
	"translation-market/internal/database"
	"translation-market/internal/events"
	"translation-market/internal/handlers"
	"translation-market/internal/repository"
	"translation-market/internal/services"
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
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repository
	repo := repository.NewRepository(database.GetDB())

	// Initialize permission evaluator and notification gateway
	perms := services.NewPermissionEvaluator()
	gateway := events.NewGateway()
	defer gateway.Close()

	// Initialize services
	authService := services.NewAuthService(repo)
	requestService := services.NewRequestService(repo, perms, gateway)
	applicationService := services.NewApplicationService(repo, perms, gateway)
	contractService := services.NewContractService(repo, perms, gateway)
	milestoneService := services.NewMilestoneService(repo, perms, gateway)
	escrowService := services.NewEscrowService(repo, perms, gateway)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	requestHandler := handlers.NewRequestHandler(requestService)
	applicationHandler := handlers.NewApplicationHandler(applicationService)
	contractHandler := handlers.NewContractHandler(contractService)
	milestoneHandler := handlers.NewMilestoneHandler(milestoneService)
	escrowHandler := handlers.NewEscrowHandler(escrowService)
	wsHandler := handlers.NewWSHandler(gateway)

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173", // Vite dev server
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if cfg.Server.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.Server.FrontendURL)
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
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
	}

	// Authenticated /auth/me route
	authProtected := router.Group("/auth")
	authProtected.Use(auth.AuthMiddleware(authService))
	{
		authProtected.GET("/me", authHandler.GetMe)
	}

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware(authService))
	{
		// Book endpoints
		api.POST("/books", requestHandler.CreateBook)
		api.GET("/books", requestHandler.ListBooks)

		// Request endpoints - /open must come before :id routes
		api.GET("/requests/open", requestHandler.ListOpenRequests)
		api.GET("/requests/ref/:code", requestHandler.GetRequestByReference)
		api.POST("/requests", requestHandler.CreateRequest)
		api.GET("/requests", requestHandler.ListMyRequests)
		api.GET("/requests/:id", requestHandler.GetRequest)
		api.POST("/requests/:id/publish", requestHandler.PublishRequest)
		api.POST("/requests/:id/cancel", requestHandler.CancelRequest)
		api.GET("/requests/:id/events", requestHandler.ListRequestEvents)

		// Application endpoints
		api.POST("/requests/:id/applications", applicationHandler.Apply)
		api.GET("/requests/:id/applications", applicationHandler.ListByRequest)
		api.GET("/applications", applicationHandler.ListMine)
		api.GET("/applications/:id", applicationHandler.GetApplication)
		api.POST("/applications/:id/withdraw", applicationHandler.Withdraw)
		api.POST("/applications/:id/accept", applicationHandler.Accept)
		api.POST("/applications/:id/reject", applicationHandler.Reject)

		// Contract endpoints
		api.GET("/contracts", contractHandler.ListMine)
		api.GET("/contracts/:id", contractHandler.GetContract)
		api.POST("/contracts/:id/sign", contractHandler.Sign)
		api.POST("/contracts/:id/terminate", contractHandler.Terminate)
		api.GET("/contracts/:id/escrow", escrowHandler.GetByContract)

		// Milestone endpoints
		api.POST("/contracts/:id/milestones", milestoneHandler.Create)
		api.GET("/contracts/:id/milestones", milestoneHandler.ListByContract)
		api.GET("/milestones/:id", milestoneHandler.GetMilestone)
		api.POST("/milestones/:id/assign", milestoneHandler.Assign)
		api.POST("/milestones/:id/start", milestoneHandler.Start)
		api.POST("/milestones/:id/submit", milestoneHandler.Submit)
		api.POST("/milestones/:id/approve", milestoneHandler.Approve)
		api.POST("/milestones/:id/pay", milestoneHandler.MarkPaid)

		// Escrow endpoints
		api.POST("/escrows", escrowHandler.CreateStandalone)
		api.GET("/escrows/:id", escrowHandler.GetEscrow)
		api.POST("/escrows/:id/fund", escrowHandler.Fund)
		api.POST("/escrows/:id/release", escrowHandler.Release)
	}

	// Event stream (protected)
	ws := router.Group("/ws")
	ws.Use(auth.AuthMiddleware(authService))
	{
		ws.GET("/events", wsHandler.StreamEvents)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
