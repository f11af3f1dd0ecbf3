package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/partflow/parts-tracking-api/internal/authz"
	"github.com/partflow/parts-tracking-api/internal/config"
	"github.com/partflow/parts-tracking-api/internal/database"
	"github.com/partflow/parts-tracking-api/internal/handlers"
	"github.com/partflow/parts-tracking-api/internal/middleware"
	"github.com/partflow/parts-tracking-api/internal/repository"
	"github.com/partflow/parts-tracking-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	detailRepo := repository.NewDetailRepository(db)

	// Services
	resolver := authz.NewResolver(orgRepo, projectRepo)
	authService := services.NewAuthService(userRepo, sessionRepo, orgRepo)
	orgService := services.NewOrganizationService(orgRepo, userRepo, resolver)
	projectService := services.NewProjectService(projectRepo, resolver)
	detailService := services.NewDetailService(detailRepo, projectRepo, resolver)

	// Expired sessions are also rejected lazily on lookup; the sweeper just
	// keeps the table from growing without bound.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			removed, err := authService.SweepExpiredSessions()
			if err != nil {
				log.Printf("Session sweep failed: %v", err)
				continue
			}
			if removed > 0 {
				log.Printf("Session sweep removed %d expired sessions", removed)
			}
		}
	}()

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.IsProduction())
	orgHandler := handlers.NewOrganizationHandler(orgService)
	projectHandler := handlers.NewProjectHandler(projectService)
	detailHandler := handlers.NewDetailHandler(detailService)

	// Initialize Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Parts Tracking API is running",
		})
	})

	requireAuth := middleware.RequireAuth(authService)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/register-invite", authHandler.RegisterInvite)
			auth.POST("/check-email", authHandler.CheckEmail)
		}

		api.GET("/me", requireAuth, authHandler.GetCurrentUser)
		api.GET("/users", requireAuth, authHandler.ListUsers)

		// Organization routes (protected)
		orgs := api.Group("/organizations")
		orgs.Use(requireAuth)
		{
			orgs.POST("", orgHandler.CreateOrganization)
			orgs.GET("", orgHandler.ListOrganizations)
			orgs.GET("/:id", orgHandler.GetOrganization)
			orgs.PUT("/:id", orgHandler.UpdateOrganization)
			orgs.DELETE("/:id", orgHandler.DeleteOrganization)
			orgs.GET("/:id/users", orgHandler.ListMembers)
			orgs.POST("/:id/users", orgHandler.AddMember)
			orgs.PUT("/:id/users", orgHandler.UpdateMemberRole)
			orgs.DELETE("/:id/users", orgHandler.RemoveMember)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PUT("/:id", projectHandler.UpdateProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)
			projects.GET("/:id/users", projectHandler.ListMembers)
			projects.POST("/:id/users", projectHandler.AddMember)
			projects.PUT("/:id/users", projectHandler.UpdateMemberRole)
			projects.DELETE("/:id/users", projectHandler.RemoveMember)
		}

		// Detail routes (protected)
		details := api.Group("/details")
		details.Use(requireAuth)
		{
			details.GET("", detailHandler.ListDetails)
			details.POST("", detailHandler.CreateDetail)
			details.PATCH("/:id", detailHandler.UpdateDetail)
			details.DELETE("/:id", detailHandler.DeleteDetail)
		}

		api.GET("/logs", requireAuth, detailHandler.GetAuditLogs)
	}

	// Start server
	log.Printf("Server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
