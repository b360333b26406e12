package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qsights/program-admin-api/internal/config"
	"github.com/qsights/program-admin-api/internal/constants"
	"github.com/qsights/program-admin-api/internal/database"
	"github.com/qsights/program-admin-api/internal/handlers"
	"github.com/qsights/program-admin-api/internal/mailer"
	"github.com/qsights/program-admin-api/internal/middleware"
	"github.com/qsights/program-admin-api/internal/models"
	"github.com/qsights/program-admin-api/internal/repository"
	"github.com/qsights/program-admin-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	logger, err := zap.NewProduction()
	if cfg.Server.GinMode != "release" {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))

	// Setup session middleware with Redis
	redisAddr := cfg.Redis.Host + ":" + cfg.Redis.Port
	store, err := redisStore.NewStore(
		10,
		"tcp",
		redisAddr,
		"", // username (empty for default user)
		"", // password (empty = no password)
		[]byte(cfg.Session.Secret),
	)
	if err != nil {
		logger.Fatal("Failed to create Redis store", zap.Error(err))
	}
	isProduction := cfg.Server.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize mail delivery
	var mailSender mailer.Sender = mailer.Noop{}
	if cfg.SMTP.Host != "" {
		mailSender = mailer.NewSMTPSender(cfg.SMTP)
	}

	// Initialize repositories and services
	db := database.GetDB()
	programRepo := repository.NewProgramRepository(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewProgramRoleRepository(db)

	authService := services.NewAuthService(userRepo)
	programService := services.NewProgramService(programRepo, userRepo, services.SystemClock, cfg.App.EmailHost)
	roleService := services.NewProgramRoleService(roleRepo, programRepo, mailSender, logger, cfg.App.FrontendURL)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	programHandler := handlers.NewProgramHandler(programService)
	programUserHandler := handlers.NewProgramUserHandler(programService)
	roleHandler := handlers.NewProgramRoleHandler(roleService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Program Admin API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public login, session-scoped rest)
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Program routes (protected)
		programs := api.Group("/programs")
		programs.Use(middleware.RequireAuth(), middleware.LoadCurrentUser())
		{
			programs.GET("", programHandler.ListPrograms)
			programs.GET("/:id", programHandler.GetProgram)
			programs.GET("/:id/statistics", programHandler.GetStatistics)

			// Program management requires an administrator
			admin := programs.Group("")
			admin.Use(middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdmin))
			{
				admin.POST("", programHandler.CreateProgram)
				admin.PUT("/:id", programHandler.UpdateProgram)
				admin.PATCH("/:id", programHandler.UpdateProgram)
				admin.DELETE("/:id", programHandler.DeleteProgram)
				admin.POST("/:id/activate", programHandler.ActivateProgram)
				admin.POST("/:id/deactivate", programHandler.DeactivateProgram)
				admin.POST("/:id/restore", programHandler.RestoreProgram)
			}
			programs.DELETE("/:id/force", middleware.RequireRole(models.RoleSuperAdmin), programHandler.ForceDeleteProgram)

			// Program user routes; fine-grained checks live in the service
			programs.GET("/:id/users", programUserHandler.ListUsers)
			programs.PUT("/:id/users/:userId", programUserHandler.UpdateUser)
			programs.PATCH("/:id/users/:userId", programUserHandler.UpdateUser)
			programs.DELETE("/:id/users/:userId", programUserHandler.DeleteUser)
			programs.POST("/:id/users/:userId/reset-password", programUserHandler.ResetPassword)

			// Program role routes
			programs.GET("/:id/roles", roleHandler.ListRoles)
			programs.POST("/:id/roles", roleHandler.CreateRole)
			programs.GET("/:id/roles/available-activities", roleHandler.ListAvailableActivities)
			programs.GET("/:id/roles/:roleId", roleHandler.GetRole)
			programs.PUT("/:id/roles/:roleId", roleHandler.UpdateRole)
			programs.PATCH("/:id/roles/:roleId", roleHandler.UpdateRole)
			programs.DELETE("/:id/roles/:roleId", roleHandler.DeleteRole)
			programs.POST("/:id/roles/:roleId/restore", roleHandler.RestoreRole)
		}
	}

	// Start server
	logger.Info("Server starting", zap.String("port", cfg.Server.Port))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
