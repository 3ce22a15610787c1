package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tutorhub/selection-api/internal/handler"
	"github.com/tutorhub/selection-api/internal/middleware"
	"github.com/tutorhub/selection-api/internal/models"
	"github.com/tutorhub/selection-api/internal/repository"
	"github.com/tutorhub/selection-api/internal/service"
	"github.com/tutorhub/selection-api/pkg/cache"
	"github.com/tutorhub/selection-api/pkg/config"
	"github.com/tutorhub/selection-api/pkg/database"
	"github.com/tutorhub/selection-api/pkg/export"
	"github.com/tutorhub/selection-api/pkg/logger"
	"github.com/tutorhub/selection-api/pkg/middleware/cors"
	"github.com/tutorhub/selection-api/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// Dashboards degrade to uncached reads when Redis is down.
		log.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	selectionRepo := repository.NewSelectionRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, log)
	defer func() { _ = cacheRepo.Close() }()

	// Services.
	metricsService := service.NewMetricsService()
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Dashboard.CacheTTL, log,
		cfg.Dashboard.CacheEnabled && redisClient != nil)
	authService := service.NewAuthService(userRepo, cfg.JWT, log)
	userService := service.NewUserService(userRepo, profileRepo, applicationRepo, log)
	courseService := service.NewCourseService(courseRepo, userRepo, log)
	rosterService := service.NewRosterService(userRepo, courseRepo, applicationRepo, selectionRepo, profileRepo, log)
	dashboardService := service.NewDashboardService(userRepo, courseRepo, applicationRepo, selectionRepo, profileRepo,
		cacheService, cfg.Dashboard.CacheTTL, cfg.Dashboard.ChosenCourseThreshold, log)
	rankingService := service.NewRankingService(selectionRepo, orderRepo, userRepo,
		export.NewPDFExporter(), export.NewCSVExporter(), log)
	selectionService := service.NewSelectionService(userRepo, courseRepo, selectionRepo, applicationRepo, profileRepo,
		cacheService, log)
	commentService := service.NewCommentService(commentRepo, userRepo, log)

	// Handlers.
	authHandler := handler.NewAuthHandler(authService, userService, log)
	userHandler := handler.NewUserHandler(userService, log)
	courseHandler := handler.NewCourseHandler(courseService, log)
	selectionHandler := handler.NewSelectionHandler(selectionService, rosterService, log)
	rankingHandler := handler.NewRankingHandler(rankingService, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)
	commentHandler := handler.NewCommentHandler(commentService, log)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.Middleware())
	router.Use(logger.GinMiddleware(log))
	router.Use(cors.New(cfg.CORS.AllowedOrigins))
	router.Use(middleware.Metrics(metricsService))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metricsService.Handler()))

	api := router.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/register", authHandler.Register)
		auth.GET("/me", middleware.Authenticate(authService), authHandler.Me)
	}

	authed := api.Group("")
	authed.Use(middleware.Authenticate(authService))

	users := authed.Group("/users")
	{
		users.GET("", middleware.RequireRoles(models.RoleAdmin, models.RoleLecturer), userHandler.List)
		users.GET("/:id", middleware.RequireSelfOrRoles("id", models.RoleAdmin, models.RoleLecturer), userHandler.Get)
		users.PATCH("/:id", middleware.RequireSelfOrRoles("id", models.RoleAdmin), userHandler.Update)
		users.PATCH("/:id/profile", middleware.RequireSelfOrRoles("id", models.RoleAdmin), userHandler.UpdateProfile)
		users.POST("/:id/block", middleware.RequireRoles(models.RoleAdmin), userHandler.Block)
		users.POST("/:id/unblock", middleware.RequireRoles(models.RoleAdmin), userHandler.Unblock)
		users.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), userHandler.Delete)
	}

	courses := authed.Group("/courses")
	{
		courses.GET("", courseHandler.List)
		courses.GET("/:id", courseHandler.Get)
		courses.POST("", middleware.RequireRoles(models.RoleAdmin), courseHandler.Create)
		courses.PATCH("/:id", middleware.RequireRoles(models.RoleAdmin), courseHandler.Update)
		courses.PUT("/:id/lecturer", middleware.RequireRoles(models.RoleAdmin), courseHandler.AssignLecturer)
		courses.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), courseHandler.Delete)
	}

	applications := authed.Group("/applications")
	{
		applications.PUT("", middleware.RequireRoles(models.RoleCandidate), selectionHandler.SetApplications)
		applications.GET("/rosters",
			middleware.RequireRoles(models.RoleLecturer, models.RoleAdmin), selectionHandler.Rosters)
	}

	selections := authed.Group("/selections")
	selections.Use(middleware.RequireRoles(models.RoleLecturer))
	{
		selections.GET("", selectionHandler.ChosenTutors)
		selections.GET("/candidates", selectionHandler.CandidatePool)
		selections.PUT("/:tutorId", selectionHandler.AddTutor)
		selections.DELETE("/:tutorId", selectionHandler.RemoveTutor)
	}

	ranking := authed.Group("/ranking")
	ranking.Use(middleware.RequireRoles(models.RoleLecturer))
	{
		ranking.GET("", rankingHandler.Get)
		ranking.PUT("", rankingHandler.Commit)
		ranking.GET("/export", rankingHandler.Export)
	}

	comments := authed.Group("/comments")
	comments.Use(middleware.RequireRoles(models.RoleLecturer))
	{
		comments.GET("/:tutorId", commentHandler.Get)
		comments.PUT("/:tutorId", commentHandler.Save)
	}

	dashboards := authed.Group("/dashboards")
	dashboards.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleLecturer))
	{
		dashboards.GET("/candidates-per-course", dashboardHandler.CandidatesPerCourse)
		dashboards.GET("/chosen-above-threshold", dashboardHandler.ChosenAboveThreshold)
		dashboards.GET("/chosen-none", dashboardHandler.ChosenNone)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.Int("port", cfg.Port), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
