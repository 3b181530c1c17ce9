package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/fefu-courses/api/swagger"
	"github.com/noah-isme/fefu-courses/internal/handler"
	"github.com/noah-isme/fefu-courses/internal/middleware"
	"github.com/noah-isme/fefu-courses/internal/repository"
	"github.com/noah-isme/fefu-courses/internal/service"
	"github.com/noah-isme/fefu-courses/pkg/cache"
	"github.com/noah-isme/fefu-courses/pkg/config"
	"github.com/noah-isme/fefu-courses/pkg/database"
	"github.com/noah-isme/fefu-courses/pkg/logger"
	corsmiddleware "github.com/noah-isme/fefu-courses/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/fefu-courses/pkg/middleware/requestid"
	"github.com/noah-isme/fefu-courses/web"
)

// @title FEFU Courses API
// @version 1.0.0
// @description Students, instructors, courses and enrollments of the FEFU course portal.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
		if cfg.Session.Secret == "dev_session_secret" {
			logr.Fatal("SESSION_SECRET must be set in production")
		}
	}

	ctx := context.Background()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		migrations, err := database.Migrations()
		if err != nil {
			logr.Fatal("failed to load migrations", zap.Error(err))
		}
		applied, err := database.NewMigrator(db, logr).Up(ctx, migrations)
		if err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
		logr.Info("migrations complete", zap.Int("applied", applied))
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis, cfg.Cache)
	if err != nil {
		logr.Warn("redis unavailable, course cache disabled", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	validate := service.NewValidator()

	studentRepo := repository.NewStudentRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	userRepo := repository.NewUserRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, "fefu:")

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.CourseTTL, logr, cfg.Cache.Enabled && redisClient != nil)
	studentSvc := service.NewStudentService(studentRepo, enrollmentRepo, validate, logr)
	instructorSvc := service.NewInstructorService(instructorRepo, cacheSvc, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, instructorRepo, enrollmentRepo, cacheSvc, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, studentRepo, courseRepo, cacheSvc, metricsSvc, validate, logr)
	authSvc := service.NewAuthService(userRepo, metricsSvc, validate, logr, service.AuthConfig{
		SessionSecret: cfg.Session.Secret,
		SessionTTL:    cfg.Session.TTL,
		Issuer:        "fefu-courses",
	})
	feedbackSvc := service.NewFeedbackService(feedbackRepo, validate, logr)

	pageHandler := handler.NewPageHandler(studentSvc, courseSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	courseHandler := handler.NewCourseHandler(courseSvc, studentSvc, enrollmentSvc)
	instructorHandler := handler.NewInstructorHandler(instructorSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	authHandler := handler.NewAuthHandler(authSvc, handler.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure})
	feedbackHandler := handler.NewFeedbackHandler(feedbackSvc)
	var metricsEndpoint http.Handler
	if metricsSvc != nil {
		metricsEndpoint = metricsSvc.Handler()
	}
	metricsHandler := handler.NewMetricsHandler(metricsEndpoint, db)

	templates, err := web.Templates()
	if err != nil {
		logr.Fatal("failed to parse templates", zap.Error(err))
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.Session(authSvc, cfg.Session.CookieName))
	r.SetHTMLTemplate(templates)
	r.StaticFS("/static", web.Static())

	r.GET("/health", metricsHandler.Health)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.GET("/", pageHandler.Home)
	r.GET("/about/", pageHandler.About)
	r.GET("/students/", studentHandler.Index)
	r.GET("/student/:id/", studentHandler.Show)
	r.GET("/courses/", courseHandler.Index)
	r.GET("/course/:slug/", courseHandler.Show)
	r.POST("/course/:slug/enroll/", middleware.RequireLogin("/login/"), courseHandler.Enroll)
	r.GET("/register/", authHandler.RegisterForm)
	r.POST("/register/", authHandler.Register)
	r.GET("/login/", authHandler.LoginForm)
	r.POST("/login/", authHandler.Login)
	r.POST("/logout/", authHandler.Logout)
	r.GET("/feedback/", feedbackHandler.Form)
	r.POST("/feedback/", feedbackHandler.Submit)
	r.NoRoute(pageHandler.NotFound)

	api := r.Group("/api/v1")
	api.Use(middleware.RequireSession())
	{
		api.GET("/me", authHandler.Me)

		api.GET("/students", studentHandler.List)
		api.POST("/students", studentHandler.Create)
		api.GET("/students/:id", studentHandler.Get)

		api.GET("/instructors", instructorHandler.List)
		api.POST("/instructors", instructorHandler.Create)
		api.GET("/instructors/:id", instructorHandler.Get)
		api.PATCH("/instructors/:id/active", instructorHandler.SetActive)

		api.GET("/courses", courseHandler.List)
		api.POST("/courses", courseHandler.Create)
		api.GET("/courses/:slug", courseHandler.Get)
		api.PUT("/courses/:slug", courseHandler.Update)
		api.GET("/courses/:slug/availability", courseHandler.Availability)

		api.POST("/enrollments", enrollmentHandler.Create)
		api.GET("/enrollments/:id", enrollmentHandler.Get)
		api.PATCH("/enrollments/:id/status", enrollmentHandler.ChangeStatus)

		api.GET("/feedback", feedbackHandler.List)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
