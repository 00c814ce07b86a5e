package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medcms/config"
	"medcms/database"
	"medcms/handlers"
	"medcms/helper"
	"medcms/repositories"
	"medcms/retry"
	"medcms/server"
	"medcms/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	retryConfig := retry.DefaultConfig()
	retryConfig.MaxRetries = cfg.Retry.MaxRetries
	retryConfig.InitialDelay = cfg.Retry.InitialDelay

	// Initialize database
	db, err := database.Open(ctx, cfg.Database, retryConfig, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	if err := database.Migrate(db, cfg.Database, logger); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	tx := database.NewTxManager(db)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	articleRepo := repositories.NewArticleRepository(db)
	versionRepo := repositories.NewArticleVersionRepository(db)
	attachmentRepo := repositories.NewAttachmentRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	articleCategoryRepo := repositories.NewArticleCategoryRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	// Initialize services
	auditService := services.NewAuditService(auditRepo, userRepo, logger)
	attachments := services.NewAttachmentSet(tx, attachmentRepo, versionRepo, userRepo, auditService, logger)
	versions := services.NewVersionChain(tx, versionRepo, attachments, logger)
	categoryLinks := services.NewCategoryLinkSet(tx, articleCategoryRepo, categoryRepo, logger)
	articleService := services.NewArticleService(tx, articleRepo, userRepo, versions, categoryLinks, attachments, auditService, logger)
	categoryService := services.NewCategoryService(tx, categoryRepo, articleRepo, categoryLinks, auditService, logger)
	authService := services.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration, logger)

	if cfg.Admin.Email != "" {
		if _, err := authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Name, cfg.Admin.Password); err != nil {
			logger.Fatal("Failed to seed admin user", zap.Error(err))
		}
	}

	// Initialize handlers
	httpHelper := helper.NewHTTPHelper()
	router := server.NewRouter(server.Handlers{
		Auth:     handlers.NewAuthHandler(authService, httpHelper),
		Article:  handlers.NewArticleHandler(articleService, retryConfig, httpHelper),
		Category: handlers.NewCategoryHandler(categoryService, httpHelper),
		Audit:    handlers.NewAuditHandler(auditService, httpHelper),
	}, cfg.JWT.Secret, logger.Named("http"))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsLocal() {
		return zap.NewDevelopment()
	}
	gin.SetMode(gin.ReleaseMode)
	return zap.NewProduction()
}
