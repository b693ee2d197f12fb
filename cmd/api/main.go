// @title Exam Express API
// @version 1.0
// @description Online exam grading: candidates submit reading, listening and writing answers, administrators manage the answer key and review results.
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"exam-express/internal/adapter"
	"exam-express/internal/cache"
	"exam-express/internal/config"
	"exam-express/internal/database"
	"exam-express/internal/domain"
	"exam-express/internal/handler"
	"exam-express/internal/logger"
	"exam-express/internal/middleware"
	"exam-express/internal/repository"
	"exam-express/internal/service"
	"exam-express/internal/storage"
	"exam-express/internal/validation"

	_ "exam-express/cmd/api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	ctx := context.Background()

	// Connect to database and bring the schema up to date
	db, err := database.Open(ctx, cfg)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	if err := database.RunMigrations(ctx, db, cfg.DB.Driver); err != nil {
		appLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Redis is optional; without it every answer key read goes to the database
	var cacheAdapter domain.Cache
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		cacheAdapter = adapter.NewRedisCacheAdapter(redisClient)
		appLogger.Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))
	} else {
		cacheAdapter = adapter.NewNoopCache()
		appLogger.Info("Redis not configured, answer key caching disabled")
	}

	blobs, err := storage.NewFSBlobStore(cfg.Storage.BasePath, cfg.Storage.PublicURLPrefix)
	if err != nil {
		appLogger.Fatal("Failed to prepare file storage", zap.Error(err))
	}

	// Initialize repositories
	userRepository := repository.NewUserRepository(db)
	answerKeyRepository := repository.NewAnswerKeyRepository(db)
	resultRepository := repository.NewExamResultRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Initialize services
	authService, err := service.NewAuthService(userRepository, cfg)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}
	answerKeyService := service.NewAnswerKeyService(answerKeyRepository, cacheAdapter, cfg.Cache.AnswerKeyTTL)
	userService := service.NewUserService(userRepository, resultRepository, txManager, cfg.Admin.Username)
	examService := service.NewExamService(answerKeyService, userRepository, resultRepository, txManager)
	resultService := service.NewResultService(answerKeyService, userRepository, resultRepository, cfg.Exam.GradingConcurrency)

	// Initialize handlers
	validator := validation.NewValidator()
	handlers := handler.Handlers{
		Auth:  handler.NewAuthHandler(authService, validator),
		Exam:  handler.NewExamHandler(examService, validator),
		Admin: handler.NewAdminHandler(userService, answerKeyService, resultService, blobs, validator),
	}
	healthHandler := handler.NewHealthHandler(db, cacheAdapter)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PUT,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))

	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/health", healthHandler.Check)
	app.Static(cfg.Storage.PublicURLPrefix, blobs.Base(), fiber.Static{Browse: false, Download: false})

	handler.RegisterRoutes(app, handlers, authService)

	go func() {
		appLogger.Info("Starting server",
			zap.Int("port", cfg.Server.Port),
			zap.String("db_driver", cfg.DB.Driver),
			zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
