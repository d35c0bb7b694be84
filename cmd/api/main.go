package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"catbox/docs"
	"catbox/internal/auth"
	"catbox/internal/config"
	"catbox/internal/database"
	"catbox/internal/database/migration"
	handlers "catbox/internal/http/handler"
	"catbox/internal/http/middleware"
	"catbox/internal/logging"
	"catbox/internal/otel"
	"catbox/internal/repository/postgres"
	"catbox/internal/service"
	"catbox/internal/storage"
)

// @title CatBox API
// @version 1.0
// @description Private file uploads with public share links.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := logging.NewJSON(os.Stdout, cfg.Location(), slog.LevelInfo)

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.Up(ctx, db, logger, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	blobs, err := storage.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize %s storage: %v", cfg.Storage.Backend, err)
	}

	// Initialize repositories and services
	userRepo := postgres.NewUserPostgres(db)
	fileRepo := postgres.NewFilePostgres(db)

	sessions := auth.NewManager([]byte(cfg.Auth.SecretKey), cfg.Auth.SessionTTL)
	authSvc := service.NewAuthService(userRepo, sessions, service.AuthConfig{
		BcryptCost: cfg.Auth.BcryptCost,
		Logger:     logger,
	})
	fileSvc := service.NewFileService(blobs, fileRepo, service.FileConfig{
		BaseURL: cfg.BaseURL,
		Logger:  logger,
	})

	if err := handlers.ConfigureSwagger(docs.SwaggerInfo, cfg.BaseURL); err != nil {
		log.Fatalf("failed to configure swagger: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    int(cfg.Storage.MaxUploadBytes),
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}

	// Register global middleware
	app.Use(recover.New())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.LoggerWithWriter(os.Stdout, cfg.Location()))
	app.Use(prom.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, authSvc, fileSvc)

	go func() {
		<-ctx.Done()
		logger.Info(context.Background(), "server_shutdown")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error(context.Background(), "server_shutdown_failed", "error_message", err.Error())
		}
	}()

	addr := ":" + cfg.Port
	logger.Info(ctx, "server_start", "addr", addr, "storage_backend", cfg.Storage.Backend)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
