package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"blogapp/internal/config"
	"blogapp/internal/database"
	"blogapp/internal/database/migration"
	handlers "blogapp/internal/http/handler"
	"blogapp/internal/http/middleware"
	"blogapp/internal/otel"
	"blogapp/internal/repository/postgres"
	"blogapp/internal/service"
	"blogapp/internal/web"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := time.UTC

	// Initialize tracing (no-op when OTEL_SDK_DISABLED=true)
	ctx := context.Background()
	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	// Bootstrap the posts schema on first run
	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Initialize repository and service
	postRepo := postgres.NewPostPostgres(db)
	postSvc := service.NewPostService(postRepo)

	app := fiber.New(fiber.Config{
		Views:        web.NewEngine(),
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	// OpenTelemetry spans per request
	app.Use(otelfiber.Middleware())

	// Prometheus request metrics and the /metrics scrape endpoint
	promMw, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register prometheus metrics: %v", err)
	}
	app.Use(promMw.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Embedded stylesheet and page script
	app.Use("/static", filesystem.New(filesystem.Config{
		Root:   web.StaticFS(),
		MaxAge: 3600,
	}))

	// Register HTTP routes; basic auth guards the editor routes
	handlers.RegisterRoutes(app, db, postSvc, middleware.BasicAuth(cfg.Auth))

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
