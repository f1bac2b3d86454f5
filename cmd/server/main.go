package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"timevault/internal/audit"
	"timevault/internal/auth"
	"timevault/internal/config"
	"timevault/internal/domain/repositories"
	"timevault/internal/handler"
	"timevault/internal/middleware"
	"timevault/internal/repository/postgres"
	"timevault/internal/service"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	verifier, err := auth.NewJWKSVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create token verifier: %v", err)
	}
	defer verifier.Close()

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	tables := postgres.NewTableNames(cfg.TablePrefix)

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	clientRepo := postgres.NewClientRepository(repoConfig)
	projectRepo := postgres.NewProjectRepository(repoConfig)
	taskRepo := postgres.NewTaskRepository(repoConfig)
	entryRepo := postgres.NewTimeEntryRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Audit sink: Redis Streams when configured, structured log otherwise
	var auditSink repositories.AuditSink
	if cfg.RedisURL != "" {
		redisSink, err := audit.NewRedisSink(cfg.RedisURL, cfg.AuditStream, logger)
		if err != nil {
			log.Fatalf("Failed to connect audit sink: %v", err)
		}
		defer redisSink.Close()
		auditSink = redisSink
		logger.Info("audit sink connected", "stream", cfg.AuditStream)
	} else {
		auditSink = audit.NewLogSink(logger)
	}

	refChecker := service.NewReferenceChecker(projectRepo, taskRepo)

	clientService := service.NewClientService(clientRepo, auditSink, logger)
	projectService := service.NewProjectService(projectRepo, clientRepo, auditSink, logger)
	taskService := service.NewTaskService(taskRepo, projectRepo, auditSink, logger)
	entryService := service.NewTimeEntryService(entryRepo, refChecker, txManager, auditSink, logger)

	logger.Info("services initialized")

	// Protected routes (Go 1.22+ enhanced patterns)
	api := http.NewServeMux()
	handler.NewClientHandler(clientService, logger).RegisterRoutes(api)
	handler.NewProjectHandler(projectService, logger).RegisterRoutes(api)
	handler.NewTaskHandler(taskService, logger).RegisterRoutes(api)
	handler.NewTimeEntryHandler(entryService, logger).RegisterRoutes(api)

	var protected http.Handler = api
	protected = middleware.Auth(verifier, logger)(protected)
	protected = middleware.Recovery(logger)(protected)

	// Health and metrics stay outside the auth chain
	root := http.NewServeMux()
	root.HandleFunc("GET /health", handler.NewHealthHandler(pool).Check)
	root.Handle("GET /metrics", promhttp.Handler())
	root.Handle("/", protected)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler.Handler(root),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
