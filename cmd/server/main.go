package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"axviral/pkg/auth"
	"axviral/pkg/blobref"
	"axviral/pkg/catalog"
	"axviral/pkg/config"
	"axviral/pkg/logger"
	"axviral/pkg/middlewares"
	"axviral/pkg/storage"
	"axviral/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

const blobSweepInterval = time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting AxViral24",
		zap.String("driver", cfg.Store.Driver),
		zap.String("path", cfg.Store.Path),
	)

	// Open local store
	store, err := storage.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		logger.Logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer store.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	mediaService := catalog.NewService(store, logger.Logger)

	blobs := blobref.NewRegistry(cfg.Media.BlobRefTTL, logger.Logger)
	go blobs.Run(ctx, blobSweepInterval)

	gate := auth.NewGate(cfg.Admin.Password, cfg.Admin.SessionSecret, cfg.Admin.SessionTTL)

	mediaHandler, err := web.NewMediaHandler(mediaService, blobs, gate, logger.Logger)
	if err != nil {
		logger.Logger.Fatal("Failed to load templates", zap.Error(err))
	}

	// Setup router
	r := chi.NewRouter()

	r.Use(middlewares.RequestIDMiddleware)
	r.Use(middlewares.LoggerMiddleware(logger.Logger))
	r.Use(middlewares.RecoveryMiddleware(logger.Logger))
	r.Use(middlewares.RequestSizeLimitMiddleware(cfg.MaxUploadBytes()))

	// pages and blob fetches are not limited
	limiter := httprate.LimitByIP(cfg.Server.RateLimitPerMinute, time.Minute)
	mediaHandler.RegisterRoutes(r, limiter)

	r.Route("/api", func(r chi.Router) {
		r.Use(limiter)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
		mediaHandler.RegisterAPIRoutes(r)
	})

	// Start server
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     r,
		ReadTimeout: 5 * time.Minute, // large uploads
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}
