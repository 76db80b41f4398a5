package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/softcover/softcover/internal/api"
	"github.com/softcover/softcover/internal/config"
	"github.com/softcover/softcover/internal/extract"
	"github.com/softcover/softcover/internal/health"
	"github.com/softcover/softcover/internal/library"
	"github.com/softcover/softcover/internal/sanitize"
	"github.com/softcover/softcover/internal/storage"
)

const version = "0.3.0"

func main() {
	configPath := flag.String("config", "config/dev.example.yaml", "Path to configuration file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.String("path", *configPath), zap.Error(err))
	}

	logger.Info("starting softcover server",
		zap.String("version", version),
		zap.String("config", *configPath))

	storageAdapter, err := storage.NewAdapter(cfg.Storage)
	if err != nil {
		logger.Fatal("failed to create storage adapter", zap.Error(err))
	}
	defer storageAdapter.Close()
	logger.Info("storage adapter initialized", zap.String("adapter", cfg.Storage.Adapter))

	repo, err := library.NewRepository(cfg.Library, storageAdapter)
	if err != nil {
		logger.Fatal("failed to create library repository", zap.Error(err))
	}
	defer repo.Close()
	logger.Info("library repository initialized", zap.String("backend", cfg.Library.Backend))

	sanitizer := sanitize.New(cfg.Extract.MaxTitleLength)
	factory := extract.NewFactory(sanitizer, cfg.Extract.LineTolerance, logger)
	pdfExtractor := extract.NewPDFExtractor(cfg.Extract.LineTolerance, logger)

	healthHandler := health.NewHandler(version)
	healthHandler.Register("storage", func(ctx context.Context) (health.Status, error) {
		// Connectivity probe; the key's existence is irrelevant.
		if _, err := storageAdapter.Exists(ctx, ".healthcheck"); err != nil {
			return health.StatusUnhealthy, err
		}
		return health.StatusHealthy, nil
	})
	healthHandler.Register("library", func(ctx context.Context) (health.Status, error) {
		if _, err := repo.ListBooks(ctx); err != nil {
			return health.StatusUnhealthy, err
		}
		return health.StatusHealthy, nil
	})

	mux := http.NewServeMux()

	mux.HandleFunc("/health/live", healthHandler.LivenessHandler())
	mux.HandleFunc("/health/ready", healthHandler.ReadinessHandler())
	mux.HandleFunc("/health", healthHandler.HealthHandler())

	mux.HandleFunc("/api/v1/info", infoHandler(version, cfg.Storage.Adapter))

	bookHandler := api.NewBookHandler(repo, factory, pdfExtractor, logger)
	mux.HandleFunc("/api/v1/books", bookHandler.UploadBook)
	mux.HandleFunc("/api/v1/books/", func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/chapters"):
			bookHandler.ListChapters(w, r)
		case strings.HasSuffix(path, "/styles"):
			bookHandler.ListStyles(w, r)
		case strings.Contains(path, "/pages/"):
			bookHandler.GetPage(w, r)
		case strings.HasSuffix(path, "/bookmarks") || strings.Contains(path, "/bookmarks/"):
			bookHandler.Bookmarks(w, r)
		case strings.HasSuffix(path, "/progress"):
			bookHandler.UpdateProgress(w, r)
		default:
			bookHandler.GetBook(w, r)
		}
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// infoHandler returns basic server information.
func infoHandler(version, adapter string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"version":"%s","storage_adapter":"%s"}`, version, adapter)
	}
}
