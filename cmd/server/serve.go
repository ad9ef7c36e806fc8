package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/ar_furniture/internal/events"
	"github.com/Skotchmaster/ar_furniture/internal/handlers"
	"github.com/Skotchmaster/ar_furniture/internal/media"
	"github.com/Skotchmaster/ar_furniture/internal/repo"
	"github.com/Skotchmaster/ar_furniture/internal/search"
	"github.com/Skotchmaster/ar_furniture/internal/service"
	httpserver "github.com/Skotchmaster/ar_furniture/internal/transport/http"
	"github.com/Skotchmaster/ar_furniture/pkg/config"
	pkgdb "github.com/Skotchmaster/ar_furniture/pkg/db"
	"github.com/Skotchmaster/ar_furniture/pkg/logging"
	authmw "github.com/Skotchmaster/ar_furniture/pkg/middleware/auth"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger := setup()
	cfg.MustServe()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, logger)

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := pkgdb.Close(db); err != nil {
			logger.Error("db_close_error", "error", err)
		}
	}()
	if err := repo.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	storage, err := media.NewMinioClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("object storage: %w", err)
	}
	if err := storage.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	publicURL := cfg.Storage.PublicURL
	if publicURL == "" {
		publicURL = storage.PublicURL()
	}
	ingestor := media.NewIngestor(storage, publicURL, cfg.Storage.Folder, cfg.MaxUploadBytes)

	var publisher events.Publisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers)
		logger.Info("kafka_enabled", "brokers", strings.Join(cfg.KafkaBrokers, ","))
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka_close_error", "error", err)
		}
	}()

	store := &repo.GormRepo{DB: db}
	deps := &httpserver.Deps{
		AuthHandler:  &handlers.AuthHandler{Auth: service.NewAuthService(store, publisher, cfg.JWTSecret)},
		OrderHandler: &handlers.OrderHandler{Orders: service.NewOrderService(store, publisher)},
		Guard:        authmw.NewGuard(cfg.JWTSecret),
		Ready: func(c echo.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(c.Request().Context())
		},
	}

	var index service.ProductIndex
	if cfg.Elastic.URL != "" {
		es, err := search.NewClient(ctx, cfg.Elastic)
		if err != nil {
			return err
		}
		ix := search.NewIndex(es, cfg.Elastic.Index)
		index = ix
		deps.SearchHandler = &handlers.SearchHandler{Index: ix}
	}
	deps.ProductHandler = &handlers.ProductHandler{
		Catalog: service.NewCatalogService(store, ingestor, index, publisher),
	}

	e := httpserver.New(cfg, logger, deps)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	logger.Info("shutdown_complete")
	return nil
}

func openDB(ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := pkgdb.Open(openCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	slog.Default().Info("db_connected")
	return db, nil
}
