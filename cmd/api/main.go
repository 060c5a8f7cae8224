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

	"github.com/library-service/cmd/api/book"
	"github.com/library-service/cmd/api/database"
	bookhttp "github.com/library-service/cmd/api/http"
	"github.com/library-service/cmd/api/inmemory"
	"github.com/library-service/cmd/api/notifications"

	"github.com/golang-migrate/migrate/v4"
	"go.uber.org/zap"
)

func main() {
	err := run()
	if err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := newLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	repo, closeRepo, err := openRepository(cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	ntfy := notifications.NewNtfy(cfg.NotificationsEnabled, cfg.NotificationsBaseURL, &http.Client{Timeout: cfg.NotificationsTimeout})
	bookService := book.NewService(repo, ntfy, cfg.NotificationsTimeout, logger)
	bookHandler := bookhttp.NewBookHandler(bookService, bookhttp.HandlerConfig{
		RequestTimeout: cfg.RequestTimeout,
		Diagnostics:    cfg.Development,
	}, logger)

	//create and init http server:
	server := bookhttp.NewServer(bookhttp.ServerConfig{Port: cfg.Port}, bookHandler)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.Int("port", cfg.Port), zap.String("storage", cfg.Storage))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("unexpected http server error: %w", err)
		}
		close(serverErr)
	}()

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case sig := <-sc:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, shutdownRelease := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownRelease()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP shutdown error: %w", err)
	}
	if err := bookService.WaitNotifications(ctx); err != nil {
		logger.Warn("notifications still in flight were dropped", zap.Error(err))
	}
	logger.Info("graceful shutdown complete")
	return nil
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

/* Opens the configured storage backend. The returned func releases it. */
func openRepository(cfg config, logger *zap.Logger) (book.Repository, func(), error) {
	if cfg.Storage == storageInMemory {
		store, err := inmemory.NewInMemoryStore()
		if err != nil {
			return nil, nil, fmt.Errorf("creating in-memory store: %w", err)
		}
		logger.Warn("using in-memory storage, data is lost on restart")
		return store, func() {}, nil
	}

	//connect to db:
	dbObject, err := database.ConnectDb(cfg.DatabaseURL, cfg.MaxOpenConns, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting with db: %w", err)
	}

	//apply migrations:
	store := database.NewStore(dbObject)
	err = database.MigrationUp(store, cfg.MigrationsPath)
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		dbObject.Close()
		return nil, nil, fmt.Errorf("migrating: %w", err)
	}
	return store, func() { dbObject.Close() }, nil
}
