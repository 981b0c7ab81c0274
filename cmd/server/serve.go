package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AjayAlluri/Toyota-Financing/internal/ai"
	"github.com/AjayAlluri/Toyota-Financing/internal/cache"
	"github.com/AjayAlluri/Toyota-Financing/internal/database"
	"github.com/AjayAlluri/Toyota-Financing/internal/notifications"
	"github.com/AjayAlluri/Toyota-Financing/internal/server"
	"github.com/AjayAlluri/Toyota-Financing/internal/storage"
)

const shutdownTimeout = 10 * time.Second

var serveMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return eris.Wrap(err, "connect to database")
		}
		defer db.Close()

		if serveMigrate {
			if err := database.Migrate(ctx, db); err != nil {
				return eris.Wrap(err, "migrate")
			}
		}

		quoteCache, err := cache.Open(ctx, cfg.Cache)
		if err != nil {
			return eris.Wrap(err, "connect to cache")
		}
		defer func() {
			if err := quoteCache.Close(); err != nil {
				zap.L().Warn("cache close failed", zap.Error(err))
			}
		}()

		store, err := storage.NewLocal(cfg.Storage)
		if err != nil {
			return eris.Wrap(err, "prepare upload storage")
		}

		aiClient, err := ai.NewClient(cfg.AI)
		if err != nil {
			return err
		}

		e := server.New(cfg, server.Deps{
			DB:       db,
			Cache:    quoteCache,
			Store:    store,
			AIClient: aiClient,
			Hub:      notifications.NewHub(),
		})
		httpServer := server.NewHTTPServer(cfg.Server, e)

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("http server started",
				zap.String("addr", httpServer.Addr),
				zap.String("env", cfg.Env),
				zap.String("ai_provider", cfg.AI.Provider),
				zap.Bool("cache", cfg.Cache.Enabled()),
			)
			if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err, ok := <-errCh:
			if ok {
				return eris.Wrap(err, "http server failed")
			}
			return nil
		case <-ctx.Done():
		}

		zap.L().Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("graceful shutdown failed", zap.Error(err))
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", os.Getenv("AUTO_MIGRATE") == "true", "apply pending migrations before serving")
	rootCmd.AddCommand(serveCmd)
}
