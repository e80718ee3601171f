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

	"pdf-annotator/internal/config"
	"pdf-annotator/internal/handler"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const (
	reapInterval    = time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// Wiring
	container, err := config.NewContainer()
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	cfg := container.Config
	sessions := container.SessionService

	// Handlers
	router := handler.NewRouter(
		handler.NewSessionHandler(sessions, cfg.GetMaxFileSize(), container.Logger),
		handler.NewSignatureHandler(sessions, container.Logger),
		container.Logger,
		cfg.GetAllowedOrigins(),
	)

	server := &http.Server{
		Addr:              ":" + cfg.GetServerPort(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	// Run server
	g.Go(func() error {
		container.Logger.Info("Server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Close sessions nobody has touched within the idle timeout
	g.Go(func() error {
		return sessions.RunReaper(gctx, reapInterval, cfg.GetSessionIdleTimeout())
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		container.Logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		sessions.ReapIdle(shutdownCtx, 0)
		return err
	})

	if err := g.Wait(); err != nil {
		container.Logger.Error("Server stopped with error", err)
		os.Exit(1)
	}
	container.Logger.Info("Server exited")
}
