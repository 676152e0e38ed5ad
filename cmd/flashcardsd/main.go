// Command flashcardsd serves the flashcards HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sky-flux/flashcards/config"
	"github.com/sky-flux/flashcards/deck"
	"github.com/sky-flux/flashcards/server"
	"github.com/sky-flux/flashcards/store"
	"github.com/sky-flux/flashcards/wanikani"
)

func main() {
	configPath := flag.String("config", "flashcards.toml", "path to the TOML config file")
	envFile := flag.String("env", ".env", "path to a .env file")
	flag.Parse()

	if err := run(*configPath, *envFile); err != nil {
		fmt.Fprintf(os.Stderr, "flashcardsd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, envFile string) error {
	// Config
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return err
	}

	// Logger
	level, _ := cfg.LogLevel()
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.App.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// SQLite
	dbCfg := store.DefaultConfig(cfg.Data.Path)
	dbCfg.AutoMigrate = cfg.Data.AutoMigrate
	dbCfg.Logger = logger
	db, err := store.Open(dbCfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// WaniKani
	provider := wanikani.NewProvider(db, wanikani.ProviderConfig{
		Client: wanikani.NewClient(wanikani.ClientConfig{
			BaseURL:           cfg.Wanikani.BaseURL,
			RequestsPerMinute: cfg.Wanikani.RequestsPerMinute,
		}),
		Logger: logger.With("component", "wanikani"),
	})

	// Decks
	svc := deck.NewService(db, deck.Config{
		LessonBatch:    cfg.Review.LessonBatch,
		ForecastWindow: cfg.ForecastWindow(),
		Provider:       provider,
		Logger:         logger.With("component", "deck"),
	})

	// Router
	router := server.NewRouter(server.Config{
		Store:    db,
		Service:  svc,
		Provider: provider,
		Auth:     server.AuthConfig{Mock: cfg.Auth.Mock, Header: cfg.Auth.Header},
		Logger:   logger,
	})
	if cfg.Auth.Mock {
		logger.Warn("mock auth enabled; every request acts as the mock user", "user", server.MockUserID)
	}

	// Server
	addr := fmt.Sprintf(":%d", cfg.App.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	logger.Info("flashcards server starting", "addr", addr, "db", cfg.Data.Path)
	return serve(srv, done, logger)
}

// serve runs srv until it fails or stop receives, then shuts it down.
func serve(srv *http.Server, stop <-chan os.Signal, logger *slog.Logger) error {
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
