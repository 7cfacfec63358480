package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	groqchat "github.com/set-night/groqchat"
	"github.com/set-night/groqchat/internal/config"
	"github.com/set-night/groqchat/internal/handler"
	"github.com/set-night/groqchat/internal/metrics"
	"github.com/set-night/groqchat/internal/middleware"
	"github.com/set-night/groqchat/internal/repository"
	"github.com/set-night/groqchat/internal/service"
	"github.com/set-night/groqchat/internal/telegram"
)

func main() {
	if err := run(); err != nil {
		slog.Error("groqchat stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration before anything can be served
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	catalog, err := config.LoadCatalog(cfg.ModelsFile)
	if err != nil {
		return fmt.Errorf("load model catalog: %w", err)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer closeStore()

	// Initialize services
	collector := metrics.NewCollector(nil)
	groq := service.NewGroqService(cfg.GroqAPIKey, cfg.GroqBaseURL)
	sessions := service.NewSessionService(store, catalog, cfg.SessionTTL)
	chat := service.NewChatService(service.ChatDeps{
		Sessions:      sessions,
		LLM:           groq,
		Assembler:     service.NewAssembler(cfg.SystemPrompt),
		MarkupPercent: cfg.MarkupPercent,
		Recorder:      collector,
	})

	go checkCatalog(ctx, groq, catalog)

	purger := service.NewPurger(sessions, cfg.SessionPurgeSchedule, collector)
	if err := purger.Start(ctx); err != nil {
		return fmt.Errorf("start session purger: %w", err)
	}
	defer purger.Stop()

	limiter := middleware.NewLimiter(cfg.RateLimitPerMinute)

	h := handler.New(handler.Deps{
		Chat:          chat,
		Models:        groq,
		Metrics:       collector.Handler(),
		Limiter:       limiter,
		Recorder:      collector,
		SecureCookies: cfg.SecureCookies,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		// Handlers wait for the model.
		WriteTimeout: config.RequestTimeout + 10*time.Second,
	}

	if cfg.TelegramEnabled() {
		tg, err := telegram.New(telegram.Deps{
			Token:   cfg.TelegramBotToken,
			Chat:    chat,
			Limiter: limiter,
		})
		if err != nil {
			return err
		}
		go tg.Start(ctx, cfg.DropPendingUpdates)
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("starting http server", "addr", cfg.HTTPAddr, "models", len(catalog.Models), "postgres", cfg.UsePostgres())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown", "error", err)
	}
	slog.Info("server stopped gracefully")
	return nil
}

// openStore returns the PostgreSQL store when DATABASE_URL is set and the
// in-memory store otherwise.
func openStore(ctx context.Context, cfg *config.Config) (service.SessionStore, func(), error) {
	if !cfg.UsePostgres() {
		slog.Info("using in-memory session store")
		return repository.NewMemoryStore(), func() {}, nil
	}

	migrations, err := fs.Sub(groqchat.MigrationsFS, "migrations")
	if err != nil {
		return nil, nil, err
	}
	pool, err := repository.Open(ctx, cfg.DatabaseURL, migrations)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("using postgres session store")
	return repository.NewPostgresStore(pool), pool.Close, nil
}

// checkCatalog warns about catalog models the API does not serve.
func checkCatalog(ctx context.Context, groq *service.GroqService, catalog *config.Catalog) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	served, err := groq.ListModels(ctx)
	if err != nil {
		slog.Warn("could not list remote models", "error", err)
		return
	}
	available := make(map[string]bool, len(served))
	for _, id := range served {
		available[id] = true
	}
	for _, m := range catalog.Models {
		if !available[m.ID] {
			slog.Warn("catalog model not served by the inference API", "model", m.ID)
		}
	}
}
