package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"imagestudio/internal/gemini"
	"imagestudio/internal/http/handlers"
	"imagestudio/internal/http/httpapi"
	"imagestudio/internal/infra"
	"imagestudio/internal/series"
	"imagestudio/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	generator := gemini.NewClient(gemini.Options{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Logger:  &logger,
	})
	if cfg.GeminiAPIKey == "" {
		logger.Warn().Msg("GEMINI_API_KEY not set, generation requests will fail")
	}

	orchestrator := series.NewOrchestrator(generator, &logger)

	store, cleanup := newSessionStore(ctx, cfg, logger)
	defer cleanup()
	sessions := session.NewManager(ctx, store, logger)

	app := handlers.NewApp(cfg, logger, generator, orchestrator, sessions)
	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// newSessionStore picks the session backend: Postgres when DATABASE_URL is
// set, otherwise a JSON file, with an in-memory fallback when neither works.
func newSessionStore(ctx context.Context, cfg *infra.Config, logger infra.Logger) (session.Store, func()) {
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err == nil {
			store := session.NewPostgresStore(pool)
			schemaErr := store.EnsureSchema(ctx)
			if schemaErr == nil {
				logger.Info().Msg("session store: postgres")
				return store, pool.Close
			}
			logger.Warn().Err(schemaErr).Msg("postgres session schema unavailable, falling back to file store")
			pool.Close()
		} else {
			logger.Warn().Err(err).Msg("postgres unavailable, falling back to file store")
		}
	}

	fileStore, err := session.NewFileStore(cfg.SessionStorePath)
	if err != nil {
		logger.Warn().Err(err).Msg("file session store unavailable, sessions held in memory only")
		return session.NewMemoryStore(), func() {}
	}
	logger.Info().Str("path", cfg.SessionStorePath).Msg("session store: file")
	return fileStore, func() {}
}
