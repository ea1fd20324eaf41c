package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	browseradapter "github.com/ericfisherdev/jobmatch/internal/adapter/driven/browser"
	"github.com/ericfisherdev/jobmatch/internal/adapter/driven/scoring"
	sqliteadapter "github.com/ericfisherdev/jobmatch/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/jobmatch/internal/adapter/driven/syncwatch"
	httphandler "github.com/ericfisherdev/jobmatch/internal/adapter/driving/http"
	"github.com/ericfisherdev/jobmatch/internal/application"
	"github.com/ericfisherdev/jobmatch/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load .env (optional) and configuration.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"sync_db_path", cfg.SyncDBPath,
		"api_base_url", cfg.APIBaseURL,
		"encrypted_credentials", cfg.EncryptsCredentials(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open both storage tiers and migrate them.
	cacheDB, err := openStore(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer closeStore(cacheDB)

	syncDB, err := openStore(ctx, cfg.SyncDBPath)
	if err != nil {
		return err
	}
	defer closeStore(syncDB)

	// 4. Wire adapters.
	cacheStore := sqliteadapter.NewKVRepo(cacheDB)

	syncRepo := sqliteadapter.NewKVRepo(syncDB)
	if cfg.EncryptsCredentials() {
		syncRepo, err = sqliteadapter.NewEncryptedKVRepo(syncDB, cfg.SecretKey)
		if err != nil {
			return err
		}
	}

	// Credit rebroadcasts are triggered by other instances writing the synced
	// tier; writes through credentialStore are this process's own.
	var creditsSvc *application.CreditsService
	watcher := syncwatch.New(cfg.SyncDBPath, func(ctx context.Context) {
		creditsSvc.UpdateCredits(ctx)
	}, slog.Default())
	credentialStore := watcher.Track(syncRepo)

	scoringClient := scoring.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout)
	opener := browseradapter.NewOpener(slog.Default())

	// 5. Create application services.
	bus := application.NewEventBus()
	resumeSvc := application.NewResumeService(credentialStore, cacheStore, scoringClient, application.DefaultPreCacheDelay)
	creditsSvc = application.NewCreditsService(credentialStore, cacheStore, scoringClient, bus, resumeSvc)
	evaluationSvc := application.NewEvaluationService(credentialStore, cacheStore, scoringClient, resumeSvc, creditsSvc)
	authSvc := application.NewAuthService(
		credentialStore,
		cacheStore,
		scoringClient,
		opener,
		creditsSvc,
		resumeSvc,
		bus,
		application.DefaultAuthPollInterval,
		application.DefaultAuthMaxPolls,
	)
	sessionSvc := application.NewSessionService(credentialStore, cacheStore, bus)
	dispatcher := application.NewDispatcher(evaluationSvc, creditsSvc, authSvc, sessionSvc)

	// 6. Rebroadcast credits when another instance writes the synced tier.
	go func() {
		if err := watcher.Run(ctx); err != nil {
			slog.Error("sync watcher stopped", "error", err)
		}
	}()

	// 7. Create HTTP handler.
	apiHandler := httphandler.NewHandler(dispatcher, bus, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(apiHandler, slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Authentication polls for up to two minutes on the request goroutine.
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	slog.Info("jobmatch started", "listen_addr", cfg.ListenAddr)

	// 8. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 9. Graceful shutdown with 10s timeout for in-flight commands.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// openStore opens a storage tier and runs migrations on its writer connection.
func openStore(ctx context.Context, path string) (*sqliteadapter.DB, error) {
	db, err := sqliteadapter.NewDB(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		closeStore(db)
		return nil, err
	}
	slog.Info("store opened", "path", path)
	return db, nil
}

func closeStore(db *sqliteadapter.DB) {
	if err := db.Close(); err != nil {
		slog.Error("error closing database", "path", db.Path(), "error", err)
	}
}
