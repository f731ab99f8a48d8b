package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"artisan_backend/internal/adapters"
	"artisan_backend/internal/adapters/storage"
	"artisan_backend/internal/email"
	"artisan_backend/internal/followup"
	apphttp "artisan_backend/internal/http"
	"artisan_backend/internal/http/router"
	"artisan_backend/internal/invoices"
	"artisan_backend/internal/notification"
	"artisan_backend/internal/quotes"
	"artisan_backend/platform/config"
	"artisan_backend/platform/db"
	"artisan_backend/platform/logger"
	"artisan_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool)
	}); err != nil {
		log.Error("failed to run migrations", "error", err)
		panic("failed to run migrations: " + err.Error())
	}

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	val := validator.New()

	// ========================================================================
	// Domain Modules
	// ========================================================================

	invoicesModule := invoices.NewModule(pool, val)
	invoicesModule.Service().SetLocation(cfg.GetLocation())

	quotesModule := quotes.NewModule(pool, val, log)
	quoteSvc := quotesModule.Service()
	quoteSvc.SetLocation(cfg.GetLocation())
	quoteSvc.SetFollowUpScheduler(followup.New(cfg, log))
	quoteSvc.SetNotifier(notification.New(sender, cfg, log))
	quoteSvc.SetInvoiceWriter(adapters.NewQuotesInvoiceWriter(invoicesModule.Service()))

	if store := initFileStorage(ctx, cfg, log); store != nil {
		quoteSvc.SetFileStore(adapters.NewQuotesFileStore(store))
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: db.NewPoolAdapter(pool),
		Modules: []apphttp.Module{
			quotesModule,
			invoicesModule,
		},
	}

	engine := router.New(app)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initFileStorage connects to MinIO when configured. Quote attachments are
// disabled otherwise.
func initFileStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) *storage.MinIOService {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; quote file uploads disabled")
		return nil
	}

	store, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage", "error", err)
		panic("failed to initialize storage: " + err.Error())
	}

	if err := withRetry(ctx, log, "ensure quote files bucket", 5, 2*time.Second, func() error {
		return store.EnsureBucketExists(ctx)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetMinioBucketQuoteFiles())
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	return store
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
