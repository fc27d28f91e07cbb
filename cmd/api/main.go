package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/georgemunganga/account-service/internal/config"
	"github.com/georgemunganga/account-service/internal/logging"
	"github.com/georgemunganga/account-service/internal/modules/account"
	"github.com/georgemunganga/account-service/internal/modules/activity"
	"github.com/georgemunganga/account-service/internal/modules/auth"
	"github.com/georgemunganga/account-service/internal/modules/health"
	"github.com/georgemunganga/account-service/internal/modules/user"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger.Slog())
	ctx := context.Background()

	// ── Postgres ────────────────────────────────────────────
	db, err := sql.Open("postgres", cfg.Postgres.DSN())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		logger.Warn(ctx, "postgres not reachable yet, continuing", "host", cfg.Postgres.Host, "error", err)
	} else {
		logger.Info(ctx, "connected to postgres", "host", cfg.Postgres.Host, "db", cfg.Postgres.DBName)
	}
	cancel()

	// ── Mongo activity log ─────────────────────────────────
	mongoCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout)
	client, err := activity.Connect(mongoCtx, cfg.Mongo.URL)
	if client == nil {
		cancel()
		log.Fatal(err)
	}
	if err != nil {
		logger.Warn(ctx, "mongo not reachable yet, continuing", "error", err)
	}
	store := activity.NewMongoStore(client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection))
	if err := store.EnsureIndexes(mongoCtx); err != nil {
		logger.Warn(ctx, "activity index not ensured", "error", err)
	}
	cancel()
	defer func() {
		dctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			logger.Warn(ctx, "mongo disconnect", "error", err)
		}
	}()

	recorder := activity.NewRecorder(store, logger,
		activity.WithQueueSize(cfg.Activity.QueueSize),
		activity.WithWorkers(cfg.Activity.Workers),
		activity.WithMaxRetries(cfg.Activity.MaxRetries),
		activity.WithAppendTimeout(cfg.Activity.AppendTimeout),
	)
	recorder.Start()

	// ── Account module ──────────────────────────────────────
	userRepo := user.NewPostgresRepository(db)
	hasher := auth.NewBcryptHasher(cfg.Security.BcryptCost)
	accountService := account.NewService(userRepo, hasher, recorder, logger)

	probe := health.NewHandler(2*time.Second).
		Add("postgres", db.PingContext).
		Add("mongo", func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) })

	router := newRouter(cfg.CORS, account.NewHandler(accountService), probe)

	// ── Start Server ─────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "account service starting", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info(ctx, "shutting down", "signal", sig.String())
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "server stopped", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "http shutdown", "error", err)
	}
	if err := recorder.Close(shutdownCtx); err != nil {
		logger.Error(ctx, "activity recorder did not drain", "error", err, "dropped", recorder.Dropped())
	}
	logger.Info(ctx, "stopped")
}
