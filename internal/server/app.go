// Package server initializes and runs the account server: it opens the
// database, applies migrations, and serves the HTTP and gRPC transports
// until the process is signalled.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/taskforge/internal/logging"
	"github.com/dmitrijs2005/taskforge/internal/server/config"
	"github.com/dmitrijs2005/taskforge/internal/server/httpapi"
	"github.com/dmitrijs2005/taskforge/internal/server/mailer"
	"github.com/dmitrijs2005/taskforge/internal/server/ratelimit"
	"github.com/dmitrijs2005/taskforge/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskforge/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/taskforge/internal/server/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	redis    redis.UniversalClient
	accounts *services.AccountService
	limiter  ratelimit.Limiter

	trustedProxies []*net.IPNet
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)
	ctx := context.Background()

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migrations error: %w", err)
	}

	proxies, err := httpapi.ParseCIDRs(c.TrustedProxyCIDRs)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("config error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db, trustedProxies: proxies}
	app.accounts = services.NewAccountService(db, rm, app.newSender(), c, logger)
	app.limiter = app.newLimiter()

	return app, nil
}

func (app *App) newSender() mailer.Sender {
	if app.config.SMTPHost == "" {
		app.logger.Warn(context.Background(), "SMTP host not set, e-mails will be logged")
		return mailer.NewLogSender(app.logger)
	}
	return mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:      app.config.SMTPHost,
		Port:      app.config.SMTPPort,
		User:      app.config.SMTPUser,
		Password:  app.config.SMTPPassword,
		FromName:  app.config.FromName,
		FromEmail: app.config.FromEmail,
	})
}

func (app *App) newLimiter() ratelimit.Limiter {
	if app.config.AuthRateLimitPerMin <= 0 {
		return nil
	}
	policy := ratelimit.Policy{Limit: app.config.AuthRateLimitPerMin, Window: time.Minute}
	if app.config.RedisAddr == "" {
		return ratelimit.NewLocalLimiter(policy)
	}
	app.redis = redis.NewClient(&redis.Options{Addr: app.config.RedisAddr})
	return ratelimit.NewRedisLimiter(app.redis, "taskforge:ratelimit:auth", policy)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.accounts)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           httpapi.NewRouter(app.accounts, app.limiter, app.trustedProxies, app.logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "http shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error(ctx, "redis close", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close", "error", err)
	}
}

// Run blocks until both transports have stopped.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
	app.close(context.Background())
	app.logger.Info(context.Background(), "App stopped")
}
