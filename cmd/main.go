package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "sagesilk/docs"
	"sagesilk/internal/config"
	"sagesilk/internal/handlers"
	"sagesilk/internal/logger"
	"sagesilk/internal/repository"
	"sagesilk/internal/repository/db"
	"sagesilk/internal/server"
	"sagesilk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const dbInitTimeout = 30 * time.Second

func main() {
	// load configs/config.yml + env
	cfg, err := config.Load("configs")
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.Log.Level)
	defer func() { _ = log.Sync() }()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.Auth.JWTSecret == config.DevJWTSecret {
		log.Warnw("using development JWT secret; set JWTSECRET before deploying")
	}

	// open DB
	conn, err := openDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "path", cfg.DB.Path, "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// wire dependencies
	repos := repository.NewRepository(conn)

	revocations, closeRevocations, err := newRevocations(ctx, cfg, repos, log)
	if err != nil {
		log.Fatalw("failed to init token revocation", "backend", cfg.Auth.Revocation, "err", err)
	}
	defer closeRevocations()

	tokens, err := service.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, revocations)
	if err != nil {
		log.Fatalw("failed to init token manager", "err", err)
	}

	services := service.NewService(repos, service.Deps{
		Hasher: service.NewBcryptHasher(cfg.Auth.BcryptCost),
		Tokens: tokens,
		Log:    log,
	})
	apiHandler := handlers.NewHandler(services, log, handlers.Options{
		SessionSecret: cfg.Session.Secret,
		SecureCookies: cfg.Session.SecureCookie,
	})

	// start HTTP server
	srv := server.New(server.Timeouts{
		ReadHeader: cfg.Server.ReadHeaderTimeout,
		Write:      cfg.Server.WriteTimeout,
		Idle:       cfg.Server.IdleTimeout,
	})
	runHTTPServer(srv, cfg.Port, apiHandler, log)
	log.Infow("server started", "port", cfg.Port, "env", cfg.Env, "revocation", cfg.Auth.Revocation)

	// graceful shutdown
	waitForShutdown(cancel, srv, cfg.Server.ShutdownTimeout, log)
}

func openDB(path string) (*sql.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbInitTimeout)
	defer cancel()
	return db.InitDB(ctx, path)
}

// newRevocations selects the token denylist backend. The returned close func is never nil.
func newRevocations(ctx context.Context, cfg *config.Config, repos *repository.Repository, log *logger.Logger) (service.Revocations, func(), error) {
	noop := func() {}
	switch cfg.Auth.Revocation {
	case config.RevocationSQLite:
		go purgeRevocations(ctx, repos.Revocations, cfg.Auth.PurgeInterval, log)
		return repos.Revocations, noop, nil
	case config.RevocationRedis:
		client, err := repository.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, noop, err
		}
		return repository.NewRevocationRedis(client), closeRedis(client, log), nil
	default:
		return nil, noop, nil
	}
}

func closeRedis(client *redis.Client, log *logger.Logger) func() {
	return func() {
		if err := client.Close(); err != nil {
			log.Errorw("failed to close redis", "err", err)
		}
	}
}

// purgeRevocations drops denylist rows for tokens that have expired anyway.
func purgeRevocations(ctx context.Context, rev *repository.RevocationSQLite, every time.Duration, log *logger.Logger) {
	if every <= 0 {
		every = time.Hour
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := rev.PurgeExpired(ctx, now)
			if err != nil {
				log.Warnw("revocation_purge_failed", "err", err)
				continue
			}
			if n > 0 {
				log.Debugw("revocation_purged", "rows", n)
			}
		}
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, timeout time.Duration, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
