// Package server wires the authentication server together: configuration,
// PostgreSQL with migrations, the optional Redis identity cache, the
// reconciliation sinks, the auth engine and the gRPC transport, plus
// graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/cache"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/provisioning"
	"github.com/dmitrijs2005/gophauth/internal/server/reconciliation"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

const redisHealthInterval = 30 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	redis       *redis.Client
	redisStore  *cache.RedisStore
	authService *services.AuthService
}

// NewApp validates c and builds every dependency. Configuration errors,
// including a weak signing secret, are returned before anything is opened.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	secret := []byte(c.SecretKey)
	codec, err := auth.NewCodec(secret, c.Issuer, auth.WithLogger(logger))
	common.WipeByteArray(secret)
	if err != nil {
		return nil, fmt.Errorf("token codec error: %w", err)
	}

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
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	var store cache.Store
	if c.RedisAddr != "" {
		app.redis = cache.NewRedisClient(cache.RedisConfig{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB})
		app.redisStore = cache.NewRedisStore(app.redis)
		if err := app.redisStore.Health(ctx); err != nil {
			// the cache is optional; lookups fall back to the database
			logger.Warn(ctx, "redis unreachable, identity cache degraded", "error", err.Error())
		}
		store = app.redisStore
	}

	sink := reconciliation.MultiSink{reconciliation.NewLogSink(logger)}
	if c.ReconciliationBucket != "" {
		client, err := reconciliation.NewS3Client(ctx, reconciliation.S3Options{
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
		})
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		sink = append(sink, reconciliation.NewS3Sink(client, c.ReconciliationBucket))
	}

	app.authService = services.NewAuthService(db, rm, codec,
		provisioning.NewHTTPProvisioner(c.ProfileServiceURL, c.ProvisionTimeout), c,
		services.WithLogger(logger),
		services.WithSink(sink),
		services.WithIdentityCache(cache.NewIdentityCache(store, c.IdentityCacheTTL, logger)),
	)

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a signal arrives, then releases
// the database and Redis connections.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.authService, app.config.InternalToken)
		return s.Run(gctx)
	})

	if app.redisStore != nil {
		g.Go(func() error {
			return cache.WatchHealth(gctx, app.redisStore, redisHealthInterval, app.logger)
		})
	}

	err := g.Wait()
	if cerr := app.Close(); cerr != nil {
		app.logger.Error(context.Background(), "shutdown error", "error", cerr.Error())
	}
	if err != nil {
		app.logger.Error(context.Background(), err.Error())
	}
	return err
}

func (app *App) Close() error {
	var errs []error
	if app.redis != nil {
		errs = append(errs, app.redis.Close())
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	return errors.Join(errs...)
}
