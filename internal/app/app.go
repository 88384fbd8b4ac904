package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/syariahos/syariahos-api/internal/accounts"
	"github.com/syariahos/syariahos-api/internal/activity"
	"github.com/syariahos/syariahos-api/internal/ai"
	"github.com/syariahos/syariahos-api/internal/auth"
	"github.com/syariahos/syariahos-api/internal/cache"
	"github.com/syariahos/syariahos-api/internal/catalog"
	"github.com/syariahos/syariahos-api/internal/categories"
	"github.com/syariahos/syariahos-api/internal/config"
	"github.com/syariahos/syariahos-api/internal/dashboard"
	"github.com/syariahos/syariahos-api/internal/db"
	"github.com/syariahos/syariahos-api/internal/directory"
	"github.com/syariahos/syariahos-api/internal/export"
	"github.com/syariahos/syariahos-api/internal/http/api"
	"github.com/syariahos/syariahos-api/internal/http/api/admin"
	"github.com/syariahos/syariahos-api/internal/http/api/front"
	"github.com/syariahos/syariahos-api/internal/profile"
	"github.com/syariahos/syariahos-api/internal/ratelimit"
	"github.com/syariahos/syariahos-api/internal/reference"
	"github.com/syariahos/syariahos-api/internal/stats"
	"github.com/syariahos/syariahos-api/internal/tasks"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	shutdownTimeout    = 10 * time.Second
	tokenPruneInterval = 6 * time.Hour
)

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	conn, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(conn)
	return nil
}

// RunResetOnce runs a single task reset sweep and returns the number of tasks reset.
func RunResetOnce(ctx context.Context, cfg config.AppConfig) (int, error) {
	conn, err := openDatabase(cfg)
	if err != nil {
		return 0, err
	}
	defer closeDatabase(conn)
	return tasks.NewResetter(conn, activity.NewRecorder(conn)).ResetEligibleTasks(ctx)
}

// RunServer boots the API server and the task reset scheduler. Both stop when
// ctx is cancelled.
func RunServer(ctx context.Context, cfg config.AppConfig, portOverride int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	if _, errEnsure := EnsureConfigFile(configPath, portOverride); errEnsure != nil {
		return errEnsure
	}
	serverCfg, err := config.LoadServerConfig(configPath)
	if err != nil {
		return err
	}
	if portOverride > 0 {
		serverCfg.Port = portOverride
	}
	logCloser := ConfigureLogging(serverCfg, configPath)
	defer func() { _ = logCloser.Close() }()

	jwtConfig, err := config.LoadJWTConfig(configPath)
	if err != nil {
		return err
	}
	if jwtConfig.Secret == "" {
		return errors.New("jwt secret is empty (set jwt.secret or JWT_SECRET)")
	}

	conn, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(conn)

	redisClient := newRedisClient(ctx, serverCfg.Redis)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	recorder := activity.NewRecorder(conn)
	manager := accounts.NewManager(conn, recorder)
	if _, errBootstrap := BootstrapAdmin(ctx, conn, manager, serverCfg.BootstrapAdmin); errBootstrap != nil {
		return errBootstrap
	}
	if initialized, errCheck := accounts.HasAdmin(conn.WithContext(ctx)); errCheck == nil && !initialized {
		log.Warn("no admin account yet; create one with POST /api/setup")
	}

	authSvc := auth.NewService(conn, recorder, jwtConfig)
	engine := buildEngine(conn, recorder, manager, authSvc, redisClient, serverCfg)
	scheduler := tasks.NewScheduler(tasks.NewResetter(conn, recorder), serverCfg.TaskReset.Interval)

	srv := &http.Server{
		Addr:              serverCfg.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("starting api server on %s", srv.Addr)
		if errListen := srv.ListenAndServe(); errListen != nil && !errors.Is(errListen, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", errListen)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
			log.Errorf("api server shutdown error: %v", errShutdown)
		}
		return nil
	})
	g.Go(func() error {
		return scheduler.Run(gctx)
	})
	g.Go(func() error {
		pruneTokens(gctx, authSvc, tokenPruneInterval)
		return nil
	})
	return g.Wait()
}

func buildEngine(conn *gorm.DB, recorder *activity.Recorder, manager *accounts.Manager, authSvc *auth.Service, redisClient *redis.Client, cfg config.ServerConfig) http.Handler {
	dash := dashboard.NewService(conn)
	catalogSvc := catalog.NewService(conn, recorder)
	statsSvc := stats.NewService(conn)
	store := cache.NewTiered(redisClient, cfg.Redis.Prefix, nil)

	return api.NewEngine(api.Options{
		DB:             conn,
		Debug:          cfg.Debug,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Front: front.Services{
			Auth:       authSvc,
			Profile:    profile.NewService(conn, recorder),
			Categories: categories.NewService(conn),
			Tasks:      tasks.NewService(conn),
			Dashboard:  dash,
			Directory:  directory.NewService(conn),
			Catalog:    catalogSvc,
			AI:         ai.NewService(conn, recorder, ai.NewClient(cfg.AI), dash),
			Reference:  reference.NewClient(cfg.Reference, store),
			Limiter:    ratelimit.NewManager(redisClient, cfg.Redis.Prefix, nil),
			RateLimit:  cfg.RateLimit,
		},
		Admin: admin.Services{
			Auth:     authSvc,
			Accounts: manager,
			Catalog:  catalogSvc,
			Recorder: recorder,
			Stats:    statsSvc,
			Export:   export.NewService(conn, statsSvc),
		},
	})
}

func openDatabase(cfg config.AppConfig) (*gorm.DB, error) {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return nil, err
	}
	if target, errTarget := databaseTargetFromDSN(dsn); errTarget == nil {
		log.Infof("database: %s", target)
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return nil, err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		closeDatabase(conn)
		return nil, errMigrate
	}
	return conn, nil
}

func closeDatabase(conn *gorm.DB) {
	if conn == nil {
		return
	}
	if sqlDB, errDB := conn.DB(); errDB == nil {
		if errClose := sqlDB.Close(); errClose != nil {
			log.Errorf("sql db close error: %v", errClose)
		}
	}
}

// newRedisClient returns nil when redis is disabled. An unreachable server is
// logged and kept; the cache and limiter fall back to memory while it is down.
func newRedisClient(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	if !cfg.Enabled || cfg.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if errPing := client.Ping(pingCtx).Err(); errPing != nil {
		log.WithError(errPing).Warn("redis unreachable, using in-memory fallback until it recovers")
	}
	return client
}

// pruneTokens deletes expired access tokens on every tick until ctx is done.
func pruneTokens(ctx context.Context, authSvc *auth.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, errPrune := authSvc.PruneExpired(ctx)
			if errPrune != nil {
				log.WithError(errPrune).Warn("token prune failed")
				continue
			}
			if removed > 0 {
				log.WithField("removed", removed).Info("expired tokens pruned")
			}
		}
	}
}
