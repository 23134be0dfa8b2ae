package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/voyagen/channeldeck/internal/cache"
	"github.com/voyagen/channeldeck/internal/config"
	"github.com/voyagen/channeldeck/internal/server"
	"github.com/voyagen/channeldeck/internal/service"
	"github.com/voyagen/channeldeck/internal/store"
	"github.com/voyagen/channeldeck/internal/xtream"
)

func main() {
	configPath := flag.String("config", "", "Optional config file path (YAML); else use environment variables")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log := logrus.StandardLogger()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.WithError(err).Fatal("config")
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Fatal("parse log level")
	}
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var appStore store.Store
	if cfg.DatabaseURL != "" {
		pg, err := openPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("database")
		}
		defer pg.Close()
		appStore = pg
		log.Info("postgres connected")
	} else {
		appStore = store.NewMemory()
		log.Warn("DATABASE_URL not set, playlists are kept in memory")
	}

	// Connect to Redis if REDIS_URL is configured.
	var rds *cache.Redis
	if cfg.RedisURL != "" {
		rds, err = cache.New(cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("redis")
		}
		defer rds.Close()

		if err := rds.Ping(ctx); err != nil {
			log.WithError(err).Fatal("redis ping")
		}
		cached := store.NewCachedStore(appStore, rds, log.WithField("component", "cache"))
		if err := cached.Purge(ctx); err != nil {
			log.WithError(err).Warn("cache purge failed")
		}
		appStore = cached
		log.Info("redis connected (caching and background refresh enabled)")
	} else {
		log.Info("redis disabled (REDIS_URL not set)")
	}

	importer := &service.Importer{
		Store:     appStore,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
		Log:       log.WithField("component", "importer"),
	}
	xtreamLog := log.WithField("component", "xtream")
	accounts := &service.Accounts{
		Store: appStore,
		NewClient: func(creds xtream.Credentials) (*xtream.Client, error) {
			return xtream.New(creds,
				xtream.WithTimeout(cfg.Timeout),
				xtream.WithUserAgent(cfg.UserAgent),
				xtream.WithLogger(xtreamLog),
			)
		},
	}

	if rds != nil {
		go service.RunRefreshWorker(ctx, rds, importer, log.WithField("component", "refresh-worker"))
	}

	srv := server.New(cfg, server.Deps{
		Store:    appStore,
		Importer: importer,
		Accounts: accounts,
		Redis:    rds,
		Log:      log,
	})
	if err := srv.ListenAndServe(ctx); err != nil {
		log.WithError(err).Fatal("server")
	}
}

// openPostgres waits for the database, applies migrations and opens the pool.
func openPostgres(ctx context.Context, dsn string) (*store.Postgres, error) {
	if err := store.WaitForDatabase(ctx, dsn, 10, 2*time.Second); err != nil {
		return nil, err
	}
	if err := store.RunMigrations(dsn, "file://"+migrationsDir()); err != nil {
		return nil, err
	}
	return store.NewPostgres(ctx, dsn)
}

// migrationsDir looks for ./migrations, then next to the executable.
func migrationsDir() string {
	abs, err := filepath.Abs("migrations")
	if err != nil {
		abs = "migrations"
	}
	if _, err := os.Stat(abs); err != nil {
		if exe, e := os.Executable(); e == nil {
			return filepath.Join(filepath.Dir(exe), "migrations")
		}
	}
	return abs
}
