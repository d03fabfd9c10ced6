// Package main runs the character sheet HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dvh/internal/api"
	"github.com/cory-johannsen/dvh/internal/config"
	"github.com/cory-johannsen/dvh/internal/game/dice"
	"github.com/cory-johannsen/dvh/internal/game/ruleset"
	"github.com/cory-johannsen/dvh/internal/game/session"
	"github.com/cory-johannsen/dvh/internal/observability"
	"github.com/cory-johannsen/dvh/internal/server"
	"github.com/cory-johannsen/dvh/internal/storage"
	"github.com/cory-johannsen/dvh/internal/storage/postgres"
	"github.com/cory-johannsen/dvh/internal/storage/redis"
	"github.com/cory-johannsen/dvh/internal/storage/sqlite"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	catalogStart := time.Now()
	catalog, err := ruleset.LoadCatalog(cfg.Content.Dir)
	if err != nil {
		logger.Fatal("loading catalog", zap.String("dir", cfg.Content.Dir), zap.Error(err))
	}
	logger.Info("catalog loaded",
		zap.Int("races", len(catalog.Races())),
		zap.Int("classes", len(catalog.Classes())),
		zap.Int("origins", len(catalog.Origins())),
		zap.Int("items", len(catalog.Items.All())),
		zap.Duration("elapsed", time.Since(catalogStart)),
	)

	store, closeStore := openStore(ctx, cfg, logger)
	defer closeStore()

	rolls, closeRolls := openRollLog(cfg, logger)
	defer closeRolls()

	src := dice.NewCryptoSource()
	if cfg.Dice.Seed != 0 {
		src = dice.NewSeededSource(cfg.Dice.Seed)
		logger.Warn("using seeded dice", zap.Uint64("seed", cfg.Dice.Seed))
	}

	mgr := session.NewManager(session.Deps{
		Catalog: catalog,
		Store:   store,
		Rolls:   rolls,
		Roller:  dice.NewLoggedRoller(src, logger),
		Logger:  logger,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewServer(mgr, catalog, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	lc := server.NewLifecycle(logger)
	lc.Add("http", &server.HTTPService{
		Server:          httpServer,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Logger:          logger,
	})

	logger.Info("sheet server initialized",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("storage", cfg.Storage.Backend),
		zap.Bool("redis", cfg.Redis.Enabled),
		zap.Duration("startup", time.Since(start)),
	)

	if err := lc.Run(ctx); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

// openStore connects the configured sheet store. The returned func releases it.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.SheetStore, func()) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		return pool.Sheets(), pool.Close
	case config.BackendSQLite:
		if dir := filepath.Dir(cfg.Storage.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				logger.Fatal("creating sqlite directory", zap.String("dir", dir), zap.Error(err))
			}
		}
		st, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			logger.Fatal("opening sqlite store", zap.String("path", cfg.Storage.SQLitePath), zap.Error(err))
		}
		logger.Info("sqlite store opened", zap.String("path", cfg.Storage.SQLitePath))
		return st, func() {
			if err := st.Close(); err != nil {
				logger.Warn("closing sqlite store", zap.Error(err))
			}
		}
	default:
		logger.Warn("using in-memory sheet store; sheets are lost on exit")
		return storage.NewMemoryStore(), func() {}
	}
}

// openRollLog returns the redis roll history when enabled, otherwise an
// in-memory one.
func openRollLog(cfg config.Config, logger *zap.Logger) (storage.RollLog, func()) {
	if !cfg.Redis.Enabled {
		return storage.NewMemoryRollLog(max(cfg.Redis.HistoryLimit, 1)), func() {}
	}
	client, err := redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal("creating redis client", zap.Error(err))
	}
	rl, err := redis.NewRollLog(&redis.RollLogConfig{
		Client: client,
		Limit:  cfg.Redis.HistoryLimit,
		TTL:    cfg.Redis.HistoryTTL,
	})
	if err != nil {
		logger.Fatal("creating redis roll log", zap.Error(err))
	}
	logger.Info("redis roll history enabled", zap.String("addr", cfg.Redis.Addr))
	return rl, func() {
		if err := client.Close(); err != nil {
			logger.Warn("closing redis client", zap.Error(err))
		}
	}
}
