package cmd

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/cache"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/config"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/engine"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/feed"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/gather"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/report"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/store"
)

// app holds everything one command needs, built from a loaded config.
type app struct {
	cfg    *config.Config
	engine *engine.Engine
	store  *store.Store
	cache  cache.Cache
	sqlite *cache.SQLite
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	return cfg, nil
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	reg, err := cfg.Registry()
	if err != nil {
		return nil, fmt.Errorf("building source registry: %w", err)
	}

	a := &app{cfg: cfg, store: store.New(cfg.DataDirPath(), nil)}
	if err := a.openCache(ctx); err != nil {
		return nil, err
	}

	client := feed.NewClient(cfg.FetchTimeoutDuration(), cfg.UserAgent)
	g := gather.New(reg, feed.NewMux(client), a.cache, nil, logger.Named("gather"), gather.Options{
		CacheTTL:     cfg.CacheTTLDuration(),
		FetchTimeout: cfg.FetchTimeoutDuration(),
		Retries:      cfg.RetryCount(),
		Concurrency:  cfg.Concurrency,
	})

	var synth report.Synthesizer = report.Curated{}
	if cfg.Synthesis == "data" {
		synth = report.DataDriven{}
	}

	opts := []engine.Option{engine.WithLogger(logger.Named("engine"))}
	if a.sqlite != nil {
		opts = append(opts, engine.WithRecorder(a.sqlite))
	}
	a.engine = engine.New(g, report.NewBuilder(nil, synth), a.store, opts...)
	return a, nil
}

func (a *app) openCache(ctx context.Context) error {
	switch a.cfg.CacheBackend() {
	case config.BackendMemory:
		a.cache = cache.NewMemory(nil)
	case config.BackendRedis:
		r := cache.NewRedis(&redis.Options{
			Addr:     a.cfg.Cache.Redis.Addr,
			Password: a.cfg.Cache.Redis.Password,
			DB:       a.cfg.Cache.Redis.DB,
		})
		if err := r.Ping(ctx); err != nil {
			logger.Warn("redis unavailable, using in-memory cache",
				zap.String("addr", a.cfg.Cache.Redis.Addr), zap.Error(err))
			r.Close()
			a.cache = cache.NewMemory(nil)
			return nil
		}
		a.cache = r
	default:
		db, err := cache.OpenSQLite(a.cfg.CachePath(), nil)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		a.cache, a.sqlite = db, db
	}
	return nil
}

func (a *app) Close() error {
	return a.cache.Close()
}
