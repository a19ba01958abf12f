package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/tweetarchive/internal/clients/redis"
	"github.com/yungbote/tweetarchive/internal/data/db"
	"github.com/yungbote/tweetarchive/internal/data/repos/social"
	"github.com/yungbote/tweetarchive/internal/observability"
	"github.com/yungbote/tweetarchive/internal/platform/logger"
)

type App struct {
	Log     *logger.Logger
	Store   *db.Service
	DB      *gorm.DB
	Cfg     Config
	Repos   social.Repos
	Metrics *observability.Metrics

	// Publisher is nil unless REDIS_ADDR is set and reachable.
	Publisher redis.RunPublisher

	shutdownOTel func(context.Context) error
}

// New loads .env and the environment, opens the store and wires the repos.
func New() (*App, error) {
	envErr := LoadEnvFile("")
	cfg := LoadConfig()

	log, err := logger.NewWithLevel(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if envErr != nil {
		log.Warn("could not read .env, using process environment", "error", envErr)
	}
	return NewWithConfig(cfg, log)
}

// NewWithConfig wires an App from an explicit config.
func NewWithConfig(cfg Config, log *logger.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	store, err := db.NewService(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init store: %w", err)
	}
	if cfg.AutoMigrate {
		if err := store.AutoMigrateAll(); err != nil {
			_ = store.Close()
			log.Sync()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
	}

	a := &App{
		Log:     log,
		Store:   store,
		DB:      store.DB(),
		Cfg:     cfg,
		Repos:   wireRepos(store.DB(), log),
		Metrics: observability.New(),

		shutdownOTel: observability.InitOTel(context.Background(), log, cfg.Otel),
	}
	if cfg.RedisAddr != "" {
		pub, err := redis.NewRunPublisher(log, cfg.RedisAddr, cfg.RedisChannel)
		if err != nil {
			log.Warn("run summaries will not be published", "error", err)
		} else {
			a.Publisher = pub
		}
	}
	return a, nil
}

func wireRepos(db *gorm.DB, log *logger.Logger) social.Repos {
	log.Debug("Wiring repos...")
	return social.NewRepos(db, log)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			a.Log.Warn("redis close failed", "error", err)
		}
	}
	if a.shutdownOTel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.shutdownOTel(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Log.Warn("store close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
