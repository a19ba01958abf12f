package app

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"

	"github.com/yungbote/tweetarchive/internal/clients/redis"
	"github.com/yungbote/tweetarchive/internal/data/db"
	"github.com/yungbote/tweetarchive/internal/observability"
	"github.com/yungbote/tweetarchive/internal/platform/envutil"
)

type Config struct {
	LogMode  string
	LogLevel string

	DB          db.Config
	AutoMigrate bool

	RedisAddr    string
	RedisChannel string

	// IngestConcurrency bounds how many sources load at once.
	IngestConcurrency int

	Otel observability.OtelConfig
}

// LoadEnvFile loads path (".env" when empty) into the process environment.
// A missing file is not an error; variables already set win.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func LoadConfig() Config {
	cfg := Config{
		LogMode:  envutil.String("LOG_MODE", "development"),
		LogLevel: envutil.String("LOG_LEVEL", ""),
		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", db.DriverPostgres),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "tweetarchive"),
			MySQLDSN:         envutil.String("MYSQL_DSN", ""),
			SQLitePath:       envutil.String("SQLITE_PATH", "tweetarchive.db"),
			LogLevel:         envutil.String("DB_LOG_LEVEL", "silent"),
		},
		AutoMigrate:       envutil.Bool("AUTO_MIGRATE", true),
		RedisAddr:         envutil.String("REDIS_ADDR", ""),
		RedisChannel:      envutil.String("REDIS_CHANNEL", redis.DefaultChannel),
		IngestConcurrency: envutil.Int("INGEST_CONCURRENCY", 2),
	}
	cfg.Otel = observability.OtelConfig{
		Enabled:     envutil.Bool("OTEL_ENABLED", false),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "tweetarchive"),
		Environment: envutil.String("OTEL_ENVIRONMENT", cfg.LogMode),
		Version:     envutil.String("OTEL_SERVICE_VERSION", ""),
		Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
		Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 0.1),
	}
	if cfg.IngestConcurrency < 1 {
		cfg.IngestConcurrency = 1
	}
	return cfg
}
