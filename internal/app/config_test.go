package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yungbote/tweetarchive/internal/clients/redis"
	"github.com/yungbote/tweetarchive/internal/data/db"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"DB_DRIVER", "REDIS_CHANNEL", "INGEST_CONCURRENCY", "AUTO_MIGRATE"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig()
	if cfg.DB.Driver != db.DriverPostgres {
		t.Fatalf("driver: got %q", cfg.DB.Driver)
	}
	if cfg.RedisChannel != redis.DefaultChannel {
		t.Fatalf("channel: got %q", cfg.RedisChannel)
	}
	if !cfg.AutoMigrate || cfg.IngestConcurrency != 2 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigClampsConcurrency(t *testing.T) {
	t.Setenv("INGEST_CONCURRENCY", "-3")
	t.Setenv("DB_DRIVER", "sqlite")
	cfg := LoadConfig()
	if cfg.IngestConcurrency != 1 {
		t.Fatalf("concurrency: got %d", cfg.IngestConcurrency)
	}
	if cfg.DB.Driver != db.DriverSQLite {
		t.Fatalf("driver: got %q", cfg.DB.Driver)
	}
}

func TestLoadEnvFile(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}

	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("TWEETARCHIVE_TEST_KEY=from-file\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("TWEETARCHIVE_TEST_KEY", "")
	os.Unsetenv("TWEETARCHIVE_TEST_KEY")
	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if got := os.Getenv("TWEETARCHIVE_TEST_KEY"); got != "from-file" {
		t.Fatalf("env not loaded: %q", got)
	}
}
