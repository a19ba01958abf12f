package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/tweetarchive/internal/platform/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresName     string

	MySQLDSN   string
	SQLitePath string

	// LogLevel for gorm's own logger: silent|error|warn|info.
	LogLevel string
}

type Service struct {
	db     *gorm.DB
	driver string
	log    *logger.Logger
}

// NewService opens the configured store. TranslateError is always on so
// unique violations surface as gorm.ErrDuplicatedKey regardless of dialect.
func NewService(cfg Config, logg *logger.Logger) (*Service, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = DriverPostgres
	}
	serviceLog := logg.With("service", "DBService", "driver", driver)

	dialector, err := dialectorFor(driver, cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(cfg.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	serviceLog.Debug("database connected")
	return &Service{db: db, driver: driver, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB   { return s.db }
func (s *Service) Driver() string { return s.driver }

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(driver string, cfg Config) (gorm.Dialector, error) {
	switch driver {
	case DriverPostgres:
		return postgresDialector(cfg), nil
	case DriverMySQL:
		return mysqlDialector(cfg)
	case DriverSQLite:
		return sqliteDialector(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (want postgres, mysql or sqlite)", driver)
	}
}

func newGormLogger(level string) gormLogger.Interface {
	lvl := gormLogger.Silent
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		lvl = gormLogger.Error
	case "warn":
		lvl = gormLogger.Warn
	case "info":
		lvl = gormLogger.Info
	}
	return gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  lvl,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
