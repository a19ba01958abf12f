package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func postgresDSN(cfg Config) string {
	host := orDefault(cfg.PostgresHost, "localhost")
	port := orDefault(cfg.PostgresPort, "5432")
	user := orDefault(cfg.PostgresUser, "postgres")
	name := orDefault(cfg.PostgresName, "tweetarchive")
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		user,
		cfg.PostgresPassword,
		host,
		port,
		name,
	)
}

func postgresDialector(cfg Config) gorm.Dialector {
	return postgres.Open(postgresDSN(cfg))
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
