package db

import (
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLiteDSN turns a file path (or an existing DSN) into one with foreign keys
// enforced on every pooled connection.
func SQLiteDSN(path string) string {
	path = orDefault(path, "tweetarchive.db")
	if strings.Contains(path, "_foreign_keys=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}

func sqliteDialector(cfg Config) gorm.Dialector {
	return sqlite.Open(SQLiteDSN(cfg.SQLitePath))
}
