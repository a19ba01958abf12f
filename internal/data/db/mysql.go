package db

import (
	"fmt"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// mysqlDialector parses the DSN so utf8mb4 and parseTime are forced on;
// statuses routinely carry four-byte characters.
func mysqlDialector(cfg Config) (gorm.Dialector, error) {
	if cfg.MySQLDSN == "" {
		return nil, fmt.Errorf("MYSQL_DSN is required when DB_DRIVER=mysql")
	}
	parsed, err := gomysql.ParseDSN(cfg.MySQLDSN)
	if err != nil {
		return nil, fmt.Errorf("invalid MYSQL_DSN: %w", err)
	}
	parsed.ParseTime = true
	if parsed.Params == nil {
		parsed.Params = map[string]string{}
	}
	parsed.Params["charset"] = "utf8mb4"
	return mysql.New(mysql.Config{
		DSN:                       parsed.FormatDSN(),
		DefaultStringSize:         255,
		SkipInitializeWithVersion: false,
	}), nil
}
