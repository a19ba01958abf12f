package db

import (
	"fmt"

	types "github.com/yungbote/tweetarchive/internal/domain"
	"gorm.io/gorm"
)

// AutoMigrateAll creates or updates every table, including the join tables
// behind the post relations.
func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("running auto migrations")
	return AutoMigrateAll(s.db)
}
