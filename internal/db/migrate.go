package db

import (
	"fmt"
	"wartungsmanager/internal/domain"

	"gorm.io/gorm"
)

// Models lists every table owned by the maintenance service
func Models() []interface{} {
	return []interface{}{
		&domain.Document{},
		&domain.Maintenance{},
		&domain.Task{},
		&domain.Comment{},
		&domain.File{},
	}
}

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
