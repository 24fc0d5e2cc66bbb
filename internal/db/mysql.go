package db

import (
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"zuvomo/internal/model"
)

// NewMySQL returns a connected GORM DB instance.
func NewMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the schema. When reset is true, existing
// tables are dropped first.
func Migrate(db *gorm.DB, reset bool) error {
	if reset {
		log.Println("RESET_DB=true detected, dropping all tables...")
		for _, table := range []interface{}{&model.Project{}, &model.User{}} {
			if err := db.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
	}

	if err := db.AutoMigrate(&model.User{}, &model.Project{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
