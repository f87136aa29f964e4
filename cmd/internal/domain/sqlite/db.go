package sqlite

import (
	"fmt"
	"notesync/cmd/internal/domain/entity"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/gommon/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// migrateMu serializes schema bootstraps issued from the same process.
var migrateMu sync.Mutex

// Open connects to the database file at path without touching the schema.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection keeps writers serialized, sqlite would otherwise
	// answer concurrent batches with SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Init opens the database and bootstraps the notes table and its index.
func Init(path string) (*gorm.DB, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}

	if err = Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates the notes table and the updated_at index when they are
// missing. Running it again against an existing schema is a no-op and never
// touches stored rows.
func Migrate(db *gorm.DB) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	if err := db.AutoMigrate(&entity.Note{}); err != nil {
		return fmt.Errorf("migrate notes: %w", err)
	}

	log.Debugf("notes schema is up to date")
	return nil
}
