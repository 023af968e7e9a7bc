package db

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"usermgmt/internal/model"
)

// Open returns a connected GORM DB instance for the given driver.
// Supported drivers are mysql, postgres and sqlite.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         NewLogger(os.Stdout),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	return db, nil
}

// NewLogger returns a GORM logger that reports slow queries and errors.
// Lookups that find no row are expected (sign-up checks the email first)
// and are not logged.
func NewLogger(w io.Writer) logger.Interface {
	return logger.New(
		log.New(w, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
}

// Reset drops all application tables.
func Reset(db *gorm.DB) error {
	if err := db.Migrator().DropTable(&model.User{}); err != nil {
		return fmt.Errorf("drop users: %w", err)
	}
	return nil
}

// Migrate creates or updates the application schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
