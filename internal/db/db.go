package db

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"mellow/internal/config"
	"mellow/internal/model"
)

// gormConfig translates driver errors (unique violations in particular) into gorm sentinels.
func gormConfig(logger *zap.Logger) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         newZapLogger(logger),
	}
}

// NewMySQL returns a connected GORM DB instance. A nil logger discards gorm output.
func NewMySQL(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), gormConfig(logger))
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return db, nil
}

// NewSQLite opens (creating if needed) a SQLite database at path. ":memory:" is accepted.
func NewSQLite(path string, logger *zap.Logger) (*gorm.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), gormConfig(logger))
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	return db, nil
}

// Open connects to the database selected by cfg.DBDriver.
func Open(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case "mysql":
		return NewMySQL(cfg.MySQLDSN, logger)
	case "sqlite":
		return NewSQLite(cfg.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}
}

// Migrate creates or updates the schema. With reset the users table is dropped first.
func Migrate(db *gorm.DB, reset bool) error {
	if reset {
		if err := db.Migrator().DropTable(&model.UserAccount{}); err != nil {
			return fmt.Errorf("drop users: %w", err)
		}
	}
	if err := db.AutoMigrate(&model.UserAccount{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
