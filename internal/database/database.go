package database

import (
	"fmt"
	"log"
	"strings"

	"github.com/yukikurage/task-tracker-api/internal/config"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector builds the GORM dialector selected by cfg.DBDriver.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch strings.ToLower(cfg.DBDriver) {
	case "mysql", "":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBName,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
			cfg.DBSSLMode,
		)
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.DBName + "?_foreign_keys=on"), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

// Open opens a connection with the given dialector. Driver errors are
// translated into gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated.
func Open(dialector gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Connect opens the database configured in cfg.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := Open(dialector, ParseLogLevel(cfg.DBLogLevel))
	if err != nil {
		return nil, err
	}

	log.Printf("Database connection established (%s)", cfg.DBDriver)
	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	log.Println("Running database migrations...")
	err := db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.TaskAssignment{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := EnsureIndexes(db); err != nil {
		return err
	}

	log.Println("Database migrations completed")
	return nil
}

// ParseLogLevel maps a textual level to a GORM log level.
func ParseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
