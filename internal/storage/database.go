package storage

import (
	"fmt"

	"flatgripe/backend/internal/config"
	"flatgripe/backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Open connects to the configured backend. Postgres in production, sqlite for local runs.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Type {
	case "postgres":
		return gorm.Open(postgres.Open(cfg.DSN), gormConfig())
	case "sqlite":
		return OpenSQLite(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}
}

// OpenSQLite opens a sqlite database through the pure-Go modernc driver.
// sqlite allows a single writer, so the pool is capped at one connection.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        dsn,
	}, gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}
}

// Migrate створює або оновлює таблиці для всіх моделей
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Flat{},
		&models.User{},
		&models.Complaint{},
		&models.Vote{},
	)
}
