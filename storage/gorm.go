package storage

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// kvEntry maps one logical key to its JSON blob.
type kvEntry struct {
	Key   string `gorm:"primaryKey;size:128;column:kv_key"`
	Value []byte `gorm:"type:mediumblob;column:kv_value"`
}

func (kvEntry) TableName() string { return "kv_entries" }

// Gorm is a database-backed KV for deployments where several instances share
// one MySQL server.
type Gorm struct {
	db *gorm.DB
}

// OpenMySQL connects to MySQL with the given DSN and migrates the kv table.
func OpenMySQL(dsn, logLevel string) (*Gorm, error) {
	gLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  toGormLogLevel(logLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gLogger})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	// Ping at boot to surface network/auth problems before the first request.
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping: %w", err)
	}

	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, fmt.Errorf("migrate kv_entries: %w", err)
	}
	return &Gorm{db: db}, nil
}

// NewGorm wraps an existing gorm connection, migrating the kv table.
func NewGorm(db *gorm.DB) (*Gorm, error) {
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, err
	}
	return &Gorm{db: db}, nil
}

// Get reads the blob for key.
func (g *Gorm) Get(key string) ([]byte, error) {
	var e kvEntry
	if err := g.db.First(&e, "kv_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e.Value, nil
}

// Set upserts the blob for key.
func (g *Gorm) Set(key string, value []byte) error {
	e := kvEntry{Key: key, Value: value}
	return g.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kv_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"kv_value"}),
	}).Create(&e).Error
}

// Remove deletes the row for key. Removing an absent key is not an error.
func (g *Gorm) Remove(key string) error {
	return g.db.Delete(&kvEntry{}, "kv_key = ?", key).Error
}

func toGormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		return logger.Info
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Warn
	}
}
