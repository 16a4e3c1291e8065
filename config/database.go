package config

import (
	"fmt"

	"nutribalance/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the PostgreSQL connection.
func InitDB(cfg *Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if cfg.IsDevelopment() {
		gormCfg.Logger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Profile{},
		&models.Meal{},
		&models.Biomarker{},
		&models.MolecularBalance{},
		&models.Recommendation{},
		&models.Alert{},
		&models.UserDevice{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}
