package initialize

import (
	"server/config"
	"server/internal/logger"
	. "server/internal/models"

	"gorm.io/gorm"
)

func InitializeTables(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("InitializeTables")
	log.Info("Migrating case management tables")

	if err := db.AutoMigrate(
		&User{},
		&Case{},
		&CaseHistory{},
		&ImportRecord{},
	); err != nil {
		return log.Err("failed to migrate tables", err)
	}

	log.Info("Table initialization complete")
	return nil
}
