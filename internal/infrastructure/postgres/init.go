package postgres

import (
	"log"

	"github.com/LavaJover/shvark-commission-service/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MustInitDB открывает соединение. Схему создают миграции, AutoMigrate не используется:
// частичный уникальный индекс заявок gorm-тегами не описывается
func MustInitDB(cfg *config.CommissionConfig) *gorm.DB {
	dsn := cfg.CommissionDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		// duplicate key -> gorm.ErrDuplicatedKey
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	return db
}
