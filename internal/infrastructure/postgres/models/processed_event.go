package models

import (
	"time"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
)

// ProcessedEventModel - журнал идемпотентности событий выручки
type ProcessedEventModel struct {
	IdempotencyKey string               `gorm:"primaryKey"`
	Type           string               `gorm:"not null"`
	Deltas         []domain.LedgerDelta `gorm:"type:jsonb;serializer:json"`
	ProcessedAt    time.Time
}

func (ProcessedEventModel) TableName() string { return "processed_events" }
