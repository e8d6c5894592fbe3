package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ShaveEdgeModel struct {
	ID             string `gorm:"primaryKey"`
	SourceID       string `gorm:"index;not null"`
	TargetID       string `gorm:"index;not null"`
	IntermediaryID string
	CommissionType string          `gorm:"not null"`
	Value          decimal.Decimal `gorm:"type:numeric(20,4)"`
	CreatedBy      string
	CreatedAt      time.Time
}

func (ShaveEdgeModel) TableName() string { return "shave_edges" }
