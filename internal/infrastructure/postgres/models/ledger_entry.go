package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type LedgerEntryModel struct {
	UserID    string          `gorm:"primaryKey"`
	Category  string          `gorm:"primaryKey"`
	Earned    decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	Paid      decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	Reserved  decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	UpdatedAt time.Time
}

func (LedgerEntryModel) TableName() string { return "ledger_entries" }
