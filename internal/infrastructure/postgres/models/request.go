package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type RequestModel struct {
	ID             string `gorm:"primaryKey"`
	UserID         string `gorm:"index;not null"`
	Kind           string `gorm:"not null"`
	Subtype        string
	Category       string `gorm:"not null"`
	LedgerCategory string `gorm:"not null"`
	Funded         bool
	Amount         decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	CryptoType     string
	Network        string
	WalletAddress  string
	Note           string
	AttachmentRef  string
	Status         string `gorm:"index;not null"`
	AdminNote      string
	ResolvedBy     string
	ResolvedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (RequestModel) TableName() string { return "requests" }
