package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DealModel struct {
	UserID                  string          `gorm:"primaryKey"`
	CpaEnabled              bool
	CpaAmount               decimal.Decimal `gorm:"type:numeric(20,2)"`
	RevshareEnabled         bool
	RevsharePercentage      decimal.Decimal `gorm:"type:numeric(7,4)"`
	SalaryEnabled           bool            `gorm:"index"`
	SalaryAmount            decimal.Decimal `gorm:"type:numeric(20,2)"`
	SalaryFrequencyDays     int
	ReferralShareEnabled    bool
	ReferralSharePercentage decimal.Decimal `gorm:"type:numeric(7,4)"`
	UpdatedAt               time.Time
}

func (DealModel) TableName() string { return "deals" }
