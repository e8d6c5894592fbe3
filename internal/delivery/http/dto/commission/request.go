package commission

import (
	"time"

	"github.com/shopspring/decimal"
)

type SubmitRequestBody struct {
	Kind             string          `json:"kind" binding:"required"`
	Subtype          string          `json:"subtype"`
	Amount           decimal.Decimal `json:"amount"`
	CryptoType       string          `json:"crypto_type"`
	Network          string          `json:"network"`
	WalletAddress    string          `json:"wallet_address"`
	Note             string          `json:"note"`
	AttachmentFileID string          `json:"attachment_file_id"`
}

type ResolveRequestBody struct {
	Action string `json:"action" binding:"required"`
	Note   string `json:"note"`
}

type AddShaveBody struct {
	SourceID       string          `json:"source_id" binding:"required"`
	TargetID       string          `json:"target_id" binding:"required"`
	IntermediaryID string          `json:"intermediary_id"`
	CommissionType string          `json:"commission_type" binding:"required"`
	Value          decimal.Decimal `json:"value"`
}

type DealBody struct {
	CpaEnabled              bool            `json:"cpa_enabled"`
	CpaAmount               decimal.Decimal `json:"cpa_amount"`
	RevshareEnabled         bool            `json:"revshare_enabled"`
	RevsharePercentage      decimal.Decimal `json:"revshare_percentage"`
	SalaryEnabled           bool            `json:"salary_enabled"`
	SalaryAmount            decimal.Decimal `json:"salary_amount"`
	SalaryFrequencyDays     int             `json:"salary_frequency_days"`
	ReferralShareEnabled    bool            `json:"referral_share_enabled"`
	ReferralSharePercentage decimal.Decimal `json:"referral_share_percentage"`
}

type SaveUserBody struct {
	Role       string `json:"role" binding:"required"`
	ReferrerID string `json:"referrer_id"`
	ManagerID  string `json:"manager_id"`
}

type RevenueEventBody struct {
	IdempotencyKey string          `json:"idempotency_key"`
	Type           string          `json:"type" binding:"required"`
	UserID         string          `json:"user_id" binding:"required"`
	TraderID       string          `json:"trader_id"`
	Amount         decimal.Decimal `json:"amount"`
	FtdCount       int             `json:"ftd_count"`
	Date           *time.Time      `json:"date"`
}
