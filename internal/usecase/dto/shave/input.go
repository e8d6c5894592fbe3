package shavedto

import "github.com/shopspring/decimal"

type AddEdgeInput struct {
	SourceID       string
	TargetID       string
	IntermediaryID string
	CommissionType string
	Value          decimal.Decimal
	CreatedBy      string
}

type UpsertDealInput struct {
	UserID                  string
	CpaEnabled              bool
	CpaAmount               decimal.Decimal
	RevshareEnabled         bool
	RevsharePercentage      decimal.Decimal
	SalaryEnabled           bool
	SalaryAmount            decimal.Decimal
	SalaryFrequencyDays     int
	ReferralShareEnabled    bool
	ReferralSharePercentage decimal.Decimal
}
