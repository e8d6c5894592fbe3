package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Deal - условия комиссии пользователя. Одновременно может быть включено несколько
type Deal struct {
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
	UpdatedAt               time.Time
}

// Validate проверяет условия сделки с учетом роли пользователя
func (d *Deal) Validate(role Role) error {
	switch role {
	case RoleAdmin:
		if d.CpaEnabled || d.RevshareEnabled || d.SalaryEnabled || d.ReferralShareEnabled {
			return fmt.Errorf("%w: admins carry no commission terms", ErrInvalidDeal)
		}
	case RoleManager:
		if d.CpaEnabled || d.RevshareEnabled {
			return fmt.Errorf("%w: cpa and revshare are affiliate terms", ErrInvalidDeal)
		}
	case RoleAffiliate:
	default:
		return fmt.Errorf("%w: unknown role %q", ErrInvalidDeal, role)
	}

	if d.CpaEnabled && !d.CpaAmount.IsPositive() {
		return fmt.Errorf("%w: cpa amount must be positive", ErrInvalidDeal)
	}
	if d.RevshareEnabled && !validPercentage(d.RevsharePercentage) {
		return fmt.Errorf("%w: revshare percentage must be in (0,100]", ErrInvalidDeal)
	}
	if d.SalaryEnabled {
		if !d.SalaryAmount.IsPositive() {
			return fmt.Errorf("%w: salary amount must be positive", ErrInvalidDeal)
		}
		if d.SalaryFrequencyDays < 1 {
			return fmt.Errorf("%w: salary frequency must be at least one day", ErrInvalidDeal)
		}
	}
	if d.ReferralShareEnabled && !validPercentage(d.ReferralSharePercentage) {
		return fmt.Errorf("%w: referral share percentage must be in (0,100]", ErrInvalidDeal)
	}
	return nil
}

// DailySalary - суточная доля фиксированной комиссии
func (d *Deal) DailySalary() decimal.Decimal {
	if !d.SalaryEnabled || d.SalaryFrequencyDays < 1 {
		return decimal.Zero
	}
	return d.SalaryAmount.Div(decimal.NewFromInt(int64(d.SalaryFrequencyDays)))
}

func validPercentage(p decimal.Decimal) bool {
	return p.IsPositive() && p.LessThanOrEqual(hundred)
}

// Percent возвращает value% от base без округления
func Percent(base, value decimal.Decimal) decimal.Decimal {
	return base.Mul(value).Div(hundred)
}

// RoundMoney округляет денежную сумму до двух знаков
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

type DealRepository interface {
	GetDeal(ctx context.Context, userID string) (*Deal, error)
	UpsertDeal(ctx context.Context, deal *Deal) error
	ListSalaryDeals(ctx context.Context) ([]*Deal, error)
}
