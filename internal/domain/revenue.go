package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type RevenueEventType string

const (
	EventFtdConversion      RevenueEventType = "ftd_conversion"
	EventRevshareAccrual    RevenueEventType = "revshare_accrual"
	EventSalaryTick         RevenueEventType = "salary_tick"
	EventReferralCommission RevenueEventType = "referral_commission"
)

// RevenueEvent - входящее событие выручки.
// UserID - основной пользователь события: аффилиат для FTD/ревшары,
// получатель оклада для SalaryTick, приглашенный пользователь для ReferralCommission
type RevenueEvent struct {
	IdempotencyKey string           `json:"idempotency_key"`
	Type           RevenueEventType `json:"type"`
	UserID         string           `json:"user_id"`
	TraderID       string           `json:"trader_id,omitempty"`
	Amount         decimal.Decimal  `json:"amount"`
	FtdCount       int              `json:"ftd_count,omitempty"`
	Date           time.Time        `json:"date,omitempty"`
	OccurredAt     time.Time        `json:"occurred_at,omitempty"`
}

func FtdConversion(affiliateID string, amount decimal.Decimal) RevenueEvent {
	return RevenueEvent{Type: EventFtdConversion, UserID: affiliateID, Amount: amount, FtdCount: 1}
}

func RevshareAccrual(affiliateID, traderID string, amount decimal.Decimal) RevenueEvent {
	return RevenueEvent{Type: EventRevshareAccrual, UserID: affiliateID, TraderID: traderID, Amount: amount}
}

func SalaryTick(userID string, date time.Time) RevenueEvent {
	return RevenueEvent{Type: EventSalaryTick, UserID: userID, Date: date}
}

func ReferralCommission(referredID string, grossAmount decimal.Decimal) RevenueEvent {
	return RevenueEvent{Type: EventReferralCommission, UserID: referredID, Amount: grossAmount}
}

func (e *RevenueEvent) Validate() error {
	if e.UserID == "" {
		return fmt.Errorf("%w: user is required", ErrInvalidEvent)
	}
	switch e.Type {
	case EventFtdConversion, EventRevshareAccrual, EventReferralCommission:
		if !e.Amount.IsPositive() {
			return ErrInvalidEventAmount
		}
		if e.Type == EventFtdConversion && e.FtdCount < 0 {
			return fmt.Errorf("%w: negative ftd count", ErrInvalidEvent)
		}
	case EventSalaryTick:
		if e.Date.IsZero() {
			return fmt.Errorf("%w: salary tick needs a date", ErrInvalidEvent)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, e.Type)
	}
	return nil
}

// Key - ключ идемпотентности; для суточного оклада выводится из пользователя и даты
func (e *RevenueEvent) Key() string {
	if e.IdempotencyKey != "" {
		return e.IdempotencyKey
	}
	if e.Type == EventSalaryTick {
		return fmt.Sprintf("salary:%s:%s", e.UserID, e.Date.Format(time.DateOnly))
	}
	return ""
}

// EventLog - защита от повторной обработки события.
// При повторе возвращает ранее сохраненные дельты и replayed=true
type EventLog interface {
	// Processed возвращает дельты уже обработанного события
	Processed(ctx context.Context, key string) (deltas []LedgerDelta, found bool, err error)
	MarkProcessed(ctx context.Context, key string, eventType RevenueEventType, deltas []LedgerDelta) (stored []LedgerDelta, replayed bool, err error)
}
