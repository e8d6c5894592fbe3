package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type LedgerCategory string

const (
	CategoryCpa           LedgerCategory = "cpa"
	CategoryRevshare      LedgerCategory = "revshare"
	CategorySalary        LedgerCategory = "salary"
	CategoryReferralShare LedgerCategory = "referralShare"
	CategoryExpense       LedgerCategory = "expense"
	CategoryReward        LedgerCategory = "reward"
)

var LedgerCategories = []LedgerCategory{
	CategoryCpa,
	CategoryRevshare,
	CategorySalary,
	CategoryReferralShare,
	CategoryExpense,
	CategoryReward,
}

func (c LedgerCategory) Valid() bool {
	for _, known := range LedgerCategories {
		if c == known {
			return true
		}
	}
	return false
}

// LedgerKey - ключ строки леджера
type LedgerKey struct {
	UserID   string
	Category LedgerCategory
}

func (k LedgerKey) Less(other LedgerKey) bool {
	if k.UserID != other.UserID {
		return k.UserID < other.UserID
	}
	return k.Category < other.Category
}

// LedgerEntry - earned пишет только атрибуция, paid - только одобрение заявки.
// Reserved - сумма, удерживаемая под еще не разрешенные заявки
type LedgerEntry struct {
	UserID    string
	Category  LedgerCategory
	Earned    decimal.Decimal
	Paid      decimal.Decimal
	Reserved  decimal.Decimal
	UpdatedAt time.Time
}

func (e *LedgerEntry) Key() LedgerKey {
	return LedgerKey{UserID: e.UserID, Category: e.Category}
}

func (e *LedgerEntry) Unpaid() decimal.Decimal {
	return e.Earned.Sub(e.Paid)
}

func (e *LedgerEntry) Available() decimal.Decimal {
	return e.Unpaid().Sub(e.Reserved)
}

// CheckIntegrity: 0 <= reserved <= earned - paid
func (e *LedgerEntry) CheckIntegrity() error {
	if e.Earned.IsNegative() || e.Paid.IsNegative() || e.Reserved.IsNegative() {
		return fmt.Errorf("%w: negative component for %s/%s", ErrLedgerIntegrity, e.UserID, e.Category)
	}
	if e.Unpaid().IsNegative() {
		return fmt.Errorf("%w: paid %s exceeds earned %s for %s/%s",
			ErrLedgerIntegrity, e.Paid, e.Earned, e.UserID, e.Category)
	}
	if e.Reserved.GreaterThan(e.Unpaid()) {
		return fmt.Errorf("%w: reserved %s exceeds unpaid %s for %s/%s",
			ErrLedgerIntegrity, e.Reserved, e.Unpaid(), e.UserID, e.Category)
	}
	return nil
}

type Balance struct {
	Earned    decimal.Decimal `json:"earned"`
	Paid      decimal.Decimal `json:"paid"`
	Unpaid    decimal.Decimal `json:"unpaid"`
	Reserved  decimal.Decimal `json:"reserved"`
	Available decimal.Decimal `json:"available"`
}

func (e *LedgerEntry) Balance() Balance {
	return Balance{
		Earned:    e.Earned,
		Paid:      e.Paid,
		Unpaid:    e.Unpaid(),
		Reserved:  e.Reserved,
		Available: e.Available(),
	}
}

// LedgerDelta - результат атрибуции: сколько начислить пользователю в категории
type LedgerDelta struct {
	UserID   string          `json:"user_id"`
	Category LedgerCategory  `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type LedgerRepository interface {
	GetEntries(ctx context.Context, userID string) ([]*LedgerEntry, error)
}

// LedgerTx - операции над строками леджера внутри транзакции.
// LockEntry блокирует строку (создавая пустую при отсутствии) до конца транзакции
type LedgerTx interface {
	LockEntry(ctx context.Context, key LedgerKey) (*LedgerEntry, error)
	SaveEntry(ctx context.Context, entry *LedgerEntry) error
}
