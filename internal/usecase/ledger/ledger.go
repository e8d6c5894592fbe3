package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/LavaJover/shvark-commission-service/internal/infrastructure/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Ledger interface {
	Credit(ctx context.Context, tx domain.Tx, key domain.LedgerKey, amount decimal.Decimal) error
	CreditAll(ctx context.Context, tx domain.Tx, deltas []domain.LedgerDelta) error
	Available(ctx context.Context, tx domain.Tx, key domain.LedgerKey) (decimal.Decimal, error)
	ReserveForPayout(ctx context.Context, tx domain.Tx, key domain.LedgerKey, amount decimal.Decimal) error
	SettlePayout(ctx context.Context, tx domain.Tx, key domain.LedgerKey, amount decimal.Decimal) error
	ReleaseReservation(ctx context.Context, tx domain.Tx, key domain.LedgerKey, amount decimal.Decimal) error
	Balances(ctx context.Context, userID string) (map[domain.LedgerCategory]domain.Balance, error)
}

// DefaultLedger - единственный источник правды по балансам.
// Все изменения идут через LockEntry, поэтому по ключу (user, category) они сериализованы
type DefaultLedger struct {
	ledgerRepo domain.LedgerRepository
	metrics    *metrics.CommissionMetrics
	logger     *zap.Logger
}

func NewDefaultLedger(ledgerRepo domain.LedgerRepository, m *metrics.CommissionMetrics, logger *zap.Logger) *DefaultLedger {
	return &DefaultLedger{
		ledgerRepo: ledgerRepo,
		metrics:    m,
		logger:     logger,
	}
}

// Credit - только для атрибуции и одобренных компенсаций
func (l *DefaultLedger) Credit(ctx context.Context, tx domain.Tx, key domain.LedgerKey, amount decimal.Decimal) error {
	amount = domain.RoundMoney(amount)
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	err := l.mutate(ctx, tx, key, func(entry *domain.LedgerEntry) error {
		entry.Earned = entry.Earned.Add(amount)
		return nil
	})
	if err != nil {
		return err
	}
	if l.metrics != nil {
		l.metrics.RecordCredited(string(key.Category), amount.InexactFloat64())
	}
	return nil
}

// CreditAll блокирует строки в отсортированном порядке, чтобы параллельные
// начисления по пересекающимся ключам не ловили дедлок
func (l *DefaultLedger) CreditAll(ctx context.Context, tx domain.Tx, deltas []domain.LedgerDelta) error {
	ordered := make([]domain.LedgerDelta, len(deltas))
	copy(ordered, deltas)
	sort.SliceStable(ordered, func(i, j int) bool {
		return domain.LedgerKey{UserID: ordered[i].UserID, Category: ordered[i].Category}.
			Less(domain.LedgerKey{UserID: ordered[j].UserID, Category: ordered[j].Category})
	})
	for _, delta := range ordered {
		key := domain.LedgerKey{UserID: delta.UserID, Category: delta.Category}
		if err := l.Credit(ctx, tx, key, delta.Amount); err != nil {
			return fmt.Errorf("credit %s/%s: %w", delta.UserID, delta.Category, err)
		}
	}
	return nil
}

func (l *DefaultLedger) Available(ctx context.Context, tx domain.Tx, key domain.LedgerKey) (decimal.Decimal, error) {
	entry, err := l.lock(ctx, tx, key)
	if err != nil {
		return decimal.Zero, err
	}
	return entry.Available(), nil
}

// ReserveForPayout переводит сумму в удержание под заявку
func (l *DefaultLedger) ReserveForPayout(ctx context.Context, tx domain.Tx, key domain.LedgerKey, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	return l.mutate(ctx, tx, key, func(entry *domain.LedgerEntry) error {
		if amount.GreaterThan(entry.Available()) {
			return fmt.Errorf("%w: requested %s, available %s", domain.ErrInsufficientUnpaid, amount, entry.Available())
		}
		entry.Reserved = entry.Reserved.Add(amount)
		return nil
	})
}

// SettlePayout - удержание становится выплаченным
func (l *DefaultLedger) SettlePayout(ctx context.Context, tx domain.Tx, key domain.LedgerKey, amount decimal.Decimal) error {
	return l.mutate(ctx, tx, key, func(entry *domain.LedgerEntry) error {
		if amount.GreaterThan(entry.Reserved) {
			return fmt.Errorf("%w: settling %s with only %s reserved for %s/%s",
				domain.ErrLedgerIntegrity, amount, entry.Reserved, key.UserID, key.Category)
		}
		entry.Reserved = entry.Reserved.Sub(amount)
		entry.Paid = entry.Paid.Add(amount)
		return nil
	})
}

func (l *DefaultLedger) ReleaseReservation(ctx context.Context, tx domain.Tx, key domain.LedgerKey, amount decimal.Decimal) error {
	return l.mutate(ctx, tx, key, func(entry *domain.LedgerEntry) error {
		if amount.GreaterThan(entry.Reserved) {
			return fmt.Errorf("%w: releasing %s with only %s reserved for %s/%s",
				domain.ErrLedgerIntegrity, amount, entry.Reserved, key.UserID, key.Category)
		}
		entry.Reserved = entry.Reserved.Sub(amount)
		return nil
	})
}

// Balances возвращает балансы по всем категориям, включая пустые
func (l *DefaultLedger) Balances(ctx context.Context, userID string) (map[domain.LedgerCategory]domain.Balance, error) {
	entries, err := l.ledgerRepo.GetEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	balances := make(map[domain.LedgerCategory]domain.Balance, len(domain.LedgerCategories))
	for _, category := range domain.LedgerCategories {
		empty := domain.LedgerEntry{UserID: userID, Category: category}
		balances[category] = empty.Balance()
	}
	for _, entry := range entries {
		if err := entry.CheckIntegrity(); err != nil {
			l.reportIntegrity(entry.Key(), err)
			return nil, err
		}
		balances[entry.Category] = entry.Balance()
	}
	return balances, nil
}

func (l *DefaultLedger) lock(ctx context.Context, tx domain.Tx, key domain.LedgerKey) (*domain.LedgerEntry, error) {
	if !key.Category.Valid() {
		return nil, fmt.Errorf("%w: ledger category %q", domain.ErrUnknownCategory, key.Category)
	}
	entry, err := tx.Ledger().LockEntry(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("lock ledger entry: %w", err)
	}
	if err := entry.CheckIntegrity(); err != nil {
		l.reportIntegrity(key, err)
		return nil, err
	}
	return entry, nil
}

func (l *DefaultLedger) mutate(ctx context.Context, tx domain.Tx, key domain.LedgerKey, fn func(entry *domain.LedgerEntry) error) error {
	entry, err := l.lock(ctx, tx, key)
	if err != nil {
		return err
	}
	if err := fn(entry); err != nil {
		if errors.Is(err, domain.ErrLedgerIntegrity) {
			l.reportIntegrity(key, err)
		}
		return err
	}
	if err := entry.CheckIntegrity(); err != nil {
		l.reportIntegrity(key, err)
		return err
	}
	return tx.Ledger().SaveEntry(ctx, entry)
}

func (l *DefaultLedger) reportIntegrity(key domain.LedgerKey, err error) {
	l.logger.Error("ledger integrity violation",
		zap.String("user_id", key.UserID),
		zap.String("category", string(key.Category)),
		zap.Error(err))
	if l.metrics != nil {
		l.metrics.RecordIntegrityViolation(string(key.Category))
	}
}
