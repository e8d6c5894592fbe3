package repository

import (
	"context"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/LavaJover/shvark-commission-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-commission-service/internal/infrastructure/postgres/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultLedgerRepository struct {
	db *gorm.DB
}

func NewDefaultLedgerRepository(db *gorm.DB) *DefaultLedgerRepository {
	return &DefaultLedgerRepository{db: db}
}

func (r *DefaultLedgerRepository) GetEntries(ctx context.Context, userID string) ([]*domain.LedgerEntry, error) {
	var entryModels []models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("category").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]*domain.LedgerEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = mappers.ToDomainLedgerEntry(&entryModels[i])
	}
	return entries, nil
}

// ledgerTx работает внутри транзакции unit of work
type ledgerTx struct {
	db *gorm.DB
}

func (l *ledgerTx) LockEntry(ctx context.Context, key domain.LedgerKey) (*domain.LedgerEntry, error) {
	seed := models.LedgerEntryModel{
		UserID:   key.UserID,
		Category: string(key.Category),
		Earned:   decimal.Zero,
		Paid:     decimal.Zero,
		Reserved: decimal.Zero,
	}
	if err := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&seed).Error; err != nil {
		return nil, err
	}

	var entryModel models.LedgerEntryModel
	if err := l.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND category = ?", key.UserID, string(key.Category)).
		First(&entryModel).Error; err != nil {
		return nil, err
	}
	return mappers.ToDomainLedgerEntry(&entryModel), nil
}

func (l *ledgerTx) SaveEntry(ctx context.Context, entry *domain.LedgerEntry) error {
	entryModel := mappers.ToGORMLedgerEntry(entry)
	return l.db.WithContext(ctx).
		Model(&models.LedgerEntryModel{}).
		Where("user_id = ? AND category = ?", entryModel.UserID, entryModel.Category).
		Updates(map[string]interface{}{
			"earned":     entryModel.Earned,
			"paid":       entryModel.Paid,
			"reserved":   entryModel.Reserved,
			"updated_at": entryModel.UpdatedAt,
		}).Error
}
