package repository

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/LavaJover/shvark-commission-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type eventLogTx struct {
	db *gorm.DB
}

func (e *eventLogTx) Processed(ctx context.Context, key string) ([]domain.LedgerDelta, bool, error) {
	var stored []models.ProcessedEventModel
	if err := e.db.WithContext(ctx).
		Where("idempotency_key = ?", key).
		Limit(1).
		Find(&stored).Error; err != nil {
		return nil, false, err
	}
	if len(stored) == 0 {
		return nil, false, nil
	}
	return stored[0].Deltas, true, nil
}

// MarkProcessed вставляет ключ события; если ключ уже есть, возвращает
// сохраненные при первой обработке дельты
func (e *eventLogTx) MarkProcessed(ctx context.Context, key string, eventType domain.RevenueEventType, deltas []domain.LedgerDelta) ([]domain.LedgerDelta, bool, error) {
	eventModel := models.ProcessedEventModel{
		IdempotencyKey: key,
		Type:           string(eventType),
		Deltas:         deltas,
		ProcessedAt:    time.Now().UTC(),
	}
	result := e.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&eventModel)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 1 {
		return deltas, false, nil
	}

	var stored models.ProcessedEventModel
	if err := e.db.WithContext(ctx).
		Where("idempotency_key = ?", key).
		First(&stored).Error; err != nil {
		return nil, false, err
	}
	return stored.Deltas, true, nil
}
