package repository

import (
	"context"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/LavaJover/shvark-commission-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-commission-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultAuditRepository struct {
	db *gorm.DB
}

func NewDefaultAuditRepository(db *gorm.DB) *DefaultAuditRepository {
	return &DefaultAuditRepository{db: db}
}

func (r *DefaultAuditRepository) ListByRequest(ctx context.Context, requestID string) ([]*domain.AuditEntry, error) {
	var entryModels []models.AuditEntryModel
	if err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("at, id").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]*domain.AuditEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = mappers.ToDomainAuditEntry(&entryModels[i])
	}
	return entries, nil
}

type auditTx struct {
	db *gorm.DB
}

// Append - журнал только на добавление, записи не обновляются
func (a *auditTx) Append(ctx context.Context, entry *domain.AuditEntry) error {
	return a.db.WithContext(ctx).Create(mappers.ToGORMAuditEntry(entry)).Error
}
