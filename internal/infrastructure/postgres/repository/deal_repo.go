package repository

import (
	"context"
	"errors"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/LavaJover/shvark-commission-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-commission-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultDealRepository struct {
	db *gorm.DB
}

func NewDefaultDealRepository(db *gorm.DB) *DefaultDealRepository {
	return &DefaultDealRepository{db: db}
}

func (r *DefaultDealRepository) GetDeal(ctx context.Context, userID string) (*domain.Deal, error) {
	var dealModel models.DealModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&dealModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDealNotFound
		}
		return nil, err
	}
	return mappers.ToDomainDeal(&dealModel), nil
}

func (r *DefaultDealRepository) UpsertDeal(ctx context.Context, deal *domain.Deal) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(mappers.ToGORMDeal(deal)).Error
}

func (r *DefaultDealRepository) ListSalaryDeals(ctx context.Context) ([]*domain.Deal, error) {
	var dealModels []models.DealModel
	if err := r.db.WithContext(ctx).
		Where("salary_enabled = ?", true).
		Order("user_id").
		Find(&dealModels).Error; err != nil {
		return nil, err
	}
	deals := make([]*domain.Deal, len(dealModels))
	for i := range dealModels {
		deals[i] = mappers.ToDomainDeal(&dealModels[i])
	}
	return deals, nil
}
