package repository

import (
	"context"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/LavaJover/shvark-commission-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-commission-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

// shaveGraphLockKey - ключ advisory-блокировки на запись графа ребер
const shaveGraphLockKey int64 = 7_340_001

type DefaultShaveRepository struct {
	db *gorm.DB
}

func NewDefaultShaveRepository(db *gorm.DB) *DefaultShaveRepository {
	return &DefaultShaveRepository{db: db}
}

// CreateEdgeChecked: проверка цикла и вставка под одной транзакционной блокировкой,
// иначе две конкурентные вставки A->B и B->A обе прошли бы проверку
func (r *DefaultShaveRepository) CreateEdgeChecked(ctx context.Context, edge *domain.ShaveEdge, check func(existing []*domain.ShaveEdge) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", shaveGraphLockKey).Error; err != nil {
			return err
		}
		existing, err := listEdges(tx)
		if err != nil {
			return err
		}
		if err := check(existing); err != nil {
			return err
		}
		return tx.Create(mappers.ToGORMShaveEdge(edge)).Error
	})
}

func (r *DefaultShaveRepository) DeleteEdge(ctx context.Context, edgeID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", shaveGraphLockKey).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", edgeID).Delete(&models.ShaveEdgeModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrEdgeNotFound
		}
		return nil
	})
}

func (r *DefaultShaveRepository) ListEdges(ctx context.Context) ([]*domain.ShaveEdge, error) {
	return listEdges(r.db.WithContext(ctx))
}

func listEdges(db *gorm.DB) ([]*domain.ShaveEdge, error) {
	var edgeModels []models.ShaveEdgeModel
	if err := db.Order("created_at, id").Find(&edgeModels).Error; err != nil {
		return nil, err
	}
	edges := make([]*domain.ShaveEdge, len(edgeModels))
	for i := range edgeModels {
		edges[i] = mappers.ToDomainShaveEdge(&edgeModels[i])
	}
	return edges, nil
}
