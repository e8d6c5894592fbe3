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

type DefaultUserRepository struct {
	db *gorm.DB
}

func NewDefaultUserRepository(db *gorm.DB) *DefaultUserRepository {
	return &DefaultUserRepository{db: db}
}

func (r *DefaultUserRepository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	var userModel models.UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&userModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return mappers.ToDomainUser(&userModel), nil
}

func (r *DefaultUserRepository) SaveUser(ctx context.Context, user *domain.User) error {
	userModel := mappers.ToGORMUser(user)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "referrer_id", "manager_id", "updated_at"}),
	}).Create(userModel).Error
}
