package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	userdto "github.com/LavaJover/shvark-commission-service/internal/usecase/dto/user"
	"go.uber.org/zap"
)

type UserUsecase interface {
	SaveUser(ctx context.Context, input *userdto.SaveUserInput) (*domain.User, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

type DefaultUserUsecase struct {
	userRepo domain.UserRepository
	logger   *zap.Logger
}

func NewDefaultUserUsecase(userRepo domain.UserRepository, logger *zap.Logger) *DefaultUserUsecase {
	return &DefaultUserUsecase{
		userRepo: userRepo,
		logger:   logger,
	}
}

// SaveUser создает или обновляет пользователя. Реферер и менеджер должны существовать
func (uc *DefaultUserUsecase) SaveUser(ctx context.Context, input *userdto.SaveUserInput) (*domain.User, error) {
	role := domain.Role(input.Role)
	if input.UserID == "" || !role.Valid() {
		return nil, fmt.Errorf("%w: user id and a known role are required", domain.ErrInvalidRequest)
	}
	for _, related := range []string{input.ReferrerID, input.ManagerID} {
		if related == "" {
			continue
		}
		if related == input.UserID {
			return nil, fmt.Errorf("%w: user cannot refer or manage itself", domain.ErrInvalidRequest)
		}
		if _, err := uc.userRepo.GetUser(ctx, related); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:         input.UserID,
		Role:       role,
		ReferrerID: input.ReferrerID,
		ManagerID:  input.ManagerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	existing, err := uc.userRepo.GetUser(ctx, input.UserID)
	switch {
	case err == nil:
		user.CreatedAt = existing.CreatedAt
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	if err := uc.userRepo.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	uc.logger.Info("user saved", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

func (uc *DefaultUserUsecase) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return uc.userRepo.GetUser(ctx, userID)
}
