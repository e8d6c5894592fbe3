package graph

import (
	"context"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	shavedto "github.com/LavaJover/shvark-commission-service/internal/usecase/dto/shave"
	"go.uber.org/zap"
)

func (s *DefaultStore) GetDeal(ctx context.Context, userID string) (*domain.Deal, error) {
	return s.dealRepo.GetDeal(ctx, userID)
}

// UpsertDeal - новые условия действуют только для последующих событий
func (s *DefaultStore) UpsertDeal(ctx context.Context, input *shavedto.UpsertDealInput) (*domain.Deal, error) {
	user, err := s.userRepo.GetUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	deal := &domain.Deal{
		UserID:                  input.UserID,
		CpaEnabled:              input.CpaEnabled,
		CpaAmount:               input.CpaAmount,
		RevshareEnabled:         input.RevshareEnabled,
		RevsharePercentage:      input.RevsharePercentage,
		SalaryEnabled:           input.SalaryEnabled,
		SalaryAmount:            input.SalaryAmount,
		SalaryFrequencyDays:     input.SalaryFrequencyDays,
		ReferralShareEnabled:    input.ReferralShareEnabled,
		ReferralSharePercentage: input.ReferralSharePercentage,
		UpdatedAt:               s.now().UTC(),
	}
	if err := deal.Validate(user.Role); err != nil {
		return nil, err
	}
	if err := s.dealRepo.UpsertDeal(ctx, deal); err != nil {
		return nil, err
	}
	s.logger.Info("deal updated", zap.String("user_id", deal.UserID))
	return deal, nil
}
