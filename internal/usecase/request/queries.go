package request

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	requestdto "github.com/LavaJover/shvark-commission-service/internal/usecase/dto/request"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func (uc *DefaultRequestUsecase) GetRequestByID(ctx context.Context, requestID string) (*domain.Request, error) {
	return uc.requestRepo.GetRequestByID(ctx, requestID)
}

func (uc *DefaultRequestUsecase) ListRequests(ctx context.Context, input *requestdto.ListRequestsInput) (*requestdto.ListRequestsOutput, error) {
	page, limit := input.Page, input.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	filter := domain.RequestFilter{
		UserID: input.UserID,
		Page:   int(page),
		Limit:  int(limit),
	}
	if input.Kind != nil {
		kind := domain.RequestKind(*input.Kind)
		filter.Kind = &kind
	}
	if input.Category != nil {
		category := domain.RequestCategory(*input.Category)
		filter.Category = &category
	}
	if input.Status != nil {
		status := domain.RequestStatus(*input.Status)
		switch status {
		case domain.StatusPending, domain.StatusDeferred, domain.StatusAccepted, domain.StatusDeclined:
		default:
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidRequest, *input.Status)
		}
		filter.Statuses = []domain.RequestStatus{status}
	}

	requests, total, err := uc.requestRepo.ListRequests(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &requestdto.ListRequestsOutput{
		Requests: requests,
		Pagination: requestdto.Pagination{
			CurrentPage:  page,
			TotalPages:   (total + limit - 1) / limit,
			TotalItems:   total,
			ItemsPerPage: limit,
		},
	}, nil
}

func (uc *DefaultRequestUsecase) History(ctx context.Context, requestID string) ([]*domain.AuditEntry, error) {
	if _, err := uc.requestRepo.GetRequestByID(ctx, requestID); err != nil {
		return nil, err
	}
	return uc.auditRepo.ListByRequest(ctx, requestID)
}
