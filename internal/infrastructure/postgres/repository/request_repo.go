package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/LavaJover/shvark-commission-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-commission-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultRequestRepository struct {
	db *gorm.DB
}

func NewDefaultRequestRepository(db *gorm.DB) *DefaultRequestRepository {
	return &DefaultRequestRepository{db: db}
}

func (r *DefaultRequestRepository) GetRequestByID(ctx context.Context, requestID string) (*domain.Request, error) {
	return getRequest(r.db.WithContext(ctx), requestID)
}

func (r *DefaultRequestRepository) ListRequests(ctx context.Context, filter domain.RequestFilter) ([]*domain.Request, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.RequestModel{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", string(*filter.Kind))
	}
	if filter.Category != nil {
		query = query.Where("category = ?", string(*filter.Category))
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", statusStrings(filter.Statuses))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count failed: %w", err)
	}

	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.Limit).Limit(filter.Limit)
	}

	var requestModels []models.RequestModel
	if err := query.Order("created_at DESC, id DESC").Find(&requestModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find request models: %w", err)
	}
	requests := make([]*domain.Request, len(requestModels))
	for i := range requestModels {
		requests[i] = mappers.ToDomainRequest(&requestModels[i])
	}
	return requests, total, nil
}

func getRequest(db *gorm.DB, requestID string) (*domain.Request, error) {
	var requestModel models.RequestModel
	if err := db.Where("id = ?", requestID).First(&requestModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}
	return mappers.ToDomainRequest(&requestModel), nil
}

func statusStrings(statuses []domain.RequestStatus) []string {
	result := make([]string, len(statuses))
	for i, status := range statuses {
		result[i] = string(status)
	}
	return result
}

type requestTx struct {
	db *gorm.DB
}

func (r *requestTx) CreateRequest(ctx context.Context, request *domain.Request) error {
	err := r.db.WithContext(ctx).Create(mappers.ToGORMRequest(request)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// сработал частичный индекс requests_one_open_per_category
		return domain.ErrDuplicatePending
	}
	return err
}

// TransitionRequest - compare-and-set по наблюдаемому статусу. Если между чтением
// и обновлением статус сменила другая транзакция, обновится 0 строк
func (r *requestTx) TransitionRequest(ctx context.Context, tr domain.Transition) (*domain.Request, domain.RequestStatus, error) {
	current, err := getRequest(r.db.WithContext(ctx), tr.RequestID)
	if err != nil {
		return nil, "", err
	}
	previous := current.Status
	if !containsStatus(tr.From, previous) {
		return nil, previous, domain.ErrNotPending
	}

	updates := map[string]interface{}{
		"status":     string(tr.To),
		"updated_at": tr.At,
	}
	if tr.AdminNote != "" {
		updates["admin_note"] = tr.AdminNote
	}
	if tr.To.Terminal() {
		updates["resolved_by"] = tr.ResolvedBy
		updates["resolved_at"] = tr.At
	}

	result := r.db.WithContext(ctx).
		Model(&models.RequestModel{}).
		Where("id = ? AND status = ?", tr.RequestID, string(previous)).
		Updates(updates)
	if result.Error != nil {
		return nil, previous, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, previous, domain.ErrNotPending
	}

	current.Status = tr.To
	current.UpdatedAt = tr.At
	if tr.AdminNote != "" {
		current.AdminNote = tr.AdminNote
	}
	if tr.To.Terminal() {
		at := tr.At
		current.ResolvedBy = tr.ResolvedBy
		current.ResolvedAt = &at
	}
	return current, previous, nil
}

func (r *requestTx) FindOpenRequest(ctx context.Context, userID string, categories []domain.RequestCategory) (*domain.Request, error) {
	return r.latest(ctx, userID, categories, domain.OpenStatuses)
}

func (r *requestTx) LastClaim(ctx context.Context, userID string, categories []domain.RequestCategory, statuses []domain.RequestStatus) (*domain.Request, error) {
	return r.latest(ctx, userID, categories, statuses)
}

func (r *requestTx) latest(ctx context.Context, userID string, categories []domain.RequestCategory, statuses []domain.RequestStatus) (*domain.Request, error) {
	names := make([]string, 0, len(categories))
	for _, category := range categories {
		names = append(names, string(category))
	}
	var requestModels []models.RequestModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND category IN ? AND status IN ?", userID, names, statusStrings(statuses)).
		Order("created_at DESC").
		Limit(1).
		Find(&requestModels).Error; err != nil {
		return nil, err
	}
	if len(requestModels) == 0 {
		return nil, nil
	}
	return mappers.ToDomainRequest(&requestModels[0]), nil
}

func containsStatus(statuses []domain.RequestStatus, status domain.RequestStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
