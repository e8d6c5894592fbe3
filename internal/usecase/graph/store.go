package graph

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	shavedto "github.com/LavaJover/shvark-commission-service/internal/usecase/dto/shave"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const defaultCacheSize = 4096

type Store interface {
	AddEdge(ctx context.Context, input *shavedto.AddEdgeInput) (string, error)
	RemoveEdge(ctx context.Context, edgeID string) error
	EdgesSourcedFrom(ctx context.Context, userID string) ([]*domain.ShaveEdge, error)
	EdgesTargeting(ctx context.Context, userID string) ([]*domain.ShaveEdge, error)
	Reachable(ctx context.Context, from, to string) (bool, error)
	GetDeal(ctx context.Context, userID string) (*domain.Deal, error)
	UpsertDeal(ctx context.Context, input *shavedto.UpsertDealInput) (*domain.Deal, error)
	Refresh(ctx context.Context) error
}

// DefaultStore держит индекс ребер в памяти. Граф читается на каждом событии выручки
// и меняется редко; любая запись перезагружает индекс и сбрасывает кэш достижимости
type DefaultStore struct {
	shaveRepo domain.ShaveRepository
	dealRepo  domain.DealRepository
	userRepo  domain.UserRepository
	logger    *zap.Logger

	mu    sync.RWMutex
	index *Index
	reach *lru.Cache[string, bool]
	now   func() time.Time
}

func NewDefaultStore(
	shaveRepo domain.ShaveRepository,
	dealRepo domain.DealRepository,
	userRepo domain.UserRepository,
	cacheSize int,
	logger *zap.Logger,
) (*DefaultStore, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	reach, err := lru.New[string, bool](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("init reachability cache: %w", err)
	}
	return &DefaultStore{
		shaveRepo: shaveRepo,
		dealRepo:  dealRepo,
		userRepo:  userRepo,
		logger:    logger,
		reach:     reach,
		now:       time.Now,
	}, nil
}

func (s *DefaultStore) AddEdge(ctx context.Context, input *shavedto.AddEdgeInput) (string, error) {
	edge := &domain.ShaveEdge{
		ID:             uuid.NewString(),
		SourceID:       input.SourceID,
		TargetID:       input.TargetID,
		IntermediaryID: input.IntermediaryID,
		CommissionType: domain.CommissionType(input.CommissionType),
		Value:          input.Value,
		CreatedBy:      input.CreatedBy,
		CreatedAt:      s.now().UTC(),
	}
	if err := edge.Validate(); err != nil {
		return "", err
	}
	for _, userID := range append([]string{edge.SourceID}, edge.Beneficiaries()...) {
		if _, err := s.userRepo.GetUser(ctx, userID); err != nil {
			return "", err
		}
	}

	// Проверка на цикл выполняется под блокировкой записи в репозитории,
	// по актуальному набору ребер, а не по локальному кэшу
	err := s.shaveRepo.CreateEdgeChecked(ctx, edge, func(existing []*domain.ShaveEdge) error {
		return DetectCycle(existing, edge)
	})
	if err != nil {
		if errors.Is(err, domain.ErrCycleDetected) {
			s.logger.Warn("shave edge rejected: cycle",
				zap.String("source", edge.SourceID),
				zap.String("target", edge.TargetID),
				zap.String("intermediary", edge.IntermediaryID))
		}
		return "", err
	}

	s.invalidate(ctx)
	s.logger.Info("shave edge created", zap.String("edge_id", edge.ID), zap.String("source", edge.SourceID))
	return edge.ID, nil
}

func (s *DefaultStore) RemoveEdge(ctx context.Context, edgeID string) error {
	if err := s.shaveRepo.DeleteEdge(ctx, edgeID); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.logger.Info("shave edge removed", zap.String("edge_id", edgeID))
	return nil
}

func (s *DefaultStore) EdgesSourcedFrom(ctx context.Context, userID string) ([]*domain.ShaveEdge, error) {
	ix, err := s.loadedIndex(ctx)
	if err != nil {
		return nil, err
	}
	return ix.SourcedFrom(userID), nil
}

func (s *DefaultStore) EdgesTargeting(ctx context.Context, userID string) ([]*domain.ShaveEdge, error) {
	ix, err := s.loadedIndex(ctx)
	if err != nil {
		return nil, err
	}
	return ix.Targeting(userID), nil
}

func (s *DefaultStore) Reachable(ctx context.Context, from, to string) (bool, error) {
	ix, err := s.loadedIndex(ctx)
	if err != nil {
		return false, err
	}
	key := from + "->" + to
	if ok, hit := s.reach.Get(key); hit {
		return ok, nil
	}
	ok := ix.Reachable(from, to)
	s.reach.Add(key, ok)
	return ok, nil
}

// Refresh перечитывает ребра из репозитория (изменения с других инстансов)
func (s *DefaultStore) Refresh(ctx context.Context) error {
	edges, err := s.shaveRepo.ListEdges(ctx)
	if err != nil {
		return fmt.Errorf("list shave edges: %w", err)
	}
	ix := NewIndex(edges)
	s.mu.Lock()
	s.index = ix
	s.reach.Purge()
	s.mu.Unlock()
	return nil
}

func (s *DefaultStore) loadedIndex(ctx context.Context) (*Index, error) {
	s.mu.RLock()
	ix := s.index
	s.mu.RUnlock()
	if ix != nil {
		return ix, nil
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index, nil
}

func (s *DefaultStore) invalidate(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		// индекс сбрасывается и будет загружен при следующем чтении
		s.logger.Error("failed to reload shave index", zap.Error(err))
		s.mu.Lock()
		s.index = nil
		s.reach.Purge()
		s.mu.Unlock()
	}
}
