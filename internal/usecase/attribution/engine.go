package attribution

import (
	"context"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/LavaJover/shvark-commission-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-commission-service/internal/usecase/ledger"
	"go.uber.org/zap"
)

// EdgeSource - чтение графа шейвов
type EdgeSource interface {
	EdgesSourcedFrom(ctx context.Context, userID string) ([]*domain.ShaveEdge, error)
}

type Result struct {
	Deltas   []domain.LedgerDelta
	Replayed bool
}

type Engine interface {
	Compute(ctx context.Context, event domain.RevenueEvent) ([]domain.LedgerDelta, error)
	Attribute(ctx context.Context, event domain.RevenueEvent) (*Result, error)
}

type DefaultEngine struct {
	uow       domain.UnitOfWork
	userRepo  domain.UserRepository
	dealRepo  domain.DealRepository
	graph     EdgeSource
	ledger    ledger.Ledger
	publisher domain.EventPublisher
	metrics   *metrics.CommissionMetrics
	logger    *zap.Logger
}

func NewDefaultEngine(
	uow domain.UnitOfWork,
	userRepo domain.UserRepository,
	dealRepo domain.DealRepository,
	graph EdgeSource,
	ledger ledger.Ledger,
	publisher domain.EventPublisher,
	m *metrics.CommissionMetrics,
	logger *zap.Logger,
) *DefaultEngine {
	return &DefaultEngine{
		uow:       uow,
		userRepo:  userRepo,
		dealRepo:  dealRepo,
		graph:     graph,
		ledger:    ledger,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// Attribute считает и проводит начисления. Отметка о событии и начисления
// пишутся в одной транзакции, поэтому повтор того же ключа ничего не начисляет.
// Повтор отвечает сохраненными дельтами, не пересчитывая событие
func (e *DefaultEngine) Attribute(ctx context.Context, event domain.RevenueEvent) (*Result, error) {
	key := event.Key()
	if key == "" {
		return nil, fmt.Errorf("%w: idempotency key is required", domain.ErrInvalidEvent)
	}

	result := &Result{}
	err := e.uow.Do(ctx, func(tx domain.Tx) error {
		stored, found, err := tx.Events().Processed(ctx, key)
		if err != nil {
			return fmt.Errorf("lookup processed event: %w", err)
		}
		result.Deltas, result.Replayed = stored, found
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.Replayed {
		return e.finish(key, event, result), nil
	}

	deltas, err := e.Compute(ctx, event)
	if err != nil {
		return nil, err
	}

	err = e.uow.Do(ctx, func(tx domain.Tx) error {
		stored, replayed, err := tx.Events().MarkProcessed(ctx, key, event.Type, deltas)
		if err != nil {
			return fmt.Errorf("mark event processed: %w", err)
		}
		if replayed {
			result.Deltas = stored
			result.Replayed = true
			return nil
		}
		result.Deltas = deltas
		return e.ledger.CreditAll(ctx, tx, deltas)
	})
	if err != nil {
		if e.metrics != nil {
			e.metrics.RecordError("attribute", domain.CodeOf(err))
		}
		return nil, err
	}
	return e.finish(key, event, result), nil
}

func (e *DefaultEngine) finish(key string, event domain.RevenueEvent, result *Result) *Result {
	if e.metrics != nil {
		e.metrics.RecordRevenueEvent(string(event.Type), result.Replayed)
	}
	if result.Replayed {
		e.logger.Info("revenue event replay ignored", zap.String("key", key), zap.String("type", string(event.Type)))
		return result
	}

	e.logger.Info("revenue event attributed",
		zap.String("key", key),
		zap.String("type", string(event.Type)),
		zap.String("user_id", event.UserID),
		zap.Int("deltas", len(result.Deltas)))
	e.publish(key, event, result.Deltas)
	return result
}

func (e *DefaultEngine) publish(key string, event domain.RevenueEvent, deltas []domain.LedgerDelta) {
	if e.publisher == nil || len(deltas) == 0 {
		return
	}
	go func(ev domain.AttributionEvent) {
		if err := e.publisher.PublishAttributionEvent(context.Background(), ev); err != nil {
			e.logger.Error("failed to publish attribution event", zap.String("key", ev.IdempotencyKey), zap.Error(err))
		}
	}(domain.AttributionEvent{
		IdempotencyKey: key,
		Type:           event.Type,
		UserID:         event.UserID,
		Deltas:         deltas,
		OccurredAt:     time.Now().UTC(),
	})
}
