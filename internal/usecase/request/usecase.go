package request

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/LavaJover/shvark-commission-service/internal/infrastructure/metrics"
	requestdto "github.com/LavaJover/shvark-commission-service/internal/usecase/dto/request"
	"github.com/LavaJover/shvark-commission-service/internal/usecase/eligibility"
	"github.com/LavaJover/shvark-commission-service/internal/usecase/ledger"
	"github.com/jaevor/go-nanoid"
	"go.uber.org/zap"
)

const requestIDLength = 15

type RequestUsecase interface {
	Submit(ctx context.Context, input *requestdto.SubmitRequestInput) (*domain.Request, error)
	CheckEligibility(ctx context.Context, input *requestdto.SubmitRequestInput) error
	Accept(ctx context.Context, requestID, adminID, note string) (*domain.Request, error)
	Decline(ctx context.Context, requestID, adminID, reason string) (*domain.Request, error)
	Defer(ctx context.Context, requestID, adminID, note string) (*domain.Request, error)
	Resolve(ctx context.Context, input *requestdto.ResolveRequestInput) (*domain.Request, error)
	GetRequestByID(ctx context.Context, requestID string) (*domain.Request, error)
	ListRequests(ctx context.Context, input *requestdto.ListRequestsInput) (*requestdto.ListRequestsOutput, error)
	History(ctx context.Context, requestID string) ([]*domain.AuditEntry, error)
}

// DefaultRequestUsecase - единый движок для выплат, компенсаций расходов,
// окладов и наград. Отличия категорий заданы политиками допуска
type DefaultRequestUsecase struct {
	uow         domain.UnitOfWork
	requestRepo domain.RequestRepository
	auditRepo   domain.AuditRepository
	userRepo    domain.UserRepository
	dealRepo    domain.DealRepository
	ledger      ledger.Ledger
	gate        *eligibility.Gate
	attachments domain.AttachmentStore
	publisher   domain.EventPublisher
	metrics     *metrics.CommissionMetrics
	logger      *zap.Logger

	newID func() string
	now   func() time.Time
}

func NewDefaultRequestUsecase(
	uow domain.UnitOfWork,
	requestRepo domain.RequestRepository,
	auditRepo domain.AuditRepository,
	userRepo domain.UserRepository,
	dealRepo domain.DealRepository,
	ledger ledger.Ledger,
	gate *eligibility.Gate,
	attachments domain.AttachmentStore,
	publisher domain.EventPublisher,
	m *metrics.CommissionMetrics,
	logger *zap.Logger,
) (*DefaultRequestUsecase, error) {
	idGenerator, err := nanoid.Standard(requestIDLength)
	if err != nil {
		return nil, err
	}
	return &DefaultRequestUsecase{
		uow:         uow,
		requestRepo: requestRepo,
		auditRepo:   auditRepo,
		userRepo:    userRepo,
		dealRepo:    dealRepo,
		ledger:      ledger,
		gate:        gate,
		attachments: attachments,
		publisher:   publisher,
		metrics:     m,
		logger:      logger,
		newID:       idGenerator,
		now:         time.Now,
	}, nil
}

// SetClock подменяет источник времени (окна подачи зависят от даты)
func (uc *DefaultRequestUsecase) SetClock(now func() time.Time) {
	uc.now = now
}
