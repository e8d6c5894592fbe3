package setup

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-commission-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/LavaJover/shvark-commission-service/internal/usecase"
	"github.com/LavaJover/shvark-commission-service/internal/usecase/attribution"
	userdto "github.com/LavaJover/shvark-commission-service/internal/usecase/dto/user"
	"github.com/LavaJover/shvark-commission-service/internal/usecase/graph"
	"github.com/LavaJover/shvark-commission-service/internal/usecase/ledger"
	"github.com/LavaJover/shvark-commission-service/internal/usecase/request"
	"go.uber.org/zap"
)

type UseCases struct {
	UserUsecase    *usecase.DefaultUserUsecase
	GraphStore     *graph.DefaultStore
	Ledger         *ledger.DefaultLedger
	Attribution    *attribution.DefaultEngine
	RequestUsecase *request.DefaultRequestUsecase
}

func InitializeUseCases(deps *Dependencies) (*UseCases, error) {
	repos := deps.Repositories
	cfg := deps.Config

	gate, err := InitializeEligibility(cfg.Eligibility)
	if err != nil {
		return nil, fmt.Errorf("eligibility: %w", err)
	}

	graphStore, err := graph.NewDefaultStore(repos.ShaveRepo, repos.DealRepo, repos.UserRepo, cfg.Graph.CacheSize, deps.Logger.Named("graph"))
	if err != nil {
		return nil, fmt.Errorf("graph store: %w", err)
	}

	commissionLedger := ledger.NewDefaultLedger(repos.LedgerRepo, deps.Metrics, deps.Logger.Named("ledger"))

	engine := attribution.NewDefaultEngine(
		repos.UnitOfWork,
		repos.UserRepo,
		repos.DealRepo,
		graphStore,
		commissionLedger,
		deps.Publisher,
		deps.Metrics,
		deps.Logger.Named("attribution"),
	)

	var attachments domain.AttachmentStore
	if cfg.AttachmentService.BaseURL != "" {
		attachmentHandler, err := handlers.NewHTTPAttachmentHandler(cfg.AttachmentService.BaseURL, cfg.AttachmentService.Timeout)
		if err != nil {
			return nil, fmt.Errorf("attachment handler: %w", err)
		}
		attachments = attachmentHandler
	}

	requestUsecase, err := request.NewDefaultRequestUsecase(
		repos.UnitOfWork,
		repos.RequestRepo,
		repos.AuditRepo,
		repos.UserRepo,
		repos.DealRepo,
		commissionLedger,
		gate,
		attachments,
		deps.Publisher,
		deps.Metrics,
		deps.Logger.Named("requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("request usecase: %w", err)
	}

	userUsecase := usecase.NewDefaultUserUsecase(repos.UserRepo, deps.Logger.Named("users"))
	if err := bootstrapAdmin(context.Background(), userUsecase, cfg.BootstrapAdminID, deps.Logger); err != nil {
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	}

	return &UseCases{
		UserUsecase:    userUsecase,
		GraphStore:     graphStore,
		Ledger:         commissionLedger,
		Attribution:    engine,
		RequestUsecase: requestUsecase,
	}, nil
}

// bootstrapAdmin создает первого администратора, если его еще нет
func bootstrapAdmin(ctx context.Context, users *usecase.DefaultUserUsecase, adminID string, logger *zap.Logger) error {
	if adminID == "" {
		return nil
	}
	_, err := users.GetUser(ctx, adminID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}
	if _, err := users.SaveUser(ctx, &userdto.SaveUserInput{UserID: adminID, Role: string(domain.RoleAdmin)}); err != nil {
		return err
	}
	logger.Info("bootstrap admin created", zap.String("user_id", adminID))
	return nil
}
