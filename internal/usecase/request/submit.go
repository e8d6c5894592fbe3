package request

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	requestdto "github.com/LavaJover/shvark-commission-service/internal/usecase/dto/request"
	"github.com/LavaJover/shvark-commission-service/internal/usecase/eligibility"
	"go.uber.org/zap"
)

// Заявка создается в статусе pending. Для выплат сумма сразу резервируется,
// чтобы две пересекающиеся заявки не превысили баланс
func (uc *DefaultRequestUsecase) Submit(ctx context.Context, input *requestdto.SubmitRequestInput) (*domain.Request, error) {
	req, policy, snapBase, err := uc.prepare(ctx, input)
	if err != nil {
		return nil, err
	}

	if input.AttachmentFileID != "" && uc.attachments != nil {
		ref, err := uc.attachments.Reference(ctx, input.AttachmentFileID)
		if err != nil {
			return nil, fmt.Errorf("resolve attachment: %w", err)
		}
		req.AttachmentRef = ref.Ref
	}

	err = uc.uow.Do(ctx, func(tx domain.Tx) error {
		if err := uc.checkInTx(ctx, tx, policy, snapBase, req); err != nil {
			return err
		}
		if policy.Funded {
			key := domain.LedgerKey{UserID: req.UserID, Category: req.LedgerCategory}
			if err := uc.ledger.ReserveForPayout(ctx, tx, key, req.Amount); err != nil {
				return err
			}
		}
		if err := tx.Requests().CreateRequest(ctx, req); err != nil {
			return err
		}
		return tx.Audit().Append(ctx, uc.auditEntry(req.ID, domain.AuditSubmit, req.UserID, req.Note, "", domain.StatusPending))
	})
	if err != nil {
		uc.recordRejection(policy, err)
		return nil, err
	}

	uc.logger.Info("request submitted",
		zap.String("request_id", req.ID),
		zap.String("user_id", req.UserID),
		zap.String("category", string(req.Category)),
		zap.String("amount", req.Amount.String()))
	if uc.metrics != nil {
		uc.metrics.RecordRequestSubmitted(string(req.Kind), string(req.Category), req.Amount.InexactFloat64())
	}
	uc.publish(req, req.UserID, req.Note)
	return req, nil
}

// CheckEligibility - та же проверка, что и при подаче, без записи
func (uc *DefaultRequestUsecase) CheckEligibility(ctx context.Context, input *requestdto.SubmitRequestInput) error {
	req, policy, snapBase, err := uc.prepare(ctx, input)
	if err != nil {
		return err
	}
	errDryRun := errors.New("dry run")
	err = uc.uow.Do(ctx, func(tx domain.Tx) error {
		if err := uc.checkInTx(ctx, tx, policy, snapBase, req); err != nil {
			return err
		}
		// откатываем транзакцию: строка леджера могла быть создана при блокировке
		return errDryRun
	})
	if errors.Is(err, errDryRun) {
		return nil
	}
	return err
}

func (uc *DefaultRequestUsecase) prepare(ctx context.Context, input *requestdto.SubmitRequestInput) (*domain.Request, *eligibility.Policy, eligibility.Snapshot, error) {
	var snap eligibility.Snapshot

	kind := domain.RequestKind(input.Kind)
	subtype := domain.PayoutSubtype(input.Subtype)
	switch kind {
	case domain.KindPayout:
		if subtype == "" {
			return nil, nil, snap, fmt.Errorf("%w: payout subtype is required", domain.ErrInvalidRequest)
		}
		if strings.TrimSpace(input.WalletAddress) == "" || input.CryptoType == "" {
			return nil, nil, snap, fmt.Errorf("%w: payout destination is required", domain.ErrInvalidRequest)
		}
	case domain.KindExpense, domain.KindSalary, domain.KindReward:
		if subtype != "" {
			return nil, nil, snap, fmt.Errorf("%w: only payouts carry a subtype", domain.ErrInvalidRequest)
		}
	default:
		return nil, nil, snap, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidRequest, input.Kind)
	}

	policy, err := uc.gate.Policy(domain.CategoryFor(kind, subtype))
	if err != nil {
		return nil, nil, snap, err
	}
	user, err := uc.userRepo.GetUser(ctx, input.UserID)
	if err != nil {
		return nil, nil, snap, err
	}
	deal, err := uc.dealRepo.GetDeal(ctx, user.ID)
	if err != nil && !errors.Is(err, domain.ErrDealNotFound) {
		return nil, nil, snap, err
	}
	snap.Role = user.Role
	snap.Deal = deal

	now := uc.now().UTC()
	req := &domain.Request{
		ID:             uc.newID(),
		UserID:         user.ID,
		Kind:           kind,
		Subtype:        subtype,
		Category:       policy.Category,
		LedgerCategory: policy.LedgerCategory,
		Funded:         policy.Funded,
		Amount:         domain.RoundMoney(input.Amount),
		Destination: domain.PayoutDestination{
			CryptoType:    input.CryptoType,
			Network:       input.Network,
			WalletAddress: strings.TrimSpace(input.WalletAddress),
		},
		Note:      input.Note,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return req, policy, snap, nil
}

// checkInTx собирает снимок под блокировкой строки леджера и прогоняет его через Gate
func (uc *DefaultRequestUsecase) checkInTx(ctx context.Context, tx domain.Tx, policy *eligibility.Policy, snap eligibility.Snapshot, req *domain.Request) error {
	if policy.Funded {
		available, err := uc.ledger.Available(ctx, tx, domain.LedgerKey{UserID: req.UserID, Category: req.LedgerCategory})
		if err != nil {
			return err
		}
		snap.Available = available
	}
	categories := uc.gate.ClaimCategories(policy)
	open, err := tx.Requests().FindOpenRequest(ctx, req.UserID, categories)
	if err != nil {
		return err
	}
	snap.OpenRequest = open
	last, err := tx.Requests().LastClaim(ctx, req.UserID, categories,
		[]domain.RequestStatus{domain.StatusPending, domain.StatusDeferred, domain.StatusAccepted})
	if err != nil {
		return err
	}
	snap.LastClaim = last
	return uc.gate.CanSubmit(policy, snap, req.Amount, req.CreatedAt)
}

func (uc *DefaultRequestUsecase) recordRejection(policy *eligibility.Policy, err error) {
	if uc.metrics == nil {
		return
	}
	code := domain.CodeOf(err)
	if domain.KindOf(err) == domain.KindValidation {
		uc.metrics.RecordEligibilityRejected(string(policy.Category), code)
		return
	}
	uc.metrics.RecordError("submit", code)
}
