package request

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	requestdto "github.com/LavaJover/shvark-commission-service/internal/usecase/dto/request"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ResolveAction string

const (
	ActionAccept  ResolveAction = "accept"
	ActionDecline ResolveAction = "decline"
	ActionDefer   ResolveAction = "defer"
)

// settleFunc выполняет движение по леджеру в той же транзакции, что и смена статуса
type settleFunc func(ctx context.Context, tx domain.Tx, req *domain.Request) error

// alwaysAudit=false: повторный defer без заметки не пишет новую запись в журнал
type transitionSpec struct {
	action      ResolveAction
	audit       domain.AuditAction
	to          domain.RequestStatus
	note        string
	settle      settleFunc
	alwaysAudit bool
}

func (uc *DefaultRequestUsecase) Resolve(ctx context.Context, input *requestdto.ResolveRequestInput) (*domain.Request, error) {
	switch ResolveAction(strings.ToLower(input.Action)) {
	case ActionAccept:
		return uc.Accept(ctx, input.RequestID, input.AdminID, input.Note)
	case ActionDecline:
		return uc.Decline(ctx, input.RequestID, input.AdminID, input.Note)
	case ActionDefer:
		return uc.Defer(ctx, input.RequestID, input.AdminID, input.Note)
	default:
		return nil, fmt.Errorf("%w: unknown action %q", domain.ErrInvalidRequest, input.Action)
	}
}

// processTransition - общая часть accept/decline/defer:
// проверка прав, CAS статуса, леджер и журнал в одной транзакции
func (uc *DefaultRequestUsecase) processTransition(ctx context.Context, requestID, adminID string, spec transitionSpec) (*domain.Request, error) {
	current, err := uc.authorize(ctx, requestID, adminID)
	if err != nil {
		uc.recordError(spec.action, err)
		return nil, err
	}

	now := uc.now().UTC()
	var (
		updated  *domain.Request
		previous domain.RequestStatus
		audited  bool
	)
	err = uc.uow.Do(ctx, func(tx domain.Tx) error {
		tr := domain.Transition{
			RequestID: requestID,
			From:      domain.OpenStatuses,
			To:        spec.to,
			AdminNote: spec.note,
			At:        now,
		}
		if spec.to.Terminal() {
			tr.ResolvedBy = adminID
		}
		var txErr error
		updated, previous, txErr = tx.Requests().TransitionRequest(ctx, tr)
		if txErr != nil {
			return txErr
		}
		if spec.settle != nil {
			if err := spec.settle(ctx, tx, updated); err != nil {
				return err
			}
		}
		if spec.alwaysAudit || previous != spec.to || spec.note != "" {
			audited = true
			return tx.Audit().Append(ctx, uc.auditEntry(requestID, spec.audit, adminID, spec.note, previous, spec.to))
		}
		return nil
	})
	if err != nil {
		uc.recordError(spec.action, err)
		return nil, err
	}

	uc.logger.Info("request transitioned",
		zap.String("request_id", updated.ID),
		zap.String("admin_id", adminID),
		zap.String("from", string(previous)),
		zap.String("to", string(updated.Status)),
		zap.Bool("audited", audited))
	if uc.metrics != nil && previous != spec.to {
		uc.metrics.RecordRequestResolved(string(updated.Kind), string(updated.Status),
			updated.Amount.InexactFloat64(), now.Sub(current.CreatedAt).Seconds())
	}
	if audited {
		uc.publish(updated, adminID, spec.note)
	}
	return updated, nil
}

// authorize: решение принимает только администратор и не по своей заявке
func (uc *DefaultRequestUsecase) authorize(ctx context.Context, requestID, adminID string) (*domain.Request, error) {
	admin, err := uc.userRepo.GetUser(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if admin.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins resolve requests", domain.ErrForbidden)
	}
	req, err := uc.requestRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.UserID == adminID {
		return nil, fmt.Errorf("%w: cannot resolve own request", domain.ErrForbidden)
	}
	return req, nil
}

func (uc *DefaultRequestUsecase) auditEntry(requestID string, action domain.AuditAction, actorID, note string, from, to domain.RequestStatus) *domain.AuditEntry {
	return &domain.AuditEntry{
		ID:         uuid.NewString(),
		RequestID:  requestID,
		Action:     action,
		ActorID:    actorID,
		Note:       note,
		FromStatus: from,
		ToStatus:   to,
		At:         uc.now().UTC(),
	}
}

func (uc *DefaultRequestUsecase) publish(req *domain.Request, actorID, note string) {
	if uc.publisher == nil {
		return
	}
	event := domain.RequestEvent{
		RequestID:  req.ID,
		UserID:     req.UserID,
		Kind:       req.Kind,
		Category:   string(req.Category),
		Amount:     req.Amount.StringFixed(2),
		Status:     req.Status,
		ActorID:    actorID,
		Note:       note,
		OccurredAt: time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := uc.publisher.PublishRequestEvent(ctx, event); err != nil {
			uc.logger.Warn("failed to publish request event",
				zap.String("request_id", event.RequestID),
				zap.Error(err))
		}
	}()
}

func (uc *DefaultRequestUsecase) recordError(action ResolveAction, err error) {
	if uc.metrics == nil {
		return
	}
	code := domain.CodeOf(err)
	if code == "" {
		code = "INTERNAL"
	}
	uc.metrics.RecordError(string(action), code)
}
