package request

import (
	"context"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
)

// Accept: для выплат резерв списывается в paid, для компенсаций и наград
// сумма начисляется в соответствующую категорию леджера
func (uc *DefaultRequestUsecase) Accept(ctx context.Context, requestID, adminID, note string) (*domain.Request, error) {
	return uc.processTransition(ctx, requestID, adminID, transitionSpec{
		action:      ActionAccept,
		audit:       domain.AuditAccept,
		to:          domain.StatusAccepted,
		note:        note,
		alwaysAudit: true,
		settle: func(ctx context.Context, tx domain.Tx, req *domain.Request) error {
			key := domain.LedgerKey{UserID: req.UserID, Category: req.LedgerCategory}
			if req.Funded {
				return uc.ledger.SettlePayout(ctx, tx, key, req.Amount)
			}
			return uc.ledger.Credit(ctx, tx, key, req.Amount)
		},
	})
}
