package request

import (
	"context"
	"strings"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
)

func (uc *DefaultRequestUsecase) Decline(ctx context.Context, requestID, adminID, reason string) (*domain.Request, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		uc.recordError(ActionDecline, domain.ErrReasonRequired)
		return nil, domain.ErrReasonRequired
	}
	return uc.processTransition(ctx, requestID, adminID, transitionSpec{
		action:      ActionDecline,
		audit:       domain.AuditDecline,
		to:          domain.StatusDeclined,
		note:        reason,
		alwaysAudit: true,
		settle: func(ctx context.Context, tx domain.Tx, req *domain.Request) error {
			if !req.Funded {
				return nil
			}
			// резерв возвращается в доступный остаток
			return uc.ledger.ReleaseReservation(ctx, tx,
				domain.LedgerKey{UserID: req.UserID, Category: req.LedgerCategory}, req.Amount)
		},
	})
}
