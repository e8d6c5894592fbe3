package request

import (
	"context"
	"strings"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
)

// Defer оставляет заявку открытой, резерв сохраняется. Повторный вызов допустим
func (uc *DefaultRequestUsecase) Defer(ctx context.Context, requestID, adminID, note string) (*domain.Request, error) {
	return uc.processTransition(ctx, requestID, adminID, transitionSpec{
		action: ActionDefer,
		audit:  domain.AuditDefer,
		to:     domain.StatusDeferred,
		note:   strings.TrimSpace(note),
	})
}
