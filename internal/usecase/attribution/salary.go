package attribution

import (
	"context"
	"errors"
	"time"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"go.uber.org/zap"
)

// AccrueSalaries начисляет дневную долю оклада всем пользователям с окладом.
// Ключ события включает дату, поэтому повторный запуск за тот же день ничего не меняет.
// Ошибка по одному пользователю не останавливает остальных
func (e *DefaultEngine) AccrueSalaries(ctx context.Context, date time.Time) (int, error) {
	deals, err := e.dealRepo.ListSalaryDeals(ctx)
	if err != nil {
		return 0, err
	}

	accrued := 0
	var errs []error
	for _, deal := range deals {
		if ctx.Err() != nil {
			return accrued, ctx.Err()
		}
		result, err := e.Attribute(ctx, domain.SalaryTick(deal.UserID, date))
		if err != nil {
			e.logger.Error("salary accrual failed",
				zap.String("user_id", deal.UserID),
				zap.Time("date", date),
				zap.Error(err))
			errs = append(errs, err)
			continue
		}
		if !result.Replayed {
			accrued++
		}
	}
	return accrued, errors.Join(errs...)
}
