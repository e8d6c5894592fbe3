package attribution

import (
	"context"
	"errors"
	"sort"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/shopspring/decimal"
)

// deltaSet накапливает начисления по ключу (user, category)
type deltaSet map[domain.LedgerKey]decimal.Decimal

func (s deltaSet) add(userID string, category domain.LedgerCategory, amount decimal.Decimal) {
	if !amount.IsPositive() {
		return
	}
	key := domain.LedgerKey{UserID: userID, Category: category}
	s[key] = s[key].Add(amount)
}

// list округляет суммы до копеек и отбрасывает нулевые
func (s deltaSet) list() []domain.LedgerDelta {
	deltas := make([]domain.LedgerDelta, 0, len(s))
	for key, amount := range s {
		rounded := domain.RoundMoney(amount)
		if !rounded.IsPositive() {
			continue
		}
		deltas = append(deltas, domain.LedgerDelta{UserID: key.UserID, Category: key.Category, Amount: rounded})
	}
	sort.Slice(deltas, func(i, j int) bool {
		return domain.LedgerKey{UserID: deltas[i].UserID, Category: deltas[i].Category}.
			Less(domain.LedgerKey{UserID: deltas[j].UserID, Category: deltas[j].Category})
	})
	return deltas
}

// Compute считает начисления по событию, ничего не записывая
func (e *DefaultEngine) Compute(ctx context.Context, event domain.RevenueEvent) ([]domain.LedgerDelta, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}
	deal, err := e.dealOf(ctx, event.UserID)
	if err != nil {
		return nil, err
	}

	set := deltaSet{}
	switch event.Type {
	case domain.EventFtdConversion:
		count := event.FtdCount
		if count == 0 {
			count = 1
		}
		base := decimal.Zero
		if deal != nil && deal.CpaEnabled {
			base = deal.CpaAmount.Mul(decimal.NewFromInt(int64(count)))
		}
		set.add(event.UserID, domain.CategoryCpa, base)
		if err := e.shareAlongEdges(ctx, set, event.UserID, base, count); err != nil {
			return nil, err
		}

	case domain.EventRevshareAccrual:
		base := decimal.Zero
		if deal != nil && deal.RevshareEnabled {
			base = domain.Percent(event.Amount, deal.RevsharePercentage)
		}
		set.add(event.UserID, domain.CategoryRevshare, base)
		// фиксированные ребра считаются только от FTD
		if err := e.shareAlongEdges(ctx, set, event.UserID, base, 0); err != nil {
			return nil, err
		}

	case domain.EventSalaryTick:
		if deal != nil {
			set.add(event.UserID, domain.CategorySalary, deal.DailySalary())
		}

	case domain.EventReferralCommission:
		referred, err := e.userRepo.GetUser(ctx, event.UserID)
		if err != nil {
			return nil, err
		}
		if referred.ReferrerID == "" {
			break
		}
		referrerDeal, err := e.dealOf(ctx, referred.ReferrerID)
		if err != nil {
			return nil, err
		}
		if referrerDeal != nil && referrerDeal.ReferralShareEnabled {
			set.add(referred.ReferrerID, domain.CategoryReferralShare,
				domain.Percent(event.Amount, referrerDeal.ReferralSharePercentage))
		}
	}

	return set.list(), nil
}

// shareAlongEdges проходит по ребрам, исходящим из primary. Процент берется от base,
// а не от уже распределенной суммы; посредник и получатель получают каждый полную долю
func (e *DefaultEngine) shareAlongEdges(ctx context.Context, set deltaSet, primary string, base decimal.Decimal, ftdCount int) error {
	edges, err := e.graph.EdgesSourcedFrom(ctx, primary)
	if err != nil {
		return err
	}
	for _, edge := range edges {
		var share decimal.Decimal
		switch edge.CommissionType {
		case domain.CommissionPercentage:
			share = domain.Percent(base, edge.Value)
		case domain.CommissionFixedPerFtd:
			share = edge.Value.Mul(decimal.NewFromInt(int64(ftdCount)))
		}
		for _, beneficiary := range edge.Beneficiaries() {
			set.add(beneficiary, domain.CategoryReferralShare, share)
		}
	}
	return nil
}

func (e *DefaultEngine) dealOf(ctx context.Context, userID string) (*domain.Deal, error) {
	deal, err := e.dealRepo.GetDeal(ctx, userID)
	if errors.Is(err, domain.ErrDealNotFound) {
		return nil, nil
	}
	return deal, err
}
