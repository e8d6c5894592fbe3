package eligibility

import (
	"fmt"
	"time"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/shopspring/decimal"
)

// Snapshot - состояние, на котором принимается решение о допуске.
// Собирается движком заявок внутри транзакции
type Snapshot struct {
	Role        domain.Role
	Deal        *domain.Deal
	OpenRequest *domain.Request
	LastClaim   *domain.Request
	Available   decimal.Decimal
}

type Gate struct {
	registry *Registry
	policies map[domain.RequestCategory]*Policy
	groups   map[string][]domain.RequestCategory
	location *time.Location
}

func NewGate(registry *Registry, policies []Policy, location *time.Location) (*Gate, error) {
	if location == nil {
		location = time.UTC
	}
	g := &Gate{
		registry: registry,
		policies: make(map[domain.RequestCategory]*Policy, len(policies)),
		groups:   make(map[string][]domain.RequestCategory),
		location: location,
	}
	for i := range policies {
		policy := policies[i]
		if err := policy.validate(registry); err != nil {
			return nil, err
		}
		if _, dup := g.policies[policy.Category]; dup {
			return nil, fmt.Errorf("duplicate policy for %q", policy.Category)
		}
		g.policies[policy.Category] = &policy
		if policy.ClaimGroup != "" {
			g.groups[policy.ClaimGroup] = append(g.groups[policy.ClaimGroup], policy.Category)
		}
	}
	for group, categories := range g.groups {
		ledgerCategory := g.policies[categories[0]].LedgerCategory
		for _, category := range categories[1:] {
			if g.policies[category].LedgerCategory != ledgerCategory {
				return nil, fmt.Errorf("claim group %q mixes ledger categories", group)
			}
		}
	}
	return g, nil
}

// ClaimCategories - категории, заявки которых учитываются при проверке дубля и окна
func (g *Gate) ClaimCategories(policy *Policy) []domain.RequestCategory {
	if policy.ClaimGroup == "" {
		return []domain.RequestCategory{policy.Category}
	}
	return g.groups[policy.ClaimGroup]
}

func (g *Gate) Policy(category domain.RequestCategory) (*Policy, error) {
	policy, ok := g.policies[category]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCategory, category)
	}
	return policy, nil
}

// CanSubmit - чистая функция допуска. Порядок проверок:
// роль, сумма, дубль, окно, баланс
func (g *Gate) CanSubmit(policy *Policy, snap Snapshot, amount decimal.Decimal, now time.Time) error {
	if !policy.AllowsRole(snap.Role) {
		return fmt.Errorf("%w: %s for %s", domain.ErrCategoryNotAllowed, policy.Category, snap.Role)
	}
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if snap.OpenRequest != nil {
		return fmt.Errorf("%w: request %s is %s", domain.ErrDuplicatePending, snap.OpenRequest.ID, snap.OpenRequest.Status)
	}

	rule, ok := g.registry.Rule(policy.Window.Rule)
	if !ok {
		return fmt.Errorf("%w: window rule %q is not registered", domain.ErrUnknownCategory, policy.Window.Rule)
	}
	in := WindowInput{
		Now:       now.In(g.location),
		Deal:      snap.Deal,
		LastClaim: snap.LastClaim,
	}
	if err := rule.Allows(in, policy.Window); err != nil {
		return err
	}

	if policy.Funded && amount.GreaterThan(snap.Available) {
		return fmt.Errorf("%w: requested %s, available %s", domain.ErrBalanceExceeded, amount, snap.Available)
	}
	return nil
}
