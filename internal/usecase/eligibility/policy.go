package eligibility

import (
	"fmt"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
)

// WindowSpec - параметры правила окна подачи. Какие поля значимы, решает правило
type WindowSpec struct {
	Rule       string `yaml:"rule" json:"rule"`
	DayOfMonth int    `yaml:"day_of_month" json:"day_of_month,omitempty"`
	Weekday    string `yaml:"weekday" json:"weekday,omitempty"`
	// Days - длина окна; 0 означает частоту оклада из сделки пользователя
	Days int `yaml:"days" json:"days,omitempty"`
}

// Policy - правила допуска для одной категории заявок
type Policy struct {
	Category       domain.RequestCategory
	Kind           domain.RequestKind
	Subtype        domain.PayoutSubtype
	LedgerCategory domain.LedgerCategory
	// Funded - заявка выплачивается из уже начисленного баланса и резервирует его
	Funded bool
	Roles  []domain.Role
	Window WindowSpec
	// ClaimGroup объединяет категории с общим окном и общей проверкой дубля.
	// Пустая группа - категория сама по себе
	ClaimGroup string
}

func (p *Policy) AllowsRole(role domain.Role) bool {
	for _, allowed := range p.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

func (p *Policy) validate(registry *Registry) error {
	if p.Category != domain.CategoryFor(p.Kind, p.Subtype) {
		return fmt.Errorf("policy %q does not match kind %q / subtype %q", p.Category, p.Kind, p.Subtype)
	}
	if !p.LedgerCategory.Valid() {
		return fmt.Errorf("policy %q: unknown ledger category %q", p.Category, p.LedgerCategory)
	}
	if p.ClaimGroup != "" && !p.Funded {
		return fmt.Errorf("policy %q: claim group %q requires a funded policy", p.Category, p.ClaimGroup)
	}
	if len(p.Roles) == 0 {
		return fmt.Errorf("policy %q: no roles", p.Category)
	}
	rule, ok := registry.Rule(p.Window.Rule)
	if !ok {
		return fmt.Errorf("policy %q: unknown window rule %q", p.Category, p.Window.Rule)
	}
	return rule.ValidateSpec(p.Window)
}

func payout(subtype domain.PayoutSubtype, category domain.LedgerCategory, window WindowSpec, roles ...domain.Role) Policy {
	return Policy{
		Category:       domain.CategoryFor(domain.KindPayout, subtype),
		Kind:           domain.KindPayout,
		Subtype:        subtype,
		LedgerCategory: category,
		Funded:         true,
		Roles:          roles,
		Window:         window,
	}
}

// ClaimGroupSalary - оклад запрашивается либо заявкой salary, либо выплатой payout:salary,
// но не чаще одного раза за период
const ClaimGroupSalary = "salary"

// DefaultPolicies - окна подачи, действующие без внешней конфигурации
func DefaultPolicies() []Policy {
	always := WindowSpec{Rule: RuleAlways}
	salaryWindow := WindowSpec{Rule: RuleEveryNDays}
	salaryPayout := payout(domain.SubtypeSalary, domain.CategorySalary, salaryWindow, domain.RoleAffiliate, domain.RoleManager)
	salaryPayout.ClaimGroup = ClaimGroupSalary

	return []Policy{
		payout(domain.SubtypeCpa, domain.CategoryCpa, always, domain.RoleAffiliate),
		payout(domain.SubtypeRevshare, domain.CategoryRevshare,
			WindowSpec{Rule: RuleDayOfMonth, DayOfMonth: 1}, domain.RoleAffiliate),
		payout(domain.SubtypeFtdReferral, domain.CategoryReferralShare,
			WindowSpec{Rule: RuleWeekday, Weekday: "wednesday"}, domain.RoleAffiliate, domain.RoleManager),
		salaryPayout,
		payout(domain.SubtypeExpense, domain.CategoryExpense, always, domain.RoleManager, domain.RoleAdmin),
		payout(domain.SubtypeReward, domain.CategoryReward, always, domain.RoleAffiliate),
		{
			Category:       domain.CategoryFor(domain.KindSalary, ""),
			Kind:           domain.KindSalary,
			LedgerCategory: domain.CategorySalary,
			Funded:         true,
			Roles:          []domain.Role{domain.RoleManager},
			Window:         salaryWindow,
			ClaimGroup:     ClaimGroupSalary,
		},
		{
			Category:       domain.CategoryFor(domain.KindExpense, ""),
			Kind:           domain.KindExpense,
			LedgerCategory: domain.CategoryExpense,
			Roles:          []domain.Role{domain.RoleManager, domain.RoleAdmin},
			Window:         always,
		},
		{
			Category:       domain.CategoryFor(domain.KindReward, ""),
			Kind:           domain.KindReward,
			LedgerCategory: domain.CategoryReward,
			Roles:          []domain.Role{domain.RoleAffiliate},
			Window:         always,
		},
	}
}

// Override - частичная замена встроенной политики из конфигурации.
// Пустые поля оставляют значение по умолчанию
type Override struct {
	Category domain.RequestCategory
	Roles    []domain.Role
	Window   *WindowSpec
}

func ApplyOverrides(policies []Policy, overrides []Override) ([]Policy, error) {
	result := make([]Policy, len(policies))
	copy(result, policies)

	for _, o := range overrides {
		idx := -1
		for i := range result {
			if result[i].Category == o.Category {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("%w: override for %q", domain.ErrUnknownCategory, o.Category)
		}
		if len(o.Roles) > 0 {
			for _, role := range o.Roles {
				if !role.Valid() {
					return nil, fmt.Errorf("policy %q: unknown role %q", o.Category, role)
				}
			}
			result[idx].Roles = append([]domain.Role(nil), o.Roles...)
		}
		if o.Window != nil {
			result[idx].Window = *o.Window
		}
	}
	return result, nil
}
