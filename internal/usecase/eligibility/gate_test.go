package eligibility

import (
	"testing"
	"time"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	firstOfMonth = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC) // четверг
	wednesday    = time.Date(2025, 5, 7, 12, 0, 0, 0, time.UTC)
	tuesday      = time.Date(2025, 5, 6, 12, 0, 0, 0, time.UTC)
)

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	gate, err := NewGate(NewRegistry(), DefaultPolicies(), time.UTC)
	require.NoError(t, err)
	return gate
}

func policyFor(t *testing.T, g *Gate, kind domain.RequestKind, subtype domain.PayoutSubtype) *Policy {
	t.Helper()
	policy, err := g.Policy(domain.CategoryFor(kind, subtype))
	require.NoError(t, err)
	return policy
}

func TestCanSubmit_RevshareOnlyOnFirstOfMonth(t *testing.T) {
	g := newTestGate(t)
	policy := policyFor(t, g, domain.KindPayout, domain.SubtypeRevshare)
	snap := Snapshot{Role: domain.RoleAffiliate, Available: decimal.NewFromInt(100)}

	assert.NoError(t, g.CanSubmit(policy, snap, decimal.NewFromInt(50), firstOfMonth))
	assert.ErrorIs(t, g.CanSubmit(policy, snap, decimal.NewFromInt(50), wednesday), domain.ErrWindowClosed)
}

func TestCanSubmit_ReferralOnlyOnWednesday(t *testing.T) {
	g := newTestGate(t)
	policy := policyFor(t, g, domain.KindPayout, domain.SubtypeFtdReferral)
	snap := Snapshot{Role: domain.RoleManager, Available: decimal.NewFromInt(100)}

	assert.NoError(t, g.CanSubmit(policy, snap, decimal.NewFromInt(10), wednesday))
	assert.ErrorIs(t, g.CanSubmit(policy, snap, decimal.NewFromInt(10), tuesday), domain.ErrWindowClosed)
}

func TestCanSubmit_WindowUsesConfiguredLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	g, err := NewGate(NewRegistry(), DefaultPolicies(), loc)
	require.NoError(t, err)
	policy := policyFor(t, g, domain.KindPayout, domain.SubtypeRevshare)
	snap := Snapshot{Role: domain.RoleAffiliate, Available: decimal.NewFromInt(100)}

	// 30 апреля 20:00 UTC - уже 1 мая в UTC+5
	at := time.Date(2025, 4, 30, 20, 0, 0, 0, time.UTC)
	assert.NoError(t, g.CanSubmit(policy, snap, decimal.NewFromInt(1), at))
}

func TestCanSubmit_SalaryFrequency(t *testing.T) {
	g := newTestGate(t)
	policy := policyFor(t, g, domain.KindSalary, "")
	deal := &domain.Deal{SalaryEnabled: true, SalaryAmount: decimal.NewFromInt(3000), SalaryFrequencyDays: 14}
	last := &domain.Request{ID: "prev", CreatedAt: firstOfMonth, Status: domain.StatusAccepted}
	snap := Snapshot{Role: domain.RoleManager, Deal: deal, LastClaim: last, Available: decimal.NewFromInt(500)}

	assert.ErrorIs(t, g.CanSubmit(policy, snap, decimal.NewFromInt(100), firstOfMonth.AddDate(0, 0, 13)), domain.ErrWindowClosed)
	assert.NoError(t, g.CanSubmit(policy, snap, decimal.NewFromInt(100), firstOfMonth.AddDate(0, 0, 14)))

	snap.LastClaim = nil
	assert.NoError(t, g.CanSubmit(policy, snap, decimal.NewFromInt(100), firstOfMonth))

	snap.Deal = nil
	assert.ErrorIs(t, g.CanSubmit(policy, snap, decimal.NewFromInt(100), firstOfMonth), domain.ErrWindowClosed)
}

func TestCanSubmit_DuplicateReportedBeforeWindow(t *testing.T) {
	g := newTestGate(t)
	policy := policyFor(t, g, domain.KindPayout, domain.SubtypeRevshare)
	snap := Snapshot{
		Role:        domain.RoleAffiliate,
		OpenRequest: &domain.Request{ID: "open", Status: domain.StatusDeferred},
		Available:   decimal.NewFromInt(100),
	}

	assert.ErrorIs(t, g.CanSubmit(policy, snap, decimal.NewFromInt(10), tuesday), domain.ErrDuplicatePending)
}

func TestCanSubmit_BalanceAndAmount(t *testing.T) {
	g := newTestGate(t)
	policy := policyFor(t, g, domain.KindPayout, domain.SubtypeCpa)
	snap := Snapshot{Role: domain.RoleAffiliate, Available: decimal.NewFromInt(100)}

	assert.NoError(t, g.CanSubmit(policy, snap, decimal.NewFromInt(100), tuesday))
	assert.ErrorIs(t, g.CanSubmit(policy, snap, decimal.RequireFromString("100.01"), tuesday), domain.ErrBalanceExceeded)
	assert.ErrorIs(t, g.CanSubmit(policy, snap, decimal.Zero, tuesday), domain.ErrInvalidAmount)

	// компенсации не ограничены балансом
	expense := policyFor(t, g, domain.KindExpense, "")
	assert.NoError(t, g.CanSubmit(expense, Snapshot{Role: domain.RoleManager}, decimal.NewFromInt(1000), tuesday))
}

func TestCanSubmit_RoleNotAllowed(t *testing.T) {
	g := newTestGate(t)
	policy := policyFor(t, g, domain.KindSalary, "")
	snap := Snapshot{Role: domain.RoleAffiliate, Available: decimal.NewFromInt(100)}

	assert.ErrorIs(t, g.CanSubmit(policy, snap, decimal.NewFromInt(10), tuesday), domain.ErrCategoryNotAllowed)
}

func TestPolicy_UnknownCategory(t *testing.T) {
	g := newTestGate(t)
	_, err := g.Policy("payout:bonus")
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)
}

func TestApplyOverrides(t *testing.T) {
	policies, err := ApplyOverrides(DefaultPolicies(), []Override{{
		Category: domain.CategoryFor(domain.KindPayout, domain.SubtypeRevshare),
		Roles:    []domain.Role{domain.RoleAffiliate, domain.RoleManager},
		Window:   &WindowSpec{Rule: RuleDayOfMonth, DayOfMonth: 15},
	}})
	require.NoError(t, err)

	g, err := NewGate(NewRegistry(), policies, time.UTC)
	require.NoError(t, err)
	policy := policyFor(t, g, domain.KindPayout, domain.SubtypeRevshare)
	assert.True(t, policy.AllowsRole(domain.RoleManager))

	snap := Snapshot{Role: domain.RoleManager, Available: decimal.NewFromInt(10)}
	assert.ErrorIs(t, g.CanSubmit(policy, snap, decimal.NewFromInt(1), firstOfMonth), domain.ErrWindowClosed)
	assert.NoError(t, g.CanSubmit(policy, snap, decimal.NewFromInt(1), firstOfMonth.AddDate(0, 0, 14)))

	// встроенные политики не меняются
	defaults := newTestGate(t)
	assert.False(t, policyFor(t, defaults, domain.KindPayout, domain.SubtypeRevshare).AllowsRole(domain.RoleManager))

	_, err = ApplyOverrides(DefaultPolicies(), []Override{{Category: "payout:bonus"}})
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)

	_, err = ApplyOverrides(DefaultPolicies(), []Override{{
		Category: domain.CategoryFor(domain.KindExpense, ""),
		Roles:    []domain.Role{"owner"},
	}})
	assert.Error(t, err)
}

func TestNewGate_RejectsInvalidWindow(t *testing.T) {
	policies, err := ApplyOverrides(DefaultPolicies(), []Override{{
		Category: domain.CategoryFor(domain.KindReward, ""),
		Window:   &WindowSpec{Rule: RuleWeekday, Weekday: "someday"},
	}})
	require.NoError(t, err)

	_, err = NewGate(NewRegistry(), policies, time.UTC)
	assert.Error(t, err)
}

type alwaysClosed struct{}

func (alwaysClosed) Name() string                  { return "closed" }
func (alwaysClosed) ValidateSpec(WindowSpec) error { return nil }
func (alwaysClosed) Allows(WindowInput, WindowSpec) error {
	return domain.ErrWindowClosed
}

func TestRegistry_CustomRule(t *testing.T) {
	registry := NewRegistry()
	registry.Register(alwaysClosed{})

	policies, err := ApplyOverrides(DefaultPolicies(), []Override{{
		Category: domain.CategoryFor(domain.KindReward, ""),
		Window:   &WindowSpec{Rule: "closed"},
	}})
	require.NoError(t, err)

	g, err := NewGate(registry, policies, time.UTC)
	require.NoError(t, err)
	policy := policyFor(t, g, domain.KindReward, "")
	assert.ErrorIs(t, g.CanSubmit(policy, Snapshot{Role: domain.RoleAffiliate}, decimal.NewFromInt(1), tuesday), domain.ErrWindowClosed)
}

func TestClaimCategories_SalaryEntryPointsShareGroup(t *testing.T) {
	g := newTestGate(t)
	salary := policyFor(t, g, domain.KindSalary, "")
	payoutSalary := policyFor(t, g, domain.KindPayout, domain.SubtypeSalary)

	assert.ElementsMatch(t, []domain.RequestCategory{salary.Category, payoutSalary.Category}, g.ClaimCategories(salary))
	assert.ElementsMatch(t, g.ClaimCategories(salary), g.ClaimCategories(payoutSalary))

	cpa := policyFor(t, g, domain.KindPayout, domain.SubtypeCpa)
	assert.Equal(t, []domain.RequestCategory{cpa.Category}, g.ClaimCategories(cpa))
}

func TestNewGate_RejectsMixedClaimGroup(t *testing.T) {
	policies := DefaultPolicies()
	for i := range policies {
		if policies[i].Category == domain.CategoryFor(domain.KindPayout, domain.SubtypeCpa) {
			policies[i].ClaimGroup = ClaimGroupSalary
		}
	}
	_, err := NewGate(NewRegistry(), policies, time.UTC)
	assert.ErrorContains(t, err, "mixes ledger categories")

	policies = DefaultPolicies()
	for i := range policies {
		if policies[i].Kind == domain.KindExpense {
			policies[i].ClaimGroup = "expense"
		}
	}
	_, err = NewGate(NewRegistry(), policies, time.UTC)
	assert.ErrorContains(t, err, "requires a funded policy")
}
