package attribution

import (
	"context"
	"testing"
	"time"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/LavaJover/shvark-commission-service/internal/infrastructure/memory"
	shavedto "github.com/LavaJover/shvark-commission-service/internal/usecase/dto/shave"
	"github.com/LavaJover/shvark-commission-service/internal/usecase/graph"
	"github.com/LavaJover/shvark-commission-service/internal/usecase/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	mem    *memory.Store
	graph  *graph.DefaultStore
	ledger *ledger.DefaultLedger
	engine *DefaultEngine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := memory.NewStore()
	g, err := graph.NewDefaultStore(mem, mem, mem, 0, zap.NewNop())
	require.NoError(t, err)
	l := ledger.NewDefaultLedger(mem, nil, zap.NewNop())
	return &fixture{
		mem:    mem,
		graph:  g,
		ledger: l,
		engine: NewDefaultEngine(mem, mem, mem, g, l, nil, nil, zap.NewNop()),
	}
}

func (f *fixture) user(t *testing.T, id string, role domain.Role, referrer string) {
	t.Helper()
	require.NoError(t, f.mem.SaveUser(context.Background(), &domain.User{ID: id, Role: role, ReferrerID: referrer}))
}

func (f *fixture) deal(t *testing.T, deal *domain.Deal) {
	t.Helper()
	require.NoError(t, f.mem.UpsertDeal(context.Background(), deal))
}

func (f *fixture) edge(t *testing.T, source, target, via string, kind domain.CommissionType, value string) {
	t.Helper()
	_, err := f.graph.AddEdge(context.Background(), &shavedto.AddEdgeInput{
		SourceID:       source,
		TargetID:       target,
		IntermediaryID: via,
		CommissionType: string(kind),
		Value:          dec(value),
		CreatedBy:      "admin",
	})
	require.NoError(t, err)
}

func (f *fixture) earned(t *testing.T, userID string, category domain.LedgerCategory) decimal.Decimal {
	t.Helper()
	balances, err := f.ledger.Balances(context.Background(), userID)
	require.NoError(t, err)
	return balances[category].Earned
}

func ftd(key, affiliate string) domain.RevenueEvent {
	event := domain.FtdConversion(affiliate, dec("1"))
	event.IdempotencyKey = key
	return event
}

func TestAttribute_TwoHopSharesFromBase(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"aff", "mid", "top"} {
		f.user(t, id, domain.RoleAffiliate, "")
	}
	f.deal(t, &domain.Deal{UserID: "aff", CpaEnabled: true, CpaAmount: dec("100")})
	f.edge(t, "aff", "top", "mid", domain.CommissionPercentage, "10")

	result, err := f.engine.Attribute(context.Background(), ftd("ftd-1", "aff"))
	require.NoError(t, err)
	assert.False(t, result.Replayed)
	assert.Len(t, result.Deltas, 3)

	assert.True(t, f.earned(t, "aff", domain.CategoryCpa).Equal(dec("100")))
	// каждый получает 10% от базы, без сложного процента
	assert.True(t, f.earned(t, "mid", domain.CategoryReferralShare).Equal(dec("10")))
	assert.True(t, f.earned(t, "top", domain.CategoryReferralShare).Equal(dec("10")))
}

func TestAttribute_ReplayCreditsOnce(t *testing.T) {
	f := newFixture(t)
	f.user(t, "aff", domain.RoleAffiliate, "")
	f.deal(t, &domain.Deal{UserID: "aff", CpaEnabled: true, CpaAmount: dec("100")})
	ctx := context.Background()

	first, err := f.engine.Attribute(ctx, ftd("ftd-1", "aff"))
	require.NoError(t, err)

	second, err := f.engine.Attribute(ctx, ftd("ftd-1", "aff"))
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Deltas, second.Deltas)

	assert.True(t, f.earned(t, "aff", domain.CategoryCpa).Equal(dec("100")))
}

func TestAttribute_ReplayReturnsStoredDeltasAfterDealChange(t *testing.T) {
	f := newFixture(t)
	f.user(t, "aff", domain.RoleAffiliate, "")
	f.deal(t, &domain.Deal{UserID: "aff", CpaEnabled: true, CpaAmount: dec("100")})
	ctx := context.Background()

	_, err := f.engine.Attribute(ctx, ftd("ftd-1", "aff"))
	require.NoError(t, err)

	f.deal(t, &domain.Deal{UserID: "aff", CpaEnabled: true, CpaAmount: dec("300")})
	replay, err := f.engine.Attribute(ctx, ftd("ftd-1", "aff"))
	require.NoError(t, err)
	require.Len(t, replay.Deltas, 1)
	assert.True(t, replay.Deltas[0].Amount.Equal(dec("100")))
}

func TestAttribute_RevshareRounding(t *testing.T) {
	f := newFixture(t)
	f.user(t, "aff", domain.RoleAffiliate, "")
	f.user(t, "up", domain.RoleAffiliate, "")
	f.deal(t, &domain.Deal{UserID: "aff", RevshareEnabled: true, RevsharePercentage: dec("33.3333")})
	f.edge(t, "aff", "up", "", domain.CommissionPercentage, "12.5")

	event := domain.RevshareAccrual("aff", "trader-1", dec("100"))
	event.IdempotencyKey = "rev-1"
	_, err := f.engine.Attribute(context.Background(), event)
	require.NoError(t, err)

	// 33.3333 -> 33.33; 12.5% от 33.3333 = 4.1666625 -> 4.17
	assert.True(t, f.earned(t, "aff", domain.CategoryRevshare).Equal(dec("33.33")))
	assert.True(t, f.earned(t, "up", domain.CategoryReferralShare).Equal(dec("4.17")))
}

func TestAttribute_FixedPerFtdEdge(t *testing.T) {
	f := newFixture(t)
	f.user(t, "aff", domain.RoleAffiliate, "")
	f.user(t, "mgr", domain.RoleManager, "")
	f.edge(t, "aff", "mgr", "", domain.CommissionFixedPerFtd, "5")

	event := ftd("ftd-3", "aff")
	event.FtdCount = 3
	_, err := f.engine.Attribute(context.Background(), event)
	require.NoError(t, err)

	assert.True(t, f.earned(t, "mgr", domain.CategoryReferralShare).Equal(dec("15")))
	// без сделки аффилиат ничего не получает
	assert.True(t, f.earned(t, "aff", domain.CategoryCpa).IsZero())
}

func TestAttribute_ReferralCommission(t *testing.T) {
	f := newFixture(t)
	f.user(t, "ref", domain.RoleAffiliate, "")
	f.user(t, "newbie", domain.RoleAffiliate, "ref")
	f.deal(t, &domain.Deal{UserID: "ref", ReferralShareEnabled: true, ReferralSharePercentage: dec("5")})

	event := domain.ReferralCommission("newbie", dec("200"))
	event.IdempotencyKey = "refc-1"
	_, err := f.engine.Attribute(context.Background(), event)
	require.NoError(t, err)

	assert.True(t, f.earned(t, "ref", domain.CategoryReferralShare).Equal(dec("10")))
}

// removedUsers скрывает пользователей, удаленных у провайдера учетных записей
type removedUsers struct {
	domain.UserRepository
	removed map[string]bool
}

func (r *removedUsers) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if r.removed[userID] {
		return nil, domain.ErrUserNotFound
	}
	return r.UserRepository.GetUser(ctx, userID)
}

func TestAttribute_ReplayAfterReferredUserRemoved(t *testing.T) {
	f := newFixture(t)
	f.user(t, "ref", domain.RoleAffiliate, "")
	f.user(t, "newbie", domain.RoleAffiliate, "ref")
	f.deal(t, &domain.Deal{UserID: "ref", ReferralShareEnabled: true, ReferralSharePercentage: dec("5")})
	ctx := context.Background()

	event := domain.ReferralCommission("newbie", dec("200"))
	event.IdempotencyKey = "refc-1"
	first, err := f.engine.Attribute(ctx, event)
	require.NoError(t, err)
	require.Len(t, first.Deltas, 1)

	users := &removedUsers{UserRepository: f.mem, removed: map[string]bool{"newbie": true}}
	engine := NewDefaultEngine(f.mem, users, f.mem, f.graph, f.ledger, nil, nil, zap.NewNop())

	replay, err := engine.Attribute(ctx, event)
	require.NoError(t, err)
	assert.True(t, replay.Replayed)
	assert.Equal(t, first.Deltas, replay.Deltas)
	assert.True(t, f.earned(t, "ref", domain.CategoryReferralShare).Equal(dec("10")))

	fresh := domain.ReferralCommission("newbie", dec("200"))
	fresh.IdempotencyKey = "refc-2"
	_, err = engine.Attribute(ctx, fresh)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestAttribute_InvalidEvents(t *testing.T) {
	f := newFixture(t)
	f.user(t, "aff", domain.RoleAffiliate, "")
	ctx := context.Background()

	event := domain.RevshareAccrual("aff", "t", dec("-1"))
	event.IdempotencyKey = "bad"
	_, err := f.engine.Attribute(ctx, event)
	assert.ErrorIs(t, err, domain.ErrInvalidEventAmount)

	_, err = f.engine.Attribute(ctx, domain.FtdConversion("aff", dec("1")))
	assert.ErrorIs(t, err, domain.ErrInvalidEvent)
}

func TestAttribute_NoDealIsNoop(t *testing.T) {
	f := newFixture(t)
	f.user(t, "aff", domain.RoleAffiliate, "")

	result, err := f.engine.Attribute(context.Background(), ftd("ftd-1", "aff"))
	require.NoError(t, err)
	assert.Empty(t, result.Deltas)
}

func TestAccrueSalaries_Idempotent(t *testing.T) {
	f := newFixture(t)
	f.user(t, "mgr", domain.RoleManager, "")
	f.user(t, "aff", domain.RoleAffiliate, "")
	f.deal(t, &domain.Deal{UserID: "mgr", SalaryEnabled: true, SalaryAmount: dec("3000"), SalaryFrequencyDays: 30})
	f.deal(t, &domain.Deal{UserID: "aff", CpaEnabled: true, CpaAmount: dec("10")})
	ctx := context.Background()
	day := time.Date(2025, 6, 1, 0, 5, 0, 0, time.UTC)

	accrued, err := f.engine.AccrueSalaries(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, 1, accrued)

	accrued, err = f.engine.AccrueSalaries(ctx, day)
	require.NoError(t, err)
	assert.Zero(t, accrued)
	assert.True(t, f.earned(t, "mgr", domain.CategorySalary).Equal(dec("100")))

	_, err = f.engine.AccrueSalaries(ctx, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, f.earned(t, "mgr", domain.CategorySalary).Equal(dec("200")))
}
