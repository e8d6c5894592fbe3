package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LavaJover/shvark-commission-service/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/LavaJover/shvark-commission-service/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-commission-service/internal/usecase"
	"github.com/LavaJover/shvark-commission-service/internal/usecase/attribution"
	"github.com/LavaJover/shvark-commission-service/internal/usecase/eligibility"
	"github.com/LavaJover/shvark-commission-service/internal/usecase/graph"
	"github.com/LavaJover/shvark-commission-service/internal/usecase/ledger"
	"github.com/LavaJover/shvark-commission-service/internal/usecase/request"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, submitBurst int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	logger := zap.NewNop()

	mem := memory.NewStore()
	for _, u := range []*domain.User{
		{ID: "admin", Role: domain.RoleAdmin},
		{ID: "aff", Role: domain.RoleAffiliate},
		{ID: "other", Role: domain.RoleAffiliate},
		{ID: "mgr", Role: domain.RoleManager},
	} {
		require.NoError(t, mem.SaveUser(ctx, u))
	}

	g, err := graph.NewDefaultStore(mem, mem, mem, 0, logger)
	require.NoError(t, err)
	l := ledger.NewDefaultLedger(mem, nil, logger)
	engine := attribution.NewDefaultEngine(mem, mem, mem, g, l, nil, nil, logger)
	gate, err := eligibility.NewGate(eligibility.NewRegistry(), eligibility.DefaultPolicies(), time.UTC)
	require.NoError(t, err)
	requests, err := request.NewDefaultRequestUsecase(mem, mem, mem, mem, mem, l, gate, nil, nil, nil, logger)
	require.NoError(t, err)

	identity := middleware.HeaderIdentity{}
	h := NewCommissionHandler(requests, usecase.NewDefaultUserUsecase(mem, logger), g, l, engine, identity, logger)
	limiter := middleware.NewRateLimiter(60, submitBurst, identity, logger)

	r := gin.New()
	api := r.Group("/api/v1", middleware.Identity())
	h.Register(api, limiter.Handler())
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(middleware.UserIDHeader, userID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestMissingIdentityHeader(t *testing.T) {
	r := newTestRouter(t, 5)
	w := do(t, r, http.MethodGet, "/api/v1/requests", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHENTICATED", decode(t, w)["code"])
}

func TestSubmitAndResolveFlow(t *testing.T) {
	r := newTestRouter(t, 5)

	w := do(t, r, http.MethodPost, "/api/v1/revenue-events", "admin", map[string]any{
		"idempotency_key": "ftd-1",
		"type":            "ftd_conversion",
		"user_id":         "aff",
		"amount":          "1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// без сделки начислений нет, поэтому задаем CPA и повторяем с новым ключом
	w = do(t, r, http.MethodPut, "/api/v1/users/aff/deal", "admin", map[string]any{
		"cpa_enabled": true,
		"cpa_amount":  "100",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = do(t, r, http.MethodPost, "/api/v1/revenue-events", "admin", map[string]any{
		"idempotency_key": "ftd-2",
		"type":            "ftd_conversion",
		"user_id":         "aff",
		"amount":          "1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	replay := do(t, r, http.MethodPost, "/api/v1/revenue-events", "admin", map[string]any{
		"idempotency_key": "ftd-2",
		"type":            "ftd_conversion",
		"user_id":         "aff",
		"amount":          "1",
	})
	assert.Equal(t, http.StatusOK, replay.Code)
	assert.Equal(t, true, decode(t, replay)["replayed"])

	payout := map[string]any{
		"kind":           "payout",
		"subtype":        "cpa",
		"amount":         "60",
		"crypto_type":    "USDT",
		"network":        "TRC20",
		"wallet_address": "TXyz",
	}
	w = do(t, r, http.MethodPost, "/api/v1/requests", "aff", payout)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	id := created["id"].(string)
	assert.Equal(t, "pending", created["status"])
	assert.Equal(t, "60.00", created["amount"])

	w = do(t, r, http.MethodPost, "/api/v1/requests", "aff", payout)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "DUPLICATE_PENDING", decode(t, w)["code"])

	w = do(t, r, http.MethodGet, "/api/v1/requests/"+id, "other", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/requests/"+id+"/resolve", "aff", map[string]any{"action": "accept"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/requests/"+id+"/resolve", "admin", map[string]any{"action": "accept"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "accepted", decode(t, w)["status"])

	w = do(t, r, http.MethodPost, "/api/v1/requests/"+id+"/resolve", "admin", map[string]any{"action": "decline", "note": "late"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "NOT_PENDING", decode(t, w)["code"])

	w = do(t, r, http.MethodGet, "/api/v1/users/aff/balances", "aff", nil)
	require.Equal(t, http.StatusOK, w.Code)
	balances := decode(t, w)["balances"].(map[string]any)
	cpa := balances["cpa"].(map[string]any)
	assert.Equal(t, "60", cpa["paid"])
	assert.Equal(t, "40", cpa["unpaid"])

	w = do(t, r, http.MethodGet, "/api/v1/requests/"+id+"/history", "aff", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["history"], 2)

	w = do(t, r, http.MethodGet, "/api/v1/users/aff/balances", "other", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSubmitBadBody(t *testing.T) {
	r := newTestRouter(t, 5)
	w := do(t, r, http.MethodPost, "/api/v1/requests", "aff", map[string]any{"amount": "1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnknownUser(t *testing.T) {
	r := newTestRouter(t, 5)
	w := do(t, r, http.MethodGet, "/api/v1/requests", "ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "USER_NOT_FOUND", decode(t, w)["code"])
}

func TestSubmitRateLimited(t *testing.T) {
	r := newTestRouter(t, 1)
	expense := map[string]any{"kind": "expense", "amount": "5"}

	w := do(t, r, http.MethodPost, "/api/v1/requests", "mgr", expense)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, r, http.MethodPost, "/api/v1/requests", "mgr", expense)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// лимит на пользователя
	w = do(t, r, http.MethodPost, "/api/v1/requests", "admin", expense)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestShaveCycleRejected(t *testing.T) {
	r := newTestRouter(t, 5)
	edge := func(source, target string) map[string]any {
		return map[string]any{
			"source_id":       source,
			"target_id":       target,
			"commission_type": "percentage",
			"value":           "10",
		}
	}
	w := do(t, r, http.MethodPost, "/api/v1/shaves", "admin", edge("aff", "mgr"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, r, http.MethodPost, "/api/v1/shaves", "admin", edge("mgr", "aff"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "CYCLE_DETECTED", decode(t, w)["code"])

	w = do(t, r, http.MethodPost, "/api/v1/shaves", "aff", edge("other", "aff"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestShaveEdgesAdminOnly(t *testing.T) {
	r := newTestRouter(t, 5)
	body := map[string]any{
		"source_id":       "aff",
		"target_id":       "mgr",
		"commission_type": "percentage",
		"value":           "100",
	}

	w := do(t, r, http.MethodPost, "/api/v1/shaves", "mgr", body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/shaves", "admin", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	edgeID, _ := decode(t, w)["id"].(string)
	require.NotEmpty(t, edgeID)

	w = do(t, r, http.MethodDelete, "/api/v1/shaves/"+edgeID, "mgr", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/users/aff/shaves", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), edgeID)

	w = do(t, r, http.MethodDelete, "/api/v1/shaves/"+edgeID, "admin", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(domain.KindOf(domain.ErrWindowClosed)))
	assert.Equal(t, http.StatusConflict, statusFor(domain.KindOf(domain.ErrNotPending)))
	assert.Equal(t, http.StatusNotFound, statusFor(domain.KindOf(domain.ErrRequestNotFound)))
	assert.Equal(t, http.StatusForbidden, statusFor(domain.KindOf(domain.ErrForbidden)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(domain.KindOf(domain.ErrLedgerIntegrity)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(domain.KindOf(errors.New("db down"))))
}
