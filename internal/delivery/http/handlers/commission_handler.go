package handlers

import (
	"net/http"
	"strconv"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/LavaJover/shvark-commission-service/internal/usecase"
	"github.com/LavaJover/shvark-commission-service/internal/usecase/attribution"
	"github.com/LavaJover/shvark-commission-service/internal/usecase/graph"
	"github.com/LavaJover/shvark-commission-service/internal/usecase/ledger"
	"github.com/LavaJover/shvark-commission-service/internal/usecase/request"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommissionHandler struct {
	requests    request.RequestUsecase
	users       usecase.UserUsecase
	graph       graph.Store
	ledger      ledger.Ledger
	attribution attribution.Engine
	identity    domain.IdentityProvider
	logger      *zap.Logger
}

func NewCommissionHandler(
	requests request.RequestUsecase,
	users usecase.UserUsecase,
	graph graph.Store,
	ledger ledger.Ledger,
	attribution attribution.Engine,
	identity domain.IdentityProvider,
	logger *zap.Logger,
) *CommissionHandler {
	return &CommissionHandler{
		requests:    requests,
		users:       users,
		graph:       graph,
		ledger:      ledger,
		attribution: attribution,
		identity:    identity,
		logger:      logger,
	}
}

// Register вешает маршруты на группу /api/v1. submit отдельно ограничен по частоте
func (h *CommissionHandler) Register(api *gin.RouterGroup, submitLimit gin.HandlerFunc) {
	api.POST("/requests", submitLimit, h.SubmitRequest)
	api.POST("/requests/check", h.CheckEligibility)
	api.POST("/requests/:id/resolve", h.ResolveRequest)
	api.GET("/requests/:id", h.GetRequest)
	api.GET("/requests", h.ListRequests)
	api.GET("/requests/:id/history", h.RequestHistory)

	api.GET("/users/:id/balances", h.GetBalances)
	api.PUT("/users/:id", h.SaveUser)
	api.PUT("/users/:id/deal", h.UpsertDeal)
	api.GET("/users/:id/deal", h.GetDeal)
	api.GET("/users/:id/shaves", h.UserShaves)

	api.POST("/shaves", h.AddShave)
	api.DELETE("/shaves/:id", h.RemoveShave)

	api.POST("/revenue-events", h.RecordRevenueEvent)
}

// actor - текущий пользователь запроса
func (h *CommissionHandler) actor(c *gin.Context) (*domain.User, bool) {
	userID, err := h.identity.CurrentUser(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return nil, false
	}
	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return nil, false
	}
	return user, true
}

// requireRole пропускает только перечисленные роли
func (h *CommissionHandler) requireRole(c *gin.Context, roles ...domain.Role) (*domain.User, bool) {
	user, ok := h.actor(c)
	if !ok {
		return nil, false
	}
	for _, role := range roles {
		if user.Role == role {
			return user, true
		}
	}
	h.writeError(c, domain.ErrForbidden)
	return nil, false
}

// selfOrAdmin: пользователь видит свои данные, администратор - любые
func (h *CommissionHandler) selfOrAdmin(c *gin.Context, userID string) (*domain.User, bool) {
	user, ok := h.actor(c)
	if !ok {
		return nil, false
	}
	if user.ID != userID && user.Role != domain.RoleAdmin {
		h.writeError(c, domain.ErrForbidden)
		return nil, false
	}
	return user, true
}

func queryInt(c *gin.Context, key string, fallback int64) int64 {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func (h *CommissionHandler) GetBalances(c *gin.Context) {
	userID := c.Param("id")
	if _, ok := h.selfOrAdmin(c, userID); !ok {
		return
	}
	balances, err := h.ledger.Balances(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "balances": balances})
}
