package handlers

import (
	"net/http"

	commissiondto "github.com/LavaJover/shvark-commission-service/internal/delivery/http/dto/commission"
	"github.com/LavaJover/shvark-commission-service/internal/domain"
	shavedto "github.com/LavaJover/shvark-commission-service/internal/usecase/dto/shave"
	userdto "github.com/LavaJover/shvark-commission-service/internal/usecase/dto/user"
	"github.com/gin-gonic/gin"
)

func (h *CommissionHandler) AddShave(c *gin.Context) {
	user, ok := h.requireRole(c, domain.RoleAdmin)
	if !ok {
		return
	}
	var body commissiondto.AddShaveBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, err)
		return
	}
	edgeID, err := h.graph.AddEdge(c.Request.Context(), &shavedto.AddEdgeInput{
		SourceID:       body.SourceID,
		TargetID:       body.TargetID,
		IntermediaryID: body.IntermediaryID,
		CommissionType: body.CommissionType,
		Value:          body.Value,
		CreatedBy:      user.ID,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": edgeID})
}

func (h *CommissionHandler) RemoveShave(c *gin.Context) {
	if _, ok := h.requireRole(c, domain.RoleAdmin); !ok {
		return
	}
	if err := h.graph.RemoveEdge(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CommissionHandler) UserShaves(c *gin.Context) {
	userID := c.Param("id")
	if _, ok := h.selfOrAdmin(c, userID); !ok {
		return
	}
	sourced, err := h.graph.EdgesSourcedFrom(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	targeting, err := h.graph.EdgesTargeting(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, commissiondto.UserShavesResponse{
		Sourced:   commissiondto.ToShaveResponses(sourced),
		Targeting: commissiondto.ToShaveResponses(targeting),
	})
}

func (h *CommissionHandler) UpsertDeal(c *gin.Context) {
	if _, ok := h.requireRole(c, domain.RoleAdmin); !ok {
		return
	}
	var body commissiondto.DealBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, err)
		return
	}
	deal, err := h.graph.UpsertDeal(c.Request.Context(), &shavedto.UpsertDealInput{
		UserID:                  c.Param("id"),
		CpaEnabled:              body.CpaEnabled,
		CpaAmount:               body.CpaAmount,
		RevshareEnabled:         body.RevshareEnabled,
		RevsharePercentage:      body.RevsharePercentage,
		SalaryEnabled:           body.SalaryEnabled,
		SalaryAmount:            body.SalaryAmount,
		SalaryFrequencyDays:     body.SalaryFrequencyDays,
		ReferralShareEnabled:    body.ReferralShareEnabled,
		ReferralSharePercentage: body.ReferralSharePercentage,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, commissiondto.ToDealResponse(deal))
}

func (h *CommissionHandler) GetDeal(c *gin.Context) {
	userID := c.Param("id")
	if _, ok := h.selfOrAdmin(c, userID); !ok {
		return
	}
	deal, err := h.graph.GetDeal(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, commissiondto.ToDealResponse(deal))
}

func (h *CommissionHandler) SaveUser(c *gin.Context) {
	if _, ok := h.requireRole(c, domain.RoleAdmin); !ok {
		return
	}
	var body commissiondto.SaveUserBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, err)
		return
	}
	user, err := h.users.SaveUser(c.Request.Context(), &userdto.SaveUserInput{
		UserID:     c.Param("id"),
		Role:       body.Role,
		ReferrerID: body.ReferrerID,
		ManagerID:  body.ManagerID,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, commissiondto.ToUserResponse(user))
}

func (h *CommissionHandler) RecordRevenueEvent(c *gin.Context) {
	if _, ok := h.requireRole(c, domain.RoleAdmin); !ok {
		return
	}
	var body commissiondto.RevenueEventBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, err)
		return
	}
	event := domain.RevenueEvent{
		IdempotencyKey: body.IdempotencyKey,
		Type:           domain.RevenueEventType(body.Type),
		UserID:         body.UserID,
		TraderID:       body.TraderID,
		Amount:         body.Amount,
		FtdCount:       body.FtdCount,
	}
	if body.Date != nil {
		event.Date = *body.Date
	}
	result, err := h.attribution.Attribute(c.Request.Context(), event)
	if err != nil {
		h.writeError(c, err)
		return
	}
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, commissiondto.AttributionResponse{Deltas: result.Deltas, Replayed: result.Replayed})
}
