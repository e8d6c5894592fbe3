package handlers

import (
	"net/http"

	commissiondto "github.com/LavaJover/shvark-commission-service/internal/delivery/http/dto/commission"
	"github.com/LavaJover/shvark-commission-service/internal/domain"
	requestdto "github.com/LavaJover/shvark-commission-service/internal/usecase/dto/request"
	"github.com/gin-gonic/gin"
)

func (h *CommissionHandler) submitInput(c *gin.Context) (*requestdto.SubmitRequestInput, bool) {
	user, ok := h.actor(c)
	if !ok {
		return nil, false
	}
	var body commissiondto.SubmitRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, err)
		return nil, false
	}
	return &requestdto.SubmitRequestInput{
		UserID:           user.ID,
		Kind:             body.Kind,
		Subtype:          body.Subtype,
		Amount:           body.Amount,
		CryptoType:       body.CryptoType,
		Network:          body.Network,
		WalletAddress:    body.WalletAddress,
		Note:             body.Note,
		AttachmentFileID: body.AttachmentFileID,
	}, true
}

func (h *CommissionHandler) SubmitRequest(c *gin.Context) {
	input, ok := h.submitInput(c)
	if !ok {
		return
	}
	req, err := h.requests.Submit(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, commissiondto.ToRequestResponse(req))
}

func (h *CommissionHandler) CheckEligibility(c *gin.Context) {
	input, ok := h.submitInput(c)
	if !ok {
		return
	}
	if err := h.requests.CheckEligibility(c.Request.Context(), input); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"eligible": true})
}

func (h *CommissionHandler) ResolveRequest(c *gin.Context) {
	admin, ok := h.actor(c)
	if !ok {
		return
	}
	var body commissiondto.ResolveRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, err)
		return
	}
	req, err := h.requests.Resolve(c.Request.Context(), &requestdto.ResolveRequestInput{
		RequestID: c.Param("id"),
		AdminID:   admin.ID,
		Action:    body.Action,
		Note:      body.Note,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, commissiondto.ToRequestResponse(req))
}

// visibleRequest загружает заявку, если текущий пользователь - ее автор или администратор
func (h *CommissionHandler) visibleRequest(c *gin.Context) (*domain.Request, bool) {
	user, ok := h.actor(c)
	if !ok {
		return nil, false
	}
	req, err := h.requests.GetRequestByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return nil, false
	}
	if req.UserID != user.ID && user.Role != domain.RoleAdmin {
		// чужая заявка выглядит как отсутствующая
		h.writeError(c, domain.ErrRequestNotFound)
		return nil, false
	}
	return req, true
}

func (h *CommissionHandler) GetRequest(c *gin.Context) {
	req, ok := h.visibleRequest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, commissiondto.ToRequestResponse(req))
}

func (h *CommissionHandler) RequestHistory(c *gin.Context) {
	req, ok := h.visibleRequest(c)
	if !ok {
		return
	}
	entries, err := h.requests.History(c.Request.Context(), req.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request_id": req.ID, "history": commissiondto.ToAuditResponse(entries)})
}

func (h *CommissionHandler) ListRequests(c *gin.Context) {
	user, ok := h.actor(c)
	if !ok {
		return
	}
	input := &requestdto.ListRequestsInput{
		Page:  queryInt(c, "page", 1),
		Limit: queryInt(c, "limit", 20),
	}
	if user.Role == domain.RoleAdmin {
		if v := c.Query("user_id"); v != "" {
			input.UserID = &v
		}
	} else {
		input.UserID = &user.ID
	}
	if v := c.Query("kind"); v != "" {
		input.Kind = &v
	}
	if v := c.Query("category"); v != "" {
		input.Category = &v
	}
	if v := c.Query("status"); v != "" {
		input.Status = &v
	}

	output, err := h.requests.ListRequests(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := commissiondto.ListRequestsResponse{
		Requests:   make([]commissiondto.RequestResponse, len(output.Requests)),
		Pagination: output.Pagination,
	}
	for i, req := range output.Requests {
		resp.Requests[i] = commissiondto.ToRequestResponse(req)
	}
	c.JSON(http.StatusOK, resp)
}
