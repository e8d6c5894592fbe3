package commission

import (
	"time"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	requestdto "github.com/LavaJover/shvark-commission-service/internal/usecase/dto/request"
)

type RequestResponse struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Kind           string     `json:"kind"`
	Subtype        string     `json:"subtype,omitempty"`
	Category       string     `json:"category"`
	LedgerCategory string     `json:"ledger_category"`
	Amount         string     `json:"amount"`
	CryptoType     string     `json:"crypto_type,omitempty"`
	Network        string     `json:"network,omitempty"`
	WalletAddress  string     `json:"wallet_address,omitempty"`
	Note           string     `json:"note,omitempty"`
	AttachmentRef  string     `json:"attachment_ref,omitempty"`
	Status         string     `json:"status"`
	AdminNote      string     `json:"admin_note,omitempty"`
	ResolvedBy     string     `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func ToRequestResponse(r *domain.Request) RequestResponse {
	return RequestResponse{
		ID:             r.ID,
		UserID:         r.UserID,
		Kind:           string(r.Kind),
		Subtype:        string(r.Subtype),
		Category:       string(r.Category),
		LedgerCategory: string(r.LedgerCategory),
		Amount:         r.Amount.StringFixed(2),
		CryptoType:     r.Destination.CryptoType,
		Network:        r.Destination.Network,
		WalletAddress:  r.Destination.WalletAddress,
		Note:           r.Note,
		AttachmentRef:  r.AttachmentRef,
		Status:         string(r.Status),
		AdminNote:      r.AdminNote,
		ResolvedBy:     r.ResolvedBy,
		ResolvedAt:     r.ResolvedAt,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type ListRequestsResponse struct {
	Requests   []RequestResponse     `json:"requests"`
	Pagination requestdto.Pagination `json:"pagination"`
}

type AuditEntryResponse struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	ActorID    string    `json:"actor_id"`
	Note       string    `json:"note,omitempty"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status"`
	At         time.Time `json:"at"`
}

func ToAuditResponse(entries []*domain.AuditEntry) []AuditEntryResponse {
	result := make([]AuditEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = AuditEntryResponse{
			ID:         e.ID,
			Action:     string(e.Action),
			ActorID:    e.ActorID,
			Note:       e.Note,
			FromStatus: string(e.FromStatus),
			ToStatus:   string(e.ToStatus),
			At:         e.At,
		}
	}
	return result
}

type ShaveResponse struct {
	ID             string    `json:"id"`
	SourceID       string    `json:"source_id"`
	TargetID       string    `json:"target_id"`
	IntermediaryID string    `json:"intermediary_id,omitempty"`
	CommissionType string    `json:"commission_type"`
	Value          string    `json:"value"`
	CreatedBy      string    `json:"created_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func ToShaveResponses(edges []*domain.ShaveEdge) []ShaveResponse {
	result := make([]ShaveResponse, len(edges))
	for i, e := range edges {
		result[i] = ShaveResponse{
			ID:             e.ID,
			SourceID:       e.SourceID,
			TargetID:       e.TargetID,
			IntermediaryID: e.IntermediaryID,
			CommissionType: string(e.CommissionType),
			Value:          e.Value.String(),
			CreatedBy:      e.CreatedBy,
			CreatedAt:      e.CreatedAt,
		}
	}
	return result
}

type UserShavesResponse struct {
	Sourced   []ShaveResponse `json:"sourced"`
	Targeting []ShaveResponse `json:"targeting"`
}

type AttributionResponse struct {
	Deltas   []domain.LedgerDelta `json:"deltas"`
	Replayed bool                 `json:"replayed"`
}

type DealResponse struct {
	UserID                  string    `json:"user_id"`
	CpaEnabled              bool      `json:"cpa_enabled"`
	CpaAmount               string    `json:"cpa_amount"`
	RevshareEnabled         bool      `json:"revshare_enabled"`
	RevsharePercentage      string    `json:"revshare_percentage"`
	SalaryEnabled           bool      `json:"salary_enabled"`
	SalaryAmount            string    `json:"salary_amount"`
	SalaryFrequencyDays     int       `json:"salary_frequency_days"`
	ReferralShareEnabled    bool      `json:"referral_share_enabled"`
	ReferralSharePercentage string    `json:"referral_share_percentage"`
	UpdatedAt               time.Time `json:"updated_at"`
}

func ToDealResponse(d *domain.Deal) DealResponse {
	return DealResponse{
		UserID:                  d.UserID,
		CpaEnabled:              d.CpaEnabled,
		CpaAmount:               d.CpaAmount.StringFixed(2),
		RevshareEnabled:         d.RevshareEnabled,
		RevsharePercentage:      d.RevsharePercentage.String(),
		SalaryEnabled:           d.SalaryEnabled,
		SalaryAmount:            d.SalaryAmount.StringFixed(2),
		SalaryFrequencyDays:     d.SalaryFrequencyDays,
		ReferralShareEnabled:    d.ReferralShareEnabled,
		ReferralSharePercentage: d.ReferralSharePercentage.String(),
		UpdatedAt:               d.UpdatedAt,
	}
}

type UserResponse struct {
	ID         string    `json:"id"`
	Role       string    `json:"role"`
	ReferrerID string    `json:"referrer_id,omitempty"`
	ManagerID  string    `json:"manager_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Role:       string(u.Role),
		ReferrerID: u.ReferrerID,
		ManagerID:  u.ManagerID,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
