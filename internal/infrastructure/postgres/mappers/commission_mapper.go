package mappers

import (
	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/LavaJover/shvark-commission-service/internal/infrastructure/postgres/models"
)

func ToDomainUser(model *models.UserModel) *domain.User {
	return &domain.User{
		ID:         model.ID,
		Role:       domain.Role(model.Role),
		ReferrerID: model.ReferrerID,
		ManagerID:  model.ManagerID,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

func ToGORMUser(user *domain.User) *models.UserModel {
	return &models.UserModel{
		ID:         user.ID,
		Role:       string(user.Role),
		ReferrerID: user.ReferrerID,
		ManagerID:  user.ManagerID,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}

func ToDomainDeal(model *models.DealModel) *domain.Deal {
	return &domain.Deal{
		UserID:                  model.UserID,
		CpaEnabled:              model.CpaEnabled,
		CpaAmount:               model.CpaAmount,
		RevshareEnabled:         model.RevshareEnabled,
		RevsharePercentage:      model.RevsharePercentage,
		SalaryEnabled:           model.SalaryEnabled,
		SalaryAmount:            model.SalaryAmount,
		SalaryFrequencyDays:     model.SalaryFrequencyDays,
		ReferralShareEnabled:    model.ReferralShareEnabled,
		ReferralSharePercentage: model.ReferralSharePercentage,
		UpdatedAt:               model.UpdatedAt,
	}
}

func ToGORMDeal(deal *domain.Deal) *models.DealModel {
	return &models.DealModel{
		UserID:                  deal.UserID,
		CpaEnabled:              deal.CpaEnabled,
		CpaAmount:               deal.CpaAmount,
		RevshareEnabled:         deal.RevshareEnabled,
		RevsharePercentage:      deal.RevsharePercentage,
		SalaryEnabled:           deal.SalaryEnabled,
		SalaryAmount:            deal.SalaryAmount,
		SalaryFrequencyDays:     deal.SalaryFrequencyDays,
		ReferralShareEnabled:    deal.ReferralShareEnabled,
		ReferralSharePercentage: deal.ReferralSharePercentage,
		UpdatedAt:               deal.UpdatedAt,
	}
}

func ToDomainShaveEdge(model *models.ShaveEdgeModel) *domain.ShaveEdge {
	return &domain.ShaveEdge{
		ID:             model.ID,
		SourceID:       model.SourceID,
		TargetID:       model.TargetID,
		IntermediaryID: model.IntermediaryID,
		CommissionType: domain.CommissionType(model.CommissionType),
		Value:          model.Value,
		CreatedBy:      model.CreatedBy,
		CreatedAt:      model.CreatedAt,
	}
}

func ToGORMShaveEdge(edge *domain.ShaveEdge) *models.ShaveEdgeModel {
	return &models.ShaveEdgeModel{
		ID:             edge.ID,
		SourceID:       edge.SourceID,
		TargetID:       edge.TargetID,
		IntermediaryID: edge.IntermediaryID,
		CommissionType: string(edge.CommissionType),
		Value:          edge.Value,
		CreatedBy:      edge.CreatedBy,
		CreatedAt:      edge.CreatedAt,
	}
}

func ToDomainLedgerEntry(model *models.LedgerEntryModel) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		UserID:    model.UserID,
		Category:  domain.LedgerCategory(model.Category),
		Earned:    model.Earned,
		Paid:      model.Paid,
		Reserved:  model.Reserved,
		UpdatedAt: model.UpdatedAt,
	}
}

func ToGORMLedgerEntry(entry *domain.LedgerEntry) *models.LedgerEntryModel {
	return &models.LedgerEntryModel{
		UserID:    entry.UserID,
		Category:  string(entry.Category),
		Earned:    entry.Earned,
		Paid:      entry.Paid,
		Reserved:  entry.Reserved,
		UpdatedAt: entry.UpdatedAt,
	}
}

func ToDomainRequest(model *models.RequestModel) *domain.Request {
	return &domain.Request{
		ID:             model.ID,
		UserID:         model.UserID,
		Kind:           domain.RequestKind(model.Kind),
		Subtype:        domain.PayoutSubtype(model.Subtype),
		Category:       domain.RequestCategory(model.Category),
		LedgerCategory: domain.LedgerCategory(model.LedgerCategory),
		Funded:         model.Funded,
		Amount:         model.Amount,
		Destination: domain.PayoutDestination{
			CryptoType:    model.CryptoType,
			Network:       model.Network,
			WalletAddress: model.WalletAddress,
		},
		Note:          model.Note,
		AttachmentRef: model.AttachmentRef,
		Status:        domain.RequestStatus(model.Status),
		AdminNote:     model.AdminNote,
		ResolvedBy:    model.ResolvedBy,
		ResolvedAt:    model.ResolvedAt,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

func ToGORMRequest(request *domain.Request) *models.RequestModel {
	return &models.RequestModel{
		ID:             request.ID,
		UserID:         request.UserID,
		Kind:           string(request.Kind),
		Subtype:        string(request.Subtype),
		Category:       string(request.Category),
		LedgerCategory: string(request.LedgerCategory),
		Funded:         request.Funded,
		Amount:         request.Amount,
		CryptoType:     request.Destination.CryptoType,
		Network:        request.Destination.Network,
		WalletAddress:  request.Destination.WalletAddress,
		Note:           request.Note,
		AttachmentRef:  request.AttachmentRef,
		Status:         string(request.Status),
		AdminNote:      request.AdminNote,
		ResolvedBy:     request.ResolvedBy,
		ResolvedAt:     request.ResolvedAt,
		CreatedAt:      request.CreatedAt,
		UpdatedAt:      request.UpdatedAt,
	}
}

func ToDomainAuditEntry(model *models.AuditEntryModel) *domain.AuditEntry {
	return &domain.AuditEntry{
		ID:         model.ID,
		RequestID:  model.RequestID,
		Action:     domain.AuditAction(model.Action),
		ActorID:    model.ActorID,
		Note:       model.Note,
		FromStatus: domain.RequestStatus(model.FromStatus),
		ToStatus:   domain.RequestStatus(model.ToStatus),
		At:         model.At,
	}
}

func ToGORMAuditEntry(entry *domain.AuditEntry) *models.AuditEntryModel {
	return &models.AuditEntryModel{
		ID:         entry.ID,
		RequestID:  entry.RequestID,
		Action:     string(entry.Action),
		ActorID:    entry.ActorID,
		Note:       entry.Note,
		FromStatus: string(entry.FromStatus),
		ToStatus:   string(entry.ToStatus),
		At:         entry.At,
	}
}
