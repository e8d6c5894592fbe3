package memory

import (
	"context"
	"sort"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
)

func (s *Store) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (s *Store) SaveUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *Store) GetDeal(ctx context.Context, userID string) (*domain.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	deal, ok := s.deals[userID]
	if !ok {
		return nil, domain.ErrDealNotFound
	}
	return cloneDeal(deal), nil
}

func (s *Store) UpsertDeal(ctx context.Context, deal *domain.Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deals[deal.UserID] = cloneDeal(deal)
	return nil
}

func (s *Store) ListSalaryDeals(ctx context.Context) ([]*domain.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var deals []*domain.Deal
	for _, deal := range s.deals {
		if deal.SalaryEnabled {
			deals = append(deals, cloneDeal(deal))
		}
	}
	sort.Slice(deals, func(i, j int) bool { return deals[i].UserID < deals[j].UserID })
	return deals, nil
}

func (s *Store) CreateEdgeChecked(ctx context.Context, edge *domain.ShaveEdge, check func(existing []*domain.ShaveEdge) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := check(s.listEdgesLocked()); err != nil {
		return err
	}
	s.edges[edge.ID] = cloneEdge(edge)
	return nil
}

func (s *Store) DeleteEdge(ctx context.Context, edgeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.edges[edgeID]; !ok {
		return domain.ErrEdgeNotFound
	}
	delete(s.edges, edgeID)
	return nil
}

func (s *Store) ListEdges(ctx context.Context) ([]*domain.ShaveEdge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listEdgesLocked(), nil
}

func (s *Store) listEdgesLocked() []*domain.ShaveEdge {
	edges := make([]*domain.ShaveEdge, 0, len(s.edges))
	for _, edge := range s.edges {
		edges = append(edges, cloneEdge(edge))
	}
	sort.Slice(edges, func(i, j int) bool {
		if !edges[i].CreatedAt.Equal(edges[j].CreatedAt) {
			return edges[i].CreatedAt.Before(edges[j].CreatedAt)
		}
		return edges[i].ID < edges[j].ID
	})
	return edges
}

func (s *Store) GetEntries(ctx context.Context, userID string) ([]*domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var entries []*domain.LedgerEntry
	for key, entry := range s.ledger {
		if key.UserID == userID {
			entries = append(entries, cloneEntry(entry))
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Category < entries[j].Category })
	return entries, nil
}

func (s *Store) GetRequestByID(ctx context.Context, requestID string) (*domain.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[requestID]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	return cloneRequest(req), nil
}

func (s *Store) ListRequests(ctx context.Context, filter domain.RequestFilter) ([]*domain.Request, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []*domain.Request
	for _, req := range s.requests {
		if matchesFilter(req, filter) {
			matched = append(matched, req)
		}
	}
	// новые сверху, как и в postgres-реализации
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = len(matched)
	}
	start := (page - 1) * limit
	if start >= len(matched) {
		return []*domain.Request{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	result := make([]*domain.Request, 0, end-start)
	for _, req := range matched[start:end] {
		result = append(result, cloneRequest(req))
	}
	return result, total, nil
}

func matchesFilter(req *domain.Request, filter domain.RequestFilter) bool {
	if filter.UserID != nil && req.UserID != *filter.UserID {
		return false
	}
	if filter.Kind != nil && req.Kind != *filter.Kind {
		return false
	}
	if filter.Category != nil && req.Category != *filter.Category {
		return false
	}
	if len(filter.Statuses) > 0 && !hasStatus(filter.Statuses, req.Status) {
		return false
	}
	return true
}

func hasStatus(statuses []domain.RequestStatus, status domain.RequestStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func hasCategory(categories []domain.RequestCategory, category domain.RequestCategory) bool {
	for _, c := range categories {
		if c == category {
			return true
		}
	}
	return false
}

func (s *Store) ListByRequest(ctx context.Context, requestID string) ([]*domain.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var entries []*domain.AuditEntry
	for _, entry := range s.audit {
		if entry.RequestID == requestID {
			entries = append(entries, cloneAudit(entry))
		}
	}
	return entries, nil
}
