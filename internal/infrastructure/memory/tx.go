package memory

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/shopspring/decimal"
)

// tx - незакоммиченные изменения поверх Store
type tx struct {
	s        *Store
	ledger   map[domain.LedgerKey]*domain.LedgerEntry
	requests map[string]*domain.Request
	audit    []*domain.AuditEntry
	events   map[string]processedEvent
}

func (s *Store) Do(ctx context.Context, fn func(tx domain.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	t := &tx{
		s:        s,
		ledger:   make(map[domain.LedgerKey]*domain.LedgerEntry),
		requests: make(map[string]*domain.Request),
		events:   make(map[string]processedEvent),
	}
	if err := fn(t); err != nil {
		return err
	}
	t.commit()
	return nil
}

func (t *tx) commit() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for key, entry := range t.ledger {
		t.s.ledger[key] = entry
	}
	for id, req := range t.requests {
		t.s.requests[id] = req
	}
	t.s.audit = append(t.s.audit, t.audit...)
	for key, event := range t.events {
		t.s.events[key] = event
	}
}

func (t *tx) Ledger() domain.LedgerTx    { return t }
func (t *tx) Requests() domain.RequestTx { return requestTx{t} }
func (t *tx) Audit() domain.AuditTrail   { return t }
func (t *tx) Events() domain.EventLog    { return t }

func (t *tx) LockEntry(ctx context.Context, key domain.LedgerKey) (*domain.LedgerEntry, error) {
	if entry, ok := t.ledger[key]; ok {
		return cloneEntry(entry), nil
	}
	t.s.mu.RLock()
	entry, ok := t.s.ledger[key]
	t.s.mu.RUnlock()
	if ok {
		return cloneEntry(entry), nil
	}
	return &domain.LedgerEntry{
		UserID:   key.UserID,
		Category: key.Category,
		Earned:   decimal.Zero,
		Paid:     decimal.Zero,
		Reserved: decimal.Zero,
	}, nil
}

func (t *tx) SaveEntry(ctx context.Context, entry *domain.LedgerEntry) error {
	t.ledger[entry.Key()] = cloneEntry(entry)
	return nil
}

func (t *tx) Append(ctx context.Context, entry *domain.AuditEntry) error {
	t.audit = append(t.audit, cloneAudit(entry))
	return nil
}

func (t *tx) Processed(ctx context.Context, key string) ([]domain.LedgerDelta, bool, error) {
	if event, ok := t.events[key]; ok {
		return append([]domain.LedgerDelta(nil), event.deltas...), true, nil
	}
	t.s.mu.RLock()
	event, ok := t.s.events[key]
	t.s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return append([]domain.LedgerDelta(nil), event.deltas...), true, nil
}

func (t *tx) MarkProcessed(ctx context.Context, key string, eventType domain.RevenueEventType, deltas []domain.LedgerDelta) ([]domain.LedgerDelta, bool, error) {
	if event, ok := t.events[key]; ok {
		return event.deltas, true, nil
	}
	t.s.mu.RLock()
	event, ok := t.s.events[key]
	t.s.mu.RUnlock()
	if ok {
		return append([]domain.LedgerDelta(nil), event.deltas...), true, nil
	}
	t.events[key] = processedEvent{
		eventType: eventType,
		deltas:    append([]domain.LedgerDelta(nil), deltas...),
	}
	return deltas, false, nil
}

type requestTx struct {
	t *tx
}

// snapshot - заявки с учетом незакоммиченных изменений
func (r requestTx) snapshot() []*domain.Request {
	r.t.s.mu.RLock()
	defer r.t.s.mu.RUnlock()
	all := make([]*domain.Request, 0, len(r.t.s.requests)+len(r.t.requests))
	for id, req := range r.t.s.requests {
		if _, staged := r.t.requests[id]; !staged {
			all = append(all, req)
		}
	}
	for _, req := range r.t.requests {
		all = append(all, req)
	}
	return all
}

func (r requestTx) get(id string) (*domain.Request, bool) {
	if req, ok := r.t.requests[id]; ok {
		return req, true
	}
	r.t.s.mu.RLock()
	defer r.t.s.mu.RUnlock()
	req, ok := r.t.s.requests[id]
	return req, ok
}

func (r requestTx) CreateRequest(ctx context.Context, request *domain.Request) error {
	if _, exists := r.get(request.ID); exists {
		return fmt.Errorf("request %s already exists", request.ID)
	}
	// то же ограничение, что и частичный уникальный индекс в postgres
	if hasStatus(domain.OpenStatuses, request.Status) {
		for _, req := range r.snapshot() {
			if req.UserID == request.UserID && req.Category == request.Category && hasStatus(domain.OpenStatuses, req.Status) {
				return domain.ErrDuplicatePending
			}
		}
	}
	r.t.requests[request.ID] = cloneRequest(request)
	return nil
}

func (r requestTx) TransitionRequest(ctx context.Context, tr domain.Transition) (*domain.Request, domain.RequestStatus, error) {
	current, ok := r.get(tr.RequestID)
	if !ok {
		return nil, "", domain.ErrRequestNotFound
	}
	previous := current.Status
	if !hasStatus(tr.From, previous) {
		return nil, previous, domain.ErrNotPending
	}

	updated := cloneRequest(current)
	updated.Status = tr.To
	updated.UpdatedAt = tr.At
	if tr.AdminNote != "" {
		updated.AdminNote = tr.AdminNote
	}
	if tr.To.Terminal() {
		at := tr.At
		updated.ResolvedAt = &at
		updated.ResolvedBy = tr.ResolvedBy
	}
	r.t.requests[updated.ID] = updated
	return cloneRequest(updated), previous, nil
}

func (r requestTx) FindOpenRequest(ctx context.Context, userID string, categories []domain.RequestCategory) (*domain.Request, error) {
	for _, req := range r.snapshot() {
		if req.UserID == userID && hasCategory(categories, req.Category) && hasStatus(domain.OpenStatuses, req.Status) {
			return cloneRequest(req), nil
		}
	}
	return nil, nil
}

func (r requestTx) LastClaim(ctx context.Context, userID string, categories []domain.RequestCategory, statuses []domain.RequestStatus) (*domain.Request, error) {
	var last *domain.Request
	for _, req := range r.snapshot() {
		if req.UserID != userID || !hasCategory(categories, req.Category) || !hasStatus(statuses, req.Status) {
			continue
		}
		if last == nil || req.CreatedAt.After(last.CreatedAt) {
			last = req
		}
	}
	if last == nil {
		return nil, nil
	}
	return cloneRequest(last), nil
}
