package memory

import (
	"sync"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
)

type processedEvent struct {
	eventType domain.RevenueEventType
	deltas    []domain.LedgerDelta
}

// Store - хранилище в памяти для локального запуска и тестов.
// Транзакции сериализуются txMu; изменения копятся в tx и применяются разом при коммите
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	users    map[string]*domain.User
	deals    map[string]*domain.Deal
	edges    map[string]*domain.ShaveEdge
	ledger   map[domain.LedgerKey]*domain.LedgerEntry
	requests map[string]*domain.Request
	audit    []*domain.AuditEntry
	events   map[string]processedEvent
}

var (
	_ domain.UserRepository    = (*Store)(nil)
	_ domain.DealRepository    = (*Store)(nil)
	_ domain.ShaveRepository   = (*Store)(nil)
	_ domain.LedgerRepository  = (*Store)(nil)
	_ domain.RequestRepository = (*Store)(nil)
	_ domain.AuditRepository   = (*Store)(nil)
	_ domain.UnitOfWork        = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		users:    make(map[string]*domain.User),
		deals:    make(map[string]*domain.Deal),
		edges:    make(map[string]*domain.ShaveEdge),
		ledger:   make(map[domain.LedgerKey]*domain.LedgerEntry),
		requests: make(map[string]*domain.Request),
		events:   make(map[string]processedEvent),
	}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func cloneDeal(d *domain.Deal) *domain.Deal {
	c := *d
	return &c
}

func cloneEdge(e *domain.ShaveEdge) *domain.ShaveEdge {
	c := *e
	return &c
}

func cloneEntry(e *domain.LedgerEntry) *domain.LedgerEntry {
	c := *e
	return &c
}

func cloneRequest(r *domain.Request) *domain.Request {
	c := *r
	if r.ResolvedAt != nil {
		at := *r.ResolvedAt
		c.ResolvedAt = &at
	}
	return &c
}

func cloneAudit(a *domain.AuditEntry) *domain.AuditEntry {
	c := *a
	return &c
}
