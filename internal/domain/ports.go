package domain

import (
	"context"
	"time"
)

// Tx - набор репозиториев, разделяющих одну транзакцию
type Tx interface {
	Ledger() LedgerTx
	Requests() RequestTx
	Audit() AuditTrail
	Events() EventLog
}

// UnitOfWork выполняет fn атомарно: при ошибке все изменения откатываются
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx Tx) error) error
}

// AttachmentRef - непрозрачная ссылка на файл во внешнем хранилище
type AttachmentRef struct {
	FileID string
	Ref    string
}

type AttachmentStore interface {
	Reference(ctx context.Context, fileID string) (*AttachmentRef, error)
}

type IdentityProvider interface {
	CurrentUser(ctx context.Context) (string, error)
}

// RequestEvent публикуется после каждого изменения заявки
type RequestEvent struct {
	RequestID  string        `json:"request_id"`
	UserID     string        `json:"user_id"`
	Kind       RequestKind   `json:"kind"`
	Category   string        `json:"category"`
	Amount     string        `json:"amount"`
	Status     RequestStatus `json:"status"`
	ActorID    string        `json:"actor_id"`
	Note       string        `json:"note,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

type AttributionEvent struct {
	IdempotencyKey string           `json:"idempotency_key"`
	Type           RevenueEventType `json:"type"`
	UserID         string           `json:"user_id"`
	Deltas         []LedgerDelta    `json:"deltas"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

type EventPublisher interface {
	PublishRequestEvent(ctx context.Context, event RequestEvent) error
	PublishAttributionEvent(ctx context.Context, event AttributionEvent) error
}
