package domain

import (
	"context"
	"time"
)

type AuditAction string

const (
	AuditSubmit  AuditAction = "submit"
	AuditAccept  AuditAction = "accept"
	AuditDecline AuditAction = "decline"
	AuditDefer   AuditAction = "defer"
)

type AuditEntry struct {
	ID         string
	RequestID  string
	Action     AuditAction
	ActorID    string
	Note       string
	FromStatus RequestStatus
	ToStatus   RequestStatus
	At         time.Time
}

// AuditTrail - журнал только на добавление
type AuditTrail interface {
	Append(ctx context.Context, entry *AuditEntry) error
}

type AuditRepository interface {
	ListByRequest(ctx context.Context, requestID string) ([]*AuditEntry, error)
}
