package repository

import (
	"context"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"gorm.io/gorm"
)

type DefaultUnitOfWork struct {
	db *gorm.DB
}

func NewDefaultUnitOfWork(db *gorm.DB) *DefaultUnitOfWork {
	return &DefaultUnitOfWork{db: db}
}

func (u *DefaultUnitOfWork) Do(ctx context.Context, fn func(tx domain.Tx) error) error {
	return u.db.WithContext(ctx).Transaction(func(txDB *gorm.DB) error {
		return fn(&gormTx{db: txDB})
	})
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) Ledger() domain.LedgerTx    { return &ledgerTx{db: t.db} }
func (t *gormTx) Requests() domain.RequestTx { return &requestTx{db: t.db} }
func (t *gormTx) Audit() domain.AuditTrail   { return &auditTx{db: t.db} }
func (t *gormTx) Events() domain.EventLog    { return &eventLogTx{db: t.db} }

var (
	_ domain.UnitOfWork        = (*DefaultUnitOfWork)(nil)
	_ domain.UserRepository    = (*DefaultUserRepository)(nil)
	_ domain.DealRepository    = (*DefaultDealRepository)(nil)
	_ domain.ShaveRepository   = (*DefaultShaveRepository)(nil)
	_ domain.LedgerRepository  = (*DefaultLedgerRepository)(nil)
	_ domain.RequestRepository = (*DefaultRequestRepository)(nil)
	_ domain.AuditRepository   = (*DefaultAuditRepository)(nil)
)
