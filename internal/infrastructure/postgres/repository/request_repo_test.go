package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func requestRows(status string) *sqlmock.Rows {
	created := time.Date(2025, 5, 6, 10, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{
		"id", "user_id", "kind", "subtype", "category", "ledger_category", "funded",
		"amount", "status", "created_at", "updated_at",
	}).AddRow("r1", "aff", "payout", "cpa", "payout:cpa", "cpa", true, "60.00", status, created, created)
}

var selectRequest = regexp.QuoteMeta(`SELECT * FROM "requests" WHERE id = $1`)

func transition() domain.Transition {
	return domain.Transition{
		RequestID:  "r1",
		From:       domain.OpenStatuses,
		To:         domain.StatusAccepted,
		ResolvedBy: "admin",
		At:         time.Date(2025, 5, 6, 11, 0, 0, 0, time.UTC),
	}
}

func TestTransitionRequest_Updates(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(selectRequest).WillReturnRows(requestRows("pending"))
	mock.ExpectExec(`UPDATE "requests" SET .+ WHERE \(id = \$\d+ AND status = \$\d+\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx := &requestTx{db: db}
	updated, previous, err := tx.TransitionRequest(context.Background(), transition())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, previous)
	assert.Equal(t, domain.StatusAccepted, updated.Status)
	assert.Equal(t, "admin", updated.ResolvedBy)
	assert.Equal(t, "60", updated.Amount.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionRequest_LostRace(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(selectRequest).WillReturnRows(requestRows("pending"))
	// другая транзакция успела сменить статус
	mock.ExpectExec(`UPDATE "requests" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	tx := &requestTx{db: db}
	_, _, err := tx.TransitionRequest(context.Background(), transition())
	assert.ErrorIs(t, err, domain.ErrNotPending)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionRequest_AlreadyResolved(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(selectRequest).WillReturnRows(requestRows("declined"))

	tx := &requestTx{db: db}
	_, previous, err := tx.TransitionRequest(context.Background(), transition())
	assert.ErrorIs(t, err, domain.ErrNotPending)
	assert.Equal(t, domain.StatusDeclined, previous)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionRequest_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(selectRequest).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	tx := &requestTx{db: db}
	_, _, err := tx.TransitionRequest(context.Background(), transition())
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)
}
