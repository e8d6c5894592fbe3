package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingRequest(id, userID string, createdAt time.Time) *domain.Request {
	return &domain.Request{
		ID:        id,
		UserID:    userID,
		Kind:      domain.KindExpense,
		Category:  domain.CategoryFor(domain.KindExpense, ""),
		Amount:    decimal.NewFromInt(10),
		Status:    domain.StatusPending,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestDo_RollbackDiscardsChanges(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	key := domain.LedgerKey{UserID: "u", Category: domain.CategoryCpa}
	boom := errors.New("boom")

	err := s.Do(ctx, func(tx domain.Tx) error {
		entry, err := tx.Ledger().LockEntry(ctx, key)
		require.NoError(t, err)
		entry.Earned = decimal.NewFromInt(5)
		require.NoError(t, tx.Ledger().SaveEntry(ctx, entry))
		require.NoError(t, tx.Requests().CreateRequest(ctx, pendingRequest("r1", "u", time.Now())))
		require.NoError(t, tx.Audit().Append(ctx, &domain.AuditEntry{ID: "a1", RequestID: "r1"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	entries, err := s.GetEntries(ctx, "u")
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = s.GetRequestByID(ctx, "r1")
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)

	audit, err := s.ListByRequest(ctx, "r1")
	require.NoError(t, err)
	assert.Empty(t, audit)
}

func TestDo_CommitAppliesChanges(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.Do(ctx, func(tx domain.Tx) error {
		return tx.Requests().CreateRequest(ctx, pendingRequest("r1", "u", time.Now()))
	}))

	req, err := s.GetRequestByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, req.Status)

	// возвращается копия
	req.Status = domain.StatusDeclined
	again, err := s.GetRequestByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, again.Status)
}

func TestCreateRequest_OneOpenPerCategory(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	now := time.Now()

	require.NoError(t, s.Do(ctx, func(tx domain.Tx) error {
		return tx.Requests().CreateRequest(ctx, pendingRequest("r1", "u", now))
	}))
	err := s.Do(ctx, func(tx domain.Tx) error {
		return tx.Requests().CreateRequest(ctx, pendingRequest("r2", "u", now))
	})
	assert.ErrorIs(t, err, domain.ErrDuplicatePending)

	// другой пользователь не конфликтует
	require.NoError(t, s.Do(ctx, func(tx domain.Tx) error {
		return tx.Requests().CreateRequest(ctx, pendingRequest("r3", "v", now))
	}))
}

func TestTransitionRequest_CheckThenSet(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	now := time.Now().UTC()

	require.NoError(t, s.Do(ctx, func(tx domain.Tx) error {
		return tx.Requests().CreateRequest(ctx, pendingRequest("r1", "u", now))
	}))

	tr := domain.Transition{
		RequestID:  "r1",
		From:       domain.OpenStatuses,
		To:         domain.StatusAccepted,
		ResolvedBy: "admin",
		At:         now.Add(time.Minute),
	}
	require.NoError(t, s.Do(ctx, func(tx domain.Tx) error {
		updated, previous, err := tx.Requests().TransitionRequest(ctx, tr)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, previous)
		assert.Equal(t, "admin", updated.ResolvedBy)
		require.NotNil(t, updated.ResolvedAt)
		return nil
	}))

	err := s.Do(ctx, func(tx domain.Tx) error {
		_, previous, err := tx.Requests().TransitionRequest(ctx, tr)
		assert.Equal(t, domain.StatusAccepted, previous)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotPending)

	err = s.Do(ctx, func(tx domain.Tx) error {
		_, _, err := tx.Requests().TransitionRequest(ctx, domain.Transition{RequestID: "missing", From: domain.OpenStatuses})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)
}

func TestListRequests_NewestFirstWithPaging(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Do(ctx, func(tx domain.Tx) error {
		for i, user := range []string{"a", "b", "c"} {
			if err := tx.Requests().CreateRequest(ctx, pendingRequest("r"+user, user, base.Add(time.Duration(i)*time.Hour))); err != nil {
				return err
			}
		}
		return nil
	}))

	page, total, err := s.ListRequests(ctx, domain.RequestFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "rc", page[0].ID)
	assert.Equal(t, "rb", page[1].ID)

	page, _, err = s.ListRequests(ctx, domain.RequestFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "ra", page[0].ID)

	user := "b"
	page, total, err = s.ListRequests(ctx, domain.RequestFilter{UserID: &user})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "rb", page[0].ID)
}

func TestMarkProcessed_ReturnsStoredDeltas(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	deltas := []domain.LedgerDelta{{UserID: "u", Category: domain.CategoryCpa, Amount: decimal.NewFromInt(7)}}

	require.NoError(t, s.Do(ctx, func(tx domain.Tx) error {
		_, replayed, err := tx.Events().MarkProcessed(ctx, "k1", domain.EventFtdConversion, deltas)
		assert.False(t, replayed)
		return err
	}))
	require.NoError(t, s.Do(ctx, func(tx domain.Tx) error {
		stored, replayed, err := tx.Events().MarkProcessed(ctx, "k1", domain.EventFtdConversion, nil)
		assert.True(t, replayed)
		assert.Equal(t, deltas, stored)
		return err
	}))
}

func TestProcessed_SeesCommittedAndStagedEvents(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	deltas := []domain.LedgerDelta{{UserID: "u", Category: domain.CategoryCpa, Amount: decimal.NewFromInt(7)}}

	require.NoError(t, s.Do(ctx, func(tx domain.Tx) error {
		_, found, err := tx.Events().Processed(ctx, "k1")
		require.NoError(t, err)
		assert.False(t, found)

		_, _, err = tx.Events().MarkProcessed(ctx, "k1", domain.EventFtdConversion, deltas)
		require.NoError(t, err)
		staged, found, err := tx.Events().Processed(ctx, "k1")
		assert.True(t, found)
		assert.Equal(t, deltas, staged)
		return err
	}))
	require.NoError(t, s.Do(ctx, func(tx domain.Tx) error {
		stored, found, err := tx.Events().Processed(ctx, "k1")
		assert.True(t, found)
		assert.Equal(t, deltas, stored)
		return err
	}))
}
