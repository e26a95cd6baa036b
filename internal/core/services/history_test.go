package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfsift/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

func seededHistory(t *testing.T, n int) *memory.HistoryStore {
	t.Helper()
	store := memory.NewHistoryStore()
	for i := 0; i < n; i++ {
		rec := &domain.ScanRecord{
			ID:        fmt.Sprintf("run-%d", i),
			Query:     "invoice",
			State:     domain.RunStateCompleted,
			StartedAt: fixedNow.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.Save(context.Background(), rec))
	}
	return store
}

func TestHistoryService_List(t *testing.T) {
	svc := NewHistoryService(seededHistory(t, 3))

	records, err := svc.List(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "run-2", records[0].ID)

	_, err = svc.List(context.Background(), -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHistoryService_Get(t *testing.T) {
	svc := NewHistoryService(seededHistory(t, 1))

	rec, err := svc.Get(context.Background(), "run-0")
	require.NoError(t, err)
	assert.Equal(t, "invoice", rec.Query)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHistoryService_Prune(t *testing.T) {
	svc := NewHistoryService(seededHistory(t, 5))

	removed, err := svc.Prune(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = svc.Prune(context.Background(), -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
