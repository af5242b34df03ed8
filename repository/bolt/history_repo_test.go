package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailsig/sigsync/domain"
)

func openTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func report(id string, startedAt time.Time) *domain.RunReport {
	outcome := domain.NewSyncOutcome()
	outcome.Record("a@x.com", domain.StatusProcessed, "")
	outcome.Record("b@x.com", domain.StatusFailed, "write rejected")
	return &domain.RunReport{
		ID:         id,
		Domain:     "x.com",
		TemplateID: "default",
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(time.Minute),
		Outcome:    outcome,
	}
}

func TestHistoryStoreSaveAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	saved := report("run-1", time.Now())
	require.NoError(t, store.Save(ctx, saved))

	got, err := store.GetByID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "x.com", got.Domain)
	assert.Equal(t, []string{"a@x.com"}, got.Outcome.Processed)
	assert.Equal(t, "write rejected", got.Outcome.Failed["b@x.com"])
}

func TestHistoryStoreGetMissing(t *testing.T) {
	store := openTestStore(t)
	_, err := store.GetByID(context.Background(), "ghost")
	require.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestHistoryStoreListMostRecentFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, store.Save(ctx, report("run-1", base.Add(-2*time.Hour))))
	require.NoError(t, store.Save(ctx, report("run-2", base.Add(-time.Hour))))
	require.NoError(t, store.Save(ctx, report("run-3", base)))

	reports, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "run-3", reports[0].ID)
	assert.Equal(t, "run-2", reports[1].ID)
}

func TestHistoryStoreCleanup(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, store.Save(ctx, report("old", base.Add(-48*time.Hour))))
	require.NoError(t, store.Save(ctx, report("new", base)))

	require.NoError(t, store.Cleanup(base.Add(-24*time.Hour)))

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}

func TestHistoryStoreRejectsEmptyReport(t *testing.T) {
	store := openTestStore(t)
	err := store.Save(context.Background(), &domain.RunReport{})
	require.ErrorIs(t, err, domain.ErrInvalidPayload)
}
