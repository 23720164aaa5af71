package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdhub/internal/queue"
)

func TestQueueRepository_LatestDefaultsToRunning(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	repo := queue.NewRepository(infra.PostgresDB)

	status, err := repo.Latest(context.Background())
	require.NoError(t, err)
	assert.False(t, status.PausedEvents)
	assert.False(t, status.PausedMasterdata)
}

func TestQueueRepository_InsertAndLatest(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	ctx := context.Background()
	repo := queue.NewRepository(infra.PostgresDB)

	first := &queue.Status{PausedEvents: false, PausedMasterdata: true, UpdatedBy: "operator-a"}
	require.NoError(t, repo.Insert(ctx, first))
	assert.NotZero(t, first.ID)

	second := &queue.Status{PausedEvents: true, PausedMasterdata: false, UpdatedBy: "operator-b"}
	require.NoError(t, repo.Insert(ctx, second))

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.True(t, latest.PausedEvents)
	assert.False(t, latest.PausedMasterdata)
	assert.Equal(t, "operator-b", latest.UpdatedBy)
}

func TestQueueRepository_HistoryNewestFirst(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	ctx := context.Background()
	repo := queue.NewRepository(infra.PostgresDB)

	for _, updatedBy := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Insert(ctx, &queue.Status{UpdatedBy: updatedBy}))
	}

	history, err := repo.History(ctx, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "c", history[0].UpdatedBy)
	assert.Equal(t, "b", history[1].UpdatedBy)
}

func TestQueueRepository_MasterdataPaused(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	ctx := context.Background()
	repo := queue.NewRepository(infra.PostgresDB)

	paused, err := repo.MasterdataPaused(ctx)
	require.NoError(t, err)
	assert.False(t, paused)

	require.NoError(t, repo.Insert(ctx, &queue.Status{PausedMasterdata: true, UpdatedBy: "operator"}))

	paused, err = repo.MasterdataPaused(ctx)
	require.NoError(t, err)
	assert.True(t, paused)
}
