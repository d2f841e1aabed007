package state

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a store connected to a miniredis instance.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	store, err := NewStore(&redis.Options{Addr: mr.Addr()}, "test-instance")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func testBatch(startMs int64, status BatchStatus) *BatchState {
	return &BatchState{
		ID:          uuid.New().String(),
		StartTimeMs: startMs,
		TotalSeeds:  3,
		InputSource: "/tmp/seeds.txt",
		Config: ConfigSnapshot{
			Provider:    "gemini",
			Model:       "gemini-1.5-flash",
			Concurrency: 2,
		},
		Completed: []SeedResult{},
		Failed:    []SeedFailure{},
		Status:    status,
	}
}

func TestNewStore(t *testing.T) {
	t.Run("rejects empty instance name", func(t *testing.T) {
		_, err := NewStore(&redis.Options{Addr: "localhost:6379"}, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "instance name cannot be empty")
	})

	t.Run("pings miniredis", func(t *testing.T) {
		store := setupTestStore(t)
		assert.NoError(t, store.Ping(context.Background()))
	})
}

func TestSaveAndGetBatch(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	b := testBatch(time.Now().UnixMilli(), StatusRunning)
	b.Completed = append(b.Completed, SeedResult{Seed: "a brooding lighthouse keeper", OutputLocation: "/out/keeper-1a2b"})
	b.Failed = append(b.Failed, SeedFailure{Seed: "a sentient fog", Error: "output contract violation"})
	b.CurrentIndex = 2

	require.NoError(t, store.SaveBatch(ctx, b))

	got, err := store.GetBatch(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
	assert.Equal(t, b.StartTimeMs, got.StartTimeMs)
	assert.Equal(t, b.TotalSeeds, got.TotalSeeds)
	assert.Equal(t, b.InputSource, got.InputSource)
	assert.Equal(t, b.Config, got.Config)
	assert.Equal(t, b.Completed, got.Completed)
	assert.Equal(t, b.Failed, got.Failed)
	assert.Equal(t, StatusRunning, got.Status)
	assert.Equal(t, 2, got.CurrentIndex)
}

func TestSaveBatchRejectsInvalid(t *testing.T) {
	store := setupTestStore(t)

	b := testBatch(1, StatusRunning)
	b.ID = "not-a-uuid"
	err := store.SaveBatch(context.Background(), b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid batch state")
}

func TestGetBatchNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetBatch(context.Background(), uuid.New().String())
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestDeleteBatch(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	b := testBatch(1, StatusCompleted)
	require.NoError(t, store.SaveBatch(ctx, b))
	require.NoError(t, store.DeleteBatch(ctx, b.ID))

	_, err := store.GetBatch(ctx, b.ID)
	assert.True(t, IsNotFound(err))

	batches, err := store.ListBatches(ctx)
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestListBatchesNewestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	oldest := testBatch(1000, StatusCompleted)
	middle := testBatch(2000, StatusCancelled)
	newest := testBatch(3000, StatusRunning)
	for _, b := range []*BatchState{middle, newest, oldest} {
		require.NoError(t, store.SaveBatch(ctx, b))
	}

	batches, err := store.ListBatches(ctx)
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Equal(t, newest.ID, batches[0].ID)
	assert.Equal(t, middle.ID, batches[1].ID)
	assert.Equal(t, oldest.ID, batches[2].ID)
}

func TestFindResumable(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		store := setupTestStore(t)
		_, err := store.FindResumable(ctx)
		assert.ErrorIs(t, err, ErrNoResumableBatch)
	})

	t.Run("only completed batches", func(t *testing.T) {
		store := setupTestStore(t)
		require.NoError(t, store.SaveBatch(ctx, testBatch(1000, StatusCompleted)))
		_, err := store.FindResumable(ctx)
		assert.ErrorIs(t, err, ErrNoResumableBatch)
	})

	t.Run("newest non-completed wins", func(t *testing.T) {
		store := setupTestStore(t)
		older := testBatch(1000, StatusCancelled)
		completed := testBatch(3000, StatusCompleted)
		interrupted := testBatch(2000, StatusRunning)
		for _, b := range []*BatchState{older, completed, interrupted} {
			require.NoError(t, store.SaveBatch(ctx, b))
		}

		got, err := store.FindResumable(ctx)
		require.NoError(t, err)
		assert.Equal(t, interrupted.ID, got.ID)
	})
}
