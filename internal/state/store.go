package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrNoResumableBatch is returned by FindResumable when every persisted
// batch is completed or none exist.
var ErrNoResumableBatch = errors.New("no resumable batch found")

// Store provides instance-scoped Redis persistence for batch states.
// Each save is a single hash write plus an index update, so a reader never
// observes a half-written state.
type Store struct {
	rdb          *redis.Client
	instanceName string
}

// NewStore creates a batch state store for the given instance.
func NewStore(redisOpts *redis.Options, instanceName string) (*Store, error) {
	if instanceName == "" {
		return nil, fmt.Errorf("instance name cannot be empty")
	}
	return &Store{
		rdb:          redis.NewClient(redisOpts),
		instanceName: instanceName,
	}, nil
}

// Close closes the Redis connection. Implements io.Closer.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// Ping verifies Redis connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// SaveBatch persists a batch state snapshot and indexes it by start time.
// Called after every per-seed outcome; idempotent for identical states.
func (s *Store) SaveBatch(ctx context.Context, b *BatchState) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("invalid batch state: %w", err)
	}

	hash, err := BatchToHash(b)
	if err != nil {
		return fmt.Errorf("failed to serialize batch state: %w", err)
	}

	key := BatchKey(s.instanceName, b.ID)
	if err := s.rdb.HSet(ctx, key, hash).Err(); err != nil {
		return fmt.Errorf("failed to write batch state to Redis: %w", err)
	}

	z := redis.Z{Score: float64(b.StartTimeMs), Member: b.ID}
	if err := s.rdb.ZAdd(ctx, BatchIndexKey(s.instanceName), z).Err(); err != nil {
		return fmt.Errorf("failed to index batch state: %w", err)
	}

	return nil
}

// GetBatch retrieves a batch state by ID.
// Returns (nil, redis.Nil) if it doesn't exist; check with IsNotFound.
func (s *Store) GetBatch(ctx context.Context, batchID string) (*BatchState, error) {
	key := BatchKey(s.instanceName, batchID)

	hashData, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read batch state from Redis: %w", err)
	}
	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	b, err := HashToBatch(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize batch state: %w", err)
	}
	return b, nil
}

// DeleteBatch removes a batch state and its index entry. Called when a
// batch completes with zero failures; the snapshot has no further value.
func (s *Store) DeleteBatch(ctx context.Context, batchID string) error {
	if err := s.rdb.Del(ctx, BatchKey(s.instanceName, batchID)).Err(); err != nil {
		return fmt.Errorf("failed to delete batch state: %w", err)
	}
	if err := s.rdb.ZRem(ctx, BatchIndexKey(s.instanceName), batchID).Err(); err != nil {
		return fmt.Errorf("failed to remove batch from index: %w", err)
	}
	return nil
}

// ListBatches returns all persisted batch states, newest first. Index
// entries whose hash has been deleted out-of-band are skipped.
func (s *Store) ListBatches(ctx context.Context) ([]*BatchState, error) {
	ids, err := s.rdb.ZRevRange(ctx, BatchIndexKey(s.instanceName), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list batch index: %w", err)
	}

	batches := make([]*BatchState, 0, len(ids))
	for _, id := range ids {
		b, err := s.GetBatch(ctx, id)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, nil
}

// FindResumable locates the most recent batch that is not completed: one
// interrupted mid-run (still "running" on disk) or cancelled on failure.
// Returns ErrNoResumableBatch when there is none.
func (s *Store) FindResumable(ctx context.Context) (*BatchState, error) {
	batches, err := s.ListBatches(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range batches {
		if b.Status != StatusCompleted {
			return b, nil
		}
	}
	return nil, ErrNoResumableBatch
}

// IsNotFound returns true if the error is a Redis "key not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
