package state

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchStateValidate(t *testing.T) {
	valid := func() *BatchState {
		return &BatchState{
			ID:          uuid.New().String(),
			StartTimeMs: 1,
			TotalSeeds:  2,
			InputSource: "seeds.txt",
			Status:      StatusRunning,
		}
	}

	t.Run("valid state", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("invalid UUID", func(t *testing.T) {
		b := valid()
		b.ID = "nope"
		assert.Error(t, b.Validate())
	})

	t.Run("invalid status", func(t *testing.T) {
		b := valid()
		b.Status = "paused"
		assert.Error(t, b.Validate())
	})

	t.Run("empty input source", func(t *testing.T) {
		b := valid()
		b.InputSource = ""
		assert.Error(t, b.Validate())
	})

	t.Run("attempted exceeds total", func(t *testing.T) {
		b := valid()
		b.Completed = []SeedResult{{Seed: "1"}, {Seed: "2"}}
		b.Failed = []SeedFailure{{Seed: "3"}}
		assert.Error(t, b.Validate())
	})
}

func TestRemaining(t *testing.T) {
	t.Run("excludes completed and failed by exact match", func(t *testing.T) {
		b := &BatchState{
			Completed: []SeedResult{{Seed: "s1", OutputLocation: "/out/a"}},
			Failed:    []SeedFailure{{Seed: "s2", Error: "boom"}},
		}
		assert.Equal(t, []string{"s3"}, b.Remaining([]string{"s1", "s2", "s3"}))
	})

	t.Run("near-identical seeds are distinct", func(t *testing.T) {
		b := &BatchState{Completed: []SeedResult{{Seed: "a pirate"}}}
		assert.Equal(t, []string{"a pirate "}, b.Remaining([]string{"a pirate", "a pirate "}))
	})

	t.Run("nothing attempted returns everything in order", func(t *testing.T) {
		b := &BatchState{}
		assert.Equal(t, []string{"x", "y"}, b.Remaining([]string{"x", "y"}))
	})

	t.Run("everything attempted returns nil", func(t *testing.T) {
		b := &BatchState{
			Completed: []SeedResult{{Seed: "x"}},
			Failed:    []SeedFailure{{Seed: "y"}},
		}
		assert.Empty(t, b.Remaining([]string{"x", "y"}))
	})
}

func TestBatchHashRoundTrip(t *testing.T) {
	b := &BatchState{
		ID:          uuid.New().String(),
		StartTimeMs: 1712345678901,
		TotalSeeds:  5,
		InputSource: "/data/seeds.txt",
		Config: ConfigSnapshot{
			Provider:        "openai",
			Model:           "gpt-4o-mini",
			Mode:            "noir",
			Concurrency:     4,
			MinIntervalMs:   500,
			ContinueOnError: true,
		},
		Completed:    []SeedResult{{Seed: "s1", OutputLocation: "/out/1"}},
		Failed:       []SeedFailure{{Seed: "s2", Error: "generation failed"}},
		Status:       StatusCancelled,
		CurrentIndex: 2,
	}

	hash, err := BatchToHash(b)
	require.NoError(t, err)

	// Redis returns string values; simulate that.
	stringHash := make(map[string]string, len(hash))
	for k, v := range hash {
		stringHash[k] = fmt.Sprintf("%v", v)
	}

	got, err := HashToBatch(stringHash)
	require.NoError(t, err)
	assert.Equal(t, b, got)
}
