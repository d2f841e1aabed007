package state

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTable(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		var buf bytes.Buffer
		n := FormatTable(&buf, nil, "default")
		assert.Equal(t, 0, n)
		assert.Contains(t, buf.String(), "No batches found for instance 'default'")
	})

	t.Run("renders rows and count", func(t *testing.T) {
		id := uuid.New().String()
		batches := []*BatchState{{
			ID:          id,
			StartTimeMs: time.Now().Add(-2 * time.Minute).UnixMilli(),
			TotalSeeds:  10,
			InputSource: "/data/seeds.txt",
			Completed:   []SeedResult{{Seed: "a"}, {Seed: "b"}},
			Failed:      []SeedFailure{{Seed: "c"}},
			Status:      StatusCancelled,
		}}

		var buf bytes.Buffer
		n := FormatTable(&buf, batches, "default")
		assert.Equal(t, 1, n)

		out := buf.String()
		assert.Contains(t, out, id[:8])
		assert.Contains(t, out, "cancelled")
		assert.Contains(t, out, "2m ago")
		assert.Contains(t, out, "2 ok, 1 fail/10")
		assert.Contains(t, out, "/data/seeds.txt")
		assert.Contains(t, out, "1 batch found")
	})

	t.Run("long source paths are truncated", func(t *testing.T) {
		long := "/very/long/path/" + strings.Repeat("x", 60) + "/seeds.txt"
		batches := []*BatchState{{
			ID:          uuid.New().String(),
			StartTimeMs: time.Now().UnixMilli(),
			InputSource: long,
			Status:      StatusRunning,
		}}

		var buf bytes.Buffer
		FormatTable(&buf, batches, "default")
		assert.Contains(t, buf.String(), "...")
		assert.NotContains(t, buf.String(), long)
	})
}

func TestFormatJSONL(t *testing.T) {
	batches := []*BatchState{
		{ID: uuid.New().String(), Status: StatusRunning, InputSource: "a.txt"},
		{ID: uuid.New().String(), Status: StatusCompleted, InputSource: "b.txt"},
	}

	var buf bytes.Buffer
	require.NoError(t, FormatJSONL(&buf, batches))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	for i, line := range lines {
		var decoded BatchState
		require.NoError(t, json.Unmarshal([]byte(line), &decoded))
		assert.Equal(t, batches[i].ID, decoded.ID)
	}
}
