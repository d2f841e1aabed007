package state

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Serialization helpers for converting between BatchState and Redis hashes.
//
// Redis stores hashes as string-to-string maps. List and struct fields are
// JSON-encoded into single hash fields, scalar fields stay individually
// readable.

// BatchToHash converts a BatchState to Redis hash format.
func BatchToHash(b *BatchState) (map[string]interface{}, error) {
	completedJSON, err := json.Marshal(b.Completed)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completed seeds: %w", err)
	}
	failedJSON, err := json.Marshal(b.Failed)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal failed seeds: %w", err)
	}
	configJSON, err := json.Marshal(b.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config snapshot: %w", err)
	}

	return map[string]interface{}{
		"id":            b.ID,
		"start_time_ms": b.StartTimeMs,
		"total_seeds":   b.TotalSeeds,
		"input_source":  b.InputSource,
		"config":        string(configJSON),
		"completed":     string(completedJSON),
		"failed":        string(failedJSON),
		"status":        string(b.Status),
		"current_index": b.CurrentIndex,
	}, nil
}

// HashToBatch converts a Redis hash back to a BatchState.
func HashToBatch(hash map[string]string) (*BatchState, error) {
	startTimeMs, err := strconv.ParseInt(hash["start_time_ms"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid start_time_ms field: %w", err)
	}
	totalSeeds, err := strconv.Atoi(hash["total_seeds"])
	if err != nil {
		return nil, fmt.Errorf("invalid total_seeds field: %w", err)
	}
	currentIndex, err := strconv.Atoi(hash["current_index"])
	if err != nil {
		return nil, fmt.Errorf("invalid current_index field: %w", err)
	}

	var config ConfigSnapshot
	if configJSON := hash["config"]; configJSON != "" {
		if err := json.Unmarshal([]byte(configJSON), &config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	var completed []SeedResult
	if completedJSON := hash["completed"]; completedJSON != "" {
		if err := json.Unmarshal([]byte(completedJSON), &completed); err != nil {
			return nil, fmt.Errorf("failed to unmarshal completed: %w", err)
		}
	}
	if completed == nil {
		completed = []SeedResult{}
	}

	var failed []SeedFailure
	if failedJSON := hash["failed"]; failedJSON != "" {
		if err := json.Unmarshal([]byte(failedJSON), &failed); err != nil {
			return nil, fmt.Errorf("failed to unmarshal failed: %w", err)
		}
	}
	if failed == nil {
		failed = []SeedFailure{}
	}

	return &BatchState{
		ID:           hash["id"],
		StartTimeMs:  startTimeMs,
		TotalSeeds:   totalSeeds,
		InputSource:  hash["input_source"],
		Config:       config,
		Completed:    completed,
		Failed:       failed,
		Status:       BatchStatus(hash["status"]),
		CurrentIndex: currentIndex,
	}, nil
}
