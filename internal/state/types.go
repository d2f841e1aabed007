// Package state persists batch progress snapshots so an interrupted batch
// can be resumed exactly. The store is the only reader/writer of the
// persisted form; the batch engine is the sole mutator of the in-memory
// state.
package state

import (
	"fmt"

	"github.com/google/uuid"
)

// BatchStatus is the lifecycle state of a batch.
type BatchStatus string

const (
	// StatusRunning means seeds are still being attempted (or the process
	// died mid-batch, which resume treats the same way).
	StatusRunning BatchStatus = "running"

	// StatusCompleted means every seed was attempted.
	StatusCompleted BatchStatus = "completed"

	// StatusCancelled means a sequential batch stopped on a failure with
	// unattempted seeds left pending for resume.
	StatusCancelled BatchStatus = "cancelled"
)

// Validate checks if the BatchStatus is a valid enum value.
func (s BatchStatus) Validate() error {
	switch s {
	case StatusRunning, StatusCompleted, StatusCancelled:
		return nil
	default:
		return fmt.Errorf("unknown batch status: %q", s)
	}
}

// SeedResult records one successfully generated seed and where its draft
// landed.
type SeedResult struct {
	Seed           string `json:"seed"`
	OutputLocation string `json:"output_location"`
}

// SeedFailure records one failed seed and why.
type SeedFailure struct {
	Seed  string `json:"seed"`
	Error string `json:"error"`
}

// ConfigSnapshot captures the generation parameters in effect when the
// batch was created. Resume reuses it verbatim so an interrupted batch can
// never silently change parameters mid-run.
type ConfigSnapshot struct {
	Provider        string `json:"provider"`
	Model           string `json:"model"`
	Template        string `json:"template,omitempty"` // path; empty means built-in
	Mode            string `json:"mode,omitempty"`
	Concurrency     int    `json:"concurrency"`
	MinIntervalMs   int64  `json:"min_interval_ms"`
	Sequential      bool   `json:"sequential"`
	ContinueOnError bool   `json:"continue_on_error"`
}

// BatchState is the crash-recoverable snapshot of one batch invocation.
// Created once at batch start, mutated by the batch engine after every seed
// attempt, persisted after every mutation.
type BatchState struct {
	ID           string         `json:"id"`            // UUID
	StartTimeMs  int64          `json:"start_time_ms"` // Unix timestamp in milliseconds
	TotalSeeds   int            `json:"total_seeds"`   // Fixed at creation
	InputSource  string         `json:"input_source"`  // Seed list reference, needed for resume
	Config       ConfigSnapshot `json:"config"`
	Completed    []SeedResult   `json:"completed"`
	Failed       []SeedFailure  `json:"failed"`
	Status       BatchStatus    `json:"status"`
	CurrentIndex int            `json:"current_index"` // Seeds attempted so far
}

// Validate checks if the BatchState has valid field values.
func (b *BatchState) Validate() error {
	if _, err := uuid.Parse(b.ID); err != nil {
		return fmt.Errorf("invalid batch ID: not a valid UUID")
	}
	if err := b.Status.Validate(); err != nil {
		return fmt.Errorf("invalid status: %w", err)
	}
	if b.TotalSeeds < 0 {
		return fmt.Errorf("invalid total_seeds: must be >= 0, got %d", b.TotalSeeds)
	}
	if b.InputSource == "" {
		return fmt.Errorf("input_source cannot be empty")
	}
	if attempted := len(b.Completed) + len(b.Failed); attempted > b.TotalSeeds {
		return fmt.Errorf("attempted seeds (%d) exceed total_seeds (%d)", attempted, b.TotalSeeds)
	}
	return nil
}

// Remaining computes the seeds still to attempt: original minus completed
// minus failed, by exact string match, preserving original order.
func (b *BatchState) Remaining(original []string) []string {
	attempted := make(map[string]bool, len(b.Completed)+len(b.Failed))
	for _, r := range b.Completed {
		attempted[r.Seed] = true
	}
	for _, f := range b.Failed {
		attempted[f.Seed] = true
	}

	var remaining []string
	for _, seed := range original {
		if !attempted[seed] {
			remaining = append(remaining, seed)
		}
	}
	return remaining
}
