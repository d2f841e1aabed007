package state

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// FormatTable writes batch states as a formatted table to the provided
// writer. Returns the number of batches formatted.
func FormatTable(w io.Writer, batches []*BatchState, instanceName string) int {
	if len(batches) == 0 {
		fmt.Fprintf(w, "No batches found for instance '%s'\n", instanceName)
		return 0
	}

	fmt.Fprintf(w, "Batches for instance '%s':\n\n", instanceName)

	fmt.Fprintf(w, "%-10s %-10s %-8s %-14s %s\n",
		"ID", "STATUS", "AGE", "PROGRESS", "SOURCE")
	fmt.Fprintf(w, "%-10s %-10s %-8s %-14s %s\n",
		"----------", "----------", "--------", "--------------", "----------------------------------------")

	for _, b := range batches {
		fmt.Fprintf(w, "%-10s %-10s %-8s %-14s %s\n",
			formatID(b.ID),
			string(b.Status),
			formatAge(b.StartTimeMs),
			formatProgress(b),
			formatSource(b.InputSource),
		)
	}

	countMsg := "batch"
	if len(batches) != 1 {
		countMsg = "batches"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(batches), countMsg)

	return len(batches)
}

// FormatJSONL writes batch states as line-delimited JSON to the provided
// writer, one batch per line, for processing with tools like jq.
func FormatJSONL(w io.Writer, batches []*BatchState) error {
	for _, b := range batches {
		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("failed to marshal batch state to JSON: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", string(data)); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}
	return nil
}

// formatID truncates a batch UUID to its first 8 characters for compact
// display.
func formatID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatProgress renders completed/failed/total counts.
func formatProgress(b *BatchState) string {
	return fmt.Sprintf("%d ok, %d fail/%d", len(b.Completed), len(b.Failed), b.TotalSeeds)
}

// formatSource truncates long input paths for table display.
func formatSource(source string) string {
	if source == "" {
		return "-"
	}
	if len(source) > 40 {
		return "..." + source[len(source)-37:]
	}
	return source
}

// formatAge formats a Unix millisecond timestamp as relative time like
// "2m ago" or "1h ago".
func formatAge(timestampMs int64) string {
	if timestampMs == 0 {
		return "-"
	}

	t := time.Unix(timestampMs/1000, (timestampMs%1000)*1000000)
	diff := time.Since(t)

	if diff < time.Minute {
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	} else if diff < time.Hour {
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	} else if diff < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
}
