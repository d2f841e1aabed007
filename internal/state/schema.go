package state

import "fmt"

// Redis key pattern helpers
//
// All keys are namespaced by instance name so multiple PackForge setups can
// share one Redis server.
//
// Key pattern: packforge:{instance}:batch:{batch_id}
// Index pattern: packforge:{instance}:batches (ZSET scored by start time)

// BatchKey returns the Redis key for a batch state hash.
func BatchKey(instanceName, batchID string) string {
	return fmt.Sprintf("packforge:%s:batch:%s", instanceName, batchID)
}

// BatchIndexKey returns the Redis key for the batch index ZSET. Scores are
// start timestamps in milliseconds, which is what makes "most recent
// resumable batch" discoverable without scanning unrelated keys.
func BatchIndexKey(instanceName string) string {
	return fmt.Sprintf("packforge:%s:batches", instanceName)
}
