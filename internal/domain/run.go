package domain

import "time"

// Run is one execution record for a source config. It is created in the
// running state, mutated only by its own orchestrator invocation, and
// immutable once finished. Runs are ordered most-recent-first.
type Run struct {
	ID         string     `db:"id"          json:"id"`
	ConfigID   string     `db:"config_id"   json:"config_id"`
	StartedAt  time.Time  `db:"started_at"  json:"started_at"`
	FinishedAt *time.Time `db:"finished_at" json:"finished_at,omitempty"`
	Status     Status     `db:"status"      json:"status"`
	FoundCount int        `db:"found_count" json:"found_count"`
	NewCount   int        `db:"new_count"   json:"new_count"`

	// Log holds the serialized event log. Historical rows may carry older
	// encodings (JSONL, concatenated objects, free text); the runlog package
	// decodes any of them.
	Log string `db:"log" json:"log,omitempty"`
}
