package domain

import (
	"sync"
	"time"
)

// SyncStatus is the terminal classification of one identity within a run.
type SyncStatus string

const (
	StatusProcessed SyncStatus = "processed"
	StatusSkipped   SyncStatus = "skipped"
	StatusFailed    SyncStatus = "failed"
)

// SyncOutcome partitions the identities of one run into processed, skipped and
// failed buckets. Every submitted identity lands in exactly one bucket, except
// identities left unresolved by a cancelled run, which are absent.
type SyncOutcome struct {
	mu        sync.Mutex
	Processed []string          `json:"processed"`
	Skipped   []string          `json:"skipped"`
	Failed    map[string]string `json:"failed"`
}

func NewSyncOutcome() *SyncOutcome {
	return &SyncOutcome{Failed: make(map[string]string)}
}

// Record files an identity under its terminal status. Failed entries carry the
// error reason. Safe for concurrent use within a batch.
func (o *SyncOutcome) Record(email string, status SyncStatus, reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch status {
	case StatusProcessed:
		o.Processed = append(o.Processed, email)
	case StatusSkipped:
		o.Skipped = append(o.Skipped, email)
	case StatusFailed:
		o.Failed[email] = reason
	}
}

// Total returns the number of identities that reached a terminal state.
func (o *SyncOutcome) Total() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.Processed) + len(o.Skipped) + len(o.Failed)
}

// RunReport is the persisted record of one synchronization run.
type RunReport struct {
	ID         string       `json:"id"`
	Domain     string       `json:"domain"`
	TemplateID string       `json:"template_id"`
	DryRun     bool         `json:"dry_run"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Outcome    *SyncOutcome `json:"outcome"`
}
