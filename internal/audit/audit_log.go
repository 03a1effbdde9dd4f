package audit

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sutaaa0/cashier-app-sub001/pkg/logger"
)

// ActionType represents the type of action being audited
type ActionType string

const (
	ActionBackupRun      ActionType = "backup_run"
	ActionResetRun       ActionType = "reset_run"
	ActionRetentionSweep ActionType = "retention_sweep"
	ActionLockReclaimed  ActionType = "lock_reclaimed"
	ActionArtifactDelete ActionType = "artifact_deleted"
)

// AuditEntry represents a single audit log entry
type AuditEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Action    ActionType             `json:"action"`
	Artifact  string                 `json:"artifact,omitempty"` // backup file or run log name
	Reason    string                 `json:"reason"`
	Details   map[string]interface{} `json:"details,omitempty"`
	TriggerBy string                 `json:"trigger_by"` // "scheduler", "api", "retention_worker"
	Result    string                 `json:"result"`     // "success", "rejected", "failed"
	Error     string                 `json:"error,omitempty"`
}

// AuditLogger logs all destructive actions for accountability
type AuditLogger struct {
	entries []AuditEntry
	mu      sync.RWMutex
	maxSize int // Maximum entries to keep in memory
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(maxSize int) *AuditLogger {
	if maxSize <= 0 {
		maxSize = 1000 // Default
	}

	return &AuditLogger{
		entries: make([]AuditEntry, 0, maxSize),
		maxSize: maxSize,
	}
}

// Record adds an entry to the audit log
func (a *AuditLogger) Record(entry AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()

	entry.Timestamp = time.Now()

	a.entries = append(a.entries, entry)

	// Trim if exceeded max size (keep most recent)
	if len(a.entries) > a.maxSize {
		a.entries = a.entries[len(a.entries)-a.maxSize:]
	}

	fields := map[string]interface{}{
		"action":     entry.Action,
		"artifact":   entry.Artifact,
		"reason":     entry.Reason,
		"trigger_by": entry.TriggerBy,
		"result":     entry.Result,
	}

	if len(entry.Details) > 0 {
		detailsJSON, _ := json.Marshal(entry.Details)
		fields["details"] = string(detailsJSON)
	}

	if entry.Error != "" {
		fields["error"] = entry.Error
	}

	switch entry.Result {
	case "success":
		logger.Info("AUDIT: "+string(entry.Action), fields)
	case "rejected":
		logger.Warn("AUDIT: "+string(entry.Action)+" REJECTED", fields)
	case "failed":
		logger.Error("AUDIT: "+string(entry.Action)+" FAILED", nil, fields)
	default:
		logger.Info("AUDIT: "+string(entry.Action), fields)
	}
}

// RecordBackupRun records one backup attempt
func (a *AuditLogger) RecordBackupRun(artifact, reason, triggerBy string, details map[string]interface{}, result string, err error) {
	entry := AuditEntry{
		Action:    ActionBackupRun,
		Artifact:  artifact,
		Reason:    reason,
		Details:   details,
		TriggerBy: triggerBy,
		Result:    result,
	}

	if err != nil {
		entry.Error = err.Error()
	}

	a.Record(entry)
}

// RecordResetRun records one reset attempt
func (a *AuditLogger) RecordResetRun(artifact, reason, triggerBy string, details map[string]interface{}, result string, err error) {
	entry := AuditEntry{
		Action:    ActionResetRun,
		Artifact:  artifact,
		Reason:    reason,
		Details:   details,
		TriggerBy: triggerBy,
		Result:    result,
	}

	if err != nil {
		entry.Error = err.Error()
	}

	a.Record(entry)
}

// RecordArtifactDeleted records a backup artifact removal
func (a *AuditLogger) RecordArtifactDeleted(artifact, reason, triggerBy string, result string, err error) {
	entry := AuditEntry{
		Action:    ActionArtifactDelete,
		Artifact:  artifact,
		Reason:    reason,
		TriggerBy: triggerBy,
		Result:    result,
	}

	if err != nil {
		entry.Error = err.Error()
	}

	a.Record(entry)
}

// RecordLockReclaimed records a stale operation lock being taken over
func (a *AuditLogger) RecordLockReclaimed(age time.Duration, triggerBy string) {
	a.Record(AuditEntry{
		Action:    ActionLockReclaimed,
		Reason:    fmt.Sprintf("marker older than staleness threshold (age %s)", age),
		TriggerBy: triggerBy,
		Result:    "success",
	})
}

// GetRecent returns the N most recent audit entries
func (a *AuditLogger) GetRecent(n int) []AuditEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if n <= 0 || n > len(a.entries) {
		n = len(a.entries)
	}

	// Return most recent N entries (from end of slice)
	start := len(a.entries) - n
	result := make([]AuditEntry, n)
	copy(result, a.entries[start:])

	return result
}

// GetByAction returns all audit entries for a specific action type
func (a *AuditLogger) GetByAction(action ActionType) []AuditEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var result []AuditEntry
	for _, entry := range a.entries {
		if entry.Action == action {
			result = append(result, entry)
		}
	}

	return result
}

// Stats returns audit statistics
func (a *AuditLogger) Stats() map[string]interface{} {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := map[string]interface{}{
		"total_entries": len(a.entries),
		"max_size":      a.maxSize,
	}

	actionCounts := make(map[ActionType]int)
	resultCounts := make(map[string]int)

	for _, entry := range a.entries {
		actionCounts[entry.Action]++
		resultCounts[entry.Result]++
	}

	stats["by_action"] = actionCounts
	stats["by_result"] = resultCounts

	if len(a.entries) > 0 {
		lastEntry := a.entries[len(a.entries)-1]
		stats["last_action"] = lastEntry.Action
		stats["last_timestamp"] = lastEntry.Timestamp
	}

	return stats
}
