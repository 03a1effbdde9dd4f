package events

// PublishBackupCompleted publishes a successful backup run
func PublishBackupCompleted(filename string, sizeBytes int64, durationMS int64, triggerBy string) {
	GetEventBus().Publish(Event{
		Type:    EventBackupCompleted,
		Source:  "backup_service",
		Success: true,
		Data: map[string]interface{}{
			"filename":    filename,
			"size_bytes":  sizeBytes,
			"duration_ms": durationMS,
			"trigger_by":  triggerBy,
		},
	})
}

// PublishBackupFailed publishes a failed backup run
func PublishBackupFailed(filename, reason, triggerBy string) {
	GetEventBus().Publish(Event{
		Type:    EventBackupFailed,
		Source:  "backup_service",
		Success: false,
		Data: map[string]interface{}{
			"filename":   filename,
			"reason":     reason,
			"trigger_by": triggerBy,
		},
	})
}

// PublishBackupDeleted publishes a backup artifact removal
func PublishBackupDeleted(filename, reason string) {
	GetEventBus().Publish(Event{
		Type:    EventBackupDeleted,
		Source:  "retention_service",
		Success: true,
		Data: map[string]interface{}{
			"filename": filename,
			"reason":   reason,
		},
	})
}

// PublishResetCompleted publishes a successful reset run
func PublishResetCompleted(mode, backupFile, logFile string, durationMS int64, triggerBy string) {
	GetEventBus().Publish(Event{
		Type:    EventResetCompleted,
		Source:  "reset_service",
		Success: true,
		Data: map[string]interface{}{
			"mode":        mode,
			"backup_file": backupFile,
			"log_file":    logFile,
			"duration_ms": durationMS,
			"trigger_by":  triggerBy,
		},
	})
}

// PublishResetFailed publishes a failed reset run
func PublishResetFailed(mode, stage, reason, triggerBy string) {
	GetEventBus().Publish(Event{
		Type:    EventResetFailed,
		Source:  "reset_service",
		Success: false,
		Data: map[string]interface{}{
			"mode":       mode,
			"stage":      stage,
			"reason":     reason,
			"trigger_by": triggerBy,
		},
	})
}

// PublishRetentionSweep publishes the outcome of a retention sweep
func PublishRetentionSweep(retentionDays, deleted int) {
	GetEventBus().Publish(Event{
		Type:    EventRetentionSweep,
		Source:  "retention_service",
		Success: true,
		Data: map[string]interface{}{
			"retention_days": retentionDays,
			"deleted":        deleted,
		},
	})
}

// PublishLockReclaimed publishes a stale operation lock takeover
func PublishLockReclaimed(ageSeconds float64) {
	GetEventBus().Publish(Event{
		Type:    EventLockReclaimed,
		Source:  "oplock",
		Success: true,
		Data: map[string]interface{}{
			"age_seconds": ageSeconds,
		},
	})
}
