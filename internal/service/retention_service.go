package service

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sutaaa0/cashier-app-sub001/internal/audit"
	"github.com/sutaaa0/cashier-app-sub001/internal/events"
	"github.com/sutaaa0/cashier-app-sub001/internal/monitoring"
	"github.com/sutaaa0/cashier-app-sub001/pkg/config"
	"github.com/sutaaa0/cashier-app-sub001/pkg/logger"
)

// RetentionService deletes backup artifacts older than the retention window.
// Only files matching the artifact naming convention are candidates; anything
// else in the backup directory is ignored.
type RetentionService struct {
	backupDir string
	auditLog  *audit.AuditLogger

	// for tests
	now func() time.Time
}

// NewRetentionService creates a new retention service
func NewRetentionService(cfg *config.Config, auditLog *audit.AuditLogger) *RetentionService {
	return &RetentionService{
		backupDir: cfg.BackupDir,
		auditLog:  auditLog,
		now:       time.Now,
	}
}

// Sweep removes artifacts older than retentionDays and returns how many were
// deleted. A file that fails to delete is logged and skipped; the sweep
// continues.
func (s *RetentionService) Sweep(retentionDays int) (int, error) {
	if retentionDays < 1 {
		return 0, fmt.Errorf("retention must be at least 1 day, got %d", retentionDays)
	}

	entries, err := os.ReadDir(s.backupDir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		monitoring.RetentionSweepsTotal.WithLabelValues("failed").Inc()
		return 0, fmt.Errorf("failed to list backup directory: %w", err)
	}

	cutoff := s.now().Add(-time.Duration(retentionDays) * 24 * time.Hour)
	deleted := 0

	for _, entry := range entries {
		if entry.IsDir() || !IsArtifactName(entry.Name()) {
			continue
		}

		createdAt, err := parseArtifactTime(entry.Name())
		if err != nil {
			// Name matched the convention but the stamp didn't parse;
			// fall back to filesystem time.
			info, ierr := entry.Info()
			if ierr != nil {
				continue
			}
			createdAt = info.ModTime()
		}

		if !createdAt.Before(cutoff) {
			continue
		}

		path := filepath.Join(s.backupDir, entry.Name())
		if err := os.Remove(path); err != nil {
			logger.Error("RETENTION-SERVICE: Failed to delete expired backup", err, map[string]interface{}{
				"filename": entry.Name(),
			})
			s.auditLog.RecordArtifactDeleted(entry.Name(), "retention expired", "retention_worker", "failed", err)
			continue
		}

		deleted++
		monitoring.RetentionDeletionsTotal.Inc()
		s.auditLog.RecordArtifactDeleted(entry.Name(), "retention expired", "retention_worker", "success", nil)
		events.PublishBackupDeleted(entry.Name(), "retention expired")
		logger.Info("RETENTION-SERVICE: Deleted expired backup", map[string]interface{}{
			"filename":       entry.Name(),
			"created_at":     createdAt.Format(time.RFC3339),
			"retention_days": retentionDays,
		})
	}

	monitoring.RetentionSweepsTotal.WithLabelValues("success").Inc()
	if deleted > 0 {
		events.PublishRetentionSweep(retentionDays, deleted)
		s.auditLog.Record(audit.AuditEntry{
			Action:    audit.ActionRetentionSweep,
			Reason:    fmt.Sprintf("retention %d days", retentionDays),
			TriggerBy: "retention_worker",
			Result:    "success",
			Details:   map[string]interface{}{"deleted": deleted},
		})
	}

	return deleted, nil
}
