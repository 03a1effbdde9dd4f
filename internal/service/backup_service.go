package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sutaaa0/cashier-app-sub001/internal/audit"
	"github.com/sutaaa0/cashier-app-sub001/internal/dbadmin"
	"github.com/sutaaa0/cashier-app-sub001/internal/events"
	"github.com/sutaaa0/cashier-app-sub001/internal/monitoring"
	"github.com/sutaaa0/cashier-app-sub001/internal/oplock"
	"github.com/sutaaa0/cashier-app-sub001/internal/runlog"
	"github.com/sutaaa0/cashier-app-sub001/internal/settings"
	"github.com/sutaaa0/cashier-app-sub001/pkg/config"
	"github.com/sutaaa0/cashier-app-sub001/pkg/logger"
)

// BackupInfo describes one completed backup artifact.
type BackupInfo struct {
	Filename  string    `json:"filename"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// BackupService creates, lists and deletes pg_dump artifacts.
type BackupService struct {
	admin         dbadmin.Admin
	backupDir     string
	settingsStore *settings.Store
	retention     *RetentionService
	auditLog      *audit.AuditLogger
	runlogs       *runlog.Manager
	lock          *oplock.Lock
}

// NewBackupService creates a new backup service
func NewBackupService(
	admin dbadmin.Admin,
	cfg *config.Config,
	settingsStore *settings.Store,
	retention *RetentionService,
	auditLog *audit.AuditLogger,
	runlogs *runlog.Manager,
	lock *oplock.Lock,
) *BackupService {
	service := &BackupService{
		admin:         admin,
		backupDir:     cfg.BackupDir,
		settingsStore: settingsStore,
		retention:     retention,
		auditLog:      auditLog,
		runlogs:       runlogs,
		lock:          lock,
	}

	if err := os.MkdirAll(service.backupDir, 0o755); err != nil {
		logger.Error("BACKUP-SERVICE: Failed to create backup directory", err, map[string]interface{}{
			"path": service.backupDir,
		})
	}

	return service
}

// Run performs one backup: dump, verify, then sweep retention.
// trigger is "scheduler" or "api" and lands in the audit trail.
func (s *BackupService) Run(ctx context.Context, trigger string) (*BackupInfo, error) {
	if err := s.lock.Acquire("backup"); err != nil {
		monitoring.LockContentionTotal.Inc()
		s.auditLog.RecordBackupRun("", "lock busy", trigger, nil, "rejected", err)
		return nil, err
	}
	defer func() {
		if err := s.lock.Release(); err != nil {
			logger.Error("BACKUP-SERVICE: Failed to release operation lock", err, nil)
		}
	}()

	started := time.Now()
	filename := ArtifactName(started)
	targetPath := filepath.Join(s.backupDir, filename)

	log, err := s.runlogs.Begin(runlog.KindBackup, started)
	if err != nil {
		return nil, &BackupError{Stage: "prepare", Err: err}
	}
	defer log.Close()

	log.Printf("backup run started, trigger=%s", trigger)
	log.Printf("target artifact: %s", targetPath)

	info, err := s.performBackup(ctx, targetPath, log)
	duration := time.Since(started)

	if err != nil {
		log.Printf("backup failed after %s: %v", duration, err)
		monitoring.BackupRunsTotal.WithLabelValues(trigger, "failed").Inc()
		s.auditLog.RecordBackupRun(filename, "backup run", trigger, map[string]interface{}{
			"log_file": log.Name(),
		}, "failed", err)
		events.PublishBackupFailed(filename, err.Error(), trigger)
		// The partial artifact is left in place for inspection.
		return nil, err
	}

	log.Printf("backup completed in %s, size %d bytes", duration, info.SizeBytes)
	monitoring.BackupRunsTotal.WithLabelValues(trigger, "success").Inc()
	monitoring.BackupDurationSeconds.Observe(duration.Seconds())
	monitoring.BackupArtifactBytes.Set(float64(info.SizeBytes))
	s.auditLog.RecordBackupRun(filename, "backup run", trigger, map[string]interface{}{
		"size_bytes": info.SizeBytes,
		"log_file":   log.Name(),
	}, "success", nil)
	events.PublishBackupCompleted(filename, info.SizeBytes, duration.Milliseconds(), trigger)

	logger.Info("BACKUP-SERVICE: Backup completed", map[string]interface{}{
		"filename":   filename,
		"size_bytes": info.SizeBytes,
		"duration":   duration.String(),
		"trigger":    trigger,
	})

	s.sweepAfterBackup(log)

	return info, nil
}

// CreateArtifact dumps and verifies a new artifact without taking the
// operation lock. Callers must already hold it.
func (s *BackupService) CreateArtifact(ctx context.Context, startedAt time.Time, log *runlog.Writer) (*BackupInfo, error) {
	return s.performBackup(ctx, filepath.Join(s.backupDir, ArtifactName(startedAt)), log)
}

func (s *BackupService) performBackup(ctx context.Context, targetPath string, log *runlog.Writer) (*BackupInfo, error) {
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return nil, &BackupError{Stage: "prepare", Err: err}
	}

	log.Printf("running pg_dump")
	if err := s.admin.Dump(ctx, targetPath); err != nil {
		return nil, &BackupError{Stage: "dump", Err: err}
	}

	// Verify: the artifact must exist and be non-empty before the run may
	// be reported as successful.
	log.Printf("verifying artifact")
	stat, err := os.Stat(targetPath)
	if err != nil {
		return nil, &BackupError{Stage: "verify", Err: &VerificationError{Path: targetPath, Reason: "artifact missing after dump"}}
	}
	if stat.Size() == 0 {
		return nil, &BackupError{Stage: "verify", Err: &VerificationError{Path: targetPath, Reason: "artifact is empty"}}
	}

	return &BackupInfo{
		Filename:  filepath.Base(targetPath),
		SizeBytes: stat.Size(),
		CreatedAt: stat.ModTime(),
	}, nil
}

// sweepAfterBackup prunes expired artifacts using the current retention
// setting. A sweep failure never fails the backup that triggered it.
func (s *BackupService) sweepAfterBackup(log *runlog.Writer) {
	bs, err := s.settingsStore.LoadBackup()
	if err != nil {
		logger.Error("BACKUP-SERVICE: Failed to load settings for retention sweep", err, nil)
		return
	}

	deleted, err := s.retention.Sweep(bs.Retention)
	if err != nil {
		log.Printf("retention sweep failed: %v", err)
		return
	}
	log.Printf("retention sweep removed %d artifact(s), retention %d days", deleted, bs.Retention)
}

// List returns all backup artifacts, newest first.
func (s *BackupService) List() ([]BackupInfo, error) {
	entries, err := os.ReadDir(s.backupDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list backup directory: %w", err)
	}

	var out []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() || !IsArtifactName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		createdAt, err := parseArtifactTime(entry.Name())
		if err != nil {
			createdAt = info.ModTime()
		}
		out = append(out, BackupInfo{
			Filename:  entry.Name(),
			SizeBytes: info.Size(),
			CreatedAt: createdAt,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	monitoring.BackupArtifactCount.Set(float64(len(out)))
	return out, nil
}

// Path resolves an artifact name to its on-disk path for download. Names
// outside the artifact convention are rejected.
func (s *BackupService) Path(filename string) (string, error) {
	if !IsArtifactName(filename) {
		return "", fmt.Errorf("invalid backup filename %q", filename)
	}
	path := filepath.Join(s.backupDir, filename)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("backup %s not found: %w", filename, err)
	}
	return path, nil
}

// Delete removes one artifact by name.
func (s *BackupService) Delete(filename, trigger string) error {
	path, err := s.Path(filename)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		s.auditLog.RecordArtifactDeleted(filename, "manual delete", trigger, "failed", err)
		return fmt.Errorf("failed to delete backup %s: %w", filename, err)
	}

	s.auditLog.RecordArtifactDeleted(filename, "manual delete", trigger, "success", nil)
	events.PublishBackupDeleted(filename, "manual delete")
	logger.Info("BACKUP-SERVICE: Backup deleted", map[string]interface{}{
		"filename": filename,
		"trigger":  trigger,
	})
	return nil
}
