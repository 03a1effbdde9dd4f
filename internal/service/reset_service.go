package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sutaaa0/cashier-app-sub001/internal/audit"
	"github.com/sutaaa0/cashier-app-sub001/internal/dbadmin"
	"github.com/sutaaa0/cashier-app-sub001/internal/events"
	"github.com/sutaaa0/cashier-app-sub001/internal/models"
	"github.com/sutaaa0/cashier-app-sub001/internal/monitoring"
	"github.com/sutaaa0/cashier-app-sub001/internal/oplock"
	"github.com/sutaaa0/cashier-app-sub001/internal/runlog"
	"github.com/sutaaa0/cashier-app-sub001/internal/settings"
	"github.com/sutaaa0/cashier-app-sub001/pkg/config"
	"github.com/sutaaa0/cashier-app-sub001/pkg/logger"
)

// ResetMode distinguishes the two reset strategies.
type ResetMode string

const (
	// ModeSelective wipes transactional tables and keeps master data.
	ModeSelective ResetMode = "selective"
	// ModeFull drops and recreates the whole database.
	ModeFull ResetMode = "full"
)

// ResetRequest describes one reset invocation.
type ResetRequest struct {
	// ConfirmationCode must match the stored code for API-triggered runs.
	ConfirmationCode string
	// PreserveMasterData overrides the stored setting when non-nil, so a
	// caller always gets the mode they asked for.
	PreserveMasterData *bool
	// Trigger is "api" or "scheduler". Scheduler runs skip the code check.
	Trigger string
}

// TableOutcome records the per-table result of a selective reset.
type TableOutcome struct {
	Table   string `json:"table"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ResetReport summarizes one reset run.
type ResetReport struct {
	Mode       ResetMode      `json:"mode"`
	BackupFile string         `json:"backup_file"`
	LogFile    string         `json:"log_file"`
	Success    bool           `json:"success"`
	StartedAt  time.Time      `json:"started_at"`
	Duration   string         `json:"duration"`
	Outcomes   []TableOutcome `json:"outcomes,omitempty"`
}

// ResetService wipes the transactional data or rebuilds the whole database.
// Every run takes the operation lock, creates a safety backup first, and
// writes a per-run log; no destructive statement runs before the backup has
// been verified.
type ResetService struct {
	admin         dbadmin.Admin
	backupSvc     *BackupService
	settingsStore *settings.Store
	auditLog      *audit.AuditLogger
	runlogs       *runlog.Manager
	lock          *oplock.Lock
	backupDir     string
	adminEmail    string
	adminPassword string
	seedAdmin     func(email, password string) error
}

// NewResetService creates a new reset service
func NewResetService(
	admin dbadmin.Admin,
	backupSvc *BackupService,
	cfg *config.Config,
	settingsStore *settings.Store,
	auditLog *audit.AuditLogger,
	runlogs *runlog.Manager,
	lock *oplock.Lock,
	seedAdmin func(email, password string) error,
) *ResetService {
	return &ResetService{
		admin:         admin,
		backupSvc:     backupSvc,
		settingsStore: settingsStore,
		auditLog:      auditLog,
		runlogs:       runlogs,
		lock:          lock,
		backupDir:     cfg.BackupDir,
		adminEmail:    cfg.AdminEmail,
		adminPassword: cfg.AdminPassword,
		seedAdmin:     seedAdmin,
	}
}

// Run performs one reset. preserveMasterData selects the selective strategy,
// otherwise the database is dropped and rebuilt; the request value wins over
// the stored setting, which is only a fallback for requests that omit it.
func (s *ResetService) Run(ctx context.Context, req ResetRequest) (*ResetReport, error) {
	rs, err := s.settingsStore.LoadReset()
	if err != nil {
		return nil, err
	}

	if req.Trigger != "scheduler" && req.ConfirmationCode != rs.ConfirmationCode {
		s.auditLog.RecordResetRun("", "wrong confirmation code", req.Trigger, nil, "rejected", ErrConfirmationMismatch)
		return nil, ErrConfirmationMismatch
	}

	preserve := rs.PreserveMasterData
	if req.PreserveMasterData != nil {
		preserve = *req.PreserveMasterData
	}
	mode := ModeFull
	if preserve {
		mode = ModeSelective
	}

	if err := s.lock.Acquire("reset"); err != nil {
		monitoring.LockContentionTotal.Inc()
		s.auditLog.RecordResetRun("", "lock busy", req.Trigger, map[string]interface{}{"mode": string(mode)}, "rejected", err)
		return nil, err
	}
	defer func() {
		if err := s.lock.Release(); err != nil {
			logger.Error("RESET-SERVICE: Failed to release operation lock", err, nil)
		}
	}()

	started := time.Now()
	log, err := s.runlogs.Begin(runlog.KindReset, started)
	if err != nil {
		return nil, &ResetError{Stage: "prepare", Err: err}
	}
	defer log.Close()

	report := &ResetReport{
		Mode:      mode,
		LogFile:   log.Name(),
		StartedAt: started,
	}

	log.Printf("reset run started, mode=%s trigger=%s", mode, req.Trigger)

	runErr := s.perform(ctx, mode, report, log)
	report.Duration = time.Since(started).String()
	report.Success = runErr == nil

	result := "success"
	if runErr != nil {
		result = "failed"
		log.Printf("reset failed: %v", runErr)
	} else {
		log.Printf("reset completed in %s", report.Duration)
	}

	monitoring.ResetRunsTotal.WithLabelValues(string(mode), req.Trigger, result).Inc()
	s.auditLog.RecordResetRun(report.BackupFile, "reset run", req.Trigger, map[string]interface{}{
		"mode":     string(mode),
		"log_file": report.LogFile,
	}, result, runErr)

	if runErr != nil {
		stage := "unknown"
		var rerr *ResetError
		if errors.As(runErr, &rerr) {
			stage = rerr.Stage
		}
		events.PublishResetFailed(string(mode), stage, runErr.Error(), req.Trigger)
		return report, runErr
	}

	monitoring.ResetDurationSeconds.Observe(time.Since(started).Seconds())
	events.PublishResetCompleted(string(mode), report.BackupFile, report.LogFile, time.Since(started).Milliseconds(), req.Trigger)
	logger.Info("RESET-SERVICE: Reset completed", map[string]interface{}{
		"mode":        string(mode),
		"backup_file": report.BackupFile,
		"duration":    report.Duration,
		"trigger":     req.Trigger,
	})
	return report, nil
}

func (s *ResetService) perform(ctx context.Context, mode ResetMode, report *ResetReport, log *runlog.Writer) error {
	// Safety backup. If this fails nothing destructive may happen.
	log.Printf("creating safety backup")
	backupInfo, err := s.backupSvc.CreateArtifact(ctx, report.StartedAt, log)
	if err != nil {
		return &ResetError{Stage: "pre_backup", Err: err}
	}
	report.BackupFile = backupInfo.Filename
	log.Printf("safety backup verified: %s (%d bytes)", backupInfo.Filename, backupInfo.SizeBytes)

	if err := s.exportMasterCSV(ctx, report.StartedAt, log); err != nil {
		return &ResetError{Stage: "master_csv", Err: err}
	}

	var masterBefore map[string]int64
	if mode == ModeSelective {
		masterBefore, err = s.countMasterRows(ctx, log)
		if err != nil {
			return &ResetError{Stage: "precount", Err: err}
		}
	}

	log.Printf("terminating other database sessions")
	if err := s.admin.TerminateOtherSessions(ctx); err != nil {
		return &ResetError{Stage: "disconnect", Err: err}
	}

	switch mode {
	case ModeSelective:
		if err := s.wipeTransactionalTables(ctx, report, log); err != nil {
			return err
		}
	case ModeFull:
		log.Printf("dropping and recreating database")
		if err := s.admin.DropAndRecreate(ctx); err != nil {
			return &ResetError{Stage: "drop_recreate", Err: err}
		}

		log.Printf("re-initializing schema")
		if err := s.admin.InitSchema(ctx); err != nil {
			return &ResetError{Stage: "schema_init", Err: err}
		}

		log.Printf("seeding default admin account")
		if err := s.seedAdmin(s.adminEmail, s.adminPassword); err != nil {
			return &ResetError{Stage: "admin_seed", Err: err}
		}
	}

	return s.verify(ctx, mode, masterBefore, log)
}

// countMasterRows snapshots master table row counts so verification can prove
// a selective reset left them untouched.
func (s *ResetService) countMasterRows(ctx context.Context, log *runlog.Writer) (map[string]int64, error) {
	counts := make(map[string]int64, len(models.MasterTables()))
	for _, table := range models.MasterTables() {
		count, err := s.admin.CountRows(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = count
		log.Printf("master table %s: %d rows before reset", table, count)
	}
	return counts, nil
}

// wipeTransactionalTables deletes rows leaf-to-root and restarts identity
// sequences. The statements first run as one script; if that fails they are
// retried one by one so the report shows exactly which table refused.
func (s *ResetService) wipeTransactionalTables(ctx context.Context, report *ResetReport, log *runlog.Writer) error {
	tables := models.TransactionalTables()

	var stmts []string
	stmts = append(stmts, "SET session_replication_role = replica;")
	for _, table := range tables {
		stmts = append(stmts, fmt.Sprintf("DELETE FROM %s;", table))
	}
	for _, table := range tables {
		stmts = append(stmts, fmt.Sprintf("ALTER SEQUENCE IF EXISTS %s_id_seq RESTART WITH 1;", table))
	}
	stmts = append(stmts, "SET session_replication_role = origin;")

	log.Printf("deleting rows from %d transactional tables", len(tables))
	if err := s.admin.ExecStatement(ctx, strings.Join(stmts, "\n")); err == nil {
		for _, table := range tables {
			report.Outcomes = append(report.Outcomes, TableOutcome{Table: table, Success: true})
		}
		return nil
	} else {
		log.Printf("bulk wipe failed, retrying per table: %v", err)
	}

	// Per-table fallback. Replication role guards run separately so a
	// failure in the middle still restores the original role.
	if err := s.admin.ExecStatement(ctx, "SET session_replication_role = replica;"); err != nil {
		return &ResetError{Stage: "delete_rows", Err: err}
	}
	defer func() {
		if err := s.admin.ExecStatement(ctx, "SET session_replication_role = origin;"); err != nil {
			logger.Error("RESET-SERVICE: Failed to restore replication role", err, nil)
		}
	}()

	var failed int
	for _, table := range tables {
		outcome := TableOutcome{Table: table, Success: true}

		if err := s.admin.ExecStatement(ctx, fmt.Sprintf("DELETE FROM %s;", table)); err != nil {
			outcome.Success = false
			outcome.Error = err.Error()
			failed++
			log.Printf("table %s: delete failed: %v", table, err)
		} else {
			if err := s.admin.ExecStatement(ctx, fmt.Sprintf("ALTER SEQUENCE IF EXISTS %s_id_seq RESTART WITH 1;", table)); err != nil {
				log.Printf("table %s: sequence restart failed: %v", table, err)
			}
			log.Printf("table %s: wiped", table)
		}

		report.Outcomes = append(report.Outcomes, outcome)
	}

	if failed > 0 {
		return &ResetError{Stage: "delete_rows", Err: fmt.Errorf("%d of %d tables failed to reset", failed, len(tables))}
	}
	return nil
}

// exportMasterCSV snapshots the master tables to CSV as a secondary safety
// net alongside the binary dump.
func (s *ResetService) exportMasterCSV(ctx context.Context, startedAt time.Time, log *runlog.Writer) error {
	stamp := strings.TrimSuffix(strings.TrimPrefix(ArtifactName(startedAt), artifactPrefix), artifactSuffix)
	dir := filepath.Join(s.backupDir, "master-"+stamp)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create master export directory: %w", err)
	}

	for _, table := range models.MasterTables() {
		target := filepath.Join(dir, table+".csv")
		log.Printf("exporting master table %s", table)
		if err := s.admin.ExportTableCSV(ctx, table, target); err != nil {
			return fmt.Errorf("failed to export %s: %w", table, err)
		}
	}

	log.Printf("master data exported to %s", dir)
	return nil
}

// verify checks the post-reset state: transactional tables must be empty, a
// selective reset must leave master tables exactly as counted beforehand, and
// after a full reset the admin account must exist.
func (s *ResetService) verify(ctx context.Context, mode ResetMode, masterBefore map[string]int64, log *runlog.Writer) error {
	log.Printf("verifying post-reset state")

	for _, table := range models.TransactionalTables() {
		count, err := s.admin.CountRows(ctx, table)
		if err != nil {
			return &ResetError{Stage: "verify", Err: err}
		}
		if count != 0 {
			return &ResetError{Stage: "verify", Err: fmt.Errorf("table %s still has %d rows", table, count)}
		}
		log.Printf("table %s: 0 rows", table)
	}

	if mode == ModeSelective {
		for _, table := range models.MasterTables() {
			count, err := s.admin.CountRows(ctx, table)
			if err != nil {
				return &ResetError{Stage: "verify", Err: err}
			}
			if count != masterBefore[table] {
				return &ResetError{Stage: "verify", Err: fmt.Errorf(
					"master table %s changed from %d to %d rows", table, masterBefore[table], count)}
			}
			log.Printf("master table %s: %d rows, unchanged", table, count)
		}
	}

	if mode == ModeFull {
		count, err := s.admin.CountRows(ctx, "users")
		if err != nil {
			return &ResetError{Stage: "verify", Err: err}
		}
		if count == 0 {
			return &ResetError{Stage: "verify", Err: fmt.Errorf("no admin account after full reset")}
		}
	}

	log.Printf("verification passed")
	return nil
}
