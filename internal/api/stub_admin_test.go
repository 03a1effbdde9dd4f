package api

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/sutaaa0/cashier-app-sub001/internal/audit"
	"github.com/sutaaa0/cashier-app-sub001/internal/oplock"
	"github.com/sutaaa0/cashier-app-sub001/internal/runlog"
	"github.com/sutaaa0/cashier-app-sub001/internal/service"
	"github.com/sutaaa0/cashier-app-sub001/internal/settings"
	"github.com/sutaaa0/cashier-app-sub001/pkg/config"
	"github.com/sutaaa0/cashier-app-sub001/pkg/logger"
)

// stubAdmin is a minimal Admin for driving the handlers through a real
// service stack without PostgreSQL or the client tools.
type stubAdmin struct {
	dumpData   []byte
	statements []string
	dropped    bool
	schemaInit bool
	counts     map[string]int64
}

func newStubAdmin() *stubAdmin {
	return &stubAdmin{
		dumpData: []byte("PGDMP stub archive"),
		counts:   map[string]int64{},
	}
}

func (s *stubAdmin) Dump(ctx context.Context, targetPath string) error {
	return os.WriteFile(targetPath, s.dumpData, 0o644)
}

func (s *stubAdmin) ExportTableCSV(ctx context.Context, table, targetPath string) error {
	return os.WriteFile(targetPath, []byte("id\n"), 0o644)
}

func (s *stubAdmin) TerminateOtherSessions(ctx context.Context) error {
	return nil
}

func (s *stubAdmin) DropAndRecreate(ctx context.Context) error {
	s.dropped = true
	return nil
}

func (s *stubAdmin) ExecStatement(ctx context.Context, sql string) error {
	s.statements = append(s.statements, sql)
	return nil
}

func (s *stubAdmin) CountRows(ctx context.Context, table string) (int64, error) {
	return s.counts[table], nil
}

func (s *stubAdmin) InitSchema(ctx context.Context) error {
	s.schemaInit = true
	return nil
}

type apiFixture struct {
	router *gin.Engine
	admin  *stubAdmin
	store  *settings.Store
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	base := t.TempDir()
	cfg := &config.Config{
		BackupDir:     filepath.Join(base, "backup"),
		DataDir:       filepath.Join(base, "data"),
		LogsDir:       filepath.Join(base, "logs"),
		AdminEmail:    "admin@cashier.local",
		AdminPassword: "admin123",
	}

	log := logger.NewLogger(logger.FATAL, io.Discard, false)
	auditLog := audit.NewAuditLogger(50)
	runlogs := runlog.NewManager(cfg.LogsDir)
	lock := oplock.New(cfg.DataDir, log, nil)
	store := settings.NewStore(cfg.DataDir, log)
	admin := newStubAdmin()

	retention := service.NewRetentionService(cfg, auditLog)
	backupSvc := service.NewBackupService(admin, cfg, store, retention, auditLog, runlogs, lock)
	resetSvc := service.NewResetService(admin, backupSvc, cfg, store, auditLog, runlogs, lock,
		func(email, password string) error {
			admin.counts["users"] = 1
			return nil
		})

	backupHandler := NewBackupHandler(backupSvc)
	resetHandler := NewResetHandler(resetSvc, runlogs)

	router := gin.New()
	router.POST("/api/backups", backupHandler.CreateBackup)
	router.POST("/api/reset", resetHandler.RunReset)

	return &apiFixture{router: router, admin: admin, store: store}
}
