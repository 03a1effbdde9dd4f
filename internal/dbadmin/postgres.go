package dbadmin

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sutaaa0/cashier-app-sub001/internal/models"
	"github.com/sutaaa0/cashier-app-sub001/pkg/config"
	"github.com/sutaaa0/cashier-app-sub001/pkg/logger"
)

// StatementError reports a SQL statement that failed during a reset.
type StatementError struct {
	Statement string
	Err       error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("statement failed: %s: %v", e.Statement, e.Err)
}

func (e *StatementError) Unwrap() error {
	return e.Err
}

// Admin is the administrative database surface used by the backup and reset
// services.
type Admin interface {
	// Dump writes a pg_dump custom-format archive to targetPath.
	Dump(ctx context.Context, targetPath string) error
	// ExportTableCSV writes one table as CSV with a header row.
	ExportTableCSV(ctx context.Context, table, targetPath string) error
	// TerminateOtherSessions kicks every other connection off the database.
	TerminateOtherSessions(ctx context.Context) error
	// DropAndRecreate drops the application database and creates it empty.
	DropAndRecreate(ctx context.Context) error
	// ExecStatement runs one SQL statement on the application database.
	ExecStatement(ctx context.Context, sql string) error
	// CountRows returns the row count of one table.
	CountRows(ctx context.Context, table string) (int64, error)
	// InitSchema rebuilds the schema after a full reset.
	InitSchema(ctx context.Context) error
}

// PostgresAdmin implements Admin by shelling out to pg_dump/psql for work
// that needs the client tools and using the gorm connection for plain SQL.
type PostgresAdmin struct {
	conn       ConnInfo
	db         *gorm.DB
	pgDumpPath string
	psqlPath   string
	schemaFile string
	timeout    time.Duration
	logger     *logger.Logger
}

// NewPostgresAdmin builds an admin from the app configuration.
func NewPostgresAdmin(cfg *config.Config, db *gorm.DB, log *logger.Logger) (*PostgresAdmin, error) {
	conn, err := ParseURL(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return &PostgresAdmin{
		conn:       conn,
		db:         db,
		pgDumpPath: cfg.PgDumpPath,
		psqlPath:   cfg.PsqlPath,
		schemaFile: cfg.SchemaFile,
		timeout:    cfg.CommandTimeout,
		logger:     log,
	}, nil
}

func (a *PostgresAdmin) Dump(ctx context.Context, targetPath string) error {
	args := append(a.conn.CommandArgs(a.conn.Database),
		"--format=custom",
		"--no-owner",
		"--file", targetPath,
	)
	return a.runTool(ctx, a.pgDumpPath, args)
}

func (a *PostgresAdmin) ExportTableCSV(ctx context.Context, table, targetPath string) error {
	copyCmd := fmt.Sprintf(`\copy (SELECT * FROM %s) TO '%s' WITH CSV HEADER`, table, targetPath)
	args := append(a.conn.CommandArgs(a.conn.Database), "-c", copyCmd)
	return a.runTool(ctx, a.psqlPath, args)
}

// TerminateOtherSessions runs against the maintenance database so it still
// works while the application database is about to be dropped.
func (a *PostgresAdmin) TerminateOtherSessions(ctx context.Context) error {
	stmt := fmt.Sprintf(
		"SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = '%s' AND pid <> pg_backend_pid();",
		a.conn.Database,
	)
	args := append(a.conn.CommandArgs("postgres"), "-c", stmt)
	return a.runTool(ctx, a.psqlPath, args)
}

func (a *PostgresAdmin) DropAndRecreate(ctx context.Context) error {
	drop := fmt.Sprintf(`DROP DATABASE IF EXISTS "%s";`, a.conn.Database)
	create := fmt.Sprintf(`CREATE DATABASE "%s";`, a.conn.Database)

	args := append(a.conn.CommandArgs("postgres"), "-c", drop)
	if err := a.runTool(ctx, a.psqlPath, args); err != nil {
		return fmt.Errorf("failed to drop database: %w", err)
	}

	args = append(a.conn.CommandArgs("postgres"), "-c", create)
	if err := a.runTool(ctx, a.psqlPath, args); err != nil {
		return fmt.Errorf("failed to recreate database: %w", err)
	}
	return nil
}

func (a *PostgresAdmin) ExecStatement(ctx context.Context, sql string) error {
	if err := a.db.WithContext(ctx).Exec(sql).Error; err != nil {
		return &StatementError{Statement: sql, Err: err}
	}
	return nil
}

func (a *PostgresAdmin) CountRows(ctx context.Context, table string) (int64, error) {
	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if err := a.db.WithContext(ctx).Raw(query).Scan(&count).Error; err != nil {
		return 0, &StatementError{Statement: query, Err: err}
	}
	return count, nil
}

// InitSchema prefers the checked-in schema file; when it is absent the gorm
// models are migrated instead, which yields the same tables without indexes
// or seed data defined only in SQL.
func (a *PostgresAdmin) InitSchema(ctx context.Context) error {
	if _, err := os.Stat(a.schemaFile); err == nil {
		a.logger.Info("DB-ADMIN: Initializing schema from file", map[string]interface{}{
			"schema_file": a.schemaFile,
		})
		args := append(a.conn.CommandArgs(a.conn.Database),
			"--set", "ON_ERROR_STOP=1",
			"-f", a.schemaFile,
		)
		return a.runTool(ctx, a.psqlPath, args)
	}

	a.logger.Info("DB-ADMIN: Schema file absent, migrating models", map[string]interface{}{
		"schema_file": a.schemaFile,
	})
	if err := a.db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// runTool executes one client tool invocation under the configured timeout,
// surfacing the stderr tail on failure.
func (a *PostgresAdmin) runTool(ctx context.Context, tool string, args []string) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, tool, args...)
	cmd.Env = append(os.Environ(), a.conn.Env()...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	a.logger.Debug("DB-ADMIN: Client tool finished", map[string]interface{}{
		"tool":     tool,
		"duration": time.Since(start).String(),
		"success":  err == nil,
	})

	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if len(detail) > 500 {
			detail = detail[len(detail)-500:]
		}
		if detail != "" {
			return fmt.Errorf("%s failed: %w: %s", tool, err, detail)
		}
		return fmt.Errorf("%s failed: %w", tool, err)
	}
	return nil
}
