package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sutaaa0/cashier-app-sub001/internal/audit"
)

func newRetentionFixture(t *testing.T, now time.Time) (*RetentionService, string) {
	t.Helper()
	dir := t.TempDir()
	svc := &RetentionService{
		backupDir: dir,
		auditLog:  audit.NewAuditLogger(50),
		now:       func() time.Time { return now },
	}
	return svc, dir
}

func writeArtifactAged(t *testing.T, dir string, now time.Time, ageDays int) string {
	t.Helper()
	name := ArtifactName(now.Add(-time.Duration(ageDays) * 24 * time.Hour))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("archive"), 0o644))
	return name
}

func TestSweepDeletesOnlyExpiredArtifacts(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	svc, dir := newRetentionFixture(t, now)

	kept1 := writeArtifactAged(t, dir, now, 1)
	kept5 := writeArtifactAged(t, dir, now, 5)
	gone10 := writeArtifactAged(t, dir, now, 10)
	gone40 := writeArtifactAged(t, dir, now, 40)

	deleted, err := svc.Sweep(7)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	assert.FileExists(t, filepath.Join(dir, kept1))
	assert.FileExists(t, filepath.Join(dir, kept5))
	assert.NoFileExists(t, filepath.Join(dir, gone10))
	assert.NoFileExists(t, filepath.Join(dir, gone40))

	// A second sweep finds nothing left to delete
	deleted, err = svc.Sweep(7)
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
}

func TestSweepIgnoresForeignFiles(t *testing.T) {
	now := time.Now()
	svc, dir := newRetentionFixture(t, now)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema.sql"), []byte("CREATE TABLE"), 0o644))
	old := now.Add(-100 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "schema.sql"), old, old))

	deleted, err := svc.Sweep(7)
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
	assert.FileExists(t, filepath.Join(dir, "schema.sql"))
}

func TestSweepRejectsZeroRetention(t *testing.T) {
	svc, _ := newRetentionFixture(t, time.Now())

	_, err := svc.Sweep(0)
	assert.Error(t, err)
}

func TestSweepOnMissingDirectoryIsNoop(t *testing.T) {
	svc := &RetentionService{
		backupDir: filepath.Join(t.TempDir(), "nope"),
		auditLog:  audit.NewAuditLogger(10),
		now:       time.Now,
	}

	deleted, err := svc.Sweep(7)
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
}
