package audit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndGetRecent(t *testing.T) {
	a := NewAuditLogger(10)

	a.RecordBackupRun("backup-1.backup", "scheduled run", "scheduler", nil, "success", nil)
	a.RecordBackupRun("backup-2.backup", "manual run", "api", nil, "success", nil)
	a.RecordResetRun("reset-1.log", "monthly boundary", "scheduler", nil, "failed", errors.New("dump failed"))

	recent := a.GetRecent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, ActionBackupRun, recent[0].Action)
	assert.Equal(t, ActionResetRun, recent[1].Action)
	assert.Equal(t, "dump failed", recent[1].Error)
	assert.False(t, recent[1].Timestamp.IsZero())

	// n beyond the stored count returns everything
	assert.Len(t, a.GetRecent(100), 3)
}

func TestTrimKeepsMostRecent(t *testing.T) {
	a := NewAuditLogger(3)

	for i := 0; i < 5; i++ {
		a.RecordArtifactDeleted("backup-old.backup", "retention", "retention_worker", "success", nil)
	}
	a.RecordBackupRun("backup-new.backup", "scheduled run", "scheduler", nil, "success", nil)

	recent := a.GetRecent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, ActionBackupRun, recent[2].Action)
}

func TestGetByAction(t *testing.T) {
	a := NewAuditLogger(10)

	a.RecordBackupRun("backup-1.backup", "scheduled run", "scheduler", nil, "success", nil)
	a.RecordLockReclaimed(7*time.Minute, "scheduler")
	a.RecordBackupRun("backup-2.backup", "scheduled run", "scheduler", nil, "success", nil)

	backups := a.GetByAction(ActionBackupRun)
	assert.Len(t, backups, 2)

	reclaims := a.GetByAction(ActionLockReclaimed)
	require.Len(t, reclaims, 1)
	assert.Contains(t, reclaims[0].Reason, "staleness threshold")
}

func TestStats(t *testing.T) {
	a := NewAuditLogger(10)

	a.RecordBackupRun("backup-1.backup", "scheduled run", "scheduler", nil, "success", nil)
	a.RecordResetRun("reset-1.log", "api request", "api", nil, "rejected", nil)

	stats := a.Stats()
	assert.Equal(t, 2, stats["total_entries"])

	byAction := stats["by_action"].(map[ActionType]int)
	assert.Equal(t, 1, byAction[ActionBackupRun])
	assert.Equal(t, 1, byAction[ActionResetRun])

	byResult := stats["by_result"].(map[string]int)
	assert.Equal(t, 1, byResult["success"])
	assert.Equal(t, 1, byResult["rejected"])
	assert.Equal(t, ActionResetRun, stats["last_action"])
}
