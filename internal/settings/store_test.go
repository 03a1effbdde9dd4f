package settings

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sutaaa0/cashier-app-sub001/pkg/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir(), logger.NewLogger(logger.ERROR, io.Discard, false))
}

func boolPtr(b bool) *bool                            { return &b }
func intPtr(n int) *int                               { return &n }
func strPtr(s string) *string                         { return &s }
func destPtr(d BackupDestination) *BackupDestination  { return &d }
func schedPtr(s ResetScheduleType) *ResetScheduleType { return &s }

func TestLoadBackupWritesDefaultsOnFirstAccess(t *testing.T) {
	store := newTestStore(t)

	got, err := store.LoadBackup()
	require.NoError(t, err)
	assert.Equal(t, DefaultBackupSettings(), got)

	// The defaults must now exist on disk.
	data, err := os.ReadFile(filepath.Join(store.dir, backupSettingsFile))
	require.NoError(t, err)

	var onDisk BackupSettings
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, got, onDisk)
}

func TestLoadResetWritesDefaultsOnFirstAccess(t *testing.T) {
	store := newTestStore(t)

	got, err := store.LoadReset()
	require.NoError(t, err)
	assert.Equal(t, DefaultResetSettings(), got)
	assert.FileExists(t, filepath.Join(store.dir, resetSettingsFile))
}

func TestSaveBackupPartialUpdate(t *testing.T) {
	store := newTestStore(t)

	got, err := store.SaveBackup(BackupSettingsUpdate{
		Schedule:  strPtr("30 2 * * *"),
		Retention: intPtr(14),
	})
	require.NoError(t, err)
	assert.Equal(t, "30 2 * * *", got.Schedule)
	assert.Equal(t, 14, got.Retention)
	// Untouched fields keep their defaults.
	assert.Equal(t, DefaultBackupSettings().AutoBackup, got.AutoBackup)
	assert.Equal(t, DestinationLocal, got.BackupDestination)

	// The update survives a reload.
	reloaded, err := store.LoadBackup()
	require.NoError(t, err)
	assert.Equal(t, got, reloaded)
}

func TestSaveBackupRetentionBounds(t *testing.T) {
	store := newTestStore(t)

	for _, days := range []int{0, -1, 366} {
		_, err := store.SaveBackup(BackupSettingsUpdate{Retention: intPtr(days)})
		require.Error(t, err, "retention %d must be rejected", days)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "retention", verr.Field)
	}

	for _, days := range []int{1, 365} {
		_, err := store.SaveBackup(BackupSettingsUpdate{Retention: intPtr(days)})
		assert.NoError(t, err, "retention %d must be accepted", days)
	}
}

func TestSaveBackupRejectsInvalidCron(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SaveBackup(BackupSettingsUpdate{Schedule: strPtr("@daily")})
	require.Error(t, err)

	// A rejected update leaves the stored schedule unchanged.
	got, err := store.LoadBackup()
	require.NoError(t, err)
	assert.Equal(t, DefaultBackupSettings().Schedule, got.Schedule)
}

func TestSaveBackupRejectsUnknownDestination(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SaveBackup(BackupSettingsUpdate{BackupDestination: destPtr("s3")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "backupDestination", verr.Field)
}

func TestSaveResetConfirmationCodeLength(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SaveReset(ResetSettingsUpdate{ConfirmationCode: strPtr("12345")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "confirmationCode", verr.Field)

	got, err := store.SaveReset(ResetSettingsUpdate{ConfirmationCode: strPtr("123456")})
	require.NoError(t, err)
	assert.Equal(t, "123456", got.ConfirmationCode)
}

func TestSaveResetScheduleType(t *testing.T) {
	store := newTestStore(t)

	for _, st := range []ResetScheduleType{ScheduleMonthly, ScheduleYearly, ScheduleBiennial, ScheduleQuinquennial} {
		got, err := store.SaveReset(ResetSettingsUpdate{ScheduleType: schedPtr(st)})
		require.NoError(t, err)
		assert.Equal(t, st, got.ScheduleType)
	}

	_, err := store.SaveReset(ResetSettingsUpdate{ScheduleType: schedPtr("WEEKLY")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "scheduleType", verr.Field)
}

func TestSaveResetTogglesFlags(t *testing.T) {
	store := newTestStore(t)

	got, err := store.SaveReset(ResetSettingsUpdate{
		AutoReset:          boolPtr(true),
		PreserveMasterData: boolPtr(false),
	})
	require.NoError(t, err)
	assert.True(t, got.AutoReset)
	assert.False(t, got.PreserveMasterData)

	reloaded, err := store.LoadReset()
	require.NoError(t, err)
	assert.Equal(t, got, reloaded)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SaveBackup(BackupSettingsUpdate{Retention: intPtr(7)})
	require.NoError(t, err)

	entries, err := os.ReadDir(store.dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-", "temp files must be renamed or removed")
	}
}
