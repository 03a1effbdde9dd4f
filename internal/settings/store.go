package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sutaaa0/cashier-app-sub001/internal/cron"
	"github.com/sutaaa0/cashier-app-sub001/pkg/logger"
)

const (
	backupSettingsFile = "backup-settings.json"
	resetSettingsFile  = "reset-settings.json"
)

// Store reads and writes the settings documents under a data directory.
// Files are created with defaults on first access, and every write goes
// through a temp file plus rename so a crash never leaves a torn document.
type Store struct {
	dir    string
	logger *logger.Logger
	mu     sync.Mutex
}

// NewStore creates a store rooted at dir.
func NewStore(dir string, log *logger.Logger) *Store {
	return &Store{dir: dir, logger: log}
}

// LoadBackup returns the persisted backup settings, writing defaults first if
// the file does not exist yet.
func (s *Store) LoadBackup() (BackupSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out BackupSettings
	if err := s.load(backupSettingsFile, &out, func() interface{} {
		d := DefaultBackupSettings()
		out = d
		return d
	}); err != nil {
		return BackupSettings{}, err
	}
	return out, nil
}

// LoadReset returns the persisted reset settings, writing defaults first if
// the file does not exist yet.
func (s *Store) LoadReset() (ResetSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out ResetSettings
	if err := s.load(resetSettingsFile, &out, func() interface{} {
		d := DefaultResetSettings()
		out = d
		return d
	}); err != nil {
		return ResetSettings{}, err
	}
	return out, nil
}

// SaveBackup applies a partial update to the backup settings. Every provided
// field is validated before anything is written; an invalid field leaves the
// file untouched.
func (s *Store) SaveBackup(update BackupSettingsUpdate) (BackupSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current BackupSettings
	if err := s.load(backupSettingsFile, &current, func() interface{} {
		d := DefaultBackupSettings()
		current = d
		return d
	}); err != nil {
		return BackupSettings{}, err
	}

	if update.AutoBackup != nil {
		current.AutoBackup = *update.AutoBackup
	}
	if update.Schedule != nil {
		if err := cron.Validate(*update.Schedule); err != nil {
			return BackupSettings{}, err
		}
		current.Schedule = *update.Schedule
	}
	if update.Retention != nil {
		if err := validateRetention(*update.Retention); err != nil {
			return BackupSettings{}, err
		}
		current.Retention = *update.Retention
	}
	if update.BackupDestination != nil {
		if err := validateDestination(*update.BackupDestination); err != nil {
			return BackupSettings{}, err
		}
		current.BackupDestination = *update.BackupDestination
	}

	if err := s.write(backupSettingsFile, current); err != nil {
		return BackupSettings{}, err
	}

	s.logger.Info("SETTINGS: Backup settings updated", map[string]interface{}{
		"auto_backup": current.AutoBackup,
		"schedule":    current.Schedule,
		"retention":   current.Retention,
	})
	return current, nil
}

// SaveReset applies a partial update to the reset settings.
func (s *Store) SaveReset(update ResetSettingsUpdate) (ResetSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current ResetSettings
	if err := s.load(resetSettingsFile, &current, func() interface{} {
		d := DefaultResetSettings()
		current = d
		return d
	}); err != nil {
		return ResetSettings{}, err
	}

	if update.ConfirmationCode != nil {
		if err := validateConfirmationCode(*update.ConfirmationCode); err != nil {
			return ResetSettings{}, err
		}
		current.ConfirmationCode = *update.ConfirmationCode
	}
	if update.PreserveMasterData != nil {
		current.PreserveMasterData = *update.PreserveMasterData
	}
	if update.AutoReset != nil {
		current.AutoReset = *update.AutoReset
	}
	if update.ScheduleType != nil {
		if err := validateScheduleType(*update.ScheduleType); err != nil {
			return ResetSettings{}, err
		}
		current.ScheduleType = *update.ScheduleType
	}

	if err := s.write(resetSettingsFile, current); err != nil {
		return ResetSettings{}, err
	}

	s.logger.Info("SETTINGS: Reset settings updated", map[string]interface{}{
		"auto_reset":           current.AutoReset,
		"schedule_type":        string(current.ScheduleType),
		"preserve_master_data": current.PreserveMasterData,
	})
	return current, nil
}

// load reads name into out, writing the defaults when the file is missing.
func (s *Store) load(name string, out interface{}, defaults func() interface{}) error {
	path := filepath.Join(s.dir, name)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		d := defaults()
		if werr := s.write(name, d); werr != nil {
			return werr
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

// write marshals v and atomically replaces name via temp file + rename.
func (s *Store) write(name string, v interface{}) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file for %s: %w", name, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}
