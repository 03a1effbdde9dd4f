// Package settings persists and validates the backup and reset configuration
// documents consumed by the scheduler and the lifecycle services.
package settings

import (
	"fmt"
	"strings"
)

// BackupDestination is where dump artifacts are stored.
type BackupDestination string

const (
	DestinationLocal BackupDestination = "local"
)

// ResetScheduleType is the period boundary for automatic resets.
type ResetScheduleType string

const (
	ScheduleMonthly      ResetScheduleType = "MONTHLY"
	ScheduleYearly       ResetScheduleType = "YEARLY"
	ScheduleBiennial     ResetScheduleType = "BIENNIAL"
	ScheduleQuinquennial ResetScheduleType = "QUINQUENNIAL"
)

// BackupSettings controls the automatic backup schedule and retention.
type BackupSettings struct {
	AutoBackup        bool              `json:"autoBackup"`
	Schedule          string            `json:"schedule"`
	Retention         int               `json:"retention"` // days, 1..365
	BackupDestination BackupDestination `json:"backupDestination"`
}

// ResetSettings controls automatic and on-demand database resets.
type ResetSettings struct {
	ConfirmationCode   string            `json:"confirmationCode"`
	PreserveMasterData bool              `json:"preserveMasterData"`
	AutoReset          bool              `json:"autoReset"`
	ScheduleType       ResetScheduleType `json:"scheduleType"`
}

// DefaultBackupSettings are written on first access.
func DefaultBackupSettings() BackupSettings {
	return BackupSettings{
		AutoBackup:        false,
		Schedule:          "0 0 * * *",
		Retention:         30,
		BackupDestination: DestinationLocal,
	}
}

// DefaultResetSettings are written on first access.
func DefaultResetSettings() ResetSettings {
	return ResetSettings{
		ConfirmationCode:   "RESET-DATA",
		PreserveMasterData: true,
		AutoReset:          false,
		ScheduleType:       ScheduleMonthly,
	}
}

// BackupSettingsUpdate is a partial update; nil fields are left unchanged.
type BackupSettingsUpdate struct {
	AutoBackup        *bool              `json:"autoBackup"`
	Schedule          *string            `json:"schedule"`
	Retention         *int               `json:"retention"`
	BackupDestination *BackupDestination `json:"backupDestination"`
}

// ResetSettingsUpdate is a partial update; nil fields are left unchanged.
type ResetSettingsUpdate struct {
	ConfirmationCode   *string            `json:"confirmationCode"`
	PreserveMasterData *bool              `json:"preserveMasterData"`
	AutoReset          *bool              `json:"autoReset"`
	ScheduleType       *ResetScheduleType `json:"scheduleType"`
}

// ValidationError reports a settings field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func validateRetention(days int) error {
	if days < 1 || days > 365 {
		return &ValidationError{Field: "retention", Message: fmt.Sprintf("must be between 1 and 365 days, got %d", days)}
	}
	return nil
}

func validateDestination(dest BackupDestination) error {
	if dest != DestinationLocal {
		return &ValidationError{Field: "backupDestination", Message: fmt.Sprintf("unsupported destination %q, only %q is available", dest, DestinationLocal)}
	}
	return nil
}

func validateConfirmationCode(code string) error {
	if len(strings.TrimSpace(code)) < 6 {
		return &ValidationError{Field: "confirmationCode", Message: "must be at least 6 characters"}
	}
	return nil
}

func validateScheduleType(t ResetScheduleType) error {
	switch t {
	case ScheduleMonthly, ScheduleYearly, ScheduleBiennial, ScheduleQuinquennial:
		return nil
	}
	return &ValidationError{Field: "scheduleType", Message: fmt.Sprintf("unknown schedule type %q", t)}
}
