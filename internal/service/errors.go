package service

import (
	"errors"
	"fmt"
)

// ErrConfirmationMismatch is returned when a reset request carries the wrong
// confirmation code.
var ErrConfirmationMismatch = errors.New("confirmation code does not match")

// BackupError wraps a failure in one stage of a backup run.
type BackupError struct {
	Stage string // "prepare", "dump", "verify"
	Err   error
}

func (e *BackupError) Error() string {
	return fmt.Sprintf("backup failed during %s: %v", e.Stage, e.Err)
}

func (e *BackupError) Unwrap() error {
	return e.Err
}

// VerificationError reports an artifact that failed the post-creation check.
type VerificationError struct {
	Path   string
	Reason string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("backup verification failed for %s: %s", e.Path, e.Reason)
}

// ResetError wraps a failure in one stage of a reset run.
type ResetError struct {
	Stage string
	Err   error
}

func (e *ResetError) Error() string {
	return fmt.Sprintf("reset failed during %s: %v", e.Stage, e.Err)
}

func (e *ResetError) Unwrap() error {
	return e.Err
}
