// Package oplock serializes destructive database operations through a
// filesystem marker so only one backup or reset runs at a time, even across
// process restarts.
package oplock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sutaaa0/cashier-app-sub001/pkg/logger"
)

const markerName = "reset-in-progress.flag"

// StaleAfter is how old a marker may be before a new acquisition reclaims it.
// A marker this old means a previous run died without releasing.
const StaleAfter = 5 * time.Minute

// ErrBusy is returned when another operation currently holds the lock.
var ErrBusy = errors.New("another destructive operation is already in progress")

// Lock guards destructive operations with an exclusive marker file.
type Lock struct {
	path   string
	logger *logger.Logger

	// invoked when a stale marker is reclaimed, for the audit trail
	onReclaim func(age time.Duration)
}

// New creates a lock whose marker lives in dir.
func New(dir string, log *logger.Logger, onReclaim func(age time.Duration)) *Lock {
	return &Lock{
		path:      filepath.Join(dir, markerName),
		logger:    log,
		onReclaim: onReclaim,
	}
}

// Acquire takes the lock by creating the marker file exclusively. If a marker
// already exists and is younger than StaleAfter, ErrBusy is returned. A stale
// marker is removed and the acquisition retried once.
func (l *Lock) Acquire(holder string) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	if err := l.tryCreate(holder); err == nil {
		return nil
	} else if !os.IsExist(err) {
		return fmt.Errorf("failed to create lock marker: %w", err)
	}

	info, err := os.Stat(l.path)
	if os.IsNotExist(err) {
		// Holder released between our create attempt and the stat; retry.
		if cerr := l.tryCreate(holder); cerr != nil {
			if os.IsExist(cerr) {
				return ErrBusy
			}
			return fmt.Errorf("failed to create lock marker: %w", cerr)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to inspect lock marker: %w", err)
	}

	age := time.Since(info.ModTime())
	if age < StaleAfter {
		return ErrBusy
	}

	l.logger.Warn("OPLOCK: Reclaiming stale lock marker", map[string]interface{}{
		"age":    age.String(),
		"marker": l.path,
	})
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale lock marker: %w", err)
	}
	if l.onReclaim != nil {
		l.onReclaim(age)
	}

	if err := l.tryCreate(holder); err != nil {
		if os.IsExist(err) {
			return ErrBusy
		}
		return fmt.Errorf("failed to create lock marker: %w", err)
	}
	return nil
}

// Release removes the marker. Releasing an already-released lock is a no-op.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock marker: %w", err)
	}
	return nil
}

// Held reports whether a non-stale marker currently exists.
func (l *Lock) Held() bool {
	info, err := os.Stat(l.path)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) < StaleAfter
}

func (l *Lock) tryCreate(holder string) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	fmt.Fprintf(f, "%s %s\n", holder, time.Now().UTC().Format(time.RFC3339))
	return f.Close()
}
