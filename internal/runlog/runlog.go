// Package runlog writes one append-only log file per backup or reset run, so
// every destructive operation leaves a reviewable line-by-line record.
package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Kind names the operation a run log belongs to.
type Kind string

const (
	KindBackup Kind = "backup"
	KindReset  Kind = "reset"
)

// Writer appends timestamped lines to a single run's log file.
type Writer struct {
	file *os.File
	name string
}

// Entry describes a run log file on disk.
type Entry struct {
	Name     string    `json:"name"`
	Kind     Kind      `json:"kind"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Manager creates and lists run logs under a directory.
type Manager struct {
	dir string
}

// NewManager creates a manager rooted at dir.
func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

// timestamp formats t the same way backup artifacts are named, with colons
// and dots replaced so the result is a safe filename on every platform.
func timestamp(t time.Time) string {
	s := t.UTC().Format("2006-01-02T15:04:05.000Z")
	s = strings.ReplaceAll(s, ":", "-")
	s = strings.ReplaceAll(s, ".", "-")
	return s
}

// Begin opens a fresh log file named <kind>-<timestamp>.log.
func (m *Manager) Begin(kind Kind, startedAt time.Time) (*Writer, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s.log", kind, timestamp(startedAt))
	f, err := os.OpenFile(filepath.Join(m.dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log %s: %w", name, err)
	}
	return &Writer{file: f, name: name}, nil
}

// Name returns the log's filename, recorded in reports and audit entries.
func (w *Writer) Name() string {
	return w.name
}

// Printf appends one timestamped line. Write failures are swallowed; a full
// disk must never abort the operation being logged.
func (w *Writer) Printf(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	fmt.Fprintf(w.file, "[%s] %s\n", time.Now().UTC().Format(time.RFC3339), line)
}

// Close flushes and closes the log file.
func (w *Writer) Close() error {
	return w.file.Close()
}

// List returns run logs of the given kind, newest first. An empty kind lists
// every run log.
func (m *Manager) List(kind Kind) ([]Entry, error) {
	dirEntries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list run logs: %w", err)
	}

	var out []Entry
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".log") {
			continue
		}
		entryKind, ok := kindOf(de.Name())
		if !ok {
			continue
		}
		if kind != "" && entryKind != kind {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		out = append(out, Entry{
			Name:     de.Name(),
			Kind:     entryKind,
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Modified.After(out[j].Modified)
	})
	return out, nil
}

// Read returns the content of one run log. The name must be a bare filename
// produced by Begin; path traversal is rejected.
func (m *Manager) Read(name string) ([]byte, error) {
	if name != filepath.Base(name) || !strings.HasSuffix(name, ".log") {
		return nil, fmt.Errorf("invalid run log name %q", name)
	}
	if _, ok := kindOf(name); !ok {
		return nil, fmt.Errorf("invalid run log name %q", name)
	}

	data, err := os.ReadFile(filepath.Join(m.dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read run log %s: %w", name, err)
	}
	return data, nil
}

func kindOf(name string) (Kind, bool) {
	switch {
	case strings.HasPrefix(name, string(KindBackup)+"-"):
		return KindBackup, true
	case strings.HasPrefix(name, string(KindReset)+"-"):
		return KindReset, true
	}
	return "", false
}
