package runlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginNamesFileAfterKindAndTimestamp(t *testing.T) {
	m := NewManager(t.TempDir())
	started := time.Date(2026, 8, 14, 3, 0, 0, 0, time.UTC)

	w, err := m.Begin(KindBackup, started)
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, "backup-2026-08-14T03-00-00-000Z.log", w.Name())
	assert.NotContains(t, w.Name(), ":", "filenames must be safe on every platform")
}

func TestPrintfAppendsTimestampedLines(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)

	w, err := m.Begin(KindReset, time.Now())
	require.NoError(t, err)
	w.Printf("deleting rows from %s", "sales")
	w.Printf("done")
	require.NoError(t, w.Close())

	data, err := os.ReadFile(filepath.Join(dir, w.Name()))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "deleting rows from sales")
	assert.Contains(t, content, "done")
}

func TestListFiltersByKindNewestFirst(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)

	older, err := m.Begin(KindBackup, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.NoError(t, older.Close())
	olderPath := filepath.Join(dir, older.Name())
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(olderPath, past, past))

	newer, err := m.Begin(KindBackup, time.Now())
	require.NoError(t, err)
	require.NoError(t, newer.Close())

	reset, err := m.Begin(KindReset, time.Now())
	require.NoError(t, err)
	require.NoError(t, reset.Close())

	// Unrelated files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	backups, err := m.List(KindBackup)
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.Equal(t, newer.Name(), backups[0].Name)
	assert.Equal(t, older.Name(), backups[1].Name)

	all, err := m.List("")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListOnMissingDirectoryIsEmpty(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "does-not-exist"))

	entries, err := m.List("")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReadRejectsTraversalAndForeignNames(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)

	w, err := m.Begin(KindReset, time.Now())
	require.NoError(t, err)
	w.Printf("hello")
	require.NoError(t, w.Close())

	data, err := m.Read(w.Name())
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")

	for _, name := range []string{
		"../secrets.log",
		"/etc/passwd",
		"notes.txt",
		"random-2026.log",
	} {
		_, err := m.Read(name)
		assert.Error(t, err, "name %q must be rejected", name)
	}
}
