package oplock

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sutaaa0/cashier-app-sub001/pkg/logger"
)

func newTestLock(t *testing.T, onReclaim func(time.Duration)) *Lock {
	t.Helper()
	return New(t.TempDir(), logger.NewLogger(logger.FATAL, io.Discard, false), onReclaim)
}

func TestAcquireIsExclusive(t *testing.T) {
	lock := newTestLock(t, nil)

	require.NoError(t, lock.Acquire("backup"))
	assert.True(t, lock.Held())

	err := lock.Acquire("reset")
	assert.ErrorIs(t, err, ErrBusy)

	require.NoError(t, lock.Release())
	assert.False(t, lock.Held())
	assert.NoError(t, lock.Acquire("reset"))
}

func TestReleaseIsIdempotent(t *testing.T) {
	lock := newTestLock(t, nil)

	require.NoError(t, lock.Acquire("backup"))
	require.NoError(t, lock.Release())
	assert.NoError(t, lock.Release())
}

func TestStaleMarkerIsReclaimed(t *testing.T) {
	var reclaimedAge time.Duration
	lock := newTestLock(t, func(age time.Duration) { reclaimedAge = age })

	require.NoError(t, lock.Acquire("backup"))

	// Age the marker past the staleness threshold.
	stale := time.Now().Add(-StaleAfter - time.Minute)
	require.NoError(t, os.Chtimes(lock.path, stale, stale))

	assert.False(t, lock.Held(), "stale marker must not count as held")
	require.NoError(t, lock.Acquire("reset"), "stale marker must be reclaimable")
	assert.Greater(t, reclaimedAge, StaleAfter, "reclaim callback should receive the marker age")
}

func TestFreshMarkerIsNotReclaimed(t *testing.T) {
	reclaimed := false
	lock := newTestLock(t, func(time.Duration) { reclaimed = true })

	require.NoError(t, lock.Acquire("backup"))

	// Just under the threshold: still busy.
	almost := time.Now().Add(-StaleAfter + 30*time.Second)
	require.NoError(t, os.Chtimes(lock.path, almost, almost))

	assert.ErrorIs(t, lock.Acquire("reset"), ErrBusy)
	assert.False(t, reclaimed)
}
