package cron

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsExplicitForms(t *testing.T) {
	valid := []string{
		"0 0 * * *",
		"30 14 * * *",
		"*/15 * * * *",
		"0 3 1 * *",
		"0,30 8-17 * * 1-5",
		"59 23 31 12 6",
		"0 0 1 1 0",
	}

	for _, expr := range valid {
		assert.NoError(t, Validate(expr), "expected %q to validate", expr)
	}
}

func TestValidateRejectsMacros(t *testing.T) {
	cases := map[string]string{
		"@daily":   "0 0 * * *",
		"@weekly":  "0 0 * * 0",
		"@monthly": "0 0 1 * *",
		"@yearly":  "0 0 1 1 *",
	}

	for macro, replacement := range cases {
		err := Validate(macro)
		require.Error(t, err, "expected %q to be rejected", macro)
		assert.Contains(t, err.Error(), replacement, "error for %q should name the explicit replacement", macro)
	}
}

func TestValidateRejectsWrongFieldCount(t *testing.T) {
	cases := map[string]string{
		"* * * *":     "got 4",
		"* * * * * *": "got 6",
		"30":          "got 1",
		"":            "got 0",
	}

	for expr, want := range cases {
		err := Validate(expr)
		require.Error(t, err)
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateRejectsOutOfBoundsValues(t *testing.T) {
	invalid := []string{
		"60 0 * * *",  // minute > 59
		"0 24 * * *",  // hour > 23
		"0 0 0 * *",   // day-of-month < 1
		"0 0 32 * *",  // day-of-month > 31
		"0 0 * 13 *",  // month > 12
		"0 0 * * 7",   // day-of-week > 6
		"0 0 * * a",   // not an integer
		"5-2 0 * * *", // range start exceeds end
		"0,61 0 * * *",
		"0 0 1-40 * *",
	}

	for _, expr := range invalid {
		assert.Error(t, Validate(expr), "expected %q to be rejected", expr)
	}
}

func TestIsDue(t *testing.T) {
	at := func(hour, min int) time.Time {
		return time.Date(2026, 8, 14, hour, min, 27, 0, time.UTC)
	}

	assert.True(t, IsDue("30 14 * * *", at(14, 30)))
	assert.False(t, IsDue("30 14 * * *", at(14, 31)))
	assert.True(t, IsDue("*/15 * * * *", at(14, 45)))
	assert.False(t, IsDue("*/15 * * * *", at(14, 46)))
	assert.True(t, IsDue("* * * * *", at(9, 3)))
	assert.True(t, IsDue("0-40 14 * * *", at(14, 30)))
	assert.False(t, IsDue("0-20 14 * * *", at(14, 30)))
	assert.True(t, IsDue("15,30,45 14 * * *", at(14, 30)))
	assert.False(t, IsDue("15,45 14 * * *", at(14, 30)))
}

func TestIsDueEvaluatesAllFiveFields(t *testing.T) {
	// 2026-08-14 is a Friday (weekday 5)
	now := time.Date(2026, 8, 14, 3, 0, 12, 0, time.UTC)

	assert.True(t, IsDue("0 3 * * *", now))
	assert.True(t, IsDue("0 3 14 * *", now))
	assert.False(t, IsDue("0 3 15 * *", now), "day-of-month must be evaluated")
	assert.True(t, IsDue("0 3 * 8 *", now))
	assert.False(t, IsDue("0 3 * 9 *", now), "month must be evaluated")
	assert.True(t, IsDue("0 3 * * 5", now))
	assert.False(t, IsDue("0 3 * * 1", now), "day-of-week must be evaluated")
}

func TestFireGuardFiresOncePerMinute(t *testing.T) {
	guard := NewFireGuard()
	now := time.Date(2026, 8, 14, 14, 30, 5, 0, time.UTC)

	assert.True(t, guard.TryFire("backup", now))
	assert.False(t, guard.TryFire("backup", now), "same minute must not fire twice")
	assert.False(t, guard.TryFire("backup", now.Add(20*time.Second)), "same minute, later tick")

	// Different action in the same minute is independent
	assert.True(t, guard.TryFire("reset", now))

	// Next minute fires again
	assert.True(t, guard.TryFire("backup", now.Add(time.Minute)))
}

func TestFireGuardPurgesOldEntries(t *testing.T) {
	guard := NewFireGuard()
	old := time.Date(2026, 8, 14, 10, 0, 0, 0, time.UTC)

	require.True(t, guard.TryFire("backup", old))
	require.Len(t, guard.fired, 1)

	// An entry older than one hour is dropped on the next call
	later := old.Add(2 * time.Hour)
	require.True(t, guard.TryFire("backup", later))
	assert.Len(t, guard.fired, 1, "stale entry should have been purged")
}
