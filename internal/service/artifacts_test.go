package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactNameRoundTrip(t *testing.T) {
	at := time.Date(2026, 8, 14, 3, 0, 0, 527000000, time.UTC)

	name := ArtifactName(at)
	assert.Equal(t, "backup-2026-08-14T03-00-00-527Z.backup", name)
	assert.NotContains(t, name, ":")
	assert.NotContains(t, name[len("backup-"):len(name)-len(".backup")], ".")

	parsed, err := parseArtifactTime(name)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(at))
}

func TestIsArtifactName(t *testing.T) {
	assert.True(t, IsArtifactName(ArtifactName(time.Now())))

	invalid := []string{
		"notes.txt",
		"backup-.backup",
		"backup-2026.backup",
		"backup-2026-08-14T03-00-00-527Z.sql",
		"dump-2026-08-14T03-00-00-527Z.backup",
		"../backup-2026-08-14T03-00-00-527Z.backup",
		"backup-2026-13-99T99-99-99-999Z.backup",
	}
	for _, name := range invalid {
		assert.False(t, IsArtifactName(name), "name %q must be rejected", name)
	}
}
