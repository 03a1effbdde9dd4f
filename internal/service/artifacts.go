package service

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	artifactPrefix = "backup-"
	artifactSuffix = ".backup"
)

// ArtifactName builds the backup filename for a run started at t.
func ArtifactName(t time.Time) string {
	stamp := t.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.ReplaceAll(stamp, ":", "-")
	stamp = strings.ReplaceAll(stamp, ".", "-")
	return artifactPrefix + stamp + artifactSuffix
}

// IsArtifactName reports whether name follows the backup naming convention.
// Files that don't match are never touched by retention or deletion.
func IsArtifactName(name string) bool {
	if name != filepath.Base(name) {
		return false
	}
	if !strings.HasPrefix(name, artifactPrefix) || !strings.HasSuffix(name, artifactSuffix) {
		return false
	}
	_, err := parseArtifactTime(name)
	return err == nil
}

// parseArtifactTime recovers the creation timestamp encoded in an artifact
// name. Colons and dots were replaced with dashes when the name was built,
// so the stamp is restored to RFC3339 form before parsing.
func parseArtifactTime(name string) (time.Time, error) {
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, artifactPrefix), artifactSuffix)

	// YYYY-MM-DDTHH-MM-SS-mmmZ
	if len(stamp) != 24 {
		return time.Time{}, fmt.Errorf("artifact name %q has no parseable timestamp", name)
	}
	restored := stamp[:13] + ":" + stamp[14:16] + ":" + stamp[17:19] + "." + stamp[20:]

	t, err := time.Parse("2006-01-02T15:04:05.000Z", restored)
	if err != nil {
		return time.Time{}, fmt.Errorf("artifact name %q has no parseable timestamp: %w", name, err)
	}
	return t, nil
}
