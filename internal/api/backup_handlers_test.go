package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBackupStreamsArtifactBytes(t *testing.T) {
	fx := newAPIFixture(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/backups", nil)
	fx.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=backup-")
	assert.Equal(t, fx.admin.dumpData, w.Body.Bytes())
}

func TestCreateBackupReturnsMetadataWhenDownloadDisabled(t *testing.T) {
	fx := newAPIFixture(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/backups?download=false", nil)
	fx.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"filename":"backup-`)
	assert.Contains(t, w.Body.String(), `"size_bytes":`)
}
