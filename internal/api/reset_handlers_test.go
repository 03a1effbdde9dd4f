package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sutaaa0/cashier-app-sub001/internal/settings"
)

func postReset(t *testing.T, fx *apiFixture, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/reset", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	fx.router.ServeHTTP(w, req)
	return w
}

func confirmationCode(t *testing.T, fx *apiFixture) string {
	t.Helper()
	rs, err := fx.store.LoadReset()
	require.NoError(t, err)
	return rs.ConfirmationCode
}

func TestRunResetBodyFieldSelectsMode(t *testing.T) {
	fx := newAPIFixture(t)

	// Stored settings default to preserveMasterData=true; the request asks
	// for a full reset and must win.
	body := fmt.Sprintf(`{"confirmationCode":%q,"preserveMasterData":false}`, confirmationCode(t, fx))
	w := postReset(t, fx, body)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"mode":"full"`)
	assert.True(t, fx.admin.dropped, "explicit preserveMasterData=false must run a full reset")
}

func TestRunResetBodyFieldForcesSelectiveMode(t *testing.T) {
	fx := newAPIFixture(t)
	_, err := fx.store.SaveReset(settings.ResetSettingsUpdate{
		PreserveMasterData: boolPtr(false),
	})
	require.NoError(t, err)

	body := fmt.Sprintf(`{"confirmationCode":%q,"preserveMasterData":true}`, confirmationCode(t, fx))
	w := postReset(t, fx, body)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"mode":"selective"`)
	assert.False(t, fx.admin.dropped, "explicit preserveMasterData=true must not drop the database")
}

func TestRunResetFallsBackToStoredModeWhenFieldAbsent(t *testing.T) {
	fx := newAPIFixture(t)

	body := fmt.Sprintf(`{"confirmationCode":%q}`, confirmationCode(t, fx))
	w := postReset(t, fx, body)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"mode":"selective"`)
	assert.False(t, fx.admin.dropped)
}

func TestRunResetRequiresConfirmationCode(t *testing.T) {
	fx := newAPIFixture(t)

	w := postReset(t, fx, `{"preserveMasterData":true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, fx.admin.statements)
}

func boolPtr(b bool) *bool { return &b }
