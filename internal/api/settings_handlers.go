package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sutaaa0/cashier-app-sub001/internal/middleware"
	"github.com/sutaaa0/cashier-app-sub001/internal/settings"
)

type SettingsHandler struct {
	store *settings.Store
}

func NewSettingsHandler(store *settings.Store) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// GetBackupSettings handles GET /api/settings/backup
func (h *SettingsHandler) GetBackupSettings(c *gin.Context) {
	bs, err := h.store.LoadBackup()
	if err != nil {
		middleware.HandleAppError(c, middleware.MapDomainError(err))
		return
	}

	c.JSON(http.StatusOK, bs)
}

// UpdateBackupSettings handles PUT /api/settings/backup
func (h *SettingsHandler) UpdateBackupSettings(c *gin.Context) {
	var update settings.BackupSettingsUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		middleware.HandleAppError(c, middleware.NewBadRequestError(err.Error()))
		return
	}

	bs, err := h.store.SaveBackup(update)
	if err != nil {
		middleware.HandleAppError(c, middleware.MapDomainError(err))
		return
	}

	c.JSON(http.StatusOK, bs)
}

// GetResetSettings handles GET /api/settings/reset
func (h *SettingsHandler) GetResetSettings(c *gin.Context) {
	rs, err := h.store.LoadReset()
	if err != nil {
		middleware.HandleAppError(c, middleware.MapDomainError(err))
		return
	}

	c.JSON(http.StatusOK, rs)
}

// UpdateResetSettings handles PUT /api/settings/reset
func (h *SettingsHandler) UpdateResetSettings(c *gin.Context) {
	var update settings.ResetSettingsUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		middleware.HandleAppError(c, middleware.NewBadRequestError(err.Error()))
		return
	}

	rs, err := h.store.SaveReset(update)
	if err != nil {
		middleware.HandleAppError(c, middleware.MapDomainError(err))
		return
	}

	c.JSON(http.StatusOK, rs)
}
