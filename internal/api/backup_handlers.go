package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sutaaa0/cashier-app-sub001/internal/middleware"
	"github.com/sutaaa0/cashier-app-sub001/internal/service"
)

type BackupHandler struct {
	backupService *service.BackupService
}

func NewBackupHandler(backupService *service.BackupService) *BackupHandler {
	return &BackupHandler{
		backupService: backupService,
	}
}

// ListBackups handles GET /api/backups
func (h *BackupHandler) ListBackups(c *gin.Context) {
	backups, err := h.backupService.List()
	if err != nil {
		middleware.HandleAppError(c, middleware.MapDomainError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"backups": backups,
		"count":   len(backups),
	})
}

// CreateBackup handles POST /api/backups. The fresh artifact's bytes are
// streamed straight back; ?download=false returns its metadata as JSON
// instead.
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	info, err := h.backupService.Run(c.Request.Context(), "api")
	if err != nil {
		middleware.HandleAppError(c, middleware.MapDomainError(err))
		return
	}

	if c.Query("download") == "false" {
		c.JSON(http.StatusCreated, gin.H{
			"message": "backup created",
			"backup":  info,
		})
		return
	}

	path, err := h.backupService.Path(info.Filename)
	if err != nil {
		middleware.HandleAppError(c, middleware.MapDomainError(err))
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+info.Filename)
	c.Header("Content-Type", "application/octet-stream")
	c.File(path)
}

// DownloadBackup handles GET /api/backups/:filename
func (h *BackupHandler) DownloadBackup(c *gin.Context) {
	filename := c.Param("filename")

	path, err := h.backupService.Path(filename)
	if err != nil {
		middleware.HandleAppError(c, middleware.NewNotFoundError("backup "+filename))
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "application/octet-stream")
	c.File(path)
}

// DeleteBackup handles DELETE /api/backups/:filename
func (h *BackupHandler) DeleteBackup(c *gin.Context) {
	filename := c.Param("filename")

	if err := h.backupService.Delete(filename, "api"); err != nil {
		middleware.HandleAppError(c, middleware.MapDomainError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "backup deleted"})
}
