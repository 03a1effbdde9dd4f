package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sutaaa0/cashier-app-sub001/internal/middleware"
	"github.com/sutaaa0/cashier-app-sub001/internal/runlog"
	"github.com/sutaaa0/cashier-app-sub001/internal/service"
)

type ResetHandler struct {
	resetService *service.ResetService
	runlogs      *runlog.Manager
}

func NewResetHandler(resetService *service.ResetService, runlogs *runlog.Manager) *ResetHandler {
	return &ResetHandler{
		resetService: resetService,
		runlogs:      runlogs,
	}
}

// RunReset handles POST /api/reset
func (h *ResetHandler) RunReset(c *gin.Context) {
	var req struct {
		ConfirmationCode   string `json:"confirmationCode" binding:"required"`
		PreserveMasterData *bool  `json:"preserveMasterData"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAppError(c, middleware.NewBadRequestError("confirmationCode is required"))
		return
	}

	report, err := h.resetService.Run(c.Request.Context(), service.ResetRequest{
		ConfirmationCode:   req.ConfirmationCode,
		PreserveMasterData: req.PreserveMasterData,
		Trigger:            "api",
	})
	if err != nil {
		// A failed run still produced a report worth returning
		appErr := middleware.MapDomainError(err)
		if report != nil {
			if appErr.Details == nil {
				appErr.Details = map[string]interface{}{}
			}
			appErr.Details["report"] = report
		}
		middleware.HandleAppError(c, appErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "reset completed",
		"report":  report,
	})
}

// ListResetLogs handles GET /api/reset/logs
func (h *ResetHandler) ListResetLogs(c *gin.Context) {
	logs, err := h.runlogs.List(runlog.KindReset)
	if err != nil {
		middleware.HandleAppError(c, middleware.MapDomainError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}

// GetResetLog handles GET /api/reset/logs/:name
func (h *ResetHandler) GetResetLog(c *gin.Context) {
	name := c.Param("name")

	data, err := h.runlogs.Read(name)
	if err != nil {
		middleware.HandleAppError(c, middleware.NewNotFoundError("reset log "+name))
		return
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
}
