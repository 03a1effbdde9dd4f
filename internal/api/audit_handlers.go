package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sutaaa0/cashier-app-sub001/internal/audit"
	"github.com/sutaaa0/cashier-app-sub001/internal/events"
	"github.com/sutaaa0/cashier-app-sub001/internal/middleware"
)

type AuditHandler struct {
	auditLog *audit.AuditLogger
}

func NewAuditHandler(auditLog *audit.AuditLogger) *AuditHandler {
	return &AuditHandler{auditLog: auditLog}
}

// GetAuditLog handles GET /api/audit?limit=N&action=backup_run
func (h *AuditHandler) GetAuditLog(c *gin.Context) {
	if action := c.Query("action"); action != "" {
		entries := h.auditLog.GetByAction(audit.ActionType(action))
		c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			middleware.HandleAppError(c, middleware.NewBadRequestError("limit must be a positive integer"))
			return
		}
		limit = n
	}

	entries := h.auditLog.GetRecent(limit)
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

// GetAuditStats handles GET /api/audit/stats
func (h *AuditHandler) GetAuditStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.auditLog.Stats())
}

// GetOperationEvents handles GET /api/events?limit=N&type=backup.completed
func (h *AuditHandler) GetOperationEvents(c *gin.Context) {
	filters := events.EventFilters{Limit: 100}

	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			middleware.HandleAppError(c, middleware.NewBadRequestError("limit must be a positive integer"))
			return
		}
		filters.Limit = n
	}
	if eventType := c.Query("type"); eventType != "" {
		filters.Types = []events.EventType{events.EventType(eventType)}
	}
	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			middleware.HandleAppError(c, middleware.NewBadRequestError("since must be RFC3339"))
			return
		}
		filters.StartTime = t
	}

	list, err := events.GetEventBus().Query(filters)
	if err != nil {
		middleware.HandleAppError(c, middleware.MapDomainError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": list, "count": len(list)})
}
