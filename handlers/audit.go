package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"civicreport/middleware"
	"civicreport/models"
)

const maxAuditLimit = 500

// ListAuditLogs handles GET /api/audit (admin only).
func (h *Handlers) ListAuditLogs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 1 {
		v := &models.ValidationError{}
		respondError(c, v.Add("limit", "limit must be a positive number"))
		return
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	logs, err := h.db.ListAuditLogs(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

// CreateAuditLog handles POST /api/audit (admin only). The actor is always
// the authenticated caller, not the request body.
func (h *Handlers) CreateAuditLog(c *gin.Context) {
	var req struct {
		Action string            `json:"action"`
		Target string            `json:"target"`
		Meta   map[string]string `json:"meta"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Action == "" {
		v := &models.ValidationError{}
		respondError(c, v.Add("action", "action is required"))
		return
	}

	actor := "anonymous"
	if id, ok := middleware.UserID(c); ok {
		actor = strconv.FormatInt(id, 10)
	}

	entry := &models.AuditLog{
		Actor:  actor,
		Action: req.Action,
		Target: req.Target,
		Meta:   req.Meta,
	}
	id, err := h.db.InsertAuditLog(c.Request.Context(), entry)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}
