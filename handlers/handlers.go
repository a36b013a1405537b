// Package handlers contains all HTTP handlers.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"civicreport/blockchain"
	"civicreport/database"
	"civicreport/middleware"
	"civicreport/models"
	"civicreport/service"
	ws "civicreport/websocket"
)

// Handlers bundles the services behind the HTTP surface.
type Handlers struct {
	reports   *service.ReportService
	auth      *service.AuthService
	analytics *service.AnalyticsService
	anchor    blockchain.Anchor
	hub       *ws.Hub
	db        *database.Database
}

// New creates a handlers instance.
func New(reports *service.ReportService, auth *service.AuthService, analytics *service.AnalyticsService, anchor blockchain.Anchor, hub *ws.Hub, db *database.Database) *Handlers {
	return &Handlers{
		reports:   reports,
		auth:      auth,
		analytics: analytics,
		anchor:    anchor,
		hub:       hub,
		db:        db,
	}
}

// respondError converts service errors to the HTTP error taxonomy. Internal
// detail is only exposed outside release mode.
func respondError(c *gin.Context, err error) {
	var v *models.ValidationError
	switch {
	case errors.As(err, &v):
		c.JSON(http.StatusBadRequest, gin.H{"errors": v.Violations})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, models.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, models.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
	default:
		log.WithError(err).Error("request failed")
		if gin.Mode() == gin.ReleaseMode {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
	}
}

// pathID parses the :id path parameter.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []models.FieldError{
			{Field: "id", Message: "invalid id"},
		}})
		return 0, false
	}
	return id, true
}

// audit records an administrative action. Failures are logged, never
// surfaced; the action itself already succeeded.
func (h *Handlers) audit(c *gin.Context, action, target string, meta map[string]string) {
	actor := "anonymous"
	if id, ok := middleware.UserID(c); ok {
		actor = strconv.FormatInt(id, 10)
	}

	entry := &models.AuditLog{
		Actor:  actor,
		Action: action,
		Target: target,
		Meta:   meta,
	}
	if _, err := h.db.InsertAuditLog(c.Request.Context(), entry); err != nil {
		log.WithError(err).WithField("action", action).Warn("failed to record audit log")
	}
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status           string `json:"status"`
	Service          string `json:"service"`
	ConnectedClients int    `json:"connected_clients"`
	EventsBroadcast  int    `json:"events_broadcast"`
}

// Health handles GET /health.
func (h *Handlers) Health(c *gin.Context) {
	clients, events := h.hub.Stats()
	c.JSON(http.StatusOK, HealthResponse{
		Status:           "healthy",
		Service:          "civicreport",
		ConnectedClients: clients,
		EventsBroadcast:  events,
	})
}
