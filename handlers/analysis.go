package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"civicreport/models"
)

// analysisWriteBack is the payload posted by the analysis collaborator.
type analysisWriteBack struct {
	SeverityScore *float64          `json:"severityScore"`
	Analysis      models.AIAnalysis `json:"analysis"`
}

// SetReportAnalysis handles POST /internal/reports/:id/analysis. The internal
// surface is for trusted collaborators only and is not exposed publicly.
func (h *Handlers) SetReportAnalysis(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req analysisWriteBack
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.reports.SetAnalysis(c.Request.Context(), id, &req.Analysis, req.SeverityScore); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
