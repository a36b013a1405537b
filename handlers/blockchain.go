package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"civicreport/models"
)

// anchorContent is the canonical report content covered by the ledger hash.
// Mutable fields (status, counters) are deliberately excluded so the anchor
// stays valid across the lifecycle.
type anchorContent struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	CreatedAt   int64   `json:"createdAt"`
}

func anchorPayload(r *models.Report) ([]byte, error) {
	payload, err := json.Marshal(anchorContent{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		CreatedAt:   r.CreatedAt.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode anchor payload: %w", err)
	}
	return payload, nil
}

// AnchorReport handles POST /api/blockchain/store (staff and admin).
// Anchoring is idempotent: a report already on the ledger returns its
// existing transaction hash.
func (h *Handlers) AnchorReport(c *gin.Context) {
	var req struct {
		ReportID int64 `json:"reportId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.ReportID <= 0 {
		v := &models.ValidationError{}
		respondError(c, v.Add("reportId", "valid reportId required"))
		return
	}
	id := req.ReportID

	report, err := h.db.GetReport(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	if report.BlockchainTxHash != "" {
		c.JSON(http.StatusOK, gin.H{"txHash": report.BlockchainTxHash})
		return
	}

	payload, err := anchorPayload(report)
	if err != nil {
		respondError(c, err)
		return
	}

	txHash, err := h.anchor.AnchorReport(c.Request.Context(), id, payload)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.db.SetBlockchainTxHash(c.Request.Context(), id, txHash); err != nil {
		respondError(c, err)
		return
	}

	h.audit(c, "report.anchor", strconv.FormatInt(id, 10), map[string]string{
		"txHash": txHash,
	})

	c.JSON(http.StatusCreated, gin.H{"txHash": txHash})
}

// VerifyAnchor handles GET /api/blockchain/verify/:id.
func (h *Handlers) VerifyAnchor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	report, err := h.db.GetReport(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	if report.BlockchainTxHash == "" {
		c.JSON(http.StatusOK, gin.H{"anchored": false})
		return
	}

	payload, err := anchorPayload(report)
	if err != nil {
		respondError(c, err)
		return
	}

	verified, err := h.anchor.Verify(c.Request.Context(), id, payload, report.BlockchainTxHash)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"anchored": true,
		"verified": verified,
		"txHash":   report.BlockchainTxHash,
	})
}
