package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"civicreport/models"
)

// ListUsers handles GET /api/users (admin only).
func (h *Handlers) ListUsers(c *gin.Context) {
	v := &models.ValidationError{}

	role := c.Query("role")
	if role != "" && !models.IsValidRole(role) {
		v.Add("role", "invalid role")
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		v.Add("page", "page must be a positive number")
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		v.Add("limit", "limit must be a positive number")
	}

	if err := v.OrNil(); err != nil {
		respondError(c, err)
		return
	}

	users, err := h.db.ListUsers(c.Request.Context(), role, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser handles GET /api/users/:id (admin only).
func (h *Handlers) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.db.GetUserByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
