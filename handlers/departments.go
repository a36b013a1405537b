package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"civicreport/models"
)

func validateDepartment(req *models.CreateDepartmentRequest) error {
	v := &models.ValidationError{}
	if strings.TrimSpace(req.Name) == "" {
		v.Add("name", "name is required")
	}
	if len(req.Categories) == 0 {
		v.Add("categories", "at least one category is required")
	}
	for _, c := range req.Categories {
		if !models.IsValidCategory(c) {
			v.Add("categories", "invalid category "+c)
			break
		}
	}
	return v.OrNil()
}

// CreateDepartment handles POST /api/departments (admin only).
func (h *Handlers) CreateDepartment(c *gin.Context) {
	var req models.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := validateDepartment(&req); err != nil {
		respondError(c, err)
		return
	}

	sla := models.DepartmentSLA{
		ResponseTimeHours:   models.DefaultResponseTimeHours,
		ResolutionTimeHours: models.DefaultResolutionTimeHours,
	}
	if req.SLA != nil {
		if req.SLA.ResponseTimeHours > 0 {
			sla.ResponseTimeHours = req.SLA.ResponseTimeHours
		}
		if req.SLA.ResolutionTimeHours > 0 {
			sla.ResolutionTimeHours = req.SLA.ResolutionTimeHours
		}
	}

	dep := &models.Department{
		Name:          strings.TrimSpace(req.Name),
		Description:   strings.TrimSpace(req.Description),
		ContactEmail:  strings.TrimSpace(req.ContactEmail),
		ContactPhone:  strings.TrimSpace(req.ContactPhone),
		Categories:    req.Categories,
		CoverageAreas: req.CoverageAreas,
		SLA:           sla,
	}

	id, err := h.db.CreateDepartment(c.Request.Context(), dep)
	if err != nil {
		respondError(c, err)
		return
	}

	created, err := h.db.GetDepartment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	h.audit(c, "department.create", strconv.FormatInt(id, 10), map[string]string{
		"name": created.Name,
	})

	c.JSON(http.StatusCreated, created)
}

// ListDepartments handles GET /api/departments.
func (h *Handlers) ListDepartments(c *gin.Context) {
	departments, err := h.db.ListActiveDepartments(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if departments == nil {
		departments = []models.Department{}
	}
	c.JSON(http.StatusOK, gin.H{"departments": departments})
}

// GetDepartment handles GET /api/departments/:id.
func (h *Handlers) GetDepartment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	dep, err := h.db.GetDepartment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dep)
}
