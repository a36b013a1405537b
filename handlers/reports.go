package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"civicreport/middleware"
	"civicreport/models"
)

// CreateReport handles POST /api/reports. Authentication is optional: an
// anonymous submission carries no reporter.
func (h *Handlers) CreateReport(c *gin.Context) {
	var req models.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var reporterID *int64
	if id, ok := middleware.UserID(c); ok {
		reporterID = &id
	}

	report, err := h.reports.Create(c.Request.Context(), &req, reporterID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// ListReports handles GET /api/reports.
func (h *Handlers) ListReports(c *gin.Context) {
	filter, err := parseReportFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	page, err := h.reports.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func parseReportFilter(c *gin.Context) (*models.ReportFilter, error) {
	v := &models.ValidationError{}

	filter := &models.ReportFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Page:     1,
		Limit:    20,
	}

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			v.Add("page", "page must be a number")
		} else {
			filter.Page = n
		}
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			v.Add("limit", "limit must be a number")
		} else {
			filter.Limit = n
		}
	}
	if raw := c.Query("department"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			v.Add("department", "department must be a number")
		} else {
			filter.AssignedDepartment = &id
		}
	}
	if raw := c.Query("lat"); raw != "" {
		lat, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			v.Add("latitude", "latitude must be a number")
		} else {
			filter.Latitude = &lat
		}
	}
	if raw := c.Query("lng"); raw != "" {
		lng, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			v.Add("longitude", "longitude must be a number")
		} else {
			filter.Longitude = &lng
		}
	}
	if raw := c.Query("radius"); raw != "" {
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			v.Add("radius", "radius must be a positive number")
		} else {
			filter.RadiusMeters = radius
		}
	}
	if (filter.Latitude == nil) != (filter.Longitude == nil) {
		v.Add("latitude", "lat and lng must be given together")
	}

	if err := v.OrNil(); err != nil {
		return nil, err
	}
	return filter, nil
}

// GetReport handles GET /api/reports/:id. Each fetch counts as a view.
func (h *Handlers) GetReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	report, err := h.reports.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// UpdateReportStatus handles PUT /api/reports/:id/status (staff and admin).
func (h *Handlers) UpdateReportStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	report, err := h.reports.Transition(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.audit(c, "report.status", strconv.FormatInt(id, 10), map[string]string{
		"status": req.Status,
	})

	c.JSON(http.StatusOK, report)
}

// UpvoteReport handles POST /api/reports/:id/upvote.
func (h *Handlers) UpvoteReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.reports.Upvote(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SearchReports handles GET /api/reports/search/text.
func (h *Handlers) SearchReports(c *gin.Context) {
	v := &models.ValidationError{}

	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			v.Add("page", "page must be a number")
		} else {
			page = n
		}
	}
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			v.Add("limit", "limit must be a number")
		} else {
			limit = n
		}
	}
	if err := v.OrNil(); err != nil {
		respondError(c, err)
		return
	}

	reports, err := h.reports.Search(c.Request.Context(), c.Query("q"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if reports == nil {
		reports = []models.Report{}
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}
