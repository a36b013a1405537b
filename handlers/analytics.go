package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"civicreport/geo"
	"civicreport/models"
)

// AnalyticsOverview handles GET /api/analytics/overview (staff and admin).
func (h *Handlers) AnalyticsOverview(c *gin.Context) {
	overview, err := h.analytics.Overview(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// Hotspots handles GET /api/analytics/hotspots.
func (h *Handlers) Hotspots(c *gin.Context) {
	hotspots, err := h.reports.Hotspots(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if hotspots == nil {
		hotspots = []models.Hotspot{}
	}
	c.JSON(http.StatusOK, gin.H{"hotspots": hotspots})
}

// MapClusters handles GET /api/map/aggregate. The viewport comes from the
// dashboard's visible rectangle; cell size adapts to the zoom level.
func (h *Handlers) MapClusters(c *gin.Context) {
	vp, center, err := parseViewPort(c)
	if err != nil {
		respondError(c, err)
		return
	}

	clusters, err := h.analytics.MapClusters(c.Request.Context(), vp, center)
	if err != nil {
		respondError(c, err)
		return
	}
	if clusters == nil {
		clusters = []geo.Cluster{}
	}
	c.JSON(http.StatusOK, gin.H{"clusters": clusters})
}

func parseViewPort(c *gin.Context) (*geo.ViewPort, *geo.Point, error) {
	v := &models.ValidationError{}

	parse := func(name string) float64 {
		raw := c.Query(name)
		if raw == "" {
			v.Add(name, name+" is required")
			return 0
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			v.Add(name, name+" must be a number")
			return 0
		}
		return f
	}

	vp := &geo.ViewPort{
		LatMin: parse("latmin"),
		LonMin: parse("lonmin"),
		LatMax: parse("latmax"),
		LonMax: parse("lonmax"),
	}
	if err := v.OrNil(); err != nil {
		return nil, nil, err
	}

	if vp.LatMin > vp.LatMax {
		v.Add("latmin", "latmin must not exceed latmax")
	}
	if !geo.ValidLatitude(vp.LatMin) || !geo.ValidLatitude(vp.LatMax) {
		v.Add("latmin", "latitude must be between -90 and 90")
	}
	if !geo.ValidLongitude(vp.LonMin) || !geo.ValidLongitude(vp.LonMax) {
		v.Add("lonmin", "longitude must be between -180 and 180")
	}
	if err := v.OrNil(); err != nil {
		return nil, nil, err
	}

	// Center defaults to the viewport midpoint; the dashboard may pass its
	// own map center instead.
	center := &geo.Point{
		Lat: (vp.LatMin + vp.LatMax) / 2,
		Lon: (vp.LonMin + vp.LonMax) / 2,
	}
	if c.Query("clat") != "" || c.Query("clon") != "" {
		center.Lat = parse("clat")
		center.Lon = parse("clon")
		if err := v.OrNil(); err != nil {
			return nil, nil, err
		}
	}
	return vp, center, nil
}
