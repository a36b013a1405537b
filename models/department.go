package models

import "time"

// Department is an organizational unit responsible for a subset of issue
// categories.
type Department struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	ContactEmail string `json:"contactEmail"`
	ContactPhone string `json:"contactPhone"`

	// Categories this department handles; determines routing eligibility.
	Categories []string `json:"categories"`

	CoverageAreas []CoverageArea `json:"coverageAreas,omitempty"`

	Metrics DepartmentMetrics `json:"metrics"`
	SLA     DepartmentSLA     `json:"sla"`

	IsActive bool `json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HandlesCategory reports whether the department is eligible to receive
// reports of the given category.
func (d *Department) HandlesCategory(category string) bool {
	for _, c := range d.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// CoverageArea is a named region with a polygon boundary, kept for future
// spatial assignment.
type CoverageArea struct {
	WardNumber string        `json:"wardNumber,omitempty"`
	AreaName   string        `json:"areaName"`
	Boundary   [][][]float64 `json:"boundary,omitempty"` // GeoJSON polygon rings
}

// DepartmentMetrics are lifecycle counters updated by explicit callbacks.
type DepartmentMetrics struct {
	TotalAssigned  int `json:"totalAssigned"`
	TotalResolved  int `json:"totalResolved"`
	CurrentPending int `json:"currentPending"`
}

// DepartmentSLA holds response and resolution targets in hours.
type DepartmentSLA struct {
	ResponseTimeHours   int `json:"responseTimeHours"`
	ResolutionTimeHours int `json:"resolutionTimeHours"`
}

// Default SLA targets applied when a department is created without them.
const (
	DefaultResponseTimeHours   = 24
	DefaultResolutionTimeHours = 72
)

// CreateDepartmentRequest is the payload for department creation.
type CreateDepartmentRequest struct {
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	ContactEmail  string         `json:"contactEmail"`
	ContactPhone  string         `json:"contactPhone"`
	Categories    []string       `json:"categories"`
	CoverageAreas []CoverageArea `json:"coverageAreas"`
	SLA           *DepartmentSLA `json:"sla"`
}
