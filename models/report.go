package models

import (
	"time"
)

// Report categories accepted by the platform.
const (
	CategoryPothole     = "pothole"
	CategoryGarbage     = "garbage"
	CategoryStreetlight = "streetlight"
	CategoryWater       = "water"
	CategoryRoad        = "road"
	CategoryDrainage    = "drainage"
	CategoryOther       = "other"
)

// Categories lists every valid report category.
var Categories = []string{
	CategoryPothole,
	CategoryGarbage,
	CategoryStreetlight,
	CategoryWater,
	CategoryRoad,
	CategoryDrainage,
	CategoryOther,
}

// IsValidCategory reports whether c is one of the known categories.
func IsValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Report is a citizen-submitted civic issue.
type Report struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`

	// Location. Stored longitude-first in the geospatial sense; exposed as
	// separate fields on the wire.
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Address    string  `json:"address,omitempty"`
	WardNumber string  `json:"wardNumber,omitempty"`

	Images []ReportImage `json:"images"`

	Status        string   `json:"status"`
	Priority      int      `json:"priority"`
	SeverityScore *float64 `json:"severityScore,omitempty"`

	AIAnalysis *AIAnalysis `json:"aiAnalysis,omitempty"`

	AssignedDepartment *int64 `json:"assignedDepartment,omitempty"`
	AssignedStaff      *int64 `json:"assignedStaff,omitempty"`

	// Reporter is nil for anonymous submissions.
	Reporter    *int64 `json:"reporter"`
	IsAnonymous bool   `json:"isAnonymous"`

	BlockchainTxHash  string `json:"blockchainTxHash,omitempty"`
	ResolutionComment string `json:"resolutionComment,omitempty"`

	VerifiedAt *time.Time `json:"verifiedAt,omitempty"`
	AssignedAt *time.Time `json:"assignedAt,omitempty"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`

	ViewCount int `json:"viewCount"`
	Upvotes   int `json:"upvotes"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReportImage is a media attachment reference.
type ReportImage struct {
	URL         string `json:"url"`
	ContentHash string `json:"contentHash,omitempty"`
	Filename    string `json:"filename,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

// AIAnalysis holds fields populated by the external analysis collaborator.
// The core never computes these itself.
type AIAnalysis struct {
	CategoryConfidence *float64 `json:"categoryConfidence,omitempty"`
	IsDuplicate        bool     `json:"isDuplicate"`
	DuplicateOf        *int64   `json:"duplicateOf,omitempty"`
	DetectedObjects    []string `json:"detectedObjects,omitempty"`
	TextSentiment      string   `json:"textSentiment,omitempty"`
}

// CreateReportRequest is the payload for report submission.
type CreateReportRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Latitude    *float64      `json:"latitude"`
	Longitude   *float64      `json:"longitude"`
	Address     string        `json:"address"`
	WardNumber  string        `json:"wardNumber"`
	Images      []ReportImage `json:"images"`
	IsAnonymous bool          `json:"isAnonymous"`
}

// UpdateStatusRequest is the payload for a status transition.
type UpdateStatusRequest struct {
	Status             string `json:"status"`
	Comment            string `json:"comment"`
	AssignedDepartment *int64 `json:"assignedDepartment"`
	AssignedStaff      *int64 `json:"assignedStaff"`
}

// ReportFilter narrows a report listing. Zero values mean "no filter".
type ReportFilter struct {
	Status             string
	Category           string
	AssignedDepartment *int64

	// Optional nearest-first geospatial narrowing.
	Latitude     *float64
	Longitude    *float64
	RadiusMeters float64

	Page  int
	Limit int
}

// ReportPage is one page of a filtered listing.
type ReportPage struct {
	Reports     []Report `json:"reports"`
	TotalPages  int      `json:"totalPages"`
	CurrentPage int      `json:"currentPage"`
	Total       int      `json:"total"`
}

// Hotspot is a ~100m grid cell holding two or more reports.
type Hotspot struct {
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Count      int      `json:"count"`
	Categories []string `json:"categories"`
}

// UpvoteResult is returned after an upvote is applied.
type UpvoteResult struct {
	Upvotes  int `json:"upvotes"`
	Priority int `json:"priority"`
}
