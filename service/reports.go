package service

import (
	"context"
	"strings"
	"time"

	"github.com/apex/log"

	"civicreport/analysis"
	"civicreport/database"
	"civicreport/geo"
	"civicreport/models"
	"civicreport/queue"
	"civicreport/websocket"
)

// MaxTitleLength caps report titles.
const MaxTitleLength = 255

// DefaultRadiusMeters is the nearby-search radius when none is given.
const DefaultRadiusMeters = 5000

// resolutionReputationPoints are awarded to a reporter when their report is
// resolved.
const resolutionReputationPoints = 10

// ReportService owns the report lifecycle: creation, transitions, upvoting
// and queries. Notification and analysis hand-offs are fire-and-forget and
// never fail the write path.
type ReportService struct {
	db            *database.Database
	hub           *websocket.Hub
	publisher     queue.Publisher
	classifier    analysis.Classifier
	analysisQueue string
}

// NewReportService creates a report service. Publisher and classifier may be
// nil when the analysis pipeline is not configured.
func NewReportService(db *database.Database, hub *websocket.Hub, publisher queue.Publisher, classifier analysis.Classifier, analysisQueue string) *ReportService {
	return &ReportService{
		db:            db,
		hub:           hub,
		publisher:     publisher,
		classifier:    classifier,
		analysisQueue: analysisQueue,
	}
}

func validateCreate(req *models.CreateReportRequest) error {
	v := &models.ValidationError{}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		v.Add("title", "title is required")
	} else if len(title) > MaxTitleLength {
		v.Add("title", "title must be at most 255 characters")
	}
	if strings.TrimSpace(req.Description) == "" {
		v.Add("description", "description is required")
	}
	if !models.IsValidCategory(req.Category) {
		v.Add("category", "invalid category")
	}
	if req.Latitude == nil {
		v.Add("latitude", "valid latitude required")
	} else if !geo.ValidLatitude(*req.Latitude) {
		v.Add("latitude", "latitude must be between -90 and 90")
	}
	if req.Longitude == nil {
		v.Add("longitude", "valid longitude required")
	} else if !geo.ValidLongitude(*req.Longitude) {
		v.Add("longitude", "longitude must be between -180 and 180")
	}
	for _, img := range req.Images {
		if strings.TrimSpace(img.URL) == "" {
			v.Add("images", "image url is required")
			break
		}
	}

	return v.OrNil()
}

// Create validates and persists a new report, bumps the reporter's counter
// when not anonymous, and emits report:new.
func (s *ReportService) Create(ctx context.Context, req *models.CreateReportRequest, reporterID *int64) (*models.Report, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	report := &models.Report{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		Address:     strings.TrimSpace(req.Address),
		WardNumber:  strings.TrimSpace(req.WardNumber),
		Images:      req.Images,
		Status:      models.StatusSubmitted,
		Priority:    1,
		IsAnonymous: req.IsAnonymous,
	}
	if !req.IsAnonymous {
		report.Reporter = reporterID
	}

	id, err := s.db.CreateReport(ctx, report)
	if err != nil {
		return nil, err
	}

	if report.Reporter != nil {
		if err := s.db.IncrementTotalReports(ctx, *report.Reporter); err != nil {
			log.WithError(err).WithField("user", *report.Reporter).
				Warn("report saved but reporter counter not updated")
		}
	}

	created, err := s.db.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	s.hub.Broadcast(models.EventReportNew, created)
	s.handOffAnalysis(created)

	return created, nil
}

// handOffAnalysis pushes the report at the analysis collaborator. Both paths
// are fire-and-forget; neither can fail or delay the create.
func (s *ReportService) handOffAnalysis(report *models.Report) {
	if s.publisher != nil {
		go func() {
			if err := s.publisher.Publish(s.analysisQueue, report); err != nil {
				log.WithError(err).WithField("report", report.ID).
					Warn("failed to publish report for analysis")
			}
		}()
	}

	if s.classifier != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			result, err := s.classifier.Classify(ctx, report)
			if err != nil {
				log.WithError(err).WithField("report", report.ID).
					Warn("classification failed")
				return
			}

			a := &models.AIAnalysis{
				CategoryConfidence: &result.Confidence,
				DetectedObjects:    result.DetectedObjects,
				TextSentiment:      result.Sentiment,
			}
			if err := s.db.SetAnalysis(ctx, report.ID, a, &result.SeverityScore); err != nil {
				log.WithError(err).WithField("report", report.ID).
					Warn("failed to store classification")
			}
		}()
	}
}

// Get fetches a report by id and increments its view count.
func (s *ReportService) Get(ctx context.Context, id int64) (*models.Report, error) {
	if err := s.db.IncrementViewCount(ctx, id); err != nil {
		return nil, err
	}
	return s.db.GetReport(ctx, id)
}

// Transition moves a report to the target status, applying timestamps,
// assignment bindings, department metrics and reporter rewards, then emits
// report:status.
func (s *ReportService) Transition(ctx context.Context, id int64, req *models.UpdateStatusRequest) (*models.Report, error) {
	if !models.IsValidStatus(req.Status) {
		v := &models.ValidationError{}
		return nil, v.Add("status", "invalid status")
	}

	report, err := s.db.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	if !models.CanTransition(report.Status, req.Status) {
		v := &models.ValidationError{}
		return nil, v.Add("status", "cannot transition from "+report.Status+" to "+req.Status)
	}

	// Department routing: the target department must handle the report's
	// category.
	if req.AssignedDepartment != nil {
		dep, err := s.db.GetDepartment(ctx, *req.AssignedDepartment)
		if err != nil {
			return nil, err
		}
		if !dep.IsActive {
			v := &models.ValidationError{}
			return nil, v.Add("assignedDepartment", "department is not active")
		}
		if !dep.HandlesCategory(report.Category) {
			v := &models.ValidationError{}
			return nil, v.Add("assignedDepartment", "department does not handle category "+report.Category)
		}
	}

	firstAssignment := report.AssignedAt == nil
	firstResolution := report.ResolvedAt == nil

	if err := s.db.ApplyTransition(ctx, id, req); err != nil {
		return nil, err
	}

	departmentID := req.AssignedDepartment
	if departmentID == nil {
		departmentID = report.AssignedDepartment
	}

	switch req.Status {
	case models.StatusAssigned:
		if firstAssignment && departmentID != nil {
			if err := s.db.ApplyDepartmentMetrics(ctx, *departmentID, database.MetricAssigned); err != nil {
				log.WithError(err).WithField("department", *departmentID).
					Warn("failed to update department metrics")
			}
		}
	case models.StatusResolved:
		if firstResolution {
			if departmentID != nil {
				if err := s.db.ApplyDepartmentMetrics(ctx, *departmentID, database.MetricResolved); err != nil {
					log.WithError(err).WithField("department", *departmentID).
						Warn("failed to update department metrics")
				}
			}
			if report.Reporter != nil {
				if err := s.db.AwardResolution(ctx, *report.Reporter, resolutionReputationPoints); err != nil {
					log.WithError(err).WithField("user", *report.Reporter).
						Warn("failed to award resolution")
				}
			}
		}
	}

	updated, err := s.db.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	s.hub.Broadcast(models.EventReportStatus, models.StatusEvent{ID: id, Status: updated.Status})

	return updated, nil
}

// Upvote applies one upvote and the bounded priority escalation.
func (s *ReportService) Upvote(ctx context.Context, id int64) (*models.UpvoteResult, error) {
	return s.db.Upvote(ctx, id)
}

// List returns one page of reports matching the filter.
func (s *ReportService) List(ctx context.Context, f *models.ReportFilter) (*models.ReportPage, error) {
	v := &models.ValidationError{}
	if f.Page < 1 {
		v.Add("page", "page must be at least 1")
	}
	if f.Limit < 1 {
		v.Add("limit", "limit must be positive")
	}
	if f.Status != "" && !models.IsValidStatus(f.Status) {
		v.Add("status", "invalid status")
	}
	if f.Category != "" && !models.IsValidCategory(f.Category) {
		v.Add("category", "invalid category")
	}
	if f.Latitude != nil && !geo.ValidLatitude(*f.Latitude) {
		v.Add("latitude", "latitude must be between -90 and 90")
	}
	if f.Longitude != nil && !geo.ValidLongitude(*f.Longitude) {
		v.Add("longitude", "longitude must be between -180 and 180")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	if f.RadiusMeters <= 0 {
		f.RadiusMeters = DefaultRadiusMeters
	}

	return s.db.ListReports(ctx, f)
}

// Search runs a relevance-ranked full-text search.
func (s *ReportService) Search(ctx context.Context, q string, page, limit int) ([]models.Report, error) {
	if strings.TrimSpace(q) == "" {
		v := &models.ValidationError{}
		return nil, v.Add("q", "search query is required")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return s.db.SearchReports(ctx, q, page, limit)
}

// Hotspots returns the grid cells with at least two reports.
func (s *ReportService) Hotspots(ctx context.Context) ([]models.Hotspot, error) {
	return s.db.Hotspots(ctx)
}

// SetAnalysis applies the analysis collaborator's write-back. DuplicateOf is
// accepted only together with the duplicate flag.
func (s *ReportService) SetAnalysis(ctx context.Context, id int64, a *models.AIAnalysis, severity *float64) error {
	if a.DuplicateOf != nil && !a.IsDuplicate {
		v := &models.ValidationError{}
		return v.Add("duplicateOf", "duplicateOf requires isDuplicate")
	}
	if severity != nil && (*severity < 0 || *severity > 1) {
		v := &models.ValidationError{}
		return v.Add("severityScore", "severity must be between 0 and 1")
	}
	return s.db.SetAnalysis(ctx, id, a, severity)
}
