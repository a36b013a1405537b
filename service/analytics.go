package service

import (
	"context"

	"civicreport/database"
	"civicreport/geo"
	"civicreport/models"
)

// AnalyticsService produces the dashboard aggregates.
type AnalyticsService struct {
	db *database.Database
}

// NewAnalyticsService creates an analytics service.
func NewAnalyticsService(db *database.Database) *AnalyticsService {
	return &AnalyticsService{db: db}
}

// pendingStatuses are the states counted as "pending" in the overview.
var pendingStatuses = []string{
	models.StatusSubmitted,
	models.StatusVerified,
	models.StatusAssigned,
	models.StatusInProgress,
}

// Overview returns the aggregate counters and the newest reports.
func (s *AnalyticsService) Overview(ctx context.Context) (*models.AnalyticsOverview, error) {
	total, err := s.db.CountReports(ctx)
	if err != nil {
		return nil, err
	}

	pending, err := s.db.CountReports(ctx, pendingStatuses...)
	if err != nil {
		return nil, err
	}

	resolved, err := s.db.CountReports(ctx, models.StatusResolved)
	if err != nil {
		return nil, err
	}

	byCategory, err := s.db.GroupReportCounts(ctx, "category")
	if err != nil {
		return nil, err
	}

	byStatus, err := s.db.GroupReportCounts(ctx, "status")
	if err != nil {
		return nil, err
	}

	recent, err := s.db.RecentReports(ctx, 10)
	if err != nil {
		return nil, err
	}

	return &models.AnalyticsOverview{
		Stats: models.AnalyticsStats{
			TotalReports:      total,
			PendingReports:    pending,
			ResolvedReports:   resolved,
			ReportsByCategory: byCategory,
			ReportsByStatus:   byStatus,
		},
		RecentReports: recent,
	}, nil
}

// MapClusters buckets the reports inside a viewport into S2 cells sized to
// the zoom level.
func (s *AnalyticsService) MapClusters(ctx context.Context, vp *geo.ViewPort, center *geo.Point) ([]geo.Cluster, error) {
	points, err := s.db.Locations(ctx, vp.LatMin, vp.LonMin, vp.LatMax, vp.LonMax)
	if err != nil {
		return nil, err
	}

	aggr := geo.NewAggregator(vp, center)
	for _, p := range points {
		aggr.AddPoint(p[0], p[1])
	}
	return aggr.Clusters(), nil
}
