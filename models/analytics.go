package models

// AnalyticsStats are the aggregate counters for the dashboard overview.
type AnalyticsStats struct {
	TotalReports      int            `json:"totalReports"`
	PendingReports    int            `json:"pendingReports"`
	ResolvedReports   int            `json:"resolvedReports"`
	ReportsByCategory map[string]int `json:"reportsByCategory"`
	ReportsByStatus   map[string]int `json:"reportsByStatus"`
}

// AnalyticsOverview is the dashboard overview payload.
type AnalyticsOverview struct {
	Stats         AnalyticsStats `json:"stats"`
	RecentReports []Report       `json:"recentReports"`
}
