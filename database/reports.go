package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"civicreport/models"
)

const reportColumns = `id, title, description, category, latitude, longitude, address, ward_number,
		status, priority, severity_score, category_confidence, is_duplicate, duplicate_of,
		detected_objects, text_sentiment, assigned_department, assigned_staff, reporter_id,
		is_anonymous, blockchain_tx_hash, resolution_comment, verified_at, assigned_at,
		resolved_at, view_count, upvotes, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(row rowScanner) (*models.Report, error) {
	return scanReportWith(row)
}

// CreateReport persists a new report and its image references in a single
// transaction. The write is all-or-nothing.
func (d *Database) CreateReport(ctx context.Context, r *models.Report) (int64, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO reports (title, description, category, latitude, longitude,
			address, ward_number, status, priority, reporter_id, is_anonymous)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Title, r.Description, r.Category, r.Latitude, r.Longitude,
		r.Address, r.WardNumber, r.Status, r.Priority, r.Reporter, r.IsAnonymous,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get report id: %w", err)
	}

	for i, img := range r.Images {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO report_images (report_id, url, content_hash, filename, size, position)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, img.URL, img.ContentHash, img.Filename, img.Size, i,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert report image: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit report: %w", err)
	}

	return id, nil
}

// GetReport retrieves a single report with its images.
func (d *Database) GetReport(ctx context.Context, id int64) (*models.Report, error) {
	row := d.db.QueryRowContext(ctx,
		"SELECT "+reportColumns+" FROM reports WHERE id = ?", id)

	r, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query report: %w", err)
	}

	reports := []models.Report{*r}
	if err := d.loadImages(ctx, reports); err != nil {
		return nil, err
	}
	return &reports[0], nil
}

// IncrementViewCount bumps the view counter with a single atomic statement.
func (d *Database) IncrementViewCount(ctx context.Context, id int64) error {
	_, err := d.db.ExecContext(ctx,
		"UPDATE reports SET view_count = view_count + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to increment view count: %w", err)
	}
	return nil
}

// Upvote applies one upvote and the priority escalation in a single atomic
// statement: priority rises by one each time the count reaches a multiple of
// five while priority is below the maximum. The priority expression runs
// against the pre-increment upvote value, hence upvotes + 1.
func (d *Database) Upvote(ctx context.Context, id int64) (*models.UpvoteResult, error) {
	result, err := d.db.ExecContext(ctx, `
		UPDATE reports
		SET priority = IF((upvotes + 1) % 5 = 0 AND priority < 5, priority + 1, priority),
		    upvotes = upvotes + 1
		WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to upvote report: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get upvote result: %w", err)
	}
	if rows == 0 {
		return nil, models.ErrNotFound
	}

	var res models.UpvoteResult
	err = d.db.QueryRowContext(ctx,
		"SELECT upvotes, priority FROM reports WHERE id = ?", id).
		Scan(&res.Upvotes, &res.Priority)
	if err != nil {
		return nil, fmt.Errorf("failed to read upvote counters: %w", err)
	}
	return &res, nil
}

// ApplyTransition moves a report to the target status. The lifecycle
// timestamps are set only on first entry to their state; department and
// staff bindings are preserved unless new ones are supplied.
func (d *Database) ApplyTransition(ctx context.Context, id int64, req *models.UpdateStatusRequest) error {
	result, err := d.db.ExecContext(ctx, `
		UPDATE reports
		SET status = ?,
		    verified_at = IF(? = 'verified', COALESCE(verified_at, NOW()), verified_at),
		    assigned_at = IF(? = 'assigned', COALESCE(assigned_at, NOW()), assigned_at),
		    resolved_at = IF(? = 'resolved', COALESCE(resolved_at, NOW()), resolved_at),
		    assigned_department = COALESCE(?, assigned_department),
		    assigned_staff = COALESCE(?, assigned_staff),
		    resolution_comment = IF(? = '', resolution_comment, ?)
		WHERE id = ?`,
		req.Status, req.Status, req.Status, req.Status,
		req.AssignedDepartment, req.AssignedStaff,
		req.Comment, req.Comment, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update report status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get transition result: %w", err)
	}
	if rows == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SetAnalysis writes the external analysis collaborator's results.
func (d *Database) SetAnalysis(ctx context.Context, id int64, a *models.AIAnalysis, severity *float64) error {
	var objects interface{}
	if len(a.DetectedObjects) > 0 {
		encoded, err := json.Marshal(a.DetectedObjects)
		if err != nil {
			return fmt.Errorf("failed to encode detected objects: %w", err)
		}
		objects = string(encoded)
	}

	result, err := d.db.ExecContext(ctx, `
		UPDATE reports
		SET category_confidence = ?, is_duplicate = ?, duplicate_of = ?,
		    detected_objects = ?, text_sentiment = ?,
		    severity_score = COALESCE(?, severity_score)
		WHERE id = ?`,
		a.CategoryConfidence, a.IsDuplicate, a.DuplicateOf,
		objects, a.TextSentiment, severity, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set report analysis: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get analysis result: %w", err)
	}
	if rows == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SetBlockchainTxHash records the ledger anchoring hash for a report.
func (d *Database) SetBlockchainTxHash(ctx context.Context, id int64, txHash string) error {
	result, err := d.db.ExecContext(ctx,
		"UPDATE reports SET blockchain_tx_hash = ? WHERE id = ?", txHash, id)
	if err != nil {
		return fmt.Errorf("failed to set blockchain tx hash: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get tx hash result: %w", err)
	}
	if rows == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListReports returns one page of reports matching the filter. With a center
// point the page is ordered nearest first, otherwise newest first.
func (d *Database) ListReports(ctx context.Context, f *models.ReportFilter) (*models.ReportPage, error) {
	var (
		where []string
		args  []interface{}
	)

	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.AssignedDepartment != nil {
		where = append(where, "assigned_department = ?")
		args = append(args, *f.AssignedDepartment)
	}

	orderBy := "created_at DESC"
	var orderArgs []interface{}
	if f.Latitude != nil && f.Longitude != nil {
		// ST_Distance_Sphere takes POINT(longitude, latitude) and returns meters.
		where = append(where,
			"ST_Distance_Sphere(POINT(longitude, latitude), POINT(?, ?)) <= ?")
		args = append(args, *f.Longitude, *f.Latitude, f.RadiusMeters)
		orderBy = "ST_Distance_Sphere(POINT(longitude, latitude), POINT(?, ?)) ASC"
		orderArgs = append(orderArgs, *f.Longitude, *f.Latitude)
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	err := d.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reports"+whereClause, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}

	query := "SELECT " + reportColumns + " FROM reports" + whereClause +
		" ORDER BY " + orderBy + " LIMIT ? OFFSET ?"
	pageArgs := append(append(args, orderArgs...), f.Limit, (f.Page-1)*f.Limit)

	rows, err := d.db.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	reports, err := collectReports(rows)
	if err != nil {
		return nil, err
	}

	if err := d.loadImages(ctx, reports); err != nil {
		return nil, err
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + f.Limit - 1) / f.Limit
	}

	return &models.ReportPage{
		Reports:     reports,
		TotalPages:  totalPages,
		CurrentPage: f.Page,
		Total:       total,
	}, nil
}

// SearchReports runs a relevance-ranked full-text search over title,
// description and address.
func (d *Database) SearchReports(ctx context.Context, q string, page, limit int) ([]models.Report, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+reportColumns+`,
		       MATCH(title, description, address) AGAINST (? IN NATURAL LANGUAGE MODE) AS relevance
		FROM reports
		WHERE MATCH(title, description, address) AGAINST (? IN NATURAL LANGUAGE MODE)
		ORDER BY relevance DESC
		LIMIT ? OFFSET ?`,
		q, q, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search reports: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		var relevance float64
		r, err := scanReportWith(rows, &relevance)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		reports = append(reports, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}

	if err := d.loadImages(ctx, reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// Hotspots groups reports into ~100m grid cells (three decimal places),
// keeps cells holding at least two reports and returns the top twenty by
// count, each with its contributing categories.
func (d *Database) Hotspots(ctx context.Context) ([]models.Hotspot, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT ROUND(latitude, 3) AS cell_lat, ROUND(longitude, 3) AS cell_lng,
		       COUNT(*) AS cnt, GROUP_CONCAT(DISTINCT category) AS categories
		FROM reports
		GROUP BY cell_lat, cell_lng
		HAVING cnt >= 2
		ORDER BY cnt DESC
		LIMIT 20`)
	if err != nil {
		return nil, fmt.Errorf("failed to query hotspots: %w", err)
	}
	defer rows.Close()

	var hotspots []models.Hotspot
	for rows.Next() {
		var (
			h          models.Hotspot
			categories string
		)
		if err := rows.Scan(&h.Latitude, &h.Longitude, &h.Count, &categories); err != nil {
			return nil, fmt.Errorf("failed to scan hotspot: %w", err)
		}
		h.Categories = strings.Split(categories, ",")
		hotspots = append(hotspots, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hotspots: %w", err)
	}
	return hotspots, nil
}

// Locations returns the coordinates of every report inside the given bounds,
// for map viewport aggregation.
func (d *Database) Locations(ctx context.Context, latMin, lonMin, latMax, lonMax float64) ([][2]float64, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT latitude, longitude FROM reports
		WHERE latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?`,
		latMin, latMax, lonMin, lonMax)
	if err != nil {
		return nil, fmt.Errorf("failed to query report locations: %w", err)
	}
	defer rows.Close()

	var points [][2]float64
	for rows.Next() {
		var lat, lon float64
		if err := rows.Scan(&lat, &lon); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		points = append(points, [2]float64{lat, lon})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locations: %w", err)
	}
	return points, nil
}

// CountReports returns the number of reports in the given statuses, or all
// reports when none are given.
func (d *Database) CountReports(ctx context.Context, statuses ...string) (int, error) {
	query := "SELECT COUNT(*) FROM reports"
	var args []interface{}
	if len(statuses) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
		query += " WHERE status IN (" + placeholders + ")"
		for _, s := range statuses {
			args = append(args, s)
		}
	}

	var count int
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}

// GroupReportCounts returns report counts grouped by the given column
// (status or category).
func (d *Database) GroupReportCounts(ctx context.Context, column string) (map[string]int, error) {
	if column != "status" && column != "category" {
		return nil, fmt.Errorf("unsupported grouping column %q", column)
	}

	rows, err := d.db.QueryContext(ctx,
		"SELECT "+column+", COUNT(*) FROM reports GROUP BY "+column)
	if err != nil {
		return nil, fmt.Errorf("failed to group report counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			key   string
			count int
		)
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan group count: %w", err)
		}
		counts[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group counts: %w", err)
	}
	return counts, nil
}

// RecentReports returns the newest reports, for the analytics overview.
func (d *Database) RecentReports(ctx context.Context, limit int) ([]models.Report, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT "+reportColumns+" FROM reports ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent reports: %w", err)
	}
	defer rows.Close()

	return collectReports(rows)
}

// OverdueReports returns assigned or in-progress reports whose owning
// department's resolution SLA has elapsed since assignment.
func (d *Database) OverdueReports(ctx context.Context) ([]models.Report, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+prefixedReportColumns("r")+`
		FROM reports r
		INNER JOIN departments dep ON r.assigned_department = dep.id
		WHERE r.status IN ('assigned', 'in_progress')
		  AND r.priority < 5
		  AND r.assigned_at IS NOT NULL
		  AND r.assigned_at < NOW() - INTERVAL dep.resolution_time_hours HOUR`)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue reports: %w", err)
	}
	defer rows.Close()

	return collectReports(rows)
}

// RaisePriority bumps a report's priority by one, capped at the maximum.
func (d *Database) RaisePriority(ctx context.Context, id int64) error {
	_, err := d.db.ExecContext(ctx,
		"UPDATE reports SET priority = LEAST(priority + 1, 5) WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to raise report priority: %w", err)
	}
	return nil
}

func prefixedReportColumns(alias string) string {
	cols := strings.Split(reportColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

func collectReports(rows *sql.Rows) ([]models.Report, error) {
	var reports []models.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}
	return reports, nil
}

// scanReportWith scans a report row plus any trailing columns (e.g. a
// relevance score).
func scanReportWith(row rowScanner, extra ...interface{}) (*models.Report, error) {
	var (
		r               models.Report
		severity        sql.NullFloat64
		confidence      sql.NullFloat64
		isDuplicate     bool
		duplicateOf     sql.NullInt64
		detectedObjects sql.NullString
		sentiment       string
		department      sql.NullInt64
		staff           sql.NullInt64
		reporter        sql.NullInt64
		resolutionCmt   sql.NullString
		verifiedAt      sql.NullTime
		assignedAt      sql.NullTime
		resolvedAt      sql.NullTime
	)

	dest := []interface{}{
		&r.ID, &r.Title, &r.Description, &r.Category, &r.Latitude, &r.Longitude,
		&r.Address, &r.WardNumber, &r.Status, &r.Priority, &severity, &confidence,
		&isDuplicate, &duplicateOf, &detectedObjects, &sentiment, &department,
		&staff, &reporter, &r.IsAnonymous, &r.BlockchainTxHash, &resolutionCmt,
		&verifiedAt, &assignedAt, &resolvedAt, &r.ViewCount, &r.Upvotes,
		&r.CreatedAt, &r.UpdatedAt,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if severity.Valid {
		r.SeverityScore = &severity.Float64
	}
	if department.Valid {
		r.AssignedDepartment = &department.Int64
	}
	if staff.Valid {
		r.AssignedStaff = &staff.Int64
	}
	if reporter.Valid {
		r.Reporter = &reporter.Int64
	}
	if resolutionCmt.Valid {
		r.ResolutionComment = resolutionCmt.String
	}
	if verifiedAt.Valid {
		r.VerifiedAt = &verifiedAt.Time
	}
	if assignedAt.Valid {
		r.AssignedAt = &assignedAt.Time
	}
	if resolvedAt.Valid {
		r.ResolvedAt = &resolvedAt.Time
	}

	var objects []string
	if detectedObjects.Valid && detectedObjects.String != "" {
		if err := json.Unmarshal([]byte(detectedObjects.String), &objects); err != nil {
			return nil, fmt.Errorf("failed to decode detected objects for report %d: %w", r.ID, err)
		}
	}
	if confidence.Valid || isDuplicate || len(objects) > 0 || sentiment != "" {
		r.AIAnalysis = &models.AIAnalysis{
			IsDuplicate:     isDuplicate,
			DetectedObjects: objects,
			TextSentiment:   sentiment,
		}
		if confidence.Valid {
			r.AIAnalysis.CategoryConfidence = &confidence.Float64
		}
		if duplicateOf.Valid {
			r.AIAnalysis.DuplicateOf = &duplicateOf.Int64
		}
	}

	return &r, nil
}

// loadImages fills the Images slice of each report with one batched query.
func (d *Database) loadImages(ctx context.Context, reports []models.Report) error {
	if len(reports) == 0 {
		return nil
	}

	index := make(map[int64]*models.Report, len(reports))
	placeholders := make([]string, 0, len(reports))
	args := make([]interface{}, 0, len(reports))
	for i := range reports {
		reports[i].Images = []models.ReportImage{}
		index[reports[i].ID] = &reports[i]
		placeholders = append(placeholders, "?")
		args = append(args, reports[i].ID)
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT report_id, url, content_hash, filename, size
		FROM report_images
		WHERE report_id IN (`+strings.Join(placeholders, ",")+`)
		ORDER BY report_id, position`, args...)
	if err != nil {
		return fmt.Errorf("failed to query report images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			reportID int64
			img      models.ReportImage
		)
		if err := rows.Scan(&reportID, &img.URL, &img.ContentHash, &img.Filename, &img.Size); err != nil {
			return fmt.Errorf("failed to scan report image: %w", err)
		}
		if r, ok := index[reportID]; ok {
			r.Images = append(r.Images, img)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating report images: %w", err)
	}
	return nil
}
