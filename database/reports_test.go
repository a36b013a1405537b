package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jknair0/beforeeach"

	"civicreport/models"
)

var (
	db   *sql.DB
	mock sqlmock.Sqlmock
	d    *Database
)

func setUp() {
	db, mock, _ = sqlmock.New()
	d = NewDatabaseFromConn(db)
}

func tearDown() {
	db.Close()
}

var it = beforeeach.Create(setUp, tearDown)

func reportRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "description", "category", "latitude", "longitude",
		"address", "ward_number", "status", "priority", "severity_score",
		"category_confidence", "is_duplicate", "duplicate_of", "detected_objects",
		"text_sentiment", "assigned_department", "assigned_staff", "reporter_id",
		"is_anonymous", "blockchain_tx_hash", "resolution_comment", "verified_at",
		"assigned_at", "resolved_at", "view_count", "upvotes", "created_at", "updated_at",
	})
}

func addReportRow(rows *sqlmock.Rows, id int64, title, status string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		id, title, "a description", "pothole", 27.7172, 85.3240,
		"", "", status, 1, nil,
		nil, false, nil, nil,
		"", nil, nil, nil,
		false, "", nil, nil,
		nil, nil, 0, 0, now, now,
	)
}

func TestUpvote(t *testing.T) {
	it(func() {
		testCases := []struct {
			name         string
			rowsAffected int64
			upvotes      int
			priority     int

			errorExpected bool
		}{
			{
				name:         "regular upvote",
				rowsAffected: 1,
				upvotes:      3,
				priority:     1,
			},
			{
				name:         "escalating upvote",
				rowsAffected: 1,
				upvotes:      5,
				priority:     2,
			},
			{
				name:          "missing report",
				rowsAffected:  0,
				errorExpected: true,
			},
		}

		for _, tc := range testCases {
			mock.ExpectExec(`UPDATE reports\s+SET priority = IF\(\(upvotes \+ 1\) % 5 = 0 AND priority < 5, priority \+ 1, priority\),\s+upvotes = upvotes \+ 1\s+WHERE id = \?`).
				WithArgs(int64(42)).
				WillReturnResult(sqlmock.NewResult(0, tc.rowsAffected))
			if tc.rowsAffected > 0 {
				mock.ExpectQuery(`SELECT upvotes, priority FROM reports WHERE id = \?`).
					WithArgs(int64(42)).
					WillReturnRows(sqlmock.NewRows([]string{"upvotes", "priority"}).
						AddRow(tc.upvotes, tc.priority))
			}

			result, err := d.Upvote(context.Background(), 42)
			if tc.errorExpected {
				if !errors.Is(err, models.ErrNotFound) {
					t.Errorf("%s: expected ErrNotFound, got %v", tc.name, err)
				}
				continue
			}
			if err != nil {
				t.Errorf("%s: unexpected error: %v", tc.name, err)
				continue
			}
			if result.Upvotes != tc.upvotes || result.Priority != tc.priority {
				t.Errorf("%s: got %+v, want upvotes=%d priority=%d",
					tc.name, result, tc.upvotes, tc.priority)
			}
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestApplyTransition(t *testing.T) {
	it(func() {
		req := &models.UpdateStatusRequest{Status: models.StatusVerified}

		mock.ExpectExec(`UPDATE reports\s+SET status = \?`).
			WithArgs(req.Status, req.Status, req.Status, req.Status,
				nil, nil, "", "", int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := d.ApplyTransition(context.Background(), 7, req); err != nil {
			t.Errorf("unexpected error: %v", err)
		}

		mock.ExpectExec(`UPDATE reports\s+SET status = \?`).
			WithArgs(req.Status, req.Status, req.Status, req.Status,
				nil, nil, "", "", int64(999)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		if err := d.ApplyTransition(context.Background(), 999, req); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound for missing report, got %v", err)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestGetReport(t *testing.T) {
	it(func() {
		mock.ExpectQuery(`SELECT .+ FROM reports WHERE id = \?`).
			WithArgs(int64(1)).
			WillReturnRows(addReportRow(reportRows(), 1, "broken streetlight", "submitted"))
		mock.ExpectQuery(`SELECT report_id, url, content_hash, filename, size\s+FROM report_images`).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"report_id", "url", "content_hash", "filename", "size"}).
				AddRow(1, "https://cdn.example.com/a.jpg", "", "a.jpg", 1024))

		report, err := d.GetReport(context.Background(), 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Title != "broken streetlight" {
			t.Errorf("unexpected title %q", report.Title)
		}
		if len(report.Images) != 1 || report.Images[0].URL != "https://cdn.example.com/a.jpg" {
			t.Errorf("images not loaded: %+v", report.Images)
		}

		mock.ExpectQuery(`SELECT .+ FROM reports WHERE id = \?`).
			WithArgs(int64(2)).
			WillReturnRows(reportRows())

		if _, err := d.GetReport(context.Background(), 2); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestListReportsPagination(t *testing.T) {
	it(func() {
		filter := &models.ReportFilter{
			Status: models.StatusSubmitted,
			Page:   2,
			Limit:  10,
		}

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM reports WHERE status = \?`).
			WithArgs(filter.Status).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))

		rows := reportRows()
		addReportRow(rows, 11, "first on page", "submitted")
		addReportRow(rows, 12, "second on page", "submitted")
		mock.ExpectQuery(`SELECT .+ FROM reports WHERE status = \? ORDER BY created_at DESC LIMIT \? OFFSET \?`).
			WithArgs(filter.Status, 10, 10).
			WillReturnRows(rows)
		mock.ExpectQuery(`SELECT report_id, url, content_hash, filename, size\s+FROM report_images`).
			WithArgs(int64(11), int64(12)).
			WillReturnRows(sqlmock.NewRows([]string{"report_id", "url", "content_hash", "filename", "size"}))

		page, err := d.ListReports(context.Background(), filter)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.Total != 25 || page.TotalPages != 3 || page.CurrentPage != 2 {
			t.Errorf("wrong page math: %+v", page)
		}
		if len(page.Reports) != 2 {
			t.Errorf("expected 2 reports, got %d", len(page.Reports))
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestHotspots(t *testing.T) {
	it(func() {
		mock.ExpectQuery(`SELECT ROUND\(latitude, 3\) AS cell_lat`).
			WillReturnRows(sqlmock.NewRows([]string{"cell_lat", "cell_lng", "cnt", "categories"}).
				AddRow(27.717, 85.324, 5, "pothole,garbage").
				AddRow(27.671, 85.429, 2, "water"))

		hotspots, err := d.Hotspots(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hotspots) != 2 {
			t.Fatalf("expected 2 hotspots, got %d", len(hotspots))
		}
		if hotspots[0].Count != 5 || len(hotspots[0].Categories) != 2 {
			t.Errorf("wrong first hotspot: %+v", hotspots[0])
		}
		if hotspots[1].Categories[0] != "water" {
			t.Errorf("wrong categories: %+v", hotspots[1].Categories)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestCreateReportRollsBackOnImageFailure(t *testing.T) {
	it(func() {
		report := &models.Report{
			Title:       "overflowing bin",
			Description: "bin at the corner",
			Category:    models.CategoryGarbage,
			Latitude:    27.7,
			Longitude:   85.3,
			Status:      models.StatusSubmitted,
			Priority:    1,
			Images:      []models.ReportImage{{URL: "https://cdn.example.com/bin.jpg"}},
		}

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO reports`).
			WillReturnResult(sqlmock.NewResult(3, 1))
		mock.ExpectExec(`INSERT INTO report_images`).
			WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		if _, err := d.CreateReport(context.Background(), report); err == nil {
			t.Error("expected error when image insert fails")
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}
