package database

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"civicreport/models"
)

func testTime() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestCreateDepartmentDuplicate(t *testing.T) {
	it(func() {
		dep := &models.Department{
			Name:       "Roads Department",
			Categories: []string{models.CategoryPothole, models.CategoryRoad},
			SLA: models.DepartmentSLA{
				ResponseTimeHours:   models.DefaultResponseTimeHours,
				ResolutionTimeHours: models.DefaultResolutionTimeHours,
			},
		}

		mock.ExpectExec(`INSERT INTO departments`).
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "duplicate entry"})

		if _, err := d.CreateDepartment(context.Background(), dep); !errors.Is(err, models.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, got %v", err)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestApplyDepartmentMetrics(t *testing.T) {
	it(func() {
		mock.ExpectExec(`UPDATE departments\s+SET total_assigned = total_assigned \+ 1,\s+current_pending = current_pending \+ 1\s+WHERE id = \?`).
			WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := d.ApplyDepartmentMetrics(context.Background(), 3, MetricAssigned); err != nil {
			t.Errorf("unexpected error: %v", err)
		}

		mock.ExpectExec(`UPDATE departments\s+SET total_resolved = total_resolved \+ 1,\s+current_pending = GREATEST\(current_pending - 1, 0\)\s+WHERE id = \?`).
			WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := d.ApplyDepartmentMetrics(context.Background(), 3, MetricResolved); err != nil {
			t.Errorf("unexpected error: %v", err)
		}

		if err := d.ApplyDepartmentMetrics(context.Background(), 3, "promoted"); err == nil {
			t.Error("expected error for unknown metric action")
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestGetDepartmentDecodesCategories(t *testing.T) {
	it(func() {
		rows := sqlmock.NewRows([]string{
			"id", "name", "description", "contact_email", "contact_phone",
			"categories", "coverage_areas", "total_assigned", "total_resolved",
			"current_pending", "response_time_hours", "resolution_time_hours",
			"is_active", "created_at", "updated_at",
		}).AddRow(
			5, "Water Supply", nil, "water@city.gov", "+97714200000",
			`["water","drainage"]`, nil, 10, 7,
			3, 24, 72,
			true, testTime(), testTime(),
		)

		mock.ExpectQuery(`SELECT .+ FROM departments WHERE id = \?`).
			WithArgs(int64(5)).
			WillReturnRows(rows)

		dep, err := d.GetDepartment(context.Background(), 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !dep.HandlesCategory(models.CategoryWater) {
			t.Error("expected department to handle water")
		}
		if dep.HandlesCategory(models.CategoryPothole) {
			t.Error("department should not handle pothole")
		}
		if dep.Metrics.CurrentPending != 3 {
			t.Errorf("wrong pending counter: %d", dep.Metrics.CurrentPending)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}
