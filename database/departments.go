package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"civicreport/models"
)

const mysqlDuplicateEntry = 1062

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

// CreateDepartment persists a new department. The name is unique.
func (d *Database) CreateDepartment(ctx context.Context, dep *models.Department) (int64, error) {
	categories, err := json.Marshal(dep.Categories)
	if err != nil {
		return 0, fmt.Errorf("failed to encode categories: %w", err)
	}

	var coverage interface{}
	if len(dep.CoverageAreas) > 0 {
		encoded, err := json.Marshal(dep.CoverageAreas)
		if err != nil {
			return 0, fmt.Errorf("failed to encode coverage areas: %w", err)
		}
		coverage = string(encoded)
	}

	result, err := d.db.ExecContext(ctx, `
		INSERT INTO departments (name, description, contact_email, contact_phone,
			categories, coverage_areas, response_time_hours, resolution_time_hours)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		dep.Name, dep.Description, dep.ContactEmail, dep.ContactPhone,
		string(categories), coverage, dep.SLA.ResponseTimeHours, dep.SLA.ResolutionTimeHours,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return 0, models.ErrAlreadyExists
		}
		return 0, fmt.Errorf("failed to insert department: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get department id: %w", err)
	}
	return id, nil
}

const departmentColumns = `id, name, description, contact_email, contact_phone, categories,
		coverage_areas, total_assigned, total_resolved, current_pending,
		response_time_hours, resolution_time_hours, is_active, created_at, updated_at`

func scanDepartment(row rowScanner) (*models.Department, error) {
	var (
		dep         models.Department
		description sql.NullString
		categories  string
		coverage    sql.NullString
	)

	err := row.Scan(
		&dep.ID, &dep.Name, &description, &dep.ContactEmail, &dep.ContactPhone,
		&categories, &coverage, &dep.Metrics.TotalAssigned, &dep.Metrics.TotalResolved,
		&dep.Metrics.CurrentPending, &dep.SLA.ResponseTimeHours, &dep.SLA.ResolutionTimeHours,
		&dep.IsActive, &dep.CreatedAt, &dep.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		dep.Description = description.String
	}
	if err := json.Unmarshal([]byte(categories), &dep.Categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories for department %d: %w", dep.ID, err)
	}
	if coverage.Valid && coverage.String != "" {
		if err := json.Unmarshal([]byte(coverage.String), &dep.CoverageAreas); err != nil {
			return nil, fmt.Errorf("failed to decode coverage areas for department %d: %w", dep.ID, err)
		}
	}
	return &dep, nil
}

// GetDepartment retrieves a department by id.
func (d *Database) GetDepartment(ctx context.Context, id int64) (*models.Department, error) {
	row := d.db.QueryRowContext(ctx,
		"SELECT "+departmentColumns+" FROM departments WHERE id = ?", id)

	dep, err := scanDepartment(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query department: %w", err)
	}
	return dep, nil
}

// ListActiveDepartments returns all active departments ordered by name.
func (d *Database) ListActiveDepartments(ctx context.Context) ([]models.Department, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT "+departmentColumns+" FROM departments WHERE is_active = TRUE ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query departments: %w", err)
	}
	defer rows.Close()

	var departments []models.Department
	for rows.Next() {
		dep, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, *dep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating departments: %w", err)
	}
	return departments, nil
}

// Department metric callbacks.
const (
	MetricAssigned = "assigned"
	MetricResolved = "resolved"
)

// ApplyDepartmentMetrics updates the lifecycle counters for a department
// with a single atomic statement. Pending never goes below zero.
func (d *Database) ApplyDepartmentMetrics(ctx context.Context, id int64, action string) error {
	var query string
	switch action {
	case MetricAssigned:
		query = `UPDATE departments
			SET total_assigned = total_assigned + 1,
			    current_pending = current_pending + 1
			WHERE id = ?`
	case MetricResolved:
		query = `UPDATE departments
			SET total_resolved = total_resolved + 1,
			    current_pending = GREATEST(current_pending - 1, 0)
			WHERE id = ?`
	default:
		return fmt.Errorf("unknown metric action %q", action)
	}

	if _, err := d.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to apply department metrics: %w", err)
	}
	return nil
}
