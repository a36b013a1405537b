package database

import (
	"database/sql"
	"fmt"

	"github.com/apex/log"
)

// Schema contains the database schema for the reporting platform.
const Schema = `
CREATE TABLE IF NOT EXISTS reports (
    id BIGINT AUTO_INCREMENT PRIMARY KEY,
    title VARCHAR(255) NOT NULL,
    description TEXT NOT NULL,
    category ENUM('pothole','garbage','streetlight','water','road','drainage','other') NOT NULL,
    latitude DOUBLE NOT NULL,
    longitude DOUBLE NOT NULL,
    address VARCHAR(512) NOT NULL DEFAULT '',
    ward_number VARCHAR(32) NOT NULL DEFAULT '',
    status ENUM('submitted','verified','assigned','in_progress','resolved','closed') NOT NULL DEFAULT 'submitted',
    priority TINYINT NOT NULL DEFAULT 1,
    severity_score DOUBLE NULL,
    category_confidence DOUBLE NULL,
    is_duplicate BOOLEAN NOT NULL DEFAULT FALSE,
    duplicate_of BIGINT NULL,
    detected_objects TEXT,
    text_sentiment VARCHAR(32) NOT NULL DEFAULT '',
    assigned_department BIGINT NULL,
    assigned_staff BIGINT NULL,
    reporter_id BIGINT NULL,
    is_anonymous BOOLEAN NOT NULL DEFAULT FALSE,
    blockchain_tx_hash VARCHAR(128) NOT NULL DEFAULT '',
    resolution_comment TEXT,
    verified_at TIMESTAMP NULL,
    assigned_at TIMESTAMP NULL,
    resolved_at TIMESTAMP NULL,
    view_count INT NOT NULL DEFAULT 0,
    upvotes INT NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    INDEX idx_status_created (status, created_at),
    INDEX idx_category_priority (category, priority),
    INDEX idx_department_status (assigned_department, status),
    INDEX idx_location (latitude, longitude),
    FULLTEXT INDEX ft_reports (title, description, address)
);

CREATE TABLE IF NOT EXISTS report_images (
    id BIGINT AUTO_INCREMENT PRIMARY KEY,
    report_id BIGINT NOT NULL,
    url VARCHAR(1024) NOT NULL,
    content_hash VARCHAR(128) NOT NULL DEFAULT '',
    filename VARCHAR(255) NOT NULL DEFAULT '',
    size BIGINT NOT NULL DEFAULT 0,
    position INT NOT NULL DEFAULT 0,
    FOREIGN KEY (report_id) REFERENCES reports(id) ON DELETE CASCADE,
    INDEX idx_report_position (report_id, position)
);

CREATE TABLE IF NOT EXISTS departments (
    id BIGINT AUTO_INCREMENT PRIMARY KEY,
    name VARCHAR(100) NOT NULL UNIQUE,
    description TEXT,
    contact_email VARCHAR(255) NOT NULL,
    contact_phone VARCHAR(32) NOT NULL,
    categories TEXT NOT NULL,
    coverage_areas TEXT,
    total_assigned INT NOT NULL DEFAULT 0,
    total_resolved INT NOT NULL DEFAULT 0,
    current_pending INT NOT NULL DEFAULT 0,
    response_time_hours INT NOT NULL DEFAULT 24,
    resolution_time_hours INT NOT NULL DEFAULT 72,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    INDEX idx_active_name (is_active, name)
);

CREATE TABLE IF NOT EXISTS users (
    id BIGINT AUTO_INCREMENT PRIMARY KEY,
    phone_number VARCHAR(32) NOT NULL UNIQUE,
    email VARCHAR(255) NULL UNIQUE,
    name VARCHAR(100) NOT NULL DEFAULT '',
    password_hash VARCHAR(256) NOT NULL DEFAULT '',
    is_verified BOOLEAN NOT NULL DEFAULT FALSE,
    verification_token VARCHAR(64) NOT NULL DEFAULT '',
    verification_expires TIMESTAMP NULL,
    role ENUM('citizen','staff','admin') NOT NULL DEFAULT 'citizen',
    reputation_score INT NOT NULL DEFAULT 0,
    total_reports INT NOT NULL DEFAULT 0,
    resolved_reports INT NOT NULL DEFAULT 0,
    last_login TIMESTAMP NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    INDEX idx_role_active (role, is_active)
);

CREATE TABLE IF NOT EXISTS audit_logs (
    id BIGINT AUTO_INCREMENT PRIMARY KEY,
    actor VARCHAR(100) NOT NULL,
    action VARCHAR(100) NOT NULL,
    target VARCHAR(255) NOT NULL DEFAULT '',
    meta TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    INDEX idx_created (created_at)
);

CREATE TABLE IF NOT EXISTS schema_migrations (
    version INT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	Up      string
}

// Migrations list all database migrations.
var Migrations = []Migration{}

// InitializeSchema creates the database schema and runs migrations.
func InitializeSchema(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("database schema initialized")
	return nil
}

// RunMigrations applies all pending database migrations.
func RunMigrations(db *sql.DB) error {
	rows, err := db.Query("SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate migrations: %w", err)
	}

	for _, m := range Migrations {
		if applied[m.Version] {
			continue
		}
		log.WithFields(log.Fields{"version": m.Version, "name": m.Name}).Info("applying migration")
		if _, err := db.Exec(m.Up); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}
		if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}

	return nil
}
