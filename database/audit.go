package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"civicreport/models"
)

// InsertAuditLog records an administrative action.
func (d *Database) InsertAuditLog(ctx context.Context, entry *models.AuditLog) (int64, error) {
	var meta interface{}
	if len(entry.Meta) > 0 {
		encoded, err := json.Marshal(entry.Meta)
		if err != nil {
			return 0, fmt.Errorf("failed to encode audit meta: %w", err)
		}
		meta = string(encoded)
	}

	result, err := d.db.ExecContext(ctx,
		"INSERT INTO audit_logs (actor, action, target, meta) VALUES (?, ?, ?, ?)",
		entry.Actor, entry.Action, entry.Target, meta)
	if err != nil {
		return 0, fmt.Errorf("failed to insert audit log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get audit log id: %w", err)
	}
	return id, nil
}

// ListAuditLogs returns the newest audit entries.
func (d *Database) ListAuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, actor, action, target, meta, created_at
		FROM audit_logs
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	var logs []models.AuditLog
	for rows.Next() {
		var (
			entry models.AuditLog
			meta  sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.Actor, &entry.Action, &entry.Target, &meta, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		if meta.Valid && meta.String != "" {
			if err := json.Unmarshal([]byte(meta.String), &entry.Meta); err != nil {
				return nil, fmt.Errorf("failed to decode audit meta: %w", err)
			}
		}
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit logs: %w", err)
	}
	return logs, nil
}
