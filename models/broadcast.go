package models

import "time"

// Broadcast event types delivered to dashboard sessions.
const (
	EventReportNew    = "report:new"
	EventReportStatus = "report:status"
)

// BroadcastMessage is the envelope sent to WebSocket clients.
type BroadcastMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// StatusEvent is the payload of a report:status broadcast.
type StatusEvent struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// AuditLog is a recorded administrative action.
type AuditLog struct {
	ID        int64             `json:"id"`
	Actor     string            `json:"actor"`
	Action    string            `json:"action"`
	Target    string            `json:"target"`
	Meta      map[string]string `json:"meta,omitempty"`
	CreatedAt time.Time         `json:"timestamp"`
}
