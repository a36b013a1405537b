// Package jobs runs the periodic background sweeps.
package jobs

import (
	"context"
	"strconv"
	"time"

	"github.com/apex/log"
	"github.com/robfig/cron/v3"

	"civicreport/database"
	"civicreport/models"
)

const sweepTimeout = 2 * time.Minute

// SLASweeper escalates reports whose assigned department missed its
// resolution target. Each sweep raises the priority of every overdue report
// by one step, bounded by the priority ceiling.
type SLASweeper struct {
	db   *database.Database
	cron *cron.Cron
}

// NewSLASweeper creates a sweeper with its own cron scheduler.
func NewSLASweeper(db *database.Database) *SLASweeper {
	return &SLASweeper{
		db:   db,
		cron: cron.New(),
	}
}

// Start schedules the sweep with the given cron spec and begins running.
func (s *SLASweeper) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.Sweep); err != nil {
		return err
	}
	s.cron.Start()
	log.WithField("spec", spec).Info("sla sweep scheduled")
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *SLASweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep runs one escalation pass.
func (s *SLASweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	overdue, err := s.db.OverdueReports(ctx)
	if err != nil {
		log.WithError(err).Error("sla sweep failed to list overdue reports")
		return
	}
	if len(overdue) == 0 {
		return
	}

	escalated := 0
	for _, report := range overdue {
		if err := s.db.RaisePriority(ctx, report.ID); err != nil {
			log.WithError(err).WithField("report", report.ID).
				Error("sla sweep failed to raise priority")
			continue
		}
		escalated++

		entry := &models.AuditLog{
			Actor:  "system",
			Action: "report.sla_escalation",
			Target: strconv.FormatInt(report.ID, 10),
			Meta:   map[string]string{"status": report.Status},
		}
		if _, err := s.db.InsertAuditLog(ctx, entry); err != nil {
			log.WithError(err).WithField("report", report.ID).
				Warn("failed to record sla escalation")
		}
	}

	log.WithFields(log.Fields{
		"overdue":   len(overdue),
		"escalated": escalated,
	}).Info("sla sweep completed")
}
