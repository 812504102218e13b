// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic jobs of the site. Currently a single
// sweep that publishes blog posts whose scheduled time has passed.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/foliolabs/folio/internal/store"
)

// publishSchedule is how often the publish sweep runs.
const publishSchedule = "*/5 * * * *" // every 5 minutes

// Scheduler owns the cron instance and its jobs.
type Scheduler struct {
	cron    *cron.Cron
	queries *store.Queries
	logger  *slog.Logger
}

// New creates a scheduler over the given database.
func New(db *sql.DB, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		queries: store.New(db),
		logger:  logger,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(publishSchedule, s.publishDuePosts); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("scheduler started", "publish_schedule", publishSchedule)
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// publishDuePosts flips posts whose scheduled publish time has passed.
func (s *Scheduler) publishDuePosts() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.queries.PublishDuePosts(ctx, time.Now())
	if err != nil {
		s.logger.Error("publish sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("published scheduled posts", "count", n)
	}
}
