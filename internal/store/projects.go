// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/foliolabs/folio/internal/model"
)

const projectColumns = `id, title, summary_title, summary_description, featured,
	start_date, end_date, description, link, pdf_url, zip_url, github_url, status, created_at`

// CreateProjectParams holds the fields for a new project.
type CreateProjectParams struct {
	Title              string
	SummaryTitle       string
	SummaryDescription string
	Featured           bool
	StartDate          time.Time
	EndDate            *time.Time
	Description        string
	Link               string
	PDFURL             string
	ZipURL             string
	GithubURL          string
	Status             string
}

// CreateProject inserts a new project and returns it.
func (q *Queries) CreateProject(ctx context.Context, p CreateProjectParams) (model.Project, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO projects (title, summary_title, summary_description, featured,
			start_date, end_date, description, link, pdf_url, zip_url, github_url, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Title, p.SummaryTitle, p.SummaryDescription, p.Featured,
		p.StartDate, nullTime(p.EndDate), p.Description, p.Link, p.PDFURL, p.ZipURL, p.GithubURL,
		p.Status, time.Now(),
	)
	if err != nil {
		return model.Project{}, fmt.Errorf("creating project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Project{}, fmt.Errorf("creating project: %w", err)
	}
	return q.GetProject(ctx, id)
}

// GetProject returns a single project by ID.
func (q *Queries) GetProject(ctx context.Context, id int64) (model.Project, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	return scanProject(row)
}

// ListProjects returns all projects, newest start date first.
func (q *Queries) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY start_date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// CountFeaturedProjects returns how many projects are currently featured,
// optionally excluding one project (for updates to an already-featured entry).
func (q *Queries) CountFeaturedProjects(ctx context.Context, excludeID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM projects WHERE featured = 1 AND id != ?`, excludeID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting featured projects: %w", err)
	}
	return n, nil
}

// UpdateProject replaces all mutable fields of a project.
func (q *Queries) UpdateProject(ctx context.Context, id int64, p CreateProjectParams) (model.Project, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE projects SET title = ?, summary_title = ?, summary_description = ?, featured = ?,
			start_date = ?, end_date = ?, description = ?, link = ?, pdf_url = ?, zip_url = ?,
			github_url = ?, status = ?
		WHERE id = ?`,
		p.Title, p.SummaryTitle, p.SummaryDescription, p.Featured,
		p.StartDate, nullTime(p.EndDate), p.Description, p.Link, p.PDFURL, p.ZipURL,
		p.GithubURL, p.Status, id,
	)
	if err != nil {
		return model.Project{}, fmt.Errorf("updating project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Project{}, ErrNotFound
	}
	return q.GetProject(ctx, id)
}

// DeleteProject removes a project.
func (q *Queries) DeleteProject(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (model.Project, error) {
	var p model.Project
	var endDate sql.NullTime
	err := row.Scan(&p.ID, &p.Title, &p.SummaryTitle, &p.SummaryDescription, &p.Featured,
		&p.StartDate, &endDate, &p.Description, &p.Link, &p.PDFURL, &p.ZipURL, &p.GithubURL,
		&p.Status, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, ErrNotFound
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("scanning project: %w", err)
	}
	if endDate.Valid {
		p.EndDate = &endDate.Time
	}
	return p, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
