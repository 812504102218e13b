// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Project statuses.
const (
	ProjectStatusCompleted  = "completed"
	ProjectStatusInProgress = "in-progress"
	ProjectStatusUpcoming   = "upcoming"
)

// MaxFeaturedProjects caps how many projects may be flagged featured at once.
const MaxFeaturedProjects = 3

// Field length limits for the project summary card.
const (
	MaxSummaryTitleLen       = 40
	MaxSummaryDescriptionLen = 100
)

// Project is a portfolio project entry.
type Project struct {
	ID                 int64      `json:"id"`
	Title              string     `json:"title"`
	SummaryTitle       string     `json:"summaryTitle,omitempty"`
	SummaryDescription string     `json:"summaryDescription,omitempty"`
	Featured           bool       `json:"featured"`
	StartDate          time.Time  `json:"startDate"`
	EndDate            *time.Time `json:"endDate,omitempty"`
	Description        string     `json:"description"`
	Link               string     `json:"link,omitempty"`
	PDFURL             string     `json:"pdfUrl,omitempty"`
	ZipURL             string     `json:"zipUrl,omitempty"`
	GithubURL          string     `json:"githubUrl,omitempty"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// ValidProjectStatus reports whether s is a known project status.
func ValidProjectStatus(s string) bool {
	switch s {
	case ProjectStatusCompleted, ProjectStatusInProgress, ProjectStatusUpcoming:
		return true
	}
	return false
}

// Post is a blog post. Content is stored as markdown; rendering happens at
// read time in the handler layer.
type Post struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content"`
	Excerpt     string     `json:"excerpt"`
	Author      string     `json:"author"`
	Tags        []string   `json:"tags"`
	Published   bool       `json:"isPublished"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Reading list statuses.
const (
	BookStatusReading    = "Reading"
	BookStatusCompleted  = "Completed"
	BookStatusWantToRead = "Want to Read"
)

// Book is a reading list entry.
type Book struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	Link          string     `json:"link,omitempty"`
	ImageURL      string     `json:"imageUrl,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	Status        string     `json:"status"`
	TopRead       bool       `json:"isTopRead"`
	DateAdded     time.Time  `json:"dateAdded"`
	DateCompleted *time.Time `json:"dateCompleted,omitempty"`
}

// ValidBookStatus reports whether s is a known reading list status.
func ValidBookStatus(s string) bool {
	switch s {
	case BookStatusReading, BookStatusCompleted, BookStatusWantToRead:
		return true
	}
	return false
}

// ContactMessage is a contact form submission.
type ContactMessage struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
