// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/foliolabs/folio/internal/model"
	"github.com/foliolabs/folio/internal/store"
)

// ProjectsHandler serves the portfolio project collection.
type ProjectsHandler struct {
	queries *store.Queries
}

// NewProjectsHandler creates a new ProjectsHandler.
func NewProjectsHandler(db *sql.DB) *ProjectsHandler {
	return &ProjectsHandler{queries: store.New(db)}
}

// projectRequest is the JSON body for create and update.
type projectRequest struct {
	Title              string `json:"title"`
	SummaryTitle       string `json:"summaryTitle"`
	SummaryDescription string `json:"summaryDescription"`
	Featured           bool   `json:"featured"`
	StartDate          string `json:"startDate"`
	EndDate            string `json:"endDate"`
	Description        string `json:"description"`
	Link               string `json:"link"`
	PDFURL             string `json:"pdfUrl"`
	ZipURL             string `json:"zipUrl"`
	GithubURL          string `json:"githubUrl"`
	Status             string `json:"status"`
}

// List handles GET /api/projects (public).
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.queries.ListProjects(r.Context())
	if err != nil {
		logAndInternalError(w, "listing projects", "error", err)
		return
	}
	if projects == nil {
		projects = []model.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

// Create handles POST /api/projects (gated).
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	params, err := h.parseRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if params.Featured {
		if ok := h.checkFeaturedCap(w, r, 0); !ok {
			return
		}
	}

	project, err := h.queries.CreateProject(r.Context(), params)
	if err != nil {
		logAndInternalError(w, "creating project", "error", err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// Update handles PUT /api/projects/{id} (gated).
func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	params, err := h.parseRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if params.Featured {
		if ok := h.checkFeaturedCap(w, r, id); !ok {
			return
		}
	}

	project, err := h.queries.UpdateProject(r.Context(), id, params)
	if errors.Is(err, store.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "Project not found")
		return
	}
	if err != nil {
		logAndInternalError(w, "updating project", "error", err, "id", id)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// Delete handles DELETE /api/projects/{id} (gated).
func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	err = h.queries.DeleteProject(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "Project not found")
		return
	}
	if err != nil {
		logAndInternalError(w, "deleting project", "error", err, "id", id)
		return
	}
	writeJSONSuccess(w, map[string]any{"message": "Project deleted"})
}

// checkFeaturedCap enforces the featured project limit, excluding excludeID
// so an already-featured project can be re-saved.
func (h *ProjectsHandler) checkFeaturedCap(w http.ResponseWriter, r *http.Request, excludeID int64) bool {
	n, err := h.queries.CountFeaturedProjects(r.Context(), excludeID)
	if err != nil {
		logAndInternalError(w, "counting featured projects", "error", err)
		return false
	}
	if n >= model.MaxFeaturedProjects {
		writeJSONError(w, http.StatusBadRequest,
			fmt.Sprintf("You can only have up to %d featured projects.", model.MaxFeaturedProjects))
		return false
	}
	return true
}

func (h *ProjectsHandler) parseRequest(r *http.Request) (store.CreateProjectParams, error) {
	var req projectRequest
	if err := decodeJSON(r, &req); err != nil {
		return store.CreateProjectParams{}, fmt.Errorf("invalid request body")
	}

	if req.Title == "" || req.Description == "" || req.StartDate == "" {
		return store.CreateProjectParams{}, fmt.Errorf("title, description and startDate are required")
	}
	if len(req.SummaryTitle) > model.MaxSummaryTitleLen {
		return store.CreateProjectParams{}, fmt.Errorf("summaryTitle must be at most %d characters", model.MaxSummaryTitleLen)
	}
	if len(req.SummaryDescription) > model.MaxSummaryDescriptionLen {
		return store.CreateProjectParams{}, fmt.Errorf("summaryDescription must be at most %d characters", model.MaxSummaryDescriptionLen)
	}
	if req.Status == "" {
		req.Status = model.ProjectStatusInProgress
	}
	if !model.ValidProjectStatus(req.Status) {
		return store.CreateProjectParams{}, fmt.Errorf("invalid status %q", req.Status)
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return store.CreateProjectParams{}, fmt.Errorf("invalid startDate")
	}
	var endDate *time.Time
	if req.EndDate != "" {
		t, err := parseDate(req.EndDate)
		if err != nil {
			return store.CreateProjectParams{}, fmt.Errorf("invalid endDate")
		}
		endDate = &t
	}

	return store.CreateProjectParams{
		Title:              req.Title,
		SummaryTitle:       req.SummaryTitle,
		SummaryDescription: req.SummaryDescription,
		Featured:           req.Featured,
		StartDate:          startDate,
		EndDate:            endDate,
		Description:        req.Description,
		Link:               req.Link,
		PDFURL:             req.PDFURL,
		ZipURL:             req.ZipURL,
		GithubURL:          req.GithubURL,
		Status:             req.Status,
	}, nil
}

// parseDate accepts RFC 3339 timestamps or plain dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
