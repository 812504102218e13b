// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/foliolabs/folio/internal/store"
)

// ProfileHandler serves the about/bio document and profile metadata stored in
// site config.
type ProfileHandler struct {
	queries *store.Queries
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(db *sql.DB) *ProfileHandler {
	return &ProfileHandler{queries: store.New(db)}
}

// GetAbout handles GET /api/about (public). The bio is stored as an opaque
// JSON document owned by the admin UI.
func (h *ProfileHandler) GetAbout(w http.ResponseWriter, r *http.Request) {
	value, err := h.queries.GetConfig(r.Context(), store.ConfigKeyAbout)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	if err != nil {
		logAndInternalError(w, "loading about document", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(value))
}

// UpdateAbout handles PUT /api/about (gated). The body must be valid JSON;
// beyond that its shape belongs to the admin UI.
func (h *ProfileHandler) UpdateAbout(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !json.Valid(body) {
		writeJSONError(w, http.StatusBadRequest, "Body must be valid JSON")
		return
	}

	if err := h.queries.SetConfig(r.Context(), store.ConfigKeyAbout, string(body)); err != nil {
		logAndInternalError(w, "storing about document", "error", err)
		return
	}
	writeJSONSuccess(w, map[string]any{"message": "Bio updated successfully"})
}

// GetProfileMeta handles GET /api/profile (public): paths of the uploaded
// profile photo and resume, when present.
func (h *ProfileHandler) GetProfileMeta(w http.ResponseWriter, r *http.Request) {
	meta := map[string]any{}
	if v, err := h.queries.GetConfig(r.Context(), store.ConfigKeyProfileImage); err == nil {
		meta["profileImage"] = v
	}
	if v, err := h.queries.GetConfig(r.Context(), store.ConfigKeyResumePath); err == nil {
		meta["resume"] = v
	}
	writeJSON(w, http.StatusOK, meta)
}
