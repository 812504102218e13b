// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/foliolabs/folio/internal/model"
	"github.com/foliolabs/folio/internal/store"
	"github.com/foliolabs/folio/internal/webhook"
)

// ContactHandler accepts contact form submissions.
type ContactHandler struct {
	queries  *store.Queries
	notifier *webhook.Notifier
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(db *sql.DB, notifier *webhook.Notifier) *ContactHandler {
	return &ContactHandler{
		queries:  store.New(db),
		notifier: notifier,
	}
}

// Submit handles POST /api/contact (public). The submission is persisted
// first; notification delivery is best-effort and never fails the request.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Message   string `json:"message"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Message == "" {
		writeJSONError(w, http.StatusBadRequest, "All fields are required")
		return
	}
	if !strings.Contains(req.Email, "@") || !strings.Contains(req.Email, ".") {
		writeJSONError(w, http.StatusBadRequest, "Please enter a valid email address")
		return
	}

	msg, err := h.queries.CreateContact(r.Context(), store.CreateContactParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Message:   req.Message,
	})
	if err != nil {
		logAndInternalError(w, "saving contact message", "error", err)
		return
	}

	h.notifier.Notify(msg)

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Message sent successfully",
		"contact": msg,
	})
}

// List handles GET /api/admin/contact (gated): the admin inbox.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	messages, err := h.queries.ListContacts(r.Context())
	if err != nil {
		logAndInternalError(w, "listing contact messages", "error", err)
		return
	}
	if messages == nil {
		messages = []model.ContactMessage{}
	}
	writeJSON(w, http.StatusOK, messages)
}
