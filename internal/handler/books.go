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

// BooksHandler serves the reading list.
type BooksHandler struct {
	queries *store.Queries
}

// NewBooksHandler creates a new BooksHandler.
func NewBooksHandler(db *sql.DB) *BooksHandler {
	return &BooksHandler{queries: store.New(db)}
}

// bookRequest is the JSON body for create and update.
type bookRequest struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	Link          string `json:"link"`
	ImageURL      string `json:"imageUrl"`
	Notes         string `json:"notes"`
	Status        string `json:"status"`
	TopRead       bool   `json:"isTopRead"`
	DateCompleted string `json:"dateCompleted"`
}

// List handles GET /api/reading-list (public).
func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.queries.ListBooks(r.Context())
	if err != nil {
		logAndInternalError(w, "listing books", "error", err)
		return
	}
	if books == nil {
		books = []model.Book{}
	}
	writeJSON(w, http.StatusOK, books)
}

// Create handles POST /api/reading-list (gated).
func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	params, err := parseBookRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	book, err := h.queries.CreateBook(r.Context(), params)
	if err != nil {
		logAndInternalError(w, "creating book", "error", err)
		return
	}
	writeJSON(w, http.StatusCreated, book)
}

// Update handles PUT /api/reading-list/{id} (gated).
func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	params, err := parseBookRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	book, err := h.queries.UpdateBook(r.Context(), id, params)
	if errors.Is(err, store.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "Book not found")
		return
	}
	if err != nil {
		logAndInternalError(w, "updating book", "error", err, "id", id)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// Delete handles DELETE /api/reading-list/{id} (gated).
func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	err = h.queries.DeleteBook(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "Book not found")
		return
	}
	if err != nil {
		logAndInternalError(w, "deleting book", "error", err, "id", id)
		return
	}
	writeJSONSuccess(w, map[string]any{"message": "Book deleted"})
}

func parseBookRequest(r *http.Request) (store.CreateBookParams, error) {
	var req bookRequest
	if err := decodeJSON(r, &req); err != nil {
		return store.CreateBookParams{}, fmt.Errorf("invalid request body")
	}

	if req.Title == "" || req.Author == "" {
		return store.CreateBookParams{}, fmt.Errorf("title and author are required")
	}
	if req.Status == "" {
		req.Status = model.BookStatusWantToRead
	}
	if !model.ValidBookStatus(req.Status) {
		return store.CreateBookParams{}, fmt.Errorf("invalid status %q", req.Status)
	}

	var completed *time.Time
	if req.DateCompleted != "" {
		t, err := parseDate(req.DateCompleted)
		if err != nil {
			return store.CreateBookParams{}, fmt.Errorf("invalid dateCompleted")
		}
		completed = &t
	}

	return store.CreateBookParams{
		Title:         req.Title,
		Author:        req.Author,
		Link:          req.Link,
		ImageURL:      req.ImageURL,
		Notes:         req.Notes,
		Status:        req.Status,
		TopRead:       req.TopRead,
		DateCompleted: completed,
	}, nil
}
