// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/foliolabs/folio/internal/model"
	"github.com/foliolabs/folio/internal/store"
	"github.com/foliolabs/folio/internal/util"
)

// PostsHandler serves the blog.
type PostsHandler struct {
	queries   *store.Queries
	markdown  goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// NewPostsHandler creates a new PostsHandler.
func NewPostsHandler(db *sql.DB) *PostsHandler {
	return &PostsHandler{
		queries: store.New(db),
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// postRequest is the JSON body for create and update.
type postRequest struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Content     string   `json:"content"`
	Excerpt     string   `json:"excerpt"`
	Author      string   `json:"author"`
	Tags        []string `json:"tags"`
	Published   bool     `json:"isPublished"`
	PublishedAt string   `json:"publishedAt"`
}

// List handles GET /api/blog (public): published posts only.
func (h *PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.queries.ListPosts(r.Context(), true)
	if err != nil {
		logAndInternalError(w, "listing posts", "error", err)
		return
	}
	if posts == nil {
		posts = []model.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

// ListAll handles GET /api/admin/blog (gated): drafts included.
func (h *PostsHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	posts, err := h.queries.ListPosts(r.Context(), false)
	if err != nil {
		logAndInternalError(w, "listing posts", "error", err)
		return
	}
	if posts == nil {
		posts = []model.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

// GetBySlug handles GET /api/blog/{slug} (public). The response carries the
// post plus its markdown rendered to sanitized HTML.
func (h *PostsHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if !util.IsValidSlug(slug) {
		writeJSONError(w, http.StatusNotFound, "Post not found")
		return
	}

	post, err := h.queries.GetPostBySlug(r.Context(), slug)
	if errors.Is(err, store.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "Post not found")
		return
	}
	if err != nil {
		logAndInternalError(w, "loading post", "error", err, "slug", slug)
		return
	}
	if !post.Published {
		// Drafts are invisible on the public route.
		writeJSONError(w, http.StatusNotFound, "Post not found")
		return
	}

	html, err := h.renderMarkdown(post.Content)
	if err != nil {
		logAndInternalError(w, "rendering post", "error", err, "slug", slug)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"post": post,
		"html": html,
	})
}

// Create handles POST /api/blog (gated).
func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	params, err := h.parseRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.queries.CreatePost(r.Context(), params)
	if err != nil {
		logAndInternalError(w, "creating post", "error", err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// Update handles PUT /api/blog/{id} (gated).
func (h *PostsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	params, err := h.parseRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.queries.UpdatePost(r.Context(), id, params)
	if errors.Is(err, store.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "Post not found")
		return
	}
	if err != nil {
		logAndInternalError(w, "updating post", "error", err, "id", id)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Delete handles DELETE /api/blog/{id} (gated).
func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	err = h.queries.DeletePost(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "Post not found")
		return
	}
	if err != nil {
		logAndInternalError(w, "deleting post", "error", err, "id", id)
		return
	}
	writeJSONSuccess(w, map[string]any{"message": "Post deleted"})
}

func (h *PostsHandler) renderMarkdown(content string) (string, error) {
	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return h.sanitizer.Sanitize(buf.String()), nil
}

func (h *PostsHandler) parseRequest(r *http.Request) (store.CreatePostParams, error) {
	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		return store.CreatePostParams{}, fmt.Errorf("invalid request body")
	}

	if req.Title == "" || req.Content == "" || req.Excerpt == "" {
		return store.CreatePostParams{}, fmt.Errorf("title, content and excerpt are required")
	}

	slug := req.Slug
	if slug == "" {
		slug = util.Slugify(req.Title)
	}
	if !util.IsValidSlug(slug) {
		return store.CreatePostParams{}, fmt.Errorf("invalid slug %q", slug)
	}

	author := req.Author
	if author == "" {
		author = "Admin"
	}

	var publishedAt *time.Time
	if req.PublishedAt != "" {
		t, err := parseDate(req.PublishedAt)
		if err != nil {
			return store.CreatePostParams{}, fmt.Errorf("invalid publishedAt")
		}
		publishedAt = &t
	} else if req.Published {
		now := time.Now()
		publishedAt = &now
	}

	return store.CreatePostParams{
		Title:       req.Title,
		Slug:        slug,
		Content:     req.Content,
		Excerpt:     req.Excerpt,
		Author:      author,
		Tags:        req.Tags,
		Published:   req.Published,
		PublishedAt: publishedAt,
	}, nil
}
