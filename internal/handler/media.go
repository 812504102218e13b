// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/foliolabs/folio/internal/imaging"
	"github.com/foliolabs/folio/internal/store"
)

// maxUploadSize bounds multipart uploads (20MB).
const maxUploadSize = 20 << 20

// imageKinds maps the upload kind to its storage subdirectory.
var imageKinds = map[string]string{
	"books":    "book-images",
	"profile":  "profile",
	"projects": "project-images",
}

// MediaHandler stores admin uploads: images and the resume PDF.
// All routes are gated.
type MediaHandler struct {
	queries   *store.Queries
	processor *imaging.Processor
	uploadDir string
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(db *sql.DB, uploadDir string) *MediaHandler {
	return &MediaHandler{
		queries:   store.New(db),
		processor: imaging.NewProcessor(uploadDir),
		uploadDir: uploadDir,
	}
}

// UploadImage handles POST /api/uploads/images?kind={books|profile|projects}.
// The image is re-encoded and downscaled; the response carries the public
// path under /uploads/.
func (h *MediaHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	subdir, ok := imageKinds[r.URL.Query().Get("kind")]
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "Unknown upload kind")
		return
	}

	file, _, err := h.openUpload(r, "image")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer file.Close()

	name := uuid.New().String()
	result, err := h.processor.Process(file, subdir, name)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Processing image: %v", err))
		return
	}

	publicPath := "/uploads/" + subdir + "/" + filepath.Base(result.FilePath)

	// The profile photo location is remembered so the frontend can find it.
	if subdir == "profile" {
		if err := h.queries.SetConfig(r.Context(), store.ConfigKeyProfileImage, publicPath); err != nil {
			logAndInternalError(w, "recording profile image path", "error", err)
			return
		}
	}

	writeJSONSuccess(w, map[string]any{
		"filename": filepath.Base(result.FilePath),
		"path":     publicPath,
		"width":    result.Width,
		"height":   result.Height,
		"size":     result.Size,
	})
}

// UploadResume handles POST /api/uploads/resume. Only PDF payloads are
// accepted; the stored path is recorded in site config.
func (h *MediaHandler) UploadResume(w http.ResponseWriter, r *http.Request) {
	file, _, err := h.openUpload(r, "resume")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		logAndInternalError(w, "reading resume upload", "error", err)
		return
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		writeJSONError(w, http.StatusBadRequest, "Resume must be a PDF file")
		return
	}

	dir := filepath.Join(h.uploadDir, "resume")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logAndInternalError(w, "creating resume directory", "error", err)
		return
	}

	filename := uuid.New().String() + ".pdf"
	outPath := filepath.Join(dir, filename)
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		logAndInternalError(w, "writing resume file", "error", err)
		return
	}

	publicPath := "/uploads/resume/" + filename
	if err := h.queries.SetConfig(r.Context(), store.ConfigKeyResumePath, publicPath); err != nil {
		logAndInternalError(w, "recording resume path", "error", err)
		return
	}

	writeJSONSuccess(w, map[string]any{
		"filename": filename,
		"path":     publicPath,
	})
}

// openUpload extracts the named multipart file from the request.
func (h *MediaHandler) openUpload(r *http.Request, field string) (io.ReadCloser, string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, "", fmt.Errorf("invalid multipart form")
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("no file uploaded")
	}
	return file, header.Filename, nil
}
