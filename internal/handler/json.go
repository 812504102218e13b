// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// maxBodySize bounds JSON request bodies (1MB).
const maxBodySize = 1 << 20

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   message,
	})
}

// writeJSONSuccess writes a JSON success response.
func writeJSONSuccess(w http.ResponseWriter, data map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	if data == nil {
		data = make(map[string]any)
	}
	data["success"] = true
	_ = json.NewEncoder(w).Encode(data)
}

// writeJSON writes an arbitrary payload with a status code.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeJSON decodes a bounded JSON request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	body := io.LimitReader(r.Body, maxBodySize)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}

// logAndInternalError logs the error and writes a generic 500 response.
// Dependency failures are operator problems; the caller only learns that the
// operation failed.
func logAndInternalError(w http.ResponseWriter, msg string, args ...any) {
	slog.Error(msg, args...)
	writeJSONError(w, http.StatusInternalServerError, "An unexpected error occurred")
}
