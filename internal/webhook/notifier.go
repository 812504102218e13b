// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package webhook delivers contact form notifications to a configured
// endpoint. Delivery is best-effort: a failed notification never fails the
// contact submission that triggered it.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/foliolabs/folio/internal/model"
)

// Delivery configuration constants.
const (
	maxAttempts    = 3
	initialBackoff = 5 * time.Second
	requestTimeout = 30 * time.Second
	userAgent      = "Folio/1.0"
)

// Notifier posts contact notifications to a webhook URL.
type Notifier struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewNotifier creates a notifier for the given URL. An empty URL yields a
// disabled notifier whose Notify is a no-op.
func NewNotifier(url string, logger *slog.Logger) *Notifier {
	return &Notifier{
		url: url,
		client: &http.Client{
			Timeout: requestTimeout,
		},
		logger: logger,
	}
}

// Enabled reports whether a webhook URL is configured.
func (n *Notifier) Enabled() bool {
	return n.url != ""
}

// Notify delivers the contact message asynchronously with bounded retries.
func (n *Notifier) Notify(msg model.ContactMessage) {
	if !n.Enabled() {
		return
	}
	go n.deliver(msg)
}

func (n *Notifier) deliver(msg model.ContactMessage) {
	payload, err := json.Marshal(map[string]any{
		"event":   "contact.submitted",
		"contact": msg,
	})
	if err != nil {
		n.logger.Error("encoding contact notification", "error", err)
		return
	}

	backoff := initialBackoff
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := n.post(payload)
		if err == nil {
			n.logger.Info("contact notification delivered",
				"contact_id", msg.ID, "attempt", attempt)
			return
		}
		n.logger.Warn("contact notification attempt failed",
			"contact_id", msg.ID, "attempt", attempt, "error", err)

		if attempt < maxAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	n.logger.Error("contact notification dropped after retries",
		"contact_id", msg.ID, "attempts", maxAttempts)
}

func (n *Notifier) post(payload []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting notification: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
