// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/foliolabs/folio/internal/model"
)

// CreateContactParams holds the fields of a contact form submission.
type CreateContactParams struct {
	FirstName string
	LastName  string
	Email     string
	Message   string
}

// CreateContact persists a contact form submission.
func (q *Queries) CreateContact(ctx context.Context, p CreateContactParams) (model.ContactMessage, error) {
	now := time.Now()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO contact_messages (first_name, last_name, email, message, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.FirstName, p.LastName, p.Email, p.Message, now,
	)
	if err != nil {
		return model.ContactMessage{}, fmt.Errorf("creating contact message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.ContactMessage{}, fmt.Errorf("creating contact message: %w", err)
	}
	return model.ContactMessage{
		ID:        id,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Message:   p.Message,
		CreatedAt: now,
	}, nil
}

// ListContacts returns contact submissions, newest first.
func (q *Queries) ListContacts(ctx context.Context) ([]model.ContactMessage, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, email, message, created_at
		FROM contact_messages ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing contact messages: %w", err)
	}
	defer rows.Close()

	var messages []model.ContactMessage
	for rows.Next() {
		var m model.ContactMessage
		if err := rows.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.Message, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning contact message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
