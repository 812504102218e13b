// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/foliolabs/folio/internal/model"
)

const bookColumns = `id, title, author, link, image_url, notes, status, top_read,
	date_added, date_completed`

// CreateBookParams holds the fields for a new reading list entry.
type CreateBookParams struct {
	Title         string
	Author        string
	Link          string
	ImageURL      string
	Notes         string
	Status        string
	TopRead       bool
	DateCompleted *time.Time
}

// CreateBook inserts a new reading list entry and returns it.
func (q *Queries) CreateBook(ctx context.Context, p CreateBookParams) (model.Book, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO books (title, author, link, image_url, notes, status, top_read, date_added, date_completed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Title, p.Author, p.Link, p.ImageURL, p.Notes, p.Status, p.TopRead,
		time.Now(), nullTime(p.DateCompleted),
	)
	if err != nil {
		return model.Book{}, fmt.Errorf("creating book: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Book{}, fmt.Errorf("creating book: %w", err)
	}
	return q.GetBook(ctx, id)
}

// GetBook returns a reading list entry by ID.
func (q *Queries) GetBook(ctx context.Context, id int64) (model.Book, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
	return scanBook(row)
}

// ListBooks returns all reading list entries, newest first.
func (q *Queries) ListBooks(ctx context.Context) ([]model.Book, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books ORDER BY date_added DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	defer rows.Close()

	var books []model.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// UpdateBook replaces all mutable fields of a reading list entry.
func (q *Queries) UpdateBook(ctx context.Context, id int64, p CreateBookParams) (model.Book, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE books SET title = ?, author = ?, link = ?, image_url = ?, notes = ?,
			status = ?, top_read = ?, date_completed = ?
		WHERE id = ?`,
		p.Title, p.Author, p.Link, p.ImageURL, p.Notes, p.Status, p.TopRead,
		nullTime(p.DateCompleted), id,
	)
	if err != nil {
		return model.Book{}, fmt.Errorf("updating book: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Book{}, ErrNotFound
	}
	return q.GetBook(ctx, id)
}

// DeleteBook removes a reading list entry.
func (q *Queries) DeleteBook(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanBook(row rowScanner) (model.Book, error) {
	var b model.Book
	var completed sql.NullTime
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Link, &b.ImageURL, &b.Notes,
		&b.Status, &b.TopRead, &b.DateAdded, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Book{}, ErrNotFound
	}
	if err != nil {
		return model.Book{}, fmt.Errorf("scanning book: %w", err)
	}
	if completed.Valid {
		b.DateCompleted = &completed.Time
	}
	return b, nil
}
