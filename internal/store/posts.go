// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/foliolabs/folio/internal/model"
)

const postColumns = `id, title, slug, content, excerpt, author, tags, published,
	published_at, created_at, updated_at`

// CreatePostParams holds the fields for a new blog post.
type CreatePostParams struct {
	Title       string
	Slug        string
	Content     string
	Excerpt     string
	Author      string
	Tags        []string
	Published   bool
	PublishedAt *time.Time
}

// CreatePost inserts a new blog post and returns it.
func (q *Queries) CreatePost(ctx context.Context, p CreatePostParams) (model.Post, error) {
	tags, err := marshalTags(p.Tags)
	if err != nil {
		return model.Post{}, err
	}
	now := time.Now()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO posts (title, slug, content, excerpt, author, tags, published, published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Title, p.Slug, p.Content, p.Excerpt, p.Author, tags, p.Published,
		nullTime(p.PublishedAt), now, now,
	)
	if err != nil {
		return model.Post{}, fmt.Errorf("creating post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Post{}, fmt.Errorf("creating post: %w", err)
	}
	return q.GetPost(ctx, id)
}

// GetPost returns a post by ID.
func (q *Queries) GetPost(ctx context.Context, id int64) (model.Post, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	return scanPost(row)
}

// GetPostBySlug returns a post by its slug.
func (q *Queries) GetPostBySlug(ctx context.Context, slug string) (model.Post, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug)
	return scanPost(row)
}

// ListPosts returns posts, optionally restricted to published ones,
// newest first.
func (q *Queries) ListPosts(ctx context.Context, publishedOnly bool) ([]model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC, id DESC`
	if publishedOnly {
		query = `SELECT ` + postColumns + ` FROM posts WHERE published = 1
			ORDER BY published_at DESC, id DESC`
	}
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// UpdatePost replaces all mutable fields of a post and refreshes updated_at.
func (q *Queries) UpdatePost(ctx context.Context, id int64, p CreatePostParams) (model.Post, error) {
	tags, err := marshalTags(p.Tags)
	if err != nil {
		return model.Post{}, err
	}
	res, err := q.db.ExecContext(ctx, `
		UPDATE posts SET title = ?, slug = ?, content = ?, excerpt = ?, author = ?, tags = ?,
			published = ?, published_at = ?, updated_at = ?
		WHERE id = ?`,
		p.Title, p.Slug, p.Content, p.Excerpt, p.Author, tags,
		p.Published, nullTime(p.PublishedAt), time.Now(), id,
	)
	if err != nil {
		return model.Post{}, fmt.Errorf("updating post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Post{}, ErrNotFound
	}
	return q.GetPost(ctx, id)
}

// DeletePost removes a post.
func (q *Queries) DeletePost(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// PublishDuePosts flips unpublished posts whose published_at has passed.
// Called by the scheduler sweep; returns how many posts went live.
func (q *Queries) PublishDuePosts(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE posts SET published = 1, updated_at = ?
		WHERE published = 0 AND published_at IS NOT NULL AND published_at <= ?`,
		now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("publishing due posts: %w", err)
	}
	return res.RowsAffected()
}

func scanPost(row rowScanner) (model.Post, error) {
	var p model.Post
	var tags string
	var publishedAt sql.NullTime
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.Author, &tags,
		&p.Published, &publishedAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Post{}, ErrNotFound
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("scanning post: %w", err)
	}
	if publishedAt.Valid {
		p.PublishedAt = &publishedAt.Time
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return model.Post{}, fmt.Errorf("decoding post tags: %w", err)
	}
	return p, nil
}

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encoding post tags: %w", err)
	}
	return string(b), nil
}
