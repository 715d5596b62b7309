package postgres

import (
	"context"
	"database/sql"
	"time"

	"blogapp/internal/model"
	"blogapp/internal/repository"
)

// PostPostgres is a PostgreSQL implementation of repository.PostRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type PostPostgres struct {
	db *sql.DB
}

// NewPostPostgres creates a new PostPostgres repository.
func NewPostPostgres(db *sql.DB) *PostPostgres {
	return &PostPostgres{db: db}
}

var _ repository.PostRepository = (*PostPostgres)(nil)

const postColumns = "id, title, content, status, created_at, updated_at"

func scanPost(row interface{ Scan(...any) error }) (*model.Post, error) {
	var p model.Post
	if err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Content,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new post row and returns the stored record.
func (r *PostPostgres) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	const q = `
		INSERT INTO posts (id, title, content, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + postColumns
	row := r.db.QueryRowContext(ctx, q,
		post.ID,
		post.Title,
		post.Content,
		post.Status,
		post.CreatedAt,
		post.UpdatedAt,
	)
	return scanPost(row)
}

// FindByID fetches a single post by its ID. Archived posts are returned too;
// filtering by status is the caller's concern.
func (r *PostPostgres) FindByID(ctx context.Context, id string) (*model.Post, error) {
	const q = `
		SELECT ` + postColumns + `
		FROM posts
		WHERE id = $1
	`
	return scanPost(r.db.QueryRowContext(ctx, q, id))
}

// ListPublished returns published posts using LIMIT/OFFSET pagination and a total count.
func (r *PostPostgres) ListPublished(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Post], error) {
	const qCount = `SELECT COUNT(*) FROM posts WHERE status = 'published'`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + postColumns + `
		FROM posts
		WHERE status = 'published'
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Post]{
		Items: items,
		Total: total,
	}, nil
}

// Update replaces title and content and bumps updated_at.
func (r *PostPostgres) Update(ctx context.Context, id, title, content string) (*model.Post, error) {
	const q = `
		UPDATE posts
		SET title = $2, content = $3, updated_at = $4
		WHERE id = $1
		RETURNING ` + postColumns
	return scanPost(r.db.QueryRowContext(ctx, q, id, title, content, time.Now().UTC()))
}

// Archive transitions the post to archived. The statement has no status
// precondition so a repeat archive succeeds and returns the row.
func (r *PostPostgres) Archive(ctx context.Context, id string) (*model.Post, error) {
	const q = `
		UPDATE posts
		SET status = 'archived', updated_at = $2
		WHERE id = $1
		RETURNING ` + postColumns
	return scanPost(r.db.QueryRowContext(ctx, q, id, time.Now().UTC()))
}
