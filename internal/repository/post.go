package repository

import (
	"context"

	"blogapp/internal/model"
)

// PostRepository defines data access for posts using SQL queries only.
// No business logic here — strictly persistence operations.
type PostRepository interface {
	// Create inserts a new post record.
	// The caller should provide required fields (e.g., ID, Status, CreatedAt) according
	// to the database schema defaults.
	// Returns the stored post (may include values set by the DB).
	Create(ctx context.Context, post *model.Post) (*model.Post, error)

	// FindByID returns a post by its ID regardless of status.
	FindByID(ctx context.Context, id string) (*model.Post, error)

	// ListPublished returns a paginated list of published posts, newest first,
	// and the total count of published rows.
	ListPublished(ctx context.Context, pq PageQuery) (*PageResult[model.Post], error)

	// Update replaces title and content of the post with the given ID and bumps
	// updated_at. Returns sql.ErrNoRows when the row does not exist.
	Update(ctx context.Context, id, title, content string) (*model.Post, error)

	// Archive sets the post status to archived. There is no status precondition:
	// archiving an already-archived row succeeds and returns it unchanged.
	// Returns sql.ErrNoRows when the row does not exist.
	Archive(ctx context.Context, id string) (*model.Post, error)
}
