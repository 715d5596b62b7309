package model

import "time"

// Status is the publication state of a post. Archiving is a soft delete:
// an archived post is kept but excluded from the public listing.
type Status string

const (
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Valid reports whether s is one of the known post statuses.
func (s Status) Valid() bool {
	return s == StatusPublished || s == StatusArchived
}

// Post represents a blog post.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, views) without coupling to persistence.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Archived reports whether the post has been archived.
func (p *Post) Archived() bool {
	return p.Status == StatusArchived
}
