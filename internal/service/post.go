package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"blogapp/internal/model"
	"blogapp/internal/repository"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("post not found")
)

// ValidationError reports empty required fields on create/update.
// Fields maps a field name to a human-readable message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

// PostListResult is the service-level DTO for paginated posts.
type PostListResult struct {
	Items []model.Post `json:"data"`
	Total int          `json:"total"`
}

// PostService defines the use cases for the post lifecycle.
type PostService interface {
	// Create validates title and content and persists a new published post.
	Create(ctx context.Context, title, content string) (*model.Post, error)

	// List returns published posts using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*PostListResult, error)

	// Get returns a single post by its ID, archived or not.
	Get(ctx context.Context, id string) (*model.Post, error)

	// Update validates and replaces title and content of an existing post.
	Update(ctx context.Context, id, title, content string) (*model.Post, error)

	// Archive soft-deletes a post. Archiving an already-archived post is a
	// no-op success; only an unknown ID is an error.
	Archive(ctx context.Context, id string) (*model.Post, error)
}

// postService is a concrete implementation of PostService.
type postService struct {
	repo repository.PostRepository
}

// NewPostService constructs a new PostService.
func NewPostService(repo repository.PostRepository) PostService {
	return &postService{repo: repo}
}

func validatePost(title, content string) error {
	fields := map[string]string{}
	if title == "" {
		fields["title"] = "title must not be empty"
	}
	if content == "" {
		fields["content"] = "content must not be empty"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *postService) Create(ctx context.Context, title, content string) (*model.Post, error) {
	if err := validatePost(title, content); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	post := &model.Post{
		ID:        uuid.New().String(),
		Title:     title,
		Content:   content,
		Status:    model.StatusPublished,
		CreatedAt: now,
		UpdatedAt: now,
	}
	stored, err := s.repo.Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

// List returns paginated published posts without exposing repository types.
func (s *postService) List(ctx context.Context, limit, offset int) (*PostListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.ListPublished(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &PostListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a post by ID.
func (s *postService) Get(ctx context.Context, id string) (*model.Post, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return post, nil
}

// Update replaces title and content of an existing post.
func (s *postService) Update(ctx context.Context, id, title, content string) (*model.Post, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if err := validatePost(title, content); err != nil {
		return nil, err
	}
	post, err := s.repo.Update(ctx, id, title, content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return post, nil
}

// Archive transitions a post to archived.
func (s *postService) Archive(ctx context.Context, id string) (*model.Post, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	post, err := s.repo.Archive(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return post, nil
}
