package handler

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"blogapp/internal/service"
	"blogapp/internal/web"
)

// postRequest is the JSON body for create and update, submitted by the page script.
type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// HealthCheck verifies DB connectivity.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness endpoint.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListPosts renders the public index of published posts.
// Bad limit/offset values fall back to defaults rather than erroring; this is
// a reader-facing page, not an API.
func ListPosts(postSvc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			limit = 10
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			offset = 0
		}

		res, err := postSvc.List(c.UserContext(), limit, offset)
		if err != nil {
			return renderErrorPage(c, fiber.StatusInternalServerError, "Something went wrong.")
		}
		return c.Render("index", fiber.Map{
			"Posts": res.Items,
			"Total": res.Total,
		}, web.LayoutMain)
	}
}

// ShowPost renders a single post. Archived posts are still reachable by ID.
func ShowPost(postSvc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return renderErrorPage(c, fiber.StatusNotFound, "Post not found.")
		}
		post, err := postSvc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return renderErrorPage(c, fiber.StatusNotFound, "Post not found.")
			}
			return renderErrorPage(c, fiber.StatusInternalServerError, "Something went wrong.")
		}
		return c.Render("show", fiber.Map{
			"Title": post.Title,
			"Post":  post,
		}, web.LayoutMain)
	}
}

// NewPostForm renders the create form.
func NewPostForm() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Render("new", fiber.Map{"Title": "New post"}, web.LayoutMain)
	}
}

// EditPostForm renders the edit form for an existing post.
func EditPostForm(postSvc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return renderErrorPage(c, fiber.StatusNotFound, "Post not found.")
		}
		post, err := postSvc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return renderErrorPage(c, fiber.StatusNotFound, "Post not found.")
			}
			return renderErrorPage(c, fiber.StatusInternalServerError, "Something went wrong.")
		}
		return c.Render("edit", fiber.Map{
			"Title": "Edit post",
			"Post":  post,
		}, web.LayoutMain)
	}
}

// CreatePost handles the JSON create action submitted by the page script.
func CreatePost(postSvc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req postRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		post, err := postSvc.Create(c.UserContext(), req.Title, req.Content)
		if err != nil {
			var verr *service.ValidationError
			if errors.As(err, &verr) {
				return writeValidationError(c, verr)
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(post)
	}
}

// UpdatePost handles the JSON update action.
func UpdatePost(postSvc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req postRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		post, err := postSvc.Update(c.UserContext(), id, req.Title, req.Content)
		if err != nil {
			var verr *service.ValidationError
			switch {
			case errors.As(err, &verr):
				return writeValidationError(c, verr)
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "post not found")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.JSON(post)
	}
}

// ArchivePost handles the JSON archive action. Archiving twice is a success.
func ArchivePost(postSvc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		post, err := postSvc.Archive(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "post not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(post)
	}
}
