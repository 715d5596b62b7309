package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"blogapp/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// authGuard is applied to every mutating route and to the editor-only forms;
// listing and reading posts stay public.
func RegisterRoutes(app *fiber.App, db *sql.DB, postSvc service.PostService, authGuard fiber.Handler) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/posts", fiber.StatusFound)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	// Registration order matters: /posts/new before /posts/:id
	app.Get("/posts", ListPosts(postSvc))
	app.Get("/posts/new", authGuard, NewPostForm())
	app.Get("/posts/:id/edit", authGuard, EditPostForm(postSvc))
	app.Get("/posts/:id", ShowPost(postSvc))

	app.Post("/posts", authGuard, CreatePost(postSvc))
	app.Put("/posts/:id", authGuard, UpdatePost(postSvc))
	app.Patch("/posts/:id/archive", authGuard, ArchivePost(postSvc))
}
