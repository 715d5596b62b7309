package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"blogapp/internal/config"
	"blogapp/internal/http/middleware"
	"blogapp/internal/model"
	"blogapp/internal/service"
	serviceMocks "blogapp/internal/service/mocks"
	"blogapp/internal/web"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newViewsApp() *fiber.App {
	return fiber.New(fiber.Config{
		Views:        web.NewEngine(),
		ErrorHandler: ErrorHandler(),
	})
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListPosts(t *testing.T) {
	mockSvc := new(serviceMocks.MockPostService)
	app := newViewsApp()
	app.Get("/posts", ListPosts(mockSvc))

	t.Run("renders published posts", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 10, 0).Return(&service.PostListResult{
			Items: []model.Post{{ID: uuid.New().String(), Title: "Hello", Status: model.StatusPublished}},
			Total: 1,
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/posts", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "Hello")
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit falls back to default", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 10, 0).Return(&service.PostListResult{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/posts?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error renders error page", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 10, 0).Return(nil, errors.New("service error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/posts", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestShowPost(t *testing.T) {
	mockSvc := new(serviceMocks.MockPostService)
	app := newViewsApp()
	app.Get("/posts/:id", ShowPost(mockSvc))

	t.Run("renders post", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).
			Return(&model.Post{ID: id, Title: "Hello", Content: "World", Status: model.StatusPublished}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/posts/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "Hello")
		assert.Contains(t, string(body), "published")
	})

	t.Run("archived post still shown with its status", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).
			Return(&model.Post{ID: id, Title: "Old", Content: "News", Status: model.StatusArchived}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/posts/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "archived")
	})

	t.Run("not found renders 404 page", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/posts/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("malformed id renders 404 page", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/posts/not-a-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestCreatePost(t *testing.T) {
	mockSvc := new(serviceMocks.MockPostService)
	app := fiber.New()
	app.Post("/posts", CreatePost(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Create", mock.Anything, "Hello", "World").
			Return(&model.Post{ID: id, Title: "Hello", Content: "World", Status: model.StatusPublished}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/posts",
			jsonBody(t, map[string]string{"title": "Hello", "content": "World"}))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result model.Post
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, id, result.ID)
		assert.Equal(t, model.StatusPublished, result.Status)
		mockSvc.AssertExpectations(t)
	})

	t.Run("validation failure returns field errors", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, "", "World").
			Return(nil, &service.ValidationError{Fields: map[string]string{"title": "title must not be empty"}}).Once()

		req := httptest.NewRequest(http.MethodPost, "/posts",
			jsonBody(t, map[string]string{"title": "", "content": "World"}))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)
		assert.Contains(t, body.Error.Fields, "title")
		mockSvc.AssertExpectations(t)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/posts", bytes.NewBufferString("{not json"))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_BODY", body.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, "Hello", "World").
			Return(nil, errors.New("db down")).Once()

		req := httptest.NewRequest(http.MethodPost, "/posts",
			jsonBody(t, map[string]string{"title": "Hello", "content": "World"}))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestUpdatePost(t *testing.T) {
	mockSvc := new(serviceMocks.MockPostService)
	app := fiber.New()
	app.Put("/posts/:id", UpdatePost(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Update", mock.Anything, id, "New", "Body").
			Return(&model.Post{ID: id, Title: "New", Content: "Body"}, nil).Once()

		req := httptest.NewRequest(http.MethodPut, "/posts/"+id,
			jsonBody(t, map[string]string{"title": "New", "content": "Body"}))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/posts/not-a-uuid",
			jsonBody(t, map[string]string{"title": "New", "content": "Body"}))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_ID", body.Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Update", mock.Anything, id, "New", "Body").
			Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodPut, "/posts/"+id,
			jsonBody(t, map[string]string{"title": "New", "content": "Body"}))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestArchivePost(t *testing.T) {
	mockSvc := new(serviceMocks.MockPostService)
	app := fiber.New()
	app.Patch("/posts/:id/archive", ArchivePost(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Archive", mock.Anything, id).
			Return(&model.Post{ID: id, Status: model.StatusArchived}, nil).Once()

		req := httptest.NewRequest(http.MethodPatch, "/posts/"+id+"/archive", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.Post
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, model.StatusArchived, result.Status)
		mockSvc.AssertExpectations(t)
	})

	t.Run("idempotent on repeat", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Archive", mock.Anything, id).
			Return(&model.Post{ID: id, Status: model.StatusArchived}, nil).Twice()

		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodPatch, "/posts/"+id+"/archive", nil)
			resp, _ := app.Test(req)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		}
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Archive", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodPatch, "/posts/"+id+"/archive", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/posts/not-a-uuid/archive", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

// TestRoutesAuthGuard wires the real route table with the basic auth middleware
// and checks the guard boundary: reads are public, writes challenge.
func TestRoutesAuthGuard(t *testing.T) {
	authCfg := config.AuthConfig{Username: "editor", Password: "secret"}
	creds := "Basic " + base64.StdEncoding.EncodeToString([]byte("editor:secret"))

	newApp := func(mockSvc *serviceMocks.MockPostService) *fiber.App {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		app := newViewsApp()
		app.Use(middleware.RequestID())
		RegisterRoutes(app, db, mockSvc, middleware.BasicAuth(authCfg))
		return app
	}

	t.Run("unauthenticated create is challenged and nothing persisted", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockPostService)
		app := newApp(mockSvc)

		req := httptest.NewRequest(http.MethodPost, "/posts",
			jsonBody(t, map[string]string{"title": "Hello", "content": "World"}))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Contains(t, resp.Header.Get(fiber.HeaderWWWAuthenticate), "Basic")
		mockSvc.AssertNotCalled(t, "Create")
	})

	t.Run("unauthenticated archive is challenged", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockPostService)
		app := newApp(mockSvc)

		req := httptest.NewRequest(http.MethodPatch, "/posts/"+uuid.New().String()+"/archive", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		mockSvc.AssertNotCalled(t, "Archive")
	})

	t.Run("list and show stay public", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockPostService)
		mockSvc.On("List", mock.Anything, 10, 0).Return(&service.PostListResult{}, nil).Once()
		app := newApp(mockSvc)

		req := httptest.NewRequest(http.MethodGet, "/posts", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("create then archive then list excludes the post", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockPostService)
		app := newApp(mockSvc)
		id := uuid.New().String()

		mockSvc.On("Create", mock.Anything, "Hello", "World").
			Return(&model.Post{ID: id, Title: "Hello", Content: "World", Status: model.StatusPublished}, nil).Once()
		mockSvc.On("Archive", mock.Anything, id).
			Return(&model.Post{ID: id, Status: model.StatusArchived}, nil).Once()
		mockSvc.On("List", mock.Anything, 10, 0).
			Return(&service.PostListResult{Items: []model.Post{}, Total: 0}, nil).Once()
		mockSvc.On("Get", mock.Anything, id).
			Return(&model.Post{ID: id, Title: "Hello", Content: "World", Status: model.StatusArchived}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/posts",
			jsonBody(t, map[string]string{"title": "Hello", "content": "World"}))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		req.Header.Set(fiber.HeaderAuthorization, creds)
		resp, _ := app.Test(req)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var created model.Post
		json.NewDecoder(resp.Body).Decode(&created)
		require.Equal(t, id, created.ID)
		require.Equal(t, model.StatusPublished, created.Status)

		req = httptest.NewRequest(http.MethodPatch, "/posts/"+id+"/archive", nil)
		req.Header.Set(fiber.HeaderAuthorization, creds)
		resp, _ = app.Test(req)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		// Listing no longer includes the post
		req = httptest.NewRequest(http.MethodGet, "/posts", nil)
		resp, _ = app.Test(req)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.NotContains(t, string(body), id)

		// Direct show still works and reports archived
		req = httptest.NewRequest(http.MethodGet, "/posts/"+id, nil)
		resp, _ = app.Test(req)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ = io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "archived")

		mockSvc.AssertExpectations(t)
	})
}
