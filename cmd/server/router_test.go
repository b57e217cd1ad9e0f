package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/phrazzld/bookreviews-api/internal/config"
	"github.com/phrazzld/bookreviews-api/internal/domain"
	"github.com/phrazzld/bookreviews-api/internal/platform/objectstore"
	"github.com/phrazzld/bookreviews-api/internal/platform/tokens"
	"github.com/phrazzld/bookreviews-api/internal/service"
	"github.com/phrazzld/bookreviews-api/internal/service/auth"
	"github.com/phrazzld/bookreviews-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "info", ShutdownTimeoutSeconds: 1},
		Auth:   testutils.TestAuthConfig(),
		Storage: config.StorageConfig{
			Backend: "local",
		},
	}
}

// testServer is the full router backed by in-memory stores and a local
// object store in a temp directory.
type testServer struct {
	app    *application
	db     *testutils.MemoryDB
	server *httptest.Server
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()

	cfg := testConfig()
	cfg.Storage.LocalDir = t.TempDir()
	if mutate != nil {
		mutate(cfg)
	}
	logger, _ := testutils.NewTestLogger()

	objects, staticDir, err := newObjectStore(context.Background(), cfg.Storage, logger)
	require.NoError(t, err)

	db := testutils.NewMemoryDB()
	app, err := buildApplication(cfg, logger, dependencies{
		stores:   db.Stores(),
		uow:      db.UnitOfWork(),
		objects:  objects,
		resets:   tokens.NewMemoryResetTokenStore(),
		notifier: service.NewLogResetNotifier(logger),
		hasher:   auth.NewBcryptHasher(cfg.Auth.BCryptCost),
	})
	require.NoError(t, err)
	app.staticDir = staticDir

	return &testServer{app: app, db: db, server: testutils.CreateTestServer(t, app.setupRouter())}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, opts ...testutils.RequestOption) *http.Response {
	t.Helper()
	return testutils.DoJSON(t, s.server, method, path, body, opts...)
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := testutils.DecodeJSON[service.TokenDTO](t, resp)
	require.NotEmpty(t, token.Token)
	return token.Token
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(body))

	resp = s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "http_requests_total")
}

func TestReviewPlatformScenario(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	// Accounts: alice and bob register, an operator promotes carol.
	for _, name := range []string{"alice", "bob", "carol"} {
		resp := s.do(t, http.MethodPost, "/api/auth/register", map[string]string{
			"username": name,
			"email":    name + "@example.com",
			"password": "secret1",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, name)
	}
	admin, err := s.app.identity.AssignRole(ctx, "carol@example.com", domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "Admin", admin.Role)

	alice := s.login(t, "alice@example.com", "secret1")
	bob := s.login(t, "bob@example.com", "secret1")
	carol := s.login(t, "carol@example.com", "secret1")

	// Only admins manage the catalogue.
	resp := s.do(t, http.MethodPost, "/api/category", map[string]string{"name": "Classics"},
		testutils.WithAuth(alice))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/category", map[string]string{"name": "Classics"},
		testutils.WithAuth(carol))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	category := testutils.DecodeJSON[service.CategoryDTO](t, resp)

	resp = s.do(t, http.MethodPost, "/api/category", map[string]string{"name": "classics"},
		testutils.WithAuth(carol))
	testutils.AssertErrorResponse(t, resp, http.StatusBadRequest, "already exists")

	resp = s.do(t, http.MethodPost, "/api/book", map[string]interface{}{
		"title":      "Emma",
		"author":     "Jane Austen",
		"categoryId": category.ID,
		"coverImage": testutils.PNGDataURL(),
	}, testutils.WithAuth(carol))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	book := testutils.DecodeJSON[service.BookDTO](t, resp)
	assert.Equal(t, "Classics", book.CategoryName)
	assert.Zero(t, book.AverageRating)
	require.True(t, strings.HasPrefix(book.CoverImageURL, "/static/book-covers/"), book.CoverImageURL)

	// The uploaded cover is served from the local store.
	resp = s.do(t, http.MethodGet, book.CoverImageURL, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cover, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(cover), "\x89PNG"))

	bookPath := "/api/book/" + strconv.FormatInt(book.ID, 10)

	// Reviews.
	resp = s.do(t, http.MethodPost, "/api/review", map[string]interface{}{
		"bookId": book.ID, "rating": 5, "comment": "Delightful",
	}, testutils.WithAuth(alice))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	review := testutils.DecodeJSON[service.ReviewDTO](t, resp)

	resp = s.do(t, http.MethodPost, "/api/review", map[string]interface{}{
		"bookId": book.ID, "rating": 4, "comment": "Again",
	}, testutils.WithAuth(alice))
	testutils.AssertErrorResponse(t, resp, http.StatusBadRequest, "already reviewed")

	resp = s.do(t, http.MethodPost, "/api/review", map[string]interface{}{
		"bookId": book.ID, "rating": 2, "comment": "Slow",
	}, testutils.WithAuth(bob))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(t, http.MethodGet, bookPath, nil, testutils.WithAuth(bob))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rated := testutils.DecodeJSON[service.BookDTO](t, resp)
	assert.InDelta(t, 3.5, rated.AverageRating, 0.001)
	assert.Equal(t, 2, rated.ReviewCount)

	reviewPath := "/api/review/" + strconv.FormatInt(review.ID, 10)
	resp = s.do(t, http.MethodDelete, reviewPath, nil, testutils.WithAuth(bob))
	testutils.AssertErrorResponse(t, resp, http.StatusForbidden, "")

	resp = s.do(t, http.MethodGet, "/api/review/book/"+strconv.FormatInt(book.ID, 10), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, testutils.DecodeJSON[[]service.ReviewDTO](t, resp), 2)

	// A category in use cannot be removed.
	categoryPath := "/api/category/" + strconv.FormatInt(category.ID, 10)
	resp = s.do(t, http.MethodDelete, categoryPath, nil, testutils.WithAuth(carol))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Deleting the book removes its cover and reviews.
	resp = s.do(t, http.MethodDelete, bookPath, nil, testutils.WithAuth(carol))
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = s.do(t, http.MethodGet, book.CoverImageURL, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/review/user", nil, testutils.WithAuth(alice))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, testutils.DecodeJSON[[]service.ReviewDTO](t, resp))

	resp = s.do(t, http.MethodDelete, categoryPath, nil, testutils.WithAuth(carol))
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = s.do(t, http.MethodGet, categoryPath, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBooksRequireAuthentication(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.do(t, http.MethodGet, "/api/book", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/category", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPasswordResetThroughRouter(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Auth.ExposeResetToken = true
	})
	testutils.SeedUser(t, s.db.Stores(), "alice", "alice@example.com", "secret1", domain.RoleUser)

	resp := s.do(t, http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": "alice@example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	issued := testutils.DecodeJSON[map[string]string](t, resp)
	require.NotEmpty(t, issued["resetToken"])

	reset := map[string]string{
		"email":       "alice@example.com",
		"token":       issued["resetToken"],
		"newPassword": "changed1",
	}
	resp = s.do(t, http.MethodPost, "/api/auth/reset-password", reset)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Tokens are single use.
	resp = s.do(t, http.MethodPost, "/api/auth/reset-password", reset)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	s.login(t, "alice@example.com", "changed1")
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Auth.LoginRatePerMinute = 2
	})
	creds := map[string]string{"email": "nobody@example.com", "password": "secret1"}

	for i := 0; i < 2; i++ {
		resp := s.do(t, http.MethodPost, "/api/auth/login", creds)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp := s.do(t, http.MethodPost, "/api/auth/login", creds)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))

	// Other route groups are not throttled.
	resp = s.do(t, http.MethodGet, "/api/category", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStaticRouteOnlyForLocalStorage(t *testing.T) {
	s := newTestServer(t, nil)
	s.app.staticDir = ""
	server := testutils.CreateTestServer(t, s.app.setupRouter())

	resp := testutils.DoJSON(t, server, http.MethodGet, "/static/book-covers/x.png", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNewObjectStoreLocal(t *testing.T) {
	logger, _ := testutils.NewTestLogger()
	dir := t.TempDir()

	objects, staticDir, err := newObjectStore(context.Background(), config.StorageConfig{
		Backend:  "local",
		LocalDir: dir,
	}, logger)
	require.NoError(t, err)
	assert.Equal(t, dir, staticDir)
	assert.IsType(t, &objectstore.LocalStore{}, objects)
}
