package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"echohole/internal/config"
	"echohole/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

const (
	testAdminUser     = "admin"
	testAdminPassword = "s3cret-pass"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:                "0",
		Env:                 "test",
		AllowedOrigins:      "http://localhost:5173",
		DBDriver:            "sqlite",
		DBPath:              ":memory:",
		RateLimitStore:      "memory",
		IPSalt:              "server-test-salt",
		AdminUsername:       testAdminUser,
		AdminPassword:       testAdminPassword,
		AdminSessionHours:   24,
		SubmitLimit:         5,
		SubmitWindowSeconds: 3600,
		ActionLimit:         60,
		ActionWindowSeconds: 60,
		BannedPhrases:       "darn,heck",
	}
}

// newTestServer builds a sqlite-backed server without Redis. Shutdown runs
// on cleanup and also closes the database.
func newTestServer(t *testing.T, mutate ...func(*config.Config)) *Server {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)

	s, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s
}

type requestOption func(*http.Request)

func withUserAgent(ua string) requestOption {
	return func(r *http.Request) { r.Header.Set(fiber.HeaderUserAgent, ua) }
}

func withCookie(c *http.Cookie) requestOption {
	return func(r *http.Request) {
		if c != nil {
			r.AddCookie(c)
		}
	}
}

// doJSON sends body as JSON (nil for no body) and decodes a JSON object response.
func doJSON(t *testing.T, app *fiber.App, method, path string, body any, opts ...requestOption) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	req.Header.Set(fiber.HeaderUserAgent, "test-agent")
	for _, opt := range opts {
		opt(req)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// loginAdmin logs in with the test credentials and returns the session cookie.
func loginAdmin(t *testing.T, app *fiber.App) *http.Cookie {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/api/admin/login",
		map[string]string{"username": testAdminUser, "password": testAdminPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	cookie := findCookie(resp, SessionCookie)
	require.NotNil(t, cookie)
	return cookie
}

// submitPost creates a post and returns its id.
func submitPost(t *testing.T, app *fiber.App, content string, opts ...requestOption) uint {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/api/submit", map[string]string{"content": content}, opts...)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	post, ok := body["post"].(map[string]any)
	require.True(t, ok)
	return uint(post["id"].(float64))
}

// listIDs returns the ids in a list response.
func listIDs(body map[string]any) []uint {
	items, _ := body["list"].([]any)
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, uint(it.(map[string]any)["id"].(float64)))
	}
	return ids
}
