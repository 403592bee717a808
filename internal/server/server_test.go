package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gigbuddy/internal/config"
	"gigbuddy/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-0123456789abcdef"

func setupTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{
		JWTSecret: testSecret,
		Port:      "0",
		Env:       "test",
	}
	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)
	return srv, app
}

// doJSON performs a request and decodes the response envelope.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	envelope := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &envelope))
	}
	return resp.StatusCode, envelope
}

func registerUser(t *testing.T, app *fiber.App, username string) (token string, userID uint) {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": username,
		"email":    username + "@example.com",
		"password": "Passw0rd1",
	})
	require.Equal(t, fiber.StatusCreated, status, "register failed: %v", body)

	data := body["data"].(map[string]any)
	token = data["token"].(string)
	user := data["user"].(map[string]any)
	return token, uint(user["id"].(float64))
}

func createGig(t *testing.T, app *fiber.App, token, title string) uint {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/api/gigs/", token, fiber.Map{
		"title":      title,
		"venue":      "The Basement",
		"event_time": time.Now().Add(72 * time.Hour).Format(time.RFC3339),
		"genre":      "rock",
		"price":      15.0,
	})
	require.Equal(t, fiber.StatusCreated, status, "create gig failed: %v", body)
	return uint(body["data"].(map[string]any)["id"].(float64))
}

func TestRegisterLoginFlow(t *testing.T) {
	_, app := setupTestServer(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "alice",
		"email":    "Alice@Example.com",
		"password": "Passw0rd1",
	})
	require.Equal(t, fiber.StatusCreated, status)

	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["token"])

	user := data["user"].(map[string]any)
	assert.Equal(t, "alice@example.com", user["email"], "email is normalized to lowercase")
	_, hasPassword := user["password"]
	assert.False(t, hasPassword, "password hash must never serialize")

	// Duplicate email in any casing conflicts.
	status, body = doJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "alice2",
		"email":    "ALICE@example.com",
		"password": "Passw0rd1",
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", body["code"])

	// Login with the normalized email.
	status, body = doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "alice@example.com",
		"password": "Passw0rd1",
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, body["data"].(map[string]any)["token"])

	// Wrong password and unknown email produce the same response.
	status, wrongPw := doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "alice@example.com",
		"password": "WrongPass1",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, unknown := doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "nobody@example.com",
		"password": "Passw0rd1",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, wrongPw["error"], unknown["error"])
}

func TestRegisterValidation(t *testing.T) {
	_, app := setupTestServer(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "al",
		"email":    "not-an-email",
		"password": "weak",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.NotEmpty(t, body["details"])
}

func TestMissingTokenRejected(t *testing.T) {
	_, app := setupTestServer(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/gigs/", "", fiber.Map{})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "AUTH_REQUIRED", body["code"])
}

func TestExpiredTokenForbidden(t *testing.T) {
	_, app := setupTestServer(t)

	past := time.Now().Add(-48 * time.Hour)
	claims := jwt.MapClaims{
		"sub":   "1",
		"email": "alice@example.com",
		"role":  "member",
		"iss":   "gigbuddy-api",
		"aud":   "gigbuddy-client",
		"iat":   past.Unix(),
		"nbf":   past.Unix(),
		"exp":   past.Add(24 * time.Hour).Unix(),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	status, body := doJSON(t, app, http.MethodPost, "/api/gigs/", expired, fiber.Map{})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "TOKEN_EXPIRED", body["code"])
}

func TestMalformedTokenUnauthorized(t *testing.T) {
	_, app := setupTestServer(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/gigs/", "garbage.token.here", fiber.Map{})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "TOKEN_INVALID", body["code"])
}

func TestGigOwnershipEnforced(t *testing.T) {
	_, app := setupTestServer(t)

	aliceToken, _ := registerUser(t, app, "alice")
	bobToken, _ := registerUser(t, app, "bob")

	gigID := createGig(t, app, aliceToken, "Alice's Show")

	// Bob cannot update or delete Alice's gig.
	status, body := doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/gigs/%d", gigID), bobToken,
		fiber.Map{"title": "Hijacked"})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "OWNERSHIP_REQUIRED", body["code"])

	status, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/gigs/%d", gigID), bobToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	// The gig is untouched.
	status, body = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/gigs/%d", gigID), "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Alice's Show", body["data"].(map[string]any)["title"])

	// The owner can.
	status, _ = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/gigs/%d", gigID), aliceToken,
		fiber.Map{"title": "Renamed Show"})
	assert.Equal(t, fiber.StatusOK, status)
}

func TestMissingGigIs404BeforeOwnership(t *testing.T) {
	_, app := setupTestServer(t)
	bobToken, _ := registerUser(t, app, "bob")

	// A stranger probing a missing ID sees 404, never 403.
	status, body := doJSON(t, app, http.MethodPut, "/api/gigs/9999", bobToken,
		fiber.Map{"title": "Ghost"})
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestPrivateCollectionVisibility(t *testing.T) {
	_, app := setupTestServer(t)

	aliceToken, _ := registerUser(t, app, "alice")
	bobToken, _ := registerUser(t, app, "bob")

	status, body := doJSON(t, app, http.MethodPost, "/api/collections/", aliceToken, fiber.Map{
		"name":   "Secret Plans",
		"public": false,
	})
	require.Equal(t, fiber.StatusCreated, status)
	collectionID := uint(body["data"].(map[string]any)["id"].(float64))

	path := fmt.Sprintf("/api/collections/%d", collectionID)

	// Anonymous viewers must authenticate first.
	status, body = doJSON(t, app, http.MethodGet, path, "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "AUTH_REQUIRED", body["code"])

	// Authenticated non-owners are forbidden.
	status, body = doJSON(t, app, http.MethodGet, path, bobToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "OWNERSHIP_REQUIRED", body["code"])

	// The owner sees it.
	status, _ = doJSON(t, app, http.MethodGet, path, aliceToken, nil)
	assert.Equal(t, fiber.StatusOK, status)

	// It never appears in the public listing.
	status, body = doJSON(t, app, http.MethodGet, "/api/collections/", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	if body["data"] != nil {
		assert.Empty(t, body["data"])
	}

	// It does appear in the owner's own listing.
	status, body = doJSON(t, app, http.MethodGet, "/api/collections/me", aliceToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 1)
}

func TestCollectionMembership(t *testing.T) {
	_, app := setupTestServer(t)

	aliceToken, _ := registerUser(t, app, "alice")
	gigID := createGig(t, app, aliceToken, "Member Show")

	status, body := doJSON(t, app, http.MethodPost, "/api/collections/", aliceToken, fiber.Map{
		"name":   "Weekend Plans",
		"public": true,
	})
	require.Equal(t, fiber.StatusCreated, status)
	collectionID := uint(body["data"].(map[string]any)["id"].(float64))

	memberPath := fmt.Sprintf("/api/collections/%d/gigs/%d", collectionID, gigID)

	status, _ = doJSON(t, app, http.MethodPost, memberPath, aliceToken, nil)
	assert.Equal(t, fiber.StatusCreated, status)

	// Adding the same gig again conflicts.
	status, body = doJSON(t, app, http.MethodPost, memberPath, aliceToken, nil)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", body["code"])

	// The collection detail includes the gig.
	status, body = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/collections/%d", collectionID), "", nil)
	require.Equal(t, fiber.StatusOK, status)
	gigs := body["data"].(map[string]any)["gigs"].([]any)
	assert.Len(t, gigs, 1)

	status, _ = doJSON(t, app, http.MethodDelete, memberPath, aliceToken, nil)
	assert.Equal(t, fiber.StatusOK, status)

	// Removing a gig that is not in the collection is a 404.
	status, _ = doJSON(t, app, http.MethodDelete, memberPath, aliceToken, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestDuplicateCollectionNamePerOwner(t *testing.T) {
	_, app := setupTestServer(t)

	aliceToken, _ := registerUser(t, app, "alice")
	bobToken, _ := registerUser(t, app, "bob")

	status, _ := doJSON(t, app, http.MethodPost, "/api/collections/", aliceToken,
		fiber.Map{"name": "Weekend Plans"})
	require.Equal(t, fiber.StatusCreated, status)

	status, body := doJSON(t, app, http.MethodPost, "/api/collections/", aliceToken,
		fiber.Map{"name": "Weekend Plans"})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", body["code"])

	// A different owner may reuse the name.
	status, _ = doJSON(t, app, http.MethodPost, "/api/collections/", bobToken,
		fiber.Map{"name": "Weekend Plans"})
	assert.Equal(t, fiber.StatusCreated, status)
}

func TestAdminGate(t *testing.T) {
	srv, app := setupTestServer(t)

	aliceToken, aliceID := registerUser(t, app, "alice")
	registerUser(t, app, "bob")

	// Members cannot list users.
	status, body := doJSON(t, app, http.MethodGet, "/api/users/", aliceToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "ADMIN_REQUIRED", body["code"])

	// Promote Alice directly, then log in again for a token with the new role.
	require.NoError(t, srv.db.Table("users").Where("id = ?", aliceID).Update("role", "admin").Error)

	status, body = doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "alice@example.com",
		"password": "Passw0rd1",
	})
	require.Equal(t, fiber.StatusOK, status)
	adminToken := body["data"].(map[string]any)["token"].(string)

	status, body = doJSON(t, app, http.MethodGet, "/api/users/", adminToken, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 2)
}

func TestUserProfile(t *testing.T) {
	_, app := setupTestServer(t)

	token, userID := registerUser(t, app, "alice")

	status, body := doJSON(t, app, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alice", body["data"].(map[string]any)["username"])

	status, body = doJSON(t, app, http.MethodPut, "/api/users/me", token, fiber.Map{
		"bio":      "I go to a lot of shows.",
		"location": "Melbourne",
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "I go to a lot of shows.", body["data"].(map[string]any)["bio"])

	// The public profile endpoint needs no token and hides the password.
	status, body = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/users/%d", userID), "", nil)
	require.Equal(t, fiber.StatusOK, status)
	user := body["data"].(map[string]any)
	_, hasPassword := user["password"]
	assert.False(t, hasPassword)
}

func TestPublicRoutesNeedNoToken(t *testing.T) {
	_, app := setupTestServer(t)

	aliceToken, aliceID := registerUser(t, app, "alice")
	gigID := createGig(t, app, aliceToken, "Open Show")

	status, body := doJSON(t, app, http.MethodPost, "/api/collections/", aliceToken, fiber.Map{
		"name":   "Open Plans",
		"public": true,
	})
	require.Equal(t, fiber.StatusCreated, status)
	collectionID := uint(body["data"].(map[string]any)["id"].(float64))

	// Every public read works anonymously; none may be shadowed by the
	// auth middleware.
	publicPaths := []string{
		"/api/gigs/",
		fmt.Sprintf("/api/gigs/%d", gigID),
		"/api/collections/",
		fmt.Sprintf("/api/collections/%d", collectionID),
		fmt.Sprintf("/api/users/%d", aliceID),
		fmt.Sprintf("/api/users/%d/gigs", aliceID),
	}
	for _, path := range publicPaths {
		status, body := doJSON(t, app, http.MethodGet, path, "", nil)
		assert.Equal(t, fiber.StatusOK, status, "GET %s anonymously: %v", path, body)
	}

	// The mutating and personal routes still demand a token.
	protected := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/gigs/"},
		{http.MethodPut, fmt.Sprintf("/api/gigs/%d", gigID)},
		{http.MethodDelete, fmt.Sprintf("/api/gigs/%d", gigID)},
		{http.MethodGet, "/api/collections/me"},
		{http.MethodPost, "/api/collections/"},
		{http.MethodGet, "/api/users/me"},
		{http.MethodGet, "/api/users/"},
	}
	for _, route := range protected {
		status, body := doJSON(t, app, route.method, route.path, "", fiber.Map{})
		assert.Equal(t, fiber.StatusUnauthorized, status, "%s %s anonymously", route.method, route.path)
		assert.Equal(t, "AUTH_REQUIRED", body["code"])
	}
}

func TestGigListFilterValidation(t *testing.T) {
	_, app := setupTestServer(t)

	status, body := doJSON(t, app, http.MethodGet, "/api/gigs/?genre=yodeling", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
}

func TestHealthEndpoints(t *testing.T) {
	_, app := setupTestServer(t)

	status, _ := doJSON(t, app, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
}
