package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mellow/internal/auth"
	"mellow/internal/cache"
	"mellow/internal/db"
	"mellow/internal/handler"
	"mellow/internal/repository"
	"mellow/internal/service"
)

type testServer struct {
	e         *echo.Echo
	dealsPath string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()

	gormDB, err := db.NewSQLite(filepath.Join(dir, "mellow.db"), nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB, false))

	mr := miniredis.RunT(t)
	redisCache := cache.NewFromRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = redisCache.Close() })

	logger := zap.NewNop()
	jwtService := auth.NewJWTService("router-test")
	userRepo := repository.NewUserRepository(gormDB)
	dealsPath := filepath.Join(dir, "deals.json")

	authService := service.NewAuthService(userRepo, auth.NewBcryptHasher(4), jwtService, auth.NewTokenStore(redisCache), logger)
	profileService := service.NewProfileService(userRepo, redisCache)
	dealsService := service.NewDealsService(dealsPath, logger)

	e := echo.New()
	Register(e, logger, jwtService, Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Profile: handler.NewProfileHandler(profileService),
		Deals:   handler.NewDealsHandler(dealsService),
	})
	return &testServer{e: e, dealsPath: dealsPath}
}

func (s *testServer) request(method, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.request(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestAccountLifecycle(t *testing.T) {
	s := newTestServer(t)

	signup := `{"name":"Ada Lovelace","username":"ada","emailOrPhone":"ada@example.com","password":"password123"}`
	rec := s.request(http.MethodPost, "/signup", signup, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "User created successfully", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "ada@example.com", user["emailOrPhone"])
	assert.Nil(t, user["profileImage"])
	assert.NotContains(t, rec.Body.String(), "password")

	rec = s.request(http.MethodPost, "/signup", signup, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email or phone already exists", decode(t, rec)["message"])

	rec = s.request(http.MethodPost, "/login", `{"emailOrPhone":"ada@example.com","password":"nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	wrongPassword := rec.Body.String()

	rec = s.request(http.MethodPost, "/login", `{"emailOrPhone":"ghost@example.com","password":"password123"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, wrongPassword, rec.Body.String())

	rec = s.request(http.MethodPost, "/login", `{"emailOrPhone":"ada@example.com","password":"password123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var login handler.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.Equal(t, "ada", login.User.Username)

	rec = s.request(http.MethodPost, "/update-profile", `{"emailOrPhone":"ada@example.com","profileImage":"file:///ada.png"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Profile image updated successfully", decode(t, rec)["message"])

	rec = s.request(http.MethodGet, "/api/me", "", login.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "file:///ada.png", decode(t, rec)["profileImage"])

	rec = s.request(http.MethodPost, "/update-profile", `{"emailOrPhone":"ghost@example.com","profileImage":"file:///x.png"}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.request(http.MethodPost, "/update-profile", `{"emailOrPhone":"ada@example.com","profileImage":null}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.request(http.MethodGet, "/api/me", "", login.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode(t, rec)["profileImage"])

	rec = s.request(http.MethodPost, "/auth/refresh", `{"refresh_token":"`+login.RefreshToken+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.request(http.MethodPost, "/auth/logout", `{"refresh_token":"`+login.RefreshToken+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.request(http.MethodPost, "/auth/refresh", `{"refresh_token":"`+login.RefreshToken+`"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeRequiresToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.request(http.MethodGet, "/api/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decode(t, rec)["code"])

	rec = s.request(http.MethodGet, "/api/me", "", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshTokenIsNotABearerToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.request(http.MethodPost, "/signup", `{"name":"A","username":"a","emailOrPhone":"a@example.com","password":"password123"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.request(http.MethodPost, "/login", `{"emailOrPhone":"a@example.com","password":"password123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var login handler.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	rec = s.request(http.MethodGet, "/api/me", "", login.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.request(http.MethodPost, "/auth/logout", `{"refresh_token":"`+login.RefreshToken+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.request(http.MethodGet, "/api/me", "", login.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decode(t, rec)["code"])

	rec = s.request(http.MethodPost, "/auth/refresh", `{"refresh_token":"`+login.AccessToken+`"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignupRejectsOverlongPassword(t *testing.T) {
	s := newTestServer(t)

	password := strings.Repeat("p", 80)
	rec := s.request(http.MethodPost, "/signup", `{"name":"A","username":"a","emailOrPhone":"a@example.com","password":"`+password+`"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, rec)["code"])
}

func TestDealsRoute(t *testing.T) {
	s := newTestServer(t)

	rec := s.request(http.MethodGet, "/api/deals", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to load deals", decode(t, rec)["message"])

	feed := `[{"id":"b1","name":"Mario's","categories":"Restaurants, Italian"}]`
	require.NoError(t, os.WriteFile(s.dealsPath, []byte(feed), 0o644))

	rec = s.request(http.MethodGet, "/api/deals", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, feed, rec.Body.String())
}
