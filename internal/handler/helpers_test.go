package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/photoshare/backend/internal/config"
	"github.com/photoshare/backend/internal/model"
	"github.com/photoshare/backend/internal/repository"
	"github.com/photoshare/backend/internal/service"
)

// testEnv bundles everything a handler test needs: an echo instance, a mocked
// database and an auth service without redis.
type testEnv struct {
	Echo  *echo.Echo
	DB    *sql.DB
	Mock  sqlmock.Sqlmock
	Cfg   config.Config
	Auth  *service.Auth
	Users *repository.UserRepo
	close func()
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	cfg := config.Config{
		BaseURL:        "http://localhost:8080",
		JWTSecret:      "test-jwt-secret-for-testing-only",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		EmailTTLDays:   7,
		BcryptCost:     4,
	}
	users := repository.NewUserRepo(db)
	return &testEnv{
		Echo:  echo.New(),
		DB:    db,
		Mock:  mock,
		Cfg:   cfg,
		Auth:  service.NewAuth(cfg, users, nil),
		Users: users,
		close: func() { db.Close() },
	}
}

func (env *testEnv) Close() { env.close() }

// newJSONRequest builds a request with a JSON body and matching content type.
func newJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// context wraps a request into an echo context plus response recorder.
func (env *testEnv) context(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return env.Echo.NewContext(req, rec), rec
}

// bearerFor issues a real access token for the given identity and returns the
// Authorization header value.
func (env *testEnv) bearerFor(t *testing.T, email, role string) string {
	t.Helper()
	tok, err := env.Auth.CreateAccessToken(email, role)
	if err != nil {
		t.Fatalf("failed to issue access token: %v", err)
	}
	return "Bearer " + tok.Token
}

// expectUserLookup queues the SELECT that GetCurrentUser (or Login) performs
// for the given user.
func (env *testEnv) expectUserLookup(u *model.User) {
	var avatar, refresh any
	if u.AvatarURL.Valid {
		avatar = u.AvatarURL.String
	}
	if u.RefreshToken.Valid {
		refresh = u.RefreshToken.String
	}
	rows := sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "role", "banned",
		"avatar_url", "refresh_token", "confirmed", "created_at", "updated_at",
	}).AddRow(u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.Banned,
		avatar, refresh, u.Confirmed, time.Now(), time.Now())
	env.Mock.ExpectQuery("SELECT id, username, email").WithArgs(u.Email).WillReturnRows(rows)
}

// decodeBody parses a JSON response body into a generic map.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return m
}
