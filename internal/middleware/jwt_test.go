package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/photoshare/backend/internal/model"
	"github.com/photoshare/backend/internal/utils"
)

const testSecret = "test-jwt-secret-for-testing-only"

func runMiddleware(t *testing.T, mw echo.MiddlewareFunc, header string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec, c
}

func TestJWTAuth(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, "alice@example.com", model.RoleUser, 15)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	rec, c := runMiddleware(t, JWTAuth(testSecret), "Bearer "+tok.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if c.Get("email") != "alice@example.com" {
		t.Errorf("expected email in context, got %v", c.Get("email"))
	}
	if c.Get("role") != model.RoleUser {
		t.Errorf("expected role in context, got %v", c.Get("role"))
	}
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	rec, _ := runMiddleware(t, JWTAuth(testSecret), "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("some-other-secret", "alice@example.com", model.RoleUser, 15)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	rec, _ := runMiddleware(t, JWTAuth(testSecret), "Bearer "+tok.Token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestJWTAuth_RefreshScopeRejected(t *testing.T) {
	tok, err := utils.NewRefreshToken(testSecret, "alice@example.com", 7)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	rec, _ := runMiddleware(t, JWTAuth(testSecret), "Bearer "+tok.Token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for refresh token, got %d", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	mw := RequireRole(model.RoleAdmin)

	cases := []struct {
		role string
		want int
	}{
		{model.RoleAdmin, http.StatusOK},
		{model.RoleModerator, http.StatusForbidden},
		{model.RoleUser, http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("role", tc.role)
		handler := mw(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		if err := handler(c); err != nil {
			t.Fatalf("middleware returned error: %v", err)
		}
		if rec.Code != tc.want {
			t.Errorf("role %s: expected %d, got %d", tc.role, tc.want, rec.Code)
		}
	}
}
