package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/photoshare/backend/internal/model"
	"github.com/photoshare/backend/internal/service"
)

// dbTimeout bounds every database round trip made from a handler.
const dbTimeout = 5 * time.Second

// reqCtx derives a bounded context from the incoming request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// currentUser resolves the Authorization header into a full user record via
// the auth service. A nil user means the response has already been written
// (401) and the handler should just return nil.
func currentUser(c echo.Context, auth *service.Auth) *model.User {
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := auth.GetCurrentUser(ctx, c.Request().Header.Get("Authorization"))
	if err != nil {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
		return nil
	}
	return u
}

// writer is currentUser plus the ban check applied to every write operation.
// Banned accounts keep read access but all mutations answer 403.
func writer(c echo.Context, auth *service.Auth) *model.User {
	u := currentUser(c, auth)
	if u == nil {
		return nil
	}
	if u.Banned {
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": "account is banned"})
		return nil
	}
	return u
}

// userView is the profile shape returned to clients. Sensitive columns
// (password hash, refresh token) never leave the repository layer.
type userView struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Banned    bool      `json:"banned"`
	Avatar    string    `json:"avatar"`
	Confirmed bool      `json:"confirmed"`
	CreatedAt time.Time `json:"created_at"`
}

func viewOf(u *model.User) userView {
	return userView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		Banned:    u.Banned,
		Avatar:    u.Avatar(),
		Confirmed: u.Confirmed,
		CreatedAt: u.CreatedAt,
	}
}
