package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/photoshare/backend/internal/model"
	"github.com/photoshare/backend/internal/repository"
	"github.com/photoshare/backend/internal/service"
)

// AdminHandler serves user management endpoints. Routes are additionally
// guarded by the ADMIN role middleware; the handlers re-check against the
// database record because a role may have been revoked while an access
// token was still live.
type AdminHandler struct {
	Auth  *service.Auth
	Users *repository.UserRepo
}

func NewAdminHandler(auth *service.Auth, users *repository.UserRepo) *AdminHandler {
	return &AdminHandler{Auth: auth, Users: users}
}

// Ban blocks a user from all write operations while leaving reads intact.
func (h *AdminHandler) Ban(c echo.Context) error {
	return h.setBanned(c, true)
}

// Unban lifts a ban.
func (h *AdminHandler) Unban(c echo.Context) error {
	return h.setBanned(c, false)
}

func (h *AdminHandler) setBanned(c echo.Context, banned bool) error {
	admin, target, ok := h.adminAndTarget(c)
	if !ok {
		return nil
	}
	if admin.ID == target.ID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot ban yourself"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.SetBanned(ctx, target.ID, banned); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	// The ban must bite before the cached copy expires.
	h.Auth.EvictUser(ctx, target.Email)

	updated, err := h.Users.GetByID(ctx, target.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, viewOf(updated))
}

type roleReq struct {
	Role string `json:"role"`
}

// ChangeRole assigns USER, MODERATOR or ADMIN to a user.
func (h *AdminHandler) ChangeRole(c echo.Context) error {
	admin, target, ok := h.adminAndTarget(c)
	if !ok {
		return nil
	}
	if admin.ID == target.ID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot change your own role"})
	}
	var req roleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if !model.ValidRole(role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be USER, MODERATOR or ADMIN"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.SetRole(ctx, target.ID, role); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	h.Auth.EvictUser(ctx, target.Email)

	updated, err := h.Users.GetByID(ctx, target.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, viewOf(updated))
}

// adminAndTarget resolves the calling admin and the :id target user, writing
// the error response itself when either fails.
func (h *AdminHandler) adminAndTarget(c echo.Context) (*model.User, *model.User, bool) {
	admin := writer(c, h.Auth)
	if admin == nil {
		return nil, nil, false
	}
	if !h.Auth.IsAdmin(admin) {
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		return nil, nil, false
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		return nil, nil, false
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	target, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		return nil, nil, false
	}
	return admin, target, true
}
