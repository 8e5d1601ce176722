package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/photoshare/backend/internal/repository"
	"github.com/photoshare/backend/internal/service"
	"github.com/photoshare/backend/internal/storage"
)

// avatarSize is the edge length of the square avatar thumbnail.
const avatarSize = 250

// UserHandler serves profile endpoints.
type UserHandler struct {
	Auth  *service.Auth
	Users *repository.UserRepo
	Store *storage.Store
}

func NewUserHandler(auth *service.Auth, users *repository.UserRepo, store *storage.Store) *UserHandler {
	return &UserHandler{Auth: auth, Users: users, Store: store}
}

// Me returns the authenticated user's own profile.
func (h *UserHandler) Me(c echo.Context) error {
	u := currentUser(c, h.Auth)
	if u == nil {
		return nil
	}
	return c.JSON(http.StatusOK, viewOf(u))
}

type updateMeReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UpdateMe changes the caller's username and/or email. Fields left empty in
// the body keep their current value.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	u := writer(c, h.Auth)
	if u == nil {
		return nil
	}
	var req updateMeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" {
		username = u.Username
	}
	if email == "" {
		email = u.Email
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, u.ID, username, email); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "username or email already taken"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	// The cache entry is keyed by email; evict the old key in case it changed.
	h.Auth.EvictUser(ctx, u.Email)

	updated, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, viewOf(updated))
}

// UpdateAvatar accepts a multipart "file" field, crops it to a square
// thumbnail, stores it and saves the URL on the user row.
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	u := writer(c, h.Auth)
	if u == nil {
		return nil
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read file"})
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read file"})
	}

	thumb, err := storage.Thumbnail(data, avatarSize)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported image"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	key := fmt.Sprintf("avatars/%d.jpg", u.ID)
	url, err := h.Store.Upload(ctx, key, thumb, "image/jpeg")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store avatar failed"})
	}
	if err := h.Users.UpdateAvatar(ctx, u.ID, url); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save avatar failed"})
	}
	h.Auth.EvictUser(ctx, u.Email)

	updated, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, viewOf(updated))
}

// GetByUsername returns a public profile: username, avatar, join date and
// how many images the user has uploaded.
func (h *UserHandler) GetByUsername(c echo.Context) error {
	if u := currentUser(c, h.Auth); u == nil {
		return nil
	}
	username := c.Param("username")

	ctx, cancel := reqCtx(c)
	defer cancel()

	target, err := h.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	count, err := h.Users.CountImages(ctx, target.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"username":    target.Username,
		"avatar":      target.Avatar(),
		"created_at":  target.CreatedAt,
		"image_count": count,
	})
}
