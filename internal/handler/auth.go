package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/photoshare/backend/internal/config"
	"github.com/photoshare/backend/internal/queue"
	"github.com/photoshare/backend/internal/repository"
	"github.com/photoshare/backend/internal/service"
)

// AuthHandler bundles dependencies for signup, login, refresh and email
// confirmation endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Auth  *service.Auth
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, auth *service.Auth, users *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Auth: auth, Users: users}
}

// ----- DTOs -----

type signupReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type emailReq struct {
	Email string `json:"email"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type tokenResp struct {
	Access    tokenPart `json:"access"`
	Refresh   tokenPart `json:"refresh"`
	TokenType string    `json:"token_type"`
}

// Signup creates a user and queues a confirmation email. The account cannot
// log in until the email is confirmed.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Password == "" || req.Username == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/email/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	hash, err := h.Auth.HashPassword(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}
	u, err := h.Users.Create(ctx, req.Username, req.Email, hash)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "account already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	h.sendConfirmation(u.Email, u.Username)

	return c.JSON(http.StatusCreated, echo.Map{
		"user":   viewOf(u),
		"detail": "User successfully created. Check your email for confirmation.",
	})
}

// Login verifies credentials and returns a fresh access/refresh pair. The
// new refresh token replaces the stored one, implicitly invalidating any
// earlier token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !u.Confirmed {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "email not confirmed"})
	}
	if !h.Auth.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	return h.issuePair(c, ctx, u.ID, u.Email, u.Role)
}

// RefreshToken exchanges a valid refresh token, presented as a bearer, for a
// new access/refresh pair. Only the latest stored refresh token is honored;
// presenting an older one clears the stored token entirely, forcing a new
// login.
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}
	raw := strings.TrimPrefix(auth, "Bearer ")

	email, err := h.Auth.DecodeRefreshToken(raw)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	if !u.RefreshToken.Valid || u.RefreshToken.String != raw {
		// A stale or stolen token was replayed. Drop the stored token so the
		// legitimate session has to re-authenticate too.
		_ = h.Users.UpdateToken(ctx, u.ID, "")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}

	return h.issuePair(c, ctx, u.ID, u.Email, u.Role)
}

func (h *AuthHandler) issuePair(c echo.Context, ctx context.Context, userID uint64, email, role string) error {
	access, err := h.Auth.CreateAccessToken(email, role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := h.Auth.CreateRefreshToken(email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Users.UpdateToken(ctx, userID, refresh.Token); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}
	return c.JSON(http.StatusOK, tokenResp{
		Access:    tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh:   tokenPart{Token: refresh.Token, Expires: refresh.Exp},
		TokenType: "bearer",
	})
}

// ConfirmedEmail handles the link from the confirmation email. Confirming an
// already-confirmed address is a no-op, not an error.
func (h *AuthHandler) ConfirmedEmail(c echo.Context) error {
	token := c.Param("token")
	email, err := h.Auth.GetEmailFromToken(token)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token for email verification"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "verification error"})
	}
	if u.Confirmed {
		return c.JSON(http.StatusOK, echo.Map{"message": "Your email is already confirmed"})
	}
	if err := h.Users.ConfirmEmail(ctx, email); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "confirm failed"})
	}
	h.Auth.EvictUser(ctx, email)
	return c.JSON(http.StatusOK, echo.Map{"message": "Email confirmed"})
}

// RequestEmail re-sends the confirmation email for an unconfirmed account.
func (h *AuthHandler) RequestEmail(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email"})
	}
	if u.Confirmed {
		return c.JSON(http.StatusOK, echo.Map{"message": "Your email is already confirmed"})
	}

	h.sendConfirmation(u.Email, u.Username)
	return c.JSON(http.StatusOK, echo.Map{"message": "Check your email for confirmation."})
}

// sendConfirmation issues an email token and enqueues delivery without
// blocking the request. Failures are logged and otherwise ignored; the user
// can always hit /request_email again.
func (h *AuthHandler) sendConfirmation(email, username string) {
	tok, err := h.Auth.CreateEmailToken(email)
	if err != nil {
		log.Printf("auth: issue email token for %s failed: %v", email, err)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = service.PublishEmail(ctx, queue.EmailEvent{
			Kind:     queue.EmailKindConfirm,
			To:       email,
			Username: username,
			Token:    tok.Token,
			BaseURL:  h.Cfg.BaseURL,
		})
	}()
}
