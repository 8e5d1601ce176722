// Package service composes the credential hasher, the token issuer and the
// user repository into the authentication and authorization flow consumed by
// the HTTP handlers.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/photoshare/backend/internal/config"
	"github.com/photoshare/backend/internal/model"
	"github.com/photoshare/backend/internal/repository"
	"github.com/photoshare/backend/internal/utils"
)

// ErrUnauthorized is returned for any authentication failure: missing or
// malformed bearer, bad signature, expired token, wrong scope, or a subject
// that no longer resolves to a user. Handlers map it to HTTP 401.
var ErrUnauthorized = errors.New("could not validate credentials")

// ErrForbidden is returned by role checks when the user lacks the required
// role. Handlers map it to HTTP 403.
var ErrForbidden = errors.New("insufficient permissions")

// userCacheTTL bounds how stale a cached user may get. Ban and role changes
// evict the entry explicitly, so the TTL only covers profile edits.
const userCacheTTL = 15 * time.Minute

// Auth implements login, signup support, token refresh, email confirmation
// and role checks on top of the user repository. The redis client is
// optional; with a nil client every lookup goes to the database.
type Auth struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Redis *redis.Client
}

func NewAuth(cfg config.Config, users *repository.UserRepo, rdb *redis.Client) *Auth {
	return &Auth{Cfg: cfg, Users: users, Redis: rdb}
}

// CreateAccessToken issues a short-lived access token for a user.
func (a *Auth) CreateAccessToken(email, role string) (utils.SignedToken, error) {
	return utils.NewAccessToken(a.Cfg.JWTSecret, email, role, a.Cfg.AccessTTLMin)
}

// CreateRefreshToken issues a long-lived refresh token.
func (a *Auth) CreateRefreshToken(email string) (utils.SignedToken, error) {
	return utils.NewRefreshToken(a.Cfg.JWTSecret, email, a.Cfg.RefreshTTLDays)
}

// CreateEmailToken issues the token embedded in confirmation links.
func (a *Auth) CreateEmailToken(email string) (utils.SignedToken, error) {
	return utils.NewEmailToken(a.Cfg.JWTSecret, email, a.Cfg.EmailTTLDays)
}

// DecodeRefreshToken verifies a refresh token and returns its subject email.
func (a *Auth) DecodeRefreshToken(token string) (string, error) {
	email, err := utils.ParseToken(a.Cfg.JWTSecret, token, utils.ScopeRefresh)
	if err != nil {
		return "", ErrUnauthorized
	}
	return email, nil
}

// GetEmailFromToken decodes an email-confirmation token.
func (a *Auth) GetEmailFromToken(token string) (string, error) {
	email, err := utils.ParseToken(a.Cfg.JWTSecret, token, utils.ScopeEmail)
	if err != nil {
		return "", ErrUnauthorized
	}
	return email, nil
}

// HashPassword hashes a plaintext password with the configured bcrypt cost.
func (a *Auth) HashPassword(plain string) (string, error) {
	return utils.HashPassword(plain, a.Cfg.BcryptCost)
}

// VerifyPassword compares a plaintext password with a stored bcrypt hash.
func (a *Auth) VerifyPassword(hash, plain string) bool {
	return utils.VerifyPassword(hash, plain)
}

// GetCurrentUser resolves an Authorization header value into a full user
// record. The bearer must be a valid access token whose subject exists.
// Users are cached in redis for a short window to keep the per-request DB
// load down; cache misses and cache failures both fall through to the DB.
func (a *Auth) GetCurrentUser(ctx context.Context, authHeader string) (*model.User, error) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, ErrUnauthorized
	}
	raw := strings.TrimPrefix(authHeader, "Bearer ")
	email, err := utils.ParseToken(a.Cfg.JWTSecret, raw, utils.ScopeAccess)
	if err != nil {
		return nil, ErrUnauthorized
	}

	if u := a.cachedUser(ctx, email); u != nil {
		return u, nil
	}
	u, err := a.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrUnauthorized
	}
	a.cacheUser(ctx, u)
	return u, nil
}

// IsAdmin reports whether the user holds the admin role.
func (a *Auth) IsAdmin(u *model.User) bool {
	return u.Role == model.RoleAdmin
}

// IsAdminOrModerator reports whether the user holds an elevated role.
func (a *Auth) IsAdminOrModerator(u *model.User) bool {
	return u.Role == model.RoleAdmin || u.Role == model.RoleModerator
}

// CheckIsAdminOrModerator returns ErrForbidden unless the user holds an
// elevated role.
func (a *Auth) CheckIsAdminOrModerator(u *model.User) error {
	if !a.IsAdminOrModerator(u) {
		return ErrForbidden
	}
	return nil
}

// EvictUser drops the cached copy of a user so ban and role changes take
// effect on the next request instead of after the cache TTL.
func (a *Auth) EvictUser(ctx context.Context, email string) {
	if a.Redis == nil {
		return
	}
	_ = a.Redis.Del(ctx, userCacheKey(email)).Err()
}

// cachedUser holds the subset of the user row the request path needs. The
// password hash is deliberately excluded; login always reads the DB.
type cachedUser struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Banned    bool      `json:"banned"`
	AvatarURL string    `json:"avatar_url"`
	Confirmed bool      `json:"confirmed"`
	CreatedAt time.Time `json:"created_at"`
}

func userCacheKey(email string) string { return "user:" + strings.ToLower(email) }

// encodeCachedUser serializes a user for the redis cache.
func encodeCachedUser(u *model.User) ([]byte, error) {
	return json.Marshal(cachedUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		Banned:    u.Banned,
		AvatarURL: u.Avatar(),
		Confirmed: u.Confirmed,
		CreatedAt: u.CreatedAt,
	})
}

// decodeCachedUser is the inverse of encodeCachedUser. A cache-hit user must
// be indistinguishable from a DB read everywhere handlers look, except for
// the excluded password hash.
func decodeCachedUser(data []byte) (*model.User, error) {
	var cu cachedUser
	if err := json.Unmarshal(data, &cu); err != nil {
		return nil, err
	}
	u := &model.User{
		ID:        cu.ID,
		Username:  cu.Username,
		Email:     cu.Email,
		Role:      cu.Role,
		Banned:    cu.Banned,
		Confirmed: cu.Confirmed,
		CreatedAt: cu.CreatedAt,
	}
	if cu.AvatarURL != "" {
		u.AvatarURL.String = cu.AvatarURL
		u.AvatarURL.Valid = true
	}
	return u, nil
}

func (a *Auth) cachedUser(ctx context.Context, email string) *model.User {
	if a.Redis == nil {
		return nil
	}
	data, err := a.Redis.Get(ctx, userCacheKey(email)).Bytes()
	if err != nil {
		return nil
	}
	u, err := decodeCachedUser(data)
	if err != nil {
		return nil
	}
	return u
}

func (a *Auth) cacheUser(ctx context.Context, u *model.User) {
	if a.Redis == nil {
		return
	}
	data, err := encodeCachedUser(u)
	if err != nil {
		return
	}
	_ = a.Redis.Set(ctx, userCacheKey(u.Email), data, userCacheTTL).Err()
}
