package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/photoshare/backend/internal/model"
)

const userColumns = "id, username, email, password_hash, role, banned, avatar_url, refresh_token, confirmed, created_at, updated_at"

// UserRepo encapsulates all database queries touching the users table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Banned,
		&u.AvatarURL, &u.RefreshToken, &u.Confirmed, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a user with an already-hashed password and returns the full
// record. The very first user registered gets the ADMIN role so a fresh
// deployment always has an administrator; everyone after that starts as USER.
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	role := model.RoleUser
	empty, err := r.IsEmpty(ctx)
	if err != nil {
		return nil, err
	}
	if empty {
		role = model.RoleAdmin
	}

	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, role) VALUES (?,?,?,?)",
		username, email, passwordHash, role)
	if err != nil {
		// MySQL error 1062 = duplicate entry on a unique key (email or username).
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// IsEmpty reports whether the users table has no rows yet.
func (r *UserRepo) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// UpdateProfile changes username and email. Uniqueness violations surface as
// ErrEmailExists just like on signup.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, username, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET username=?, email=? WHERE id=?", username, email, id)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrEmailExists
	}
	return err
}

// UpdateToken stores the latest refresh token for a user, or clears it when
// token is empty. Only the stored token is honored on refresh, which is what
// invalidates earlier tokens implicitly.
func (r *UserRepo) UpdateToken(ctx context.Context, id uint64, token string) error {
	var val sql.NullString
	if token != "" {
		val = sql.NullString{String: token, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token=? WHERE id=?", val, id)
	return err
}

// UpdateAvatar stores the public URL of the freshly uploaded avatar.
func (r *UserRepo) UpdateAvatar(ctx context.Context, id uint64, url string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET avatar_url=? WHERE id=?", url, id)
	return err
}

// ConfirmEmail flips the confirmed flag for the given email address.
func (r *UserRepo) ConfirmEmail(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET confirmed=1 WHERE email=?", email)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetBanned flips the banned flag. Banned users keep read access but every
// write handler rejects them with 403.
func (r *UserRepo) SetBanned(ctx context.Context, id uint64, banned bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET banned=? WHERE id=?", banned, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRole assigns a new role to the user.
func (r *UserRepo) SetRole(ctx context.Context, id uint64, role string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET role=? WHERE id=?", role, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountImages returns how many images a user has uploaded. Used by the
// public profile endpoint.
func (r *UserRepo) CountImages(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM images WHERE user_id=?", userID).Scan(&n)
	return n, err
}
