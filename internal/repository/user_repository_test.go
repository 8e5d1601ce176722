package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/photoshare/backend/internal/model"
)

func newUserRepo(t *testing.T) (*UserRepo, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return NewUserRepo(db), mock, func() { db.Close() }
}

func userRows(u *model.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "role", "banned",
		"avatar_url", "refresh_token", "confirmed", "created_at", "updated_at",
	}).AddRow(
		u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.Banned,
		nil, nil, u.Confirmed, time.Now(), time.Now(),
	)
}

func TestUserRepoCreate_FirstUserBecomesAdmin(t *testing.T) {
	repo, mock, cleanup := newUserRepo(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (username, email, password_hash, role) VALUES (?,?,?,?)")).
		WithArgs("alice", "alice@example.com", "hash", model.RoleAdmin).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT id, username, email").
		WithArgs(uint64(1)).
		WillReturnRows(userRows(&model.User{ID: 1, Username: "alice", Email: "alice@example.com", PasswordHash: "hash", Role: model.RoleAdmin}))

	u, err := repo.Create(context.Background(), "alice", "Alice@Example.com", "hash")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if u.Role != model.RoleAdmin {
		t.Errorf("expected first user to be ADMIN, got %s", u.Role)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUserRepoCreate_SecondUserIsUser(t *testing.T) {
	repo, mock, cleanup := newUserRepo(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("bob", "bob@example.com", "hash", model.RoleUser).
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectQuery("SELECT id, username, email").
		WithArgs(uint64(4)).
		WillReturnRows(userRows(&model.User{ID: 4, Username: "bob", Email: "bob@example.com", PasswordHash: "hash", Role: model.RoleUser}))

	u, err := repo.Create(context.Background(), "bob", "bob@example.com", "hash")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if u.Role != model.RoleUser {
		t.Errorf("expected USER role, got %s", u.Role)
	}
}

func TestUserRepoCreate_DuplicateEmail(t *testing.T) {
	repo, mock, cleanup := newUserRepo(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry"))

	if _, err := repo.Create(context.Background(), "bob", "bob@example.com", "hash"); !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

func TestUserRepoGetByEmail_NotFound(t *testing.T) {
	repo, mock, cleanup := newUserRepo(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id, username, email").
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByEmail(context.Background(), "ghost@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepoUpdateToken(t *testing.T) {
	repo, mock, cleanup := newUserRepo(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET refresh_token=? WHERE id=?")).
		WithArgs(sqlmock.AnyArg(), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.UpdateToken(context.Background(), 7, "some-token"); err != nil {
		t.Fatalf("UpdateToken returned error: %v", err)
	}

	// Clearing the token writes NULL.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET refresh_token=? WHERE id=?")).
		WithArgs(sqlmock.AnyArg(), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.UpdateToken(context.Background(), 7, ""); err != nil {
		t.Fatalf("UpdateToken clear returned error: %v", err)
	}
}

func TestUserRepoSetBanned_NotFound(t *testing.T) {
	repo, mock, cleanup := newUserRepo(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET banned=? WHERE id=?")).
		WithArgs(true, uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.SetBanned(context.Background(), 99, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
