package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/photoshare/backend/internal/model"
)

// CommentRepo handles the comments table.
type CommentRepo struct{ DB *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{DB: db} }

const commentColumns = "id, image_id, user_id, text, created_at, updated_at"

// Create inserts a comment and returns the stored row.
func (r *CommentRepo) Create(ctx context.Context, imageID, userID uint64, text string) (*model.Comment, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO comments (image_id, user_id, text) VALUES (?,?,?)",
		imageID, userID, text)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches one comment, ErrNotFound when missing.
func (r *CommentRepo) GetByID(ctx context.Context, id uint64) (*model.Comment, error) {
	var c model.Comment
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+commentColumns+" FROM comments WHERE id=? LIMIT 1",
		id).Scan(&c.ID, &c.ImageID, &c.UserID, &c.Text, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListByImage returns all comments on an image, oldest first.
func (r *CommentRepo) ListByImage(ctx context.Context, imageID uint64) ([]*model.Comment, error) {
	return r.list(ctx, "SELECT "+commentColumns+" FROM comments WHERE image_id=? ORDER BY id", imageID)
}

// ListByUser returns all comments written by a user, oldest first.
func (r *CommentRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Comment, error) {
	return r.list(ctx, "SELECT "+commentColumns+" FROM comments WHERE user_id=? ORDER BY id", userID)
}

func (r *CommentRepo) list(ctx context.Context, q string, arg uint64) ([]*model.Comment, error) {
	rows, err := r.DB.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.ImageID, &c.UserID, &c.Text, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, &c)
	}
	return items, rows.Err()
}

// UpdateText replaces the comment body and bumps updated_at.
func (r *CommentRepo) UpdateText(ctx context.Context, id uint64, text string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE comments SET text=?, updated_at=NOW() WHERE id=?", text, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a comment.
func (r *CommentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM comments WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
