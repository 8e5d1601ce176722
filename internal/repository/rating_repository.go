package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/photoshare/backend/internal/model"
)

// RatingRepo handles the ratings table. The (user_id, image_id) pair has a
// unique index; Upsert relies on it to turn a second rating by the same user
// into an update instead of a duplicate row.
type RatingRepo struct{ DB *sql.DB }

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{DB: db} }

// Upsert creates or replaces the caller's rating for an image and returns
// the resulting row.
func (r *RatingRepo) Upsert(ctx context.Context, userID, imageID uint64, value int) (*model.Rating, error) {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO ratings (user_id, image_id, value) VALUES (?,?,?)
		 ON DUPLICATE KEY UPDATE value=VALUES(value)`,
		userID, imageID, value)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, userID, imageID)
}

// Get fetches a single (user, image) rating.
func (r *RatingRepo) Get(ctx context.Context, userID, imageID uint64) (*model.Rating, error) {
	var rt model.Rating
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, image_id, value, created_at FROM ratings WHERE user_id=? AND image_id=? LIMIT 1",
		userID, imageID).Scan(&rt.ID, &rt.UserID, &rt.ImageID, &rt.Value, &rt.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rt, nil
}

// ListByImage returns all ratings given to an image.
func (r *RatingRepo) ListByImage(ctx context.Context, imageID uint64) ([]*model.Rating, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, user_id, image_id, value, created_at FROM ratings WHERE image_id=? ORDER BY id",
		imageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*model.Rating{}
	for rows.Next() {
		var rt model.Rating
		if err := rows.Scan(&rt.ID, &rt.UserID, &rt.ImageID, &rt.Value, &rt.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &rt)
	}
	return items, rows.Err()
}

// Average computes the arithmetic mean of an image's ratings. An image with
// no ratings averages to zero rather than erroring.
func (r *RatingRepo) Average(ctx context.Context, imageID uint64) (float64, error) {
	var avg sql.NullFloat64
	err := r.DB.QueryRowContext(ctx,
		"SELECT AVG(value) FROM ratings WHERE image_id=?", imageID).Scan(&avg)
	if err != nil {
		return 0, err
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}

// Delete removes a specific user's rating of an image. Moderators and admins
// use this to drop abusive ratings.
func (r *RatingRepo) Delete(ctx context.Context, userID, imageID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM ratings WHERE user_id=? AND image_id=?", userID, imageID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
