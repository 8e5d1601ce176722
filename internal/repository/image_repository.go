package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/photoshare/backend/internal/model"
)

// ImageRepo encapsulates queries for the images table and the image_tags
// join table. Pixel data lives in the object store; rows here only carry
// metadata and URLs.
type ImageRepo struct {
	DB   *sql.DB
	Tags *TagRepo
}

func NewImageRepo(db *sql.DB, tags *TagRepo) *ImageRepo {
	return &ImageRepo{DB: db, Tags: tags}
}

// Create inserts an image row and attaches the given tag names, creating
// tags that do not exist yet. Duplicate names in the input collapse to a
// single link. The returned record includes generated ID, timestamps and
// the deduplicated tag list.
func (r *ImageRepo) Create(ctx context.Context, userID uint64, description, url string, tagNames []string) (*model.Image, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO images (user_id, description, url) VALUES (?,?,?)",
		userID, description, url)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	imageID := uint64(id)

	seen := map[string]bool{}
	for _, name := range tagNames {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		tag, err := r.Tags.GetOrCreate(ctx, name)
		if err != nil {
			return nil, err
		}
		// INSERT IGNORE keeps the link idempotent when the same tag comes in twice.
		if _, err := r.DB.ExecContext(ctx,
			"INSERT IGNORE INTO image_tags (image_id, tag_id) VALUES (?,?)",
			imageID, tag.ID); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, imageID)
}

// GetByID fetches an image with its tags. Returns ErrNotFound when no row
// matches.
func (r *ImageRepo) GetByID(ctx context.Context, id uint64) (*model.Image, error) {
	var (
		img model.Image
		qr  sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, description, url, qr_code_url, created_at FROM images WHERE id=? LIMIT 1",
		id).Scan(&img.ID, &img.UserID, &img.Description, &img.URL, &qr, &img.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if qr.Valid {
		img.QRCodeURL = qr.String
	}
	if img.Tags, err = r.tagsFor(ctx, id); err != nil {
		return nil, err
	}
	return &img, nil
}

// List returns images newest first, optionally filtered by owner. userID of
// zero means no filter. limit/offset sanitization is the handler's job.
func (r *ImageRepo) List(ctx context.Context, userID uint64, limit, offset int) ([]*model.Image, error) {
	q := "SELECT id, user_id, description, url, qr_code_url, created_at FROM images"
	args := []any{}
	if userID != 0 {
		q += " WHERE user_id=?"
		args = append(args, userID)
	}
	q += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*model.Image{}
	for rows.Next() {
		var (
			img model.Image
			qr  sql.NullString
		)
		if err := rows.Scan(&img.ID, &img.UserID, &img.Description, &img.URL, &qr, &img.CreatedAt); err != nil {
			return nil, err
		}
		if qr.Valid {
			img.QRCodeURL = qr.String
		}
		items = append(items, &img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, img := range items {
		if img.Tags, err = r.tagsFor(ctx, img.ID); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// UpdateDescription replaces the caption of an image.
func (r *ImageRepo) UpdateDescription(ctx context.Context, id uint64, description string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE images SET description=? WHERE id=?", description, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetQRCodeURL stores (or clears, with an empty string) the URL of the
// generated QR code object for an image.
func (r *ImageRepo) SetQRCodeURL(ctx context.Context, id uint64, url string) error {
	var val sql.NullString
	if url != "" {
		val = sql.NullString{String: url, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE images SET qr_code_url=? WHERE id=?", val, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an image together with its tag links, ratings and comments.
// The object in storage is the handler's responsibility.
func (r *ImageRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		"DELETE FROM image_tags WHERE image_id=?",
		"DELETE FROM ratings WHERE image_id=?",
		"DELETE FROM comments WHERE image_id=?",
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM images WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (r *ImageRepo) tagsFor(ctx context.Context, imageID uint64) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT t.name FROM tags t
		 JOIN image_tags it ON it.tag_id = t.id
		 WHERE it.image_id = ? ORDER BY t.name`, imageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
