package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/photoshare/backend/internal/model"
)

// TagRepo handles the tags table. Tag names are unique and lowercased, so
// "Sunset" and "sunset" resolve to the same tag.
type TagRepo struct{ DB *sql.DB }

func NewTagRepo(db *sql.DB) *TagRepo { return &TagRepo{DB: db} }

// GetOrCreate looks a tag up by name and inserts it when absent. Calling it
// twice with the same name returns the same tag identity both times. A
// concurrent insert racing between the SELECT and the INSERT is resolved by
// re-reading after a duplicate-key error.
func (r *TagRepo) GetOrCreate(ctx context.Context, name string) (*model.Tag, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, errors.New("empty tag name")
	}

	tag, err := r.getByName(ctx, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	res, err := r.DB.ExecContext(ctx, "INSERT INTO tags (name) VALUES (?)", name)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return r.getByName(ctx, name)
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.Tag{ID: uint64(id), Name: name}, nil
}

func (r *TagRepo) getByName(ctx context.Context, name string) (*model.Tag, error) {
	var t model.Tag
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name FROM tags WHERE name=? LIMIT 1", name).Scan(&t.ID, &t.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}
