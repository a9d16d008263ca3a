// ABOUTME: Progress photo and image blob persistence for the SQLite backend.
// ABOUTME: Categories live in their own table so their order survives a reload.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/lifetracker/internal/models"
)

// InsertPhoto stores a photo and its categories.
func (d *DB) InsertPhoto(p models.ProgressPhoto) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin insert photo: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		"INSERT INTO photos (id, taken_at, image_ref) VALUES (?, ?, ?)",
		p.ID.String(),
		p.Date.Format(time.RFC3339Nano),
		p.ImageRef,
	); err != nil {
		return fmt.Errorf("insert photo: %w", err)
	}

	for i, c := range p.Categories {
		if _, err := tx.Exec(
			"INSERT INTO photo_categories (photo_id, category, position) VALUES (?, ?, ?)",
			p.ID.String(), string(c), i,
		); err != nil {
			return fmt.Errorf("insert photo category: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert photo: %w", err)
	}
	return nil
}

// DeletePhoto removes a photo; its categories cascade.
func (d *DB) DeletePhoto(id uuid.UUID) error {
	result, err := d.db.Exec("DELETE FROM photos WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete photo %s: %w", id, ErrNotFound)
	}
	return nil
}

// LoadPhotos returns every photo in insertion order.
func (d *DB) LoadPhotos() ([]models.ProgressPhoto, error) {
	cats, err := d.loadCategories()
	if err != nil {
		return nil, err
	}

	rows, err := d.db.Query("SELECT id, taken_at, image_ref FROM photos ORDER BY seq ASC")
	if err != nil {
		return nil, fmt.Errorf("load photos: %w", err)
	}
	defer rows.Close()

	var result []models.ProgressPhoto
	for rows.Next() {
		var idStr, takenAt string
		var p models.ProgressPhoto
		if err := rows.Scan(&idStr, &takenAt, &p.ImageRef); err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		if p.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("parse photo id %q: %w", idStr, err)
		}
		if p.Date, err = time.Parse(time.RFC3339Nano, takenAt); err != nil {
			return nil, fmt.Errorf("parse photo date %q: %w", takenAt, err)
		}
		p.Categories = cats[idStr]
		result = append(result, p)
	}

	return result, rows.Err()
}

// loadCategories returns categories per photo id, in their original order.
func (d *DB) loadCategories() (map[string][]models.PhotoCategory, error) {
	rows, err := d.db.Query("SELECT photo_id, category FROM photo_categories ORDER BY photo_id, position")
	if err != nil {
		return nil, fmt.Errorf("load photo categories: %w", err)
	}
	defer rows.Close()

	cats := make(map[string][]models.PhotoCategory)
	for rows.Next() {
		var photoID, category string
		if err := rows.Scan(&photoID, &category); err != nil {
			return nil, fmt.Errorf("scan photo category: %w", err)
		}
		cats[photoID] = append(cats[photoID], models.PhotoCategory(category))
	}
	return cats, rows.Err()
}

// PutImage stores an image blob and returns its ref.
func (d *DB) PutImage(data []byte) (string, error) {
	ref := newImageRef()
	if _, err := d.db.Exec("INSERT INTO images (ref, data) VALUES (?, ?)", ref, data); err != nil {
		return "", fmt.Errorf("put image: %w", err)
	}
	return ref, nil
}

// GetImage returns the blob stored under ref.
func (d *DB) GetImage(ref string) ([]byte, error) {
	var data []byte
	err := d.db.QueryRow("SELECT data FROM images WHERE ref = ?", ref).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("image %s: %w", ref, ErrNotFound)
		}
		return nil, fmt.Errorf("get image: %w", err)
	}
	return data, nil
}

// DeleteImage removes the blob stored under ref. Missing refs are ignored.
func (d *DB) DeleteImage(ref string) error {
	if _, err := d.db.Exec("DELETE FROM images WHERE ref = ?", ref); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}
