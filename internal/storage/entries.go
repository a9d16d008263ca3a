// ABOUTME: Stat entry persistence for the SQLite backend.
// ABOUTME: Batches inserts in a transaction and loads rows back in insertion order.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/lifetracker/internal/models"
)

// InsertEntries appends entries in order inside one transaction.
func (d *DB) InsertEntries(entries []models.StatEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin insert entries: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO stat_entries (id, stat_type, value, source, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert entry: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(
			e.ID.String(),
			string(e.Type),
			e.Value,
			string(e.Source),
			e.Date.Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert entries: %w", err)
	}
	return nil
}

// UpdateEntry rewrites an existing row, keeping its position.
func (d *DB) UpdateEntry(e models.StatEntry) error {
	result, err := d.db.Exec(`
		UPDATE stat_entries
		SET stat_type = ?, value = ?, source = ?, recorded_at = ?
		WHERE id = ?
	`,
		string(e.Type),
		e.Value,
		string(e.Source),
		e.Date.Format(time.RFC3339Nano),
		e.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update entry %s: %w", e.ID, ErrNotFound)
	}
	return nil
}

// DeleteEntries removes the given ids. Missing ids are ignored.
func (d *DB) DeleteEntries(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete entries: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare("DELETE FROM stat_entries WHERE id = ?")
	if err != nil {
		return fmt.Errorf("prepare delete entry: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.Exec(id.String()); err != nil {
			return fmt.Errorf("delete entry %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete entries: %w", err)
	}
	return nil
}

// LoadEntries returns every entry in insertion order.
func (d *DB) LoadEntries() ([]models.StatEntry, error) {
	rows, err := d.db.Query(`
		SELECT id, stat_type, value, source, recorded_at
		FROM stat_entries
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// scanEntries scans rows into stat entries.
func scanEntries(rows *sql.Rows) ([]models.StatEntry, error) {
	var entries []models.StatEntry

	for rows.Next() {
		var e models.StatEntry
		var idStr, statType, source, recordedAt string

		if err := rows.Scan(&idStr, &statType, &e.Value, &source, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}

		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("parse entry id %q: %w", idStr, err)
		}
		date, err := time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("parse entry date %q: %w", recordedAt, err)
		}

		e.ID = id
		e.Type = models.StatType(statType)
		e.Source = models.Source(source)
		e.Date = date
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
