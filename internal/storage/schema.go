// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines tables for stat entries, photos, photo categories, and images.
package storage

// initSchema creates or updates the database schema.
// The seq columns keep insertion order, which dates alone cannot.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS stat_entries (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		stat_type TEXT NOT NULL,
		value REAL NOT NULL,
		source TEXT NOT NULL,
		recorded_at TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS photos (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		taken_at TEXT NOT NULL,
		image_ref TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS photo_categories (
		photo_id TEXT NOT NULL,
		category TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (photo_id, category),
		FOREIGN KEY (photo_id) REFERENCES photos(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS images (
		ref TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_stat_entries_type ON stat_entries(stat_type);
	CREATE INDEX IF NOT EXISTS idx_stat_entries_source ON stat_entries(source);
	CREATE INDEX IF NOT EXISTS idx_photo_categories_photo ON photo_categories(photo_id);
	`

	_, err := d.db.Exec(schema)
	return err
}
