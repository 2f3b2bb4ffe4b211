package sqlite

import "database/sql"

// schema contains the SQL statements to set up the cache tables.
// These run on startup to ensure tables exist.
const schema = `
CREATE TABLE IF NOT EXISTS suggestions (
    key TEXT PRIMARY KEY,
    entries TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    expires_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_suggestions_expires_at ON suggestions(expires_at);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
