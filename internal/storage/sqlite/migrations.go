package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Money columns are TEXT so decimal amounts round-trip exactly.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    username TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    balance TEXT NOT NULL DEFAULT '0',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS rounds (
    number INTEGER PRIMARY KEY AUTOINCREMENT,
    table_id TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('open', 'closed', 'finished')),
    winning_slot INTEGER CHECK (winning_slot BETWEEN 0 AND 36),
    created_at INTEGER NOT NULL,
    closed_at INTEGER NOT NULL DEFAULT 0,
    finished_at INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS wagers (
    id TEXT PRIMARY KEY,
    round_number INTEGER NOT NULL,
    user_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    target TEXT NOT NULL,
    amount TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (round_number) REFERENCES rounds(number),
    FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS balance_entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    delta TEXT NOT NULL,
    applied TEXT NOT NULL,
    balance_after TEXT NOT NULL,
    round_number INTEGER NOT NULL DEFAULT 0,
    key TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    UNIQUE (user_id, key),
    FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_rounds_active_table
    ON rounds(table_id) WHERE status IN ('open', 'closed');
CREATE INDEX IF NOT EXISTS idx_wagers_round_number ON wagers(round_number);
CREATE INDEX IF NOT EXISTS idx_wagers_user_id ON wagers(user_id);
CREATE INDEX IF NOT EXISTS idx_balance_entries_user_id ON balance_entries(user_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
