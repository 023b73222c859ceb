package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. Movement tables are append-only: the
// application never issues UPDATE or DELETE against them, except for the
// status columns of transfers.
const schema = `
CREATE TABLE IF NOT EXISTS bases (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS equipment_types (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    category   TEXT NOT NULL,
    image      BLOB,
    image_mime TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'viewer'
                  CHECK (role IN ('admin', 'base_commander', 'logistics_officer', 'viewer')),
    base_id       INTEGER REFERENCES bases(id),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS purchases (
    id                INTEGER PRIMARY KEY,
    base_id           INTEGER NOT NULL REFERENCES bases(id),
    equipment_type_id INTEGER NOT NULL REFERENCES equipment_types(id),
    quantity          INTEGER NOT NULL CHECK (quantity > 0),
    purchase_date     TEXT NOT NULL CHECK (date(purchase_date) IS NOT NULL),
    notes             TEXT,
    created_by        INTEGER NOT NULL REFERENCES users(id),
    created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS transfers (
    id                INTEGER PRIMARY KEY,
    from_base_id      INTEGER NOT NULL REFERENCES bases(id),
    to_base_id        INTEGER NOT NULL REFERENCES bases(id),
    equipment_type_id INTEGER NOT NULL REFERENCES equipment_types(id),
    quantity          INTEGER NOT NULL CHECK (quantity > 0),
    transfer_date     TEXT NOT NULL CHECK (date(transfer_date) IS NOT NULL),
    status            TEXT NOT NULL DEFAULT 'pending'
                      CHECK (status IN ('pending', 'approved', 'completed', 'rejected')),
    initiated_by      INTEGER NOT NULL REFERENCES users(id),
    status_changed_by INTEGER REFERENCES users(id),
    notes             TEXT,
    created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (from_base_id <> to_base_id)
);

CREATE TABLE IF NOT EXISTS assignments (
    id                INTEGER PRIMARY KEY,
    base_id           INTEGER NOT NULL REFERENCES bases(id),
    equipment_type_id INTEGER NOT NULL REFERENCES equipment_types(id),
    quantity          INTEGER NOT NULL CHECK (quantity > 0),
    assignment_date   TEXT NOT NULL CHECK (date(assignment_date) IS NOT NULL),
    personnel_name    TEXT NOT NULL,
    personnel_rank    TEXT,
    notes             TEXT,
    created_by        INTEGER NOT NULL REFERENCES users(id),
    created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS expenditures (
    id                INTEGER PRIMARY KEY,
    base_id           INTEGER NOT NULL REFERENCES bases(id),
    equipment_type_id INTEGER NOT NULL REFERENCES equipment_types(id),
    quantity          INTEGER NOT NULL CHECK (quantity > 0),
    expenditure_date  TEXT NOT NULL CHECK (date(expenditure_date) IS NOT NULL),
    reason            TEXT NOT NULL,
    created_by        INTEGER NOT NULL REFERENCES users(id),
    created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS idempotency_keys (
    key        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	`CREATE INDEX IF NOT EXISTS idx_purchases_bucket
	     ON purchases(base_id, equipment_type_id, purchase_date)`,
	`CREATE INDEX IF NOT EXISTS idx_transfers_from
	     ON transfers(from_base_id, equipment_type_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_transfers_to
	     ON transfers(to_base_id, equipment_type_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_assignments_bucket
	     ON assignments(base_id, equipment_type_id, assignment_date)`,
	`CREATE INDEX IF NOT EXISTS idx_expenditures_bucket
	     ON expenditures(base_id, equipment_type_id, expenditure_date)`,
}

// EnsureSchema creates all tables and indexes if they don't already exist,
// then applies migrations.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
