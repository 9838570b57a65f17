package database

import (
	"context"
	"database/sql"
)

// Migrate creates the engine tables if they do not exist yet.
// Availability is derived from borrows at read time; there is intentionally
// no stored counter and no stored ACTIVE/OVERDUE status column.
func Migrate(ctx context.Context, db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL,
	name          TEXT NOT NULL DEFAULT '',
	role          TEXT NOT NULL DEFAULT 'MEMBER',
	fine          DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (fine >= 0),
	profile_photo TEXT,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (lower(email));

CREATE TABLE IF NOT EXISTS books (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	author     TEXT NOT NULL,
	publisher  TEXT,
	copies     BIGINT NOT NULL CHECK (copies >= 1),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS borrows (
	id               TEXT PRIMARY KEY,
	user_id          TEXT NOT NULL REFERENCES users(id),
	book_id          TEXT NOT NULL REFERENCES books(id),
	borrowed_at      TIMESTAMPTZ NOT NULL,
	due_date         TIMESTAMPTZ NOT NULL,
	returned_at      TIMESTAMPTZ,
	overdue_notified BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS borrows_book_active_idx ON borrows (book_id) WHERE returned_at IS NULL;
CREATE INDEX IF NOT EXISTS borrows_user_active_idx ON borrows (user_id) WHERE returned_at IS NULL;
CREATE INDEX IF NOT EXISTS borrows_borrowed_at_idx ON borrows (borrowed_at);
`
	_, err := db.ExecContext(ctx, ddl)
	return err
}
