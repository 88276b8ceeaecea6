package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is the bootstrap DDL for the auto-emailer tables. Every statement
// is idempotent; ApplySchema can run on every startup.
const schema = `
CREATE SCHEMA IF NOT EXISTS email;

CREATE TABLE IF NOT EXISTS email.accounts (
    id           BIGSERIAL PRIMARY KEY,
    email        TEXT NOT NULL UNIQUE,
    app_password TEXT NOT NULL,
    is_active    BOOLEAN NOT NULL DEFAULT true
);

CREATE TABLE IF NOT EXISTS email.account_profiles (
    account_id BIGINT PRIMARY KEY REFERENCES email.accounts(id) ON DELETE CASCADE,
    name       TEXT NOT NULL,
    username   TEXT NOT NULL,
    gender     TEXT NOT NULL CHECK (gender IN ('male', 'female')),
    phone      TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS email.account_data (
    account_id           BIGINT PRIMARY KEY REFERENCES email.accounts(id) ON DELETE CASCADE,
    blocked_job_position JSONB NOT NULL DEFAULT '{"keywords": [], "regex_patterns": []}'
);

CREATE TABLE IF NOT EXISTS email.sent_logs (
    id           BIGSERIAL PRIMARY KEY,
    target_email TEXT NOT NULL,
    sender_email TEXT NOT NULL,
    sent_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (target_email, sender_email)
);
`

// ApplySchema creates the email schema and tables if they do not exist.
func ApplySchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}
