package db

import (
	"database/sql"
	"fmt"
)

var schema = []string{
	`
CREATE TABLE IF NOT EXISTS recipients (
    id                 BIGSERIAL PRIMARY KEY,
    email              VARCHAR(254) NOT NULL DEFAULT '',
    phone              VARCHAR(12)  NOT NULL DEFAULT '',
    telegram_id        VARCHAR(50)  NOT NULL DEFAULT '',
    smtp_user          TEXT NOT NULL DEFAULT '',
    smtp_password      TEXT NOT NULL DEFAULT '',
    from_email         TEXT NOT NULL DEFAULT '',
    telegram_bot_token TEXT NOT NULL DEFAULT '',
    created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`
CREATE TABLE IF NOT EXISTS notifications (
    id              BIGSERIAL PRIMARY KEY,
    recipient_id    BIGINT NOT NULL REFERENCES recipients(id) ON DELETE CASCADE,
    message         TEXT NOT NULL,
    delivered       BOOLEAN NOT NULL DEFAULT FALSE,
    delivery_method VARCHAR(20),
    attempts        INTEGER NOT NULL DEFAULT 0 CHECK (attempts >= 0),
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	// recovery sweep: WHERE delivered = FALSE AND attempts < $1
	`CREATE INDEX IF NOT EXISTS idx_notifications_pending ON notifications(delivered, attempts)`,
	// newest-first listing
	`CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications(created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_recipient_id ON notifications(recipient_id)`,
}

// MigrateUp creates the schema. Every statement is idempotent.
func MigrateUp(db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}

// MigrateDown drops the schema in reverse order. All data is lost.
func MigrateDown(db *sql.DB) error {
	stmts := []string{
		`DROP INDEX IF EXISTS idx_notifications_recipient_id`,
		`DROP INDEX IF EXISTS idx_notifications_created_at`,
		`DROP INDEX IF EXISTS idx_notifications_pending`,
		`DROP TABLE IF EXISTS notifications`,
		`DROP TABLE IF EXISTS recipients`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
