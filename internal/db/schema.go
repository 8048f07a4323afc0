package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	pkgdb "feeltrack/pkg/db"
)

// statements are applied in order; each one is idempotent.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id       SERIAL PRIMARY KEY,
		username      VARCHAR(50)  NOT NULL,
		email         VARCHAR(100) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		last_login    TIMESTAMPTZ,
		CONSTRAINT users_username_key UNIQUE (username),
		CONSTRAINT users_email_key UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS conversations (
		conversation_id SERIAL PRIMARY KEY,
		user_id         INT          NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		title           VARCHAR(100) NOT NULL DEFAULT 'New Conversation',
		created_at      TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		updated_at      TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS conversations_user_updated_idx
		ON conversations (user_id, updated_at DESC)`,
	`CREATE TABLE IF NOT EXISTS messages (
		message_id       SERIAL PRIMARY KEY,
		conversation_id  INT         NOT NULL REFERENCES conversations(conversation_id) ON DELETE CASCADE,
		is_user          BOOLEAN     NOT NULL,
		content          TEXT        NOT NULL,
		positive_reframe TEXT,
		timestamp        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS messages_conversation_ts_idx
		ON messages (conversation_id, timestamp, message_id)`,
	`CREATE TABLE IF NOT EXISTS supportive_messages (
		message_id SERIAL PRIMARY KEY,
		user_id    INT         NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		content    TEXT        NOT NULL,
		is_read    BOOLEAN     NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		sent_at    TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS supportive_messages_user_idx
		ON supportive_messages (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS supportive_messages_unsent_idx
		ON supportive_messages (created_at) WHERE sent_at IS NULL`,
	`CREATE TABLE IF NOT EXISTS user_preferences (
		user_id                INT PRIMARY KEY REFERENCES users(user_id) ON DELETE CASCADE,
		notification_frequency INT         NOT NULL DEFAULT 120,
		active_hours_start     TIME        NOT NULL DEFAULT '08:00:00',
		active_hours_end       TIME        NOT NULL DEFAULT '22:00:00',
		notifications_enabled  BOOLEAN     NOT NULL DEFAULT TRUE,
		theme                  VARCHAR(20) NOT NULL DEFAULT 'light'
	)`,
}

// Migrate creates the tables and indexes if they do not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	err := pkgdb.InTx(ctx, pool, func(tx pgx.Tx) error {
		for i, stmt := range statements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("migration step %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Schema migration failed", zap.Error(err))
		return err
	}
	logger.Info("Schema is up to date", zap.Int("statements", len(statements)))
	return nil
}
