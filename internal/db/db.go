package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// Connect opens the database connection and applies migrations.
func Connect(dsn string, log *logrus.Logger) (*sqlx.DB, error) {
	database, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(database); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	log.Info("database migrations applied")
	return database, nil
}

func runMigrations(database *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id VARCHAR(36) PRIMARY KEY,
            username TEXT NOT NULL,
            email TEXT NOT NULL,
            role VARCHAR(20) NOT NULL DEFAULT 'user',
            is_online BOOLEAN NOT NULL DEFAULT FALSE,
            live_address TEXT,
            last_seen_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS chats (
            id VARCHAR(36) PRIMARY KEY,
            room_name VARCHAR(64) NOT NULL UNIQUE,
            initiator_id VARCHAR(36) NOT NULL REFERENCES users(id),
            participant_id VARCHAR(36) NOT NULL REFERENCES users(id),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE UNIQUE INDEX IF NOT EXISTS chats_pair_unique
            ON chats (LEAST(initiator_id, participant_id), GREATEST(initiator_id, participant_id));`,
		`CREATE TABLE IF NOT EXISTS chat_statuses (
            id VARCHAR(36) PRIMARY KEY,
            chat_id VARCHAR(36) NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
            user_id VARCHAR(36) NOT NULL REFERENCES users(id),
            chat_status VARCHAR(10) NOT NULL DEFAULT 'active',
            notification_status VARCHAR(10) NOT NULL DEFAULT 'unmuted',
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE (chat_id, user_id)
        );`,
		`CREATE TABLE IF NOT EXISTS messages (
            id VARCHAR(36) PRIMARY KEY,
            chat_id VARCHAR(36) NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
            chat_room VARCHAR(64) NOT NULL,
            sender_id VARCHAR(36) NOT NULL REFERENCES users(id),
            content TEXT NOT NULL,
            is_read BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS messages_chat_created_idx ON messages (chat_id, created_at DESC);`,
	}

	for _, m := range migrations {
		if _, err := database.Exec(m); err != nil {
			return err
		}
	}
	return nil
}
