package database

import (
	"context"
	"fmt"
)

// schema is the full DDL for the service, applied idempotently at startup.
// Tags survive profile deletion; everything else hanging off a profile
// cascades away with it.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		matricule TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		language TEXT NOT NULL DEFAULT 'en',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_login TIMESTAMPTZ
	)`,

	`CREATE TABLE IF NOT EXISTS profiles (
		id UUID PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		gender TEXT NOT NULL,
		nationality TEXT NOT NULL DEFAULT '',
		age INT NOT NULL,
		photo_url TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		postcode TEXT NOT NULL DEFAULT '',
		created_by BIGINT NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS social_media_profiles (
		id BIGSERIAL PRIMARY KEY,
		profile_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		platform TEXT NOT NULL,
		username TEXT NOT NULL,
		bio TEXT NOT NULL DEFAULT '',
		followers INT NOT NULL DEFAULT 0,
		following INT NOT NULL DEFAULT 0,
		posts_count INT NOT NULL DEFAULT 0,
		interests JSONB NOT NULL DEFAULT '[]',
		data JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (profile_id, platform)
	)`,

	`CREATE TABLE IF NOT EXISTS tags (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		color TEXT NOT NULL DEFAULT '#3B82F6',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS profile_tags (
		profile_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		tag_id BIGINT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		PRIMARY KEY (profile_id, tag_id)
	)`,

	`CREATE TABLE IF NOT EXISTS usage_logs (
		id BIGSERIAL PRIMARY KEY,
		profile_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		user_id BIGINT NOT NULL REFERENCES users(id),
		action TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_profiles_created_by ON profiles(created_by)`,
	`CREATE INDEX IF NOT EXISTS idx_social_profiles_profile ON social_media_profiles(profile_id)`,
	`CREATE INDEX IF NOT EXISTS idx_usage_logs_profile ON usage_logs(profile_id)`,
}

// Bootstrap creates the schema if it does not exist yet.
func (cp *ConnectionPool) Bootstrap(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := cp.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	cp.logger.Info("database schema ready")
	return nil
}
