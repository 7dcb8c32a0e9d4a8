// Package database manages the PostgreSQL connection pool and the schema
// the service expects.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool creates and validates a pgxpool connection pool from a DATABASE_URL
// style connection string.
func NewPool(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// schema is idempotent so it can run on every startup. The UNIQUE constraint
// on user_challenges (user_id, challenge_id) is what makes a duplicate join
// fail atomically at insert time instead of relying on a prior existence
// check. challenge_id is deliberately not a foreign key: the ledger keeps
// accepting rows for challenges that were deleted from the catalog.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id uuid PRIMARY KEY,
	name text NOT NULL DEFAULT '',
	email text NOT NULL UNIQUE,
	photo_url text,
	created_at timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS challenges (
	id uuid PRIMARY KEY,
	title text NOT NULL,
	description text NOT NULL DEFAULT '',
	category text NOT NULL DEFAULT '',
	image_url text,
	start_date date NOT NULL,
	end_date date NOT NULL,
	participants integer NOT NULL DEFAULT 0 CHECK (participants >= 0),
	created_by text,
	created_at timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS user_challenges (
	id uuid PRIMARY KEY,
	user_id text NOT NULL,
	challenge_id uuid NOT NULL,
	status text NOT NULL DEFAULT 'Not Started',
	progress integer NOT NULL DEFAULT 0,
	join_date timestamptz NOT NULL DEFAULT now(),
	CONSTRAINT user_challenges_user_id_challenge_id_key UNIQUE (user_id, challenge_id)
);

CREATE INDEX IF NOT EXISTS user_challenges_challenge_id_idx
	ON user_challenges (challenge_id);

CREATE TABLE IF NOT EXISTS tips (
	id uuid PRIMARY KEY,
	title text NOT NULL,
	body text NOT NULL DEFAULT '',
	created_at timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS events (
	id uuid PRIMARY KEY,
	title text NOT NULL,
	description text NOT NULL DEFAULT '',
	location text NOT NULL DEFAULT '',
	event_date timestamptz NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS site_stats (
	id integer PRIMARY KEY DEFAULT 1 CHECK (id = 1),
	total_users integer NOT NULL DEFAULT 0,
	total_challenges integer NOT NULL DEFAULT 0,
	co2_saved_kg double precision NOT NULL DEFAULT 0,
	updated_at timestamptz NOT NULL DEFAULT now()
);
`

// Bootstrap applies the schema.
func Bootstrap(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
