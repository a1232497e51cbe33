package store

import (
	"context"
	"fmt"
)

// schema is applied idempotently at startup. The favorites table stores the
// target as two nullable references; the CHECK keeps exactly one of them set
// and the UNIQUE constraints back the per-user uniqueness of each kind.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash BYTEA NOT NULL,
	is_active     BOOLEAN NOT NULL DEFAULT TRUE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS characters (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	height     TEXT NOT NULL DEFAULT '',
	mass       TEXT NOT NULL DEFAULT '',
	hair_color TEXT NOT NULL DEFAULT '',
	skin_color TEXT NOT NULL DEFAULT '',
	eye_color  TEXT NOT NULL DEFAULT '',
	birth_year TEXT NOT NULL DEFAULT '',
	gender     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS planets (
	id              BIGSERIAL PRIMARY KEY,
	name            TEXT NOT NULL,
	diameter        TEXT NOT NULL DEFAULT '',
	rotation_period TEXT NOT NULL DEFAULT '',
	orbital_period  TEXT NOT NULL DEFAULT '',
	gravity         TEXT NOT NULL DEFAULT '',
	population      TEXT NOT NULL DEFAULT '',
	climate         TEXT NOT NULL DEFAULT '',
	terrain         TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS favorites (
	id           BIGSERIAL PRIMARY KEY,
	user_id      BIGINT NOT NULL REFERENCES users (id),
	character_id BIGINT REFERENCES characters (id),
	planet_id    BIGINT REFERENCES planets (id),
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT favorites_one_target CHECK ((character_id IS NULL) <> (planet_id IS NULL)),
	CONSTRAINT favorites_user_character_key UNIQUE (user_id, character_id),
	CONSTRAINT favorites_user_planet_key UNIQUE (user_id, planet_id)
);

CREATE INDEX IF NOT EXISTS favorites_user_id_idx ON favorites (user_id);
`

// EnsureSchema creates the tables the service needs when they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
