package db

import (
	"database/sql"
	"fmt"
)

// sqliteMigrations is an ordered list of SQL statements to run on SQLite.
var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS promoters (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT    NOT NULL,
		company    TEXT,
		phone      TEXT,
		email      TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS properties (
		id                   INTEGER PRIMARY KEY AUTOINCREMENT,
		title                TEXT,
		price                REAL,
		location_text        TEXT,
		description          TEXT,
		property_type        TEXT,
		source_portal        TEXT,
		latitude             REAL,
		longitude            REAL,
		construction_area_m2 INTEGER,
		land_area_m2         INTEGER,
		bedrooms             INTEGER,
		full_bathrooms       INTEGER,
		half_bathrooms       INTEGER,
		parking_spaces       INTEGER,
		levels               INTEGER,
		photos               TEXT    NOT NULL DEFAULT '[]',
		property_url         TEXT,
		promoter_id          INTEGER REFERENCES promoters(id),
		created_at           DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_promoter_id ON properties(promoter_id)`,
}

// postgresMigrations mirrors the hosted schema closely enough for a direct
// connection to work against an empty database.
var postgresMigrations = []string{
	`CREATE TABLE IF NOT EXISTS promoters (
		id         BIGSERIAL PRIMARY KEY,
		name       TEXT NOT NULL,
		company    TEXT,
		phone      TEXT,
		email      TEXT,
		created_at TIMESTAMPTZ DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS properties (
		id                   BIGSERIAL PRIMARY KEY,
		title                TEXT,
		price                NUMERIC,
		location_text        TEXT,
		description          TEXT,
		property_type        TEXT,
		source_portal        TEXT,
		latitude             DOUBLE PRECISION,
		longitude            DOUBLE PRECISION,
		construction_area_m2 INTEGER,
		land_area_m2         INTEGER,
		bedrooms             INTEGER,
		full_bathrooms       INTEGER,
		half_bathrooms       INTEGER,
		parking_spaces       INTEGER,
		levels               INTEGER,
		photos               JSONB NOT NULL DEFAULT '[]'::jsonb,
		property_url         TEXT,
		promoter_id          BIGINT REFERENCES promoters(id),
		created_at           TIMESTAMPTZ DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_promoter_id ON properties(promoter_id)`,
}

// JSONColumns lists columns stored as JSON text (SQLite) or jsonb (Postgres).
var JSONColumns = map[string][]string{
	"properties": {"photos"},
}

// migrate runs all migrations for the dialect in order.
func migrate(db *sql.DB, d Dialect) error {
	migrations := sqliteMigrations
	if d == Postgres {
		migrations = postgresMigrations
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	return nil
}
