package postgres

import (
	"context"
	"fmt"
)

// schema crea las tablas del motor de auditoría si no existen.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS locations (
		id          TEXT PRIMARY KEY,
		company_id  TEXT NOT NULL DEFAULT '',
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		active      BOOLEAN NOT NULL DEFAULT TRUE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS locations_name_key ON locations (name)`,
	`CREATE TABLE IF NOT EXISTS audit_items (
		sku               TEXT NOT NULL,
		location          TEXT NOT NULL,
		barcode           TEXT NOT NULL DEFAULT '',
		name              TEXT NOT NULL CHECK (name <> ''),
		category          TEXT NOT NULL CHECK (category <> ''),
		unit_cost         NUMERIC(18,4) NOT NULL DEFAULT 0,
		system_quantity   INTEGER NOT NULL DEFAULT 0 CHECK (system_quantity >= 0),
		physical_quantity INTEGER CHECK (physical_quantity >= 0),
		status            TEXT NOT NULL,
		last_audited_at   TIMESTAMPTZ,
		audited_by        TEXT NOT NULL DEFAULT '',
		notes             TEXT NOT NULL DEFAULT '',
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (sku, location)
	)`,
	`CREATE INDEX IF NOT EXISTS audit_items_barcode_idx ON audit_items (barcode) WHERE barcode <> ''`,
	`CREATE TABLE IF NOT EXISTS questions (
		id         TEXT PRIMARY KEY,
		text       TEXT NOT NULL,
		type       TEXT NOT NULL,
		required   BOOLEAN NOT NULL DEFAULT FALSE,
		options    JSONB NOT NULL DEFAULT '[]',
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS questionnaire_answers (
		question_id TEXT NOT NULL REFERENCES questions (id),
		location_id TEXT NOT NULL,
		text        TEXT NOT NULL DEFAULT '',
		option_ids  TEXT[] NOT NULL DEFAULT '{}',
		answered_by TEXT NOT NULL DEFAULT '',
		answered_on TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (question_id, location_id)
	)`,
}

// Migrate aplica el esquema. Es idempotente.
func Migrate(ctx context.Context, q Querier) error {
	for i, stmt := range schema {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
